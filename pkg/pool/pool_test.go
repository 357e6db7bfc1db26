package pool_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/meridian-tools/meridian/pkg/adapters/memory"
	"github.com/meridian-tools/meridian/pkg/domain"
	"github.com/meridian-tools/meridian/pkg/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(id string) domain.Variable {
	return domain.Variable{
		ID:     id,
		Values: []float64{1, 2, 3},
		Axis: domain.Axis{Times: []time.Time{
			time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC),
		}},
	}
}

func TestPool_AddAndSelected(t *testing.T) {
	ctx := context.Background()
	p := pool.New(memory.NewVariableStore())

	require.NoError(t, p.Add(ctx, sample("tas")))
	require.NoError(t, p.Add(ctx, sample("pr")))

	vars, err := p.Selected(ctx, domain.Selection{"tas", "pr"})
	require.NoError(t, err)
	require.Len(t, vars, 2)
	assert.Equal(t, "tas", vars[0].ID)
	assert.Equal(t, "pr", vars[1].ID)
}

func TestPool_SelectedMissingVariable(t *testing.T) {
	ctx := context.Background()
	p := pool.New(memory.NewVariableStore())

	_, err := p.Selected(ctx, domain.Selection{"absent"})
	assert.ErrorIs(t, err, domain.ErrVariableNotFound)
}

func TestPool_EmptySelection(t *testing.T) {
	p := pool.New(memory.NewVariableStore())

	_, err := p.Selected(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrEmptySelection)
}

func TestPool_AddRejectsMissingID(t *testing.T) {
	p := pool.New(memory.NewVariableStore())
	assert.Error(t, p.Add(context.Background(), domain.Variable{}))
}

func TestPool_UpdateSerializesWriters(t *testing.T) {
	ctx := context.Background()
	p := pool.New(memory.NewVariableStore())
	require.NoError(t, p.Add(ctx, sample("tas")))

	const writers = 20
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_ = p.Update(ctx, "tas", func(v *domain.Variable) error {
				v.Values[0]++
				return nil
			})
		}()
	}
	wg.Wait()

	v, err := p.Get(ctx, "tas")
	require.NoError(t, err)
	assert.Equal(t, 1.0+writers, v.Values[0], "every increment must be applied exactly once")
}
