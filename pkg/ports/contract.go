package ports

import (
	"context"
	"testing"
	"time"

	"github.com/meridian-tools/meridian/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunVariableStoreContract verifies that a VariableStore implementation
// adheres to the interface contract.
func RunVariableStoreContract(t *testing.T, store VariableStore) {
	ctx := context.Background()

	v := domain.Variable{
		ID:     "contract-tas",
		Values: []float64{1, 2, 3},
		Axis: domain.Axis{
			Times: []time.Time{
				time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC),
				time.Date(2020, 2, 15, 0, 0, 0, 0, time.UTC),
				time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC),
			},
		},
		Units: "K",
	}

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, v))

		loaded, err := store.Load(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, v.ID, loaded.ID)
		assert.Equal(t, v.Values, loaded.Values)
		assert.Equal(t, v.Units, loaded.Units)
	})

	t.Run("Load isolates the stored value", func(t *testing.T) {
		loaded, err := store.Load(ctx, v.ID)
		require.NoError(t, err)
		loaded.Values[0] = 99

		again, err := store.Load(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, 1.0, again.Values[0], "mutating a loaded copy must not touch the store")
	})

	t.Run("Load non-existent", func(t *testing.T) {
		_, err := store.Load(ctx, "contract-absent")
		assert.ErrorIs(t, err, domain.ErrVariableNotFound)
	})

	t.Run("List", func(t *testing.T) {
		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, v.ID)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, v.ID))
		_, err := store.Load(ctx, v.ID)
		assert.ErrorIs(t, err, domain.ErrVariableNotFound)

		// Idempotent.
		assert.NoError(t, store.Delete(ctx, v.ID))
	})
}

// RunTranscriptStoreContract verifies that a TranscriptStore
// implementation adheres to the interface contract.
func RunTranscriptStoreContract(t *testing.T, store TranscriptStore) {
	ctx := context.Background()
	sessionID := "contract-session"

	entries := []domain.Entry{
		{Seq: 0, Time: time.Now().UTC().Truncate(time.Second), Text: "Set Bounds For Yearly Data", Comment: true},
		{Seq: 1, Time: time.Now().UTC().Truncate(time.Second), Text: "times.setTimeBoundsYearly(tas)"},
	}

	t.Run("Load non-existent", func(t *testing.T) {
		_, err := store.Load(ctx, "contract-absent")
		assert.ErrorIs(t, err, domain.ErrTranscriptNotFound)
	})

	t.Run("Append and Load", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, sessionID, entries))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		require.Len(t, loaded, 2)
		assert.Equal(t, "Set Bounds For Yearly Data", loaded[0].Text)
		assert.True(t, loaded[0].Comment)
		assert.Equal(t, "times.setTimeBoundsYearly(tas)", loaded[1].Text)
	})

	t.Run("Append preserves order", func(t *testing.T) {
		more := []domain.Entry{{Seq: 2, Text: "times.setTimeBoundsMonthly(pr)"}}
		require.NoError(t, store.Append(ctx, sessionID, more))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		require.Len(t, loaded, 3)
		assert.Equal(t, "times.setTimeBoundsMonthly(pr)", loaded[2].Text)
	})

	t.Run("List", func(t *testing.T) {
		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, sessionID)
	})
}
