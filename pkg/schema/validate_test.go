package schema_test

import (
	"testing"

	"github.com/meridian-tools/meridian/pkg/catalog"
	"github.com/meridian-tools/meridian/pkg/domain"
	"github.com/meridian-tools/meridian/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func descriptor(t *testing.T, op domain.OpID) domain.ActionDescriptor {
	t.Helper()
	cat, err := catalog.New()
	require.NoError(t, err)
	desc, err := cat.Resolve(op)
	require.NoError(t, err)
	return desc
}

func TestValidate_AcceptsDeclaredChoices(t *testing.T) {
	desc := descriptor(t, domain.StatOp(domain.StatVariance))
	s := schema.ForAction(desc)

	err := s.Validate(map[string]any{
		"centered":        false,
		"biased":          true,
		"max_pct_missing": 10.0,
	})
	assert.NoError(t, err)
}

func TestValidate_RejectsUndeclaredChoice(t *testing.T) {
	desc := descriptor(t, domain.StatOp(domain.StatMedian))
	s := schema.ForAction(desc)

	err := s.Validate(map[string]any{"lag": 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a choice of this action")
}

func TestValidate_EnumeratedChoice(t *testing.T) {
	desc := descriptor(t, domain.StatOp(domain.StatLinearReg))
	s := schema.ForAction(desc)

	assert.NoError(t, s.Validate(map[string]any{"error": "2"}))

	err := s.Validate(map[string]any{"error": "9"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be one of")
}

func TestValidate_AggregatesAllFailures(t *testing.T) {
	desc := descriptor(t, domain.StatOp(domain.StatLaggedCorr))
	s := schema.ForAction(desc)

	err := s.Validate(map[string]any{
		"lag":      "not-a-number",
		"centered": 1,
		"bogus":    true,
	})
	require.Error(t, err)
	assert.Len(t, schema.ValidationErrors(err), 3)
}

func TestValidateArgs(t *testing.T) {
	desc := descriptor(t, domain.StatOp(domain.StatRMS))

	assert.Error(t, schema.ValidateArgs(desc, 1))
	assert.NoError(t, schema.ValidateArgs(desc, 2))
	assert.NoError(t, schema.ValidateArgs(desc, 3))
	assert.Error(t, schema.ValidateArgs(desc, 4))
}

func TestDecodeOptions(t *testing.T) {
	opts, err := schema.DecodeOptions(map[string]any{
		"centered":    false,
		"lag":         4,
		"error":       "2",
		"percentiles": []float64{5, 50, 95},
	})
	require.NoError(t, err)
	assert.False(t, opts.Centered)
	assert.Equal(t, 4, opts.Lag)
	assert.Equal(t, 2, opts.ErrorEstimate)
	assert.Equal(t, []float64{5, 50, 95}, opts.Percentiles)
}

func TestDecodeOptions_DefaultsSurvive(t *testing.T) {
	opts, err := schema.DecodeOptions(nil)
	require.NoError(t, err)
	assert.True(t, opts.Centered, "centered is the library default")
}
