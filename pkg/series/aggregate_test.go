package series_test

import (
	"testing"
	"time"

	"github.com/meridian-tools/meridian/pkg/domain"
	"github.com/meridian-tools/meridian/pkg/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoYears is 24 monthly samples: 2020 is all 1.0, 2021 is all 3.0.
func twoYears() domain.Variable {
	values := make([]float64, 24)
	for i := range values {
		if i < 12 {
			values[i] = 1
		} else {
			values[i] = 3
		}
	}
	return monthly("tas", time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), values...)
}

func TestAggregate_AnnualExtract(t *testing.T) {
	out, err := series.Aggregate(twoYears(), domain.AggAnnual, domain.ModeExtract)
	require.NoError(t, err)

	require.Len(t, out.Values, 2)
	assert.InDelta(t, 1.0, out.Values[0], 1e-9)
	assert.InDelta(t, 3.0, out.Values[1], 1e-9)
	assert.Equal(t, 2020, out.Axis.Times[0].Year())
	assert.Equal(t, 2021, out.Axis.Times[1].Year())
}

func TestAggregate_AnnualClimatology(t *testing.T) {
	out, err := series.Aggregate(twoYears(), domain.AggAnnual, domain.ModeClimatology)
	require.NoError(t, err)

	require.Len(t, out.Values, 1)
	assert.InDelta(t, 2.0, out.Values[0], 1e-9)
}

func TestAggregate_AnnualDepartures(t *testing.T) {
	out, err := series.Aggregate(twoYears(), domain.AggAnnual, domain.ModeDepartures)
	require.NoError(t, err)

	require.Len(t, out.Values, 2)
	assert.InDelta(t, -1.0, out.Values[0], 1e-9)
	assert.InDelta(t, 1.0, out.Values[1], 1e-9)
}

func TestAggregate_MonthlyClimatologyIsAnnualCycle(t *testing.T) {
	out, err := series.Aggregate(twoYears(), domain.AggAnnualCycle, domain.ModeClimatology)
	require.NoError(t, err)

	// One value per month, averaged across both years.
	require.Len(t, out.Values, 12)
	for _, v := range out.Values {
		assert.InDelta(t, 2.0, v, 1e-9)
	}
}

func TestAggregate_SingleMonth(t *testing.T) {
	out, err := series.Aggregate(twoYears(), domain.AggJAN, domain.ModeExtract)
	require.NoError(t, err)

	require.Len(t, out.Values, 2)
	assert.InDelta(t, 1.0, out.Values[0], 1e-9)
	assert.InDelta(t, 3.0, out.Values[1], 1e-9)
	assert.Equal(t, time.January, out.Axis.Times[0].Month())
}

func TestAggregate_DJFCrossesYearBoundary(t *testing.T) {
	// Dec 2020 + Jan/Feb 2021 form the DJF season of 2021.
	v := monthly("tas", time.Date(2020, 12, 15, 0, 0, 0, 0, time.UTC), 3, 6, 9)

	out, err := series.Aggregate(v, domain.AggDJF, domain.ModeExtract)
	require.NoError(t, err)

	require.Len(t, out.Values, 1)
	assert.InDelta(t, 6.0, out.Values[0], 1e-9)
}

func TestAggregate_SeasonalCycleGroupsFourSeasons(t *testing.T) {
	v := twoYears()

	out, err := series.Aggregate(v, domain.AggSeasonalCycle, domain.ModeClimatology)
	require.NoError(t, err)

	assert.Len(t, out.Values, 4)
}

func TestAggregate_NoMatchingSamples(t *testing.T) {
	// A series with only March data has no JAN bucket.
	v := monthly("tas", time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC), 1)

	_, err := series.Aggregate(v, domain.AggJAN, domain.ModeExtract)
	assert.ErrorIs(t, err, series.ErrNoSamples)
}

func TestAggregate_AxisMismatch(t *testing.T) {
	v := domain.Variable{
		ID:     "tas",
		Values: []float64{1, 2},
		Axis:   domain.Axis{Times: []time.Time{time.Now()}},
	}
	_, err := series.Aggregate(v, domain.AggAnnual, domain.ModeExtract)
	assert.ErrorIs(t, err, series.ErrAxisMismatch)
}

func TestFuncName(t *testing.T) {
	tests := []struct {
		agg  domain.Aggregation
		mode domain.Mode
		want string
	}{
		{domain.AggAnnual, domain.ModeExtract, "times.YEAR"},
		{domain.AggSeasonalCycle, domain.ModeClimatology, "times.SEASONALCYCLE.climatology"},
		{domain.AggAnnualCycle, domain.ModeDepartures, "times.ANNUALCYCLE.departures"},
		{domain.AggDJF, domain.ModeExtract, "times.DJF"},
		{domain.AggJAN, domain.ModeClimatology, "times.JAN.climatology"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, series.FuncName(tt.agg, tt.mode))
	}
}
