package dispatch_test

import (
	"context"
	"testing"
	"time"

	"github.com/meridian-tools/meridian/pkg/adapters/memory"
	"github.com/meridian-tools/meridian/pkg/catalog"
	"github.com/meridian-tools/meridian/pkg/dispatch"
	"github.com/meridian-tools/meridian/pkg/domain"
	"github.com/meridian-tools/meridian/pkg/pool"
	"github.com/meridian-tools/meridian/pkg/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePrompter answers every PromptFloat with a fixed response.
type fakePrompter struct {
	value float64
	ok    bool
	calls int
}

func (p *fakePrompter) PromptFloat(ctx context.Context, title, label string) (float64, bool, error) {
	p.calls++
	return p.value, p.ok, nil
}

type fixture struct {
	pool *pool.Pool
	rec  *transcript.Recorder
	d    *dispatch.Dispatcher
}

func setup(t *testing.T, opts ...dispatch.Option) *fixture {
	t.Helper()

	cat, err := catalog.New()
	require.NoError(t, err)

	p := pool.New(memory.NewVariableStore())
	rec := transcript.NewRecorder(memory.NewTranscriptStore(), "test")
	return &fixture{
		pool: p,
		rec:  rec,
		d:    dispatch.New(cat, p, rec, opts...),
	}
}

// monthly builds a variable with one sample per month starting January
// 2020.
func monthly(id string, values ...float64) domain.Variable {
	times := make([]time.Time, len(values))
	for i := range values {
		times[i] = time.Date(2020, time.Month(i%12+1), 15, 0, 0, 0, 0, time.UTC).AddDate(i/12, 0, 0)
	}
	return domain.Variable{ID: id, Values: values, Axis: domain.Axis{Times: times}}
}

func twoYears(id string) domain.Variable {
	values := make([]float64, 24)
	for i := range values {
		values[i] = 1.0
		if i >= 12 {
			values[i] = 3.0
		}
	}
	return monthly(id, values...)
}

func TestDispatch_UnknownOp(t *testing.T) {
	f := setup(t)

	_, err := f.d.Dispatch(context.Background(), "bogus.op", domain.Selection{"tas"})
	assert.ErrorIs(t, err, domain.ErrUnknownAction)
}

func TestDispatch_EmptySelection(t *testing.T) {
	f := setup(t)

	_, err := f.d.Dispatch(context.Background(), domain.OpBoundsYearly, nil)
	assert.ErrorIs(t, err, domain.ErrEmptySelection)
}

func TestDispatch_BoundsYearly(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	require.NoError(t, f.pool.Add(ctx, monthly("tas", 1, 2, 3)))
	require.NoError(t, f.pool.Add(ctx, monthly("pr", 4, 5, 6)))

	res, err := f.d.Dispatch(ctx, domain.OpBoundsYearly, domain.Selection{"tas", "pr"})
	require.NoError(t, err)
	assert.False(t, res.Aborted)

	for _, id := range []string{"tas", "pr"} {
		v, err := f.pool.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, v.Axis.HasBounds(), "%s must carry bounds", id)
		assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), v.Axis.Bounds[0].Start)
		assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), v.Axis.Bounds[0].End)
	}

	entries, err := f.rec.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3, "one header plus one call line per variable")
	assert.True(t, entries[0].Comment)
	assert.Equal(t, "Set Bounds For Yearly Data", entries[0].Text)
	assert.Equal(t, "times.setTimeBoundsYearly(tas)", entries[1].Text)
	assert.Equal(t, "times.setTimeBoundsYearly(pr)", entries[2].Text)
}

func TestDispatch_BoundsDailyFrequencies(t *testing.T) {
	tests := []struct {
		op   domain.OpID
		call string
	}{
		{domain.OpBoundsDaily, "times.setTimeBoundsDaily(tas,1)"},
		{domain.OpBoundsTwiceDaily, "times.setTimeBoundsDaily(tas,2)"},
		{domain.OpBoundsSixHourly, "times.setTimeBoundsDaily(tas,4)"},
		{domain.OpBoundsHourly, "times.setTimeBoundsDaily(tas,24)"},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			ctx := context.Background()
			f := setup(t)
			v := domain.Variable{
				ID:     "tas",
				Values: []float64{1, 2},
				Axis: domain.Axis{Times: []time.Time{
					time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
					time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC),
				}},
			}
			require.NoError(t, f.pool.Add(ctx, v))

			_, err := f.d.Dispatch(ctx, tt.op, domain.Selection{"tas"})
			require.NoError(t, err)

			entries, err := f.rec.Entries(ctx)
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, tt.call, entries[1].Text)
		})
	}
}

func TestDispatch_XDailyPromptAccepted(t *testing.T) {
	ctx := context.Background()
	prompt := &fakePrompter{value: 8, ok: true}
	f := setup(t, dispatch.WithPrompter(prompt))
	require.NoError(t, f.pool.Add(ctx, monthly("tas", 1, 2)))

	res, err := f.d.Dispatch(ctx, domain.OpBoundsXDaily, domain.Selection{"tas"})
	require.NoError(t, err)
	assert.False(t, res.Aborted)
	assert.Equal(t, 1, prompt.calls)

	entries, err := f.rec.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "times.setTimeBoundsDaily(tas,8)", entries[1].Text)
}

func TestDispatch_XDailyAbortsSilently(t *testing.T) {
	tests := []struct {
		name   string
		prompt *fakePrompter
	}{
		{"cancelled", &fakePrompter{value: 8, ok: false}},
		{"zero", &fakePrompter{value: 0, ok: true}},
		{"negative", &fakePrompter{value: -2, ok: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := setup(t, dispatch.WithPrompter(tt.prompt))
			before := monthly("tas", 1, 2)
			require.NoError(t, f.pool.Add(ctx, before))

			res, err := f.d.Dispatch(ctx, domain.OpBoundsXDaily, domain.Selection{"tas"})
			require.NoError(t, err)
			assert.True(t, res.Aborted)

			v, err := f.pool.Get(ctx, "tas")
			require.NoError(t, err)
			assert.False(t, v.Axis.HasBounds(), "aborted prompt must not touch the variable")

			entries, err := f.rec.Entries(ctx)
			require.NoError(t, err)
			assert.Empty(t, entries, "aborted prompt must record nothing")
		})
	}
}

func TestDispatch_SeasonExtract(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	require.NoError(t, f.pool.Add(ctx, twoYears("tas")))

	res, err := f.d.Dispatch(ctx, domain.SeasonOp(domain.ModeExtract, domain.AggAnnual), domain.Selection{"tas"})
	require.NoError(t, err)
	require.Equal(t, []string{"tas_annualmeans"}, res.Derived)

	v, err := f.pool.Get(ctx, "tas_annualmeans")
	require.NoError(t, err)
	require.Len(t, v.Values, 2)
	assert.InDelta(t, 1.0, v.Values[0], 1e-9)
	assert.InDelta(t, 3.0, v.Values[1], 1e-9)

	entries, err := f.rec.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Computing annual means", entries[0].Text)
	assert.Equal(t, "tas_annualmeans = times.YEAR(tas)", entries[1].Text)
}

func TestDispatch_SeasonModeNaming(t *testing.T) {
	tests := []struct {
		mode    domain.Mode
		agg     domain.Aggregation
		derived string
		header  string
		call    string
	}{
		{domain.ModeExtract, domain.AggDJF, "tas_djf",
			"Computing djf", "tas_djf = times.DJF(tas)"},
		{domain.ModeClimatology, domain.AggAnnualCycle, "tas_monthlymeansclimatology",
			"Computing climatological monthly means", "tas_monthlymeansclimatology = times.ANNUALCYCLE.climatology(tas)"},
		{domain.ModeDepartures, domain.AggSeasonalCycle, "tas_seasonalmeansdepartures",
			"Computing departures from seasonal means", "tas_seasonalmeansdepartures = times.SEASONALCYCLE.departures(tas)"},
		{domain.ModeDepartures, domain.AggAnnual, "tas_annualmeansdepartures",
			"Computing departures from annual means", "tas_annualmeansdepartures = times.YEAR.departures(tas)"},
	}

	for _, tt := range tests {
		t.Run(tt.derived, func(t *testing.T) {
			ctx := context.Background()
			f := setup(t)
			require.NoError(t, f.pool.Add(ctx, twoYears("tas")))

			res, err := f.d.Dispatch(ctx, domain.SeasonOp(tt.mode, tt.agg), domain.Selection{"tas"})
			require.NoError(t, err)
			require.Equal(t, []string{tt.derived}, res.Derived)

			_, err = f.pool.Get(ctx, tt.derived)
			assert.NoError(t, err)

			entries, err := f.rec.Entries(ctx)
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, tt.header, entries[0].Text)
			assert.Equal(t, tt.call, entries[1].Text)
		})
	}
}

func TestDispatch_SeasonKeepsEarlierDerivedOnFailure(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	require.NoError(t, f.pool.Add(ctx, twoYears("tas")))

	_, err := f.d.Dispatch(ctx, domain.SeasonOp(domain.ModeExtract, domain.AggAnnual), domain.Selection{"tas", "absent"})
	require.ErrorIs(t, err, domain.ErrVariableNotFound)

	_, err = f.pool.Get(ctx, "tas_annualmeans")
	assert.NoError(t, err, "the variable derived before the failure stays in the pool")
}

func TestBackground_CompletesAndReportsResult(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	require.NoError(t, f.pool.Add(ctx, twoYears("tas")))

	task := f.d.Background(ctx, domain.SeasonOp(domain.ModeExtract, domain.AggAnnual), domain.Selection{"tas"})

	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("background task did not finish")
	}

	res, err := task.Wait()
	require.NoError(t, err)
	assert.Equal(t, []string{"tas_annualmeans"}, res.Derived)
}

func TestBackground_CancelIsSafe(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	require.NoError(t, f.pool.Add(ctx, twoYears("tas")))

	task := f.d.Background(ctx, domain.SeasonOp(domain.ModeExtract, domain.AggAnnual), domain.Selection{"tas"})
	task.Cancel()
	task.Cancel()

	// Either outcome is fine; the task must terminate.
	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled task did not finish")
	}
}
