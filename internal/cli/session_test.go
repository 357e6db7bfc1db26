package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-tools/meridian"
	"github.com/meridian-tools/meridian/pkg/domain"
)

func newTestSession(t *testing.T, input string) (*session, *bytes.Buffer) {
	t.Helper()

	con, err := meridian.New(meridian.WithSessionID("cli-test"))
	require.NoError(t, err)

	times := make([]time.Time, 24)
	values := make([]float64, 24)
	for i := range times {
		times[i] = time.Date(2020, time.Month(i%12+1), 15, 0, 0, 0, 0, time.UTC).AddDate(i/12, 0, 0)
		values[i] = float64(1 + i%4)
	}
	require.NoError(t, con.Pool.Add(context.Background(), domain.Variable{
		ID: "tas", Values: values, Axis: domain.Axis{Times: times},
	}))

	var out bytes.Buffer
	s := &session{
		con:    con,
		in:     bufio.NewReader(strings.NewReader(input)),
		out:    &out,
		render: func(markdown string) (string, error) { return markdown, nil },
	}
	return s, &out
}

func TestSessionLoop_ExitAndUnknown(t *testing.T) {
	s, out := newTestSession(t, "bogus\nexit\n")
	require.NoError(t, s.loop(context.Background()))

	assert.Contains(t, out.String(), `Unknown command "bogus"`)
	assert.Contains(t, out.String(), "Bye!")
}

func TestSessionLoop_EOFEndsSession(t *testing.T) {
	s, _ := newTestSession(t, "vars\n")
	require.NoError(t, s.loop(context.Background()))
}

func TestSessionLoop_MenuListsCatalog(t *testing.T) {
	s, out := newTestSession(t, "menu\nexit\n")
	require.NoError(t, s.loop(context.Background()))

	assert.Contains(t, out.String(), "Time Tools")
	assert.Contains(t, out.String(), "Statistics")
	assert.Contains(t, out.String(), "bounds.yearly")
	assert.Contains(t, out.String(), "stat.mean")
}

func TestSessionLoop_VarsListsPool(t *testing.T) {
	s, out := newTestSession(t, "vars\nexit\n")
	require.NoError(t, s.loop(context.Background()))

	assert.Contains(t, out.String(), "tas")
	assert.Contains(t, out.String(), "24 samples")
}

func TestSessionLoop_RunBoundsAndShow(t *testing.T) {
	s, out := newTestSession(t, "run bounds.yearly tas\nshow\nexit\n")
	require.NoError(t, s.loop(context.Background()))

	v, err := s.con.Pool.Get(context.Background(), "tas")
	require.NoError(t, err)
	assert.True(t, v.Axis.HasBounds())
	assert.Contains(t, out.String(), "times.setTimeBoundsYearly(tas)")
}

func TestSessionLoop_RunSeasonPrintsDerived(t *testing.T) {
	s, out := newTestSession(t, "run season.Extract.annualmeans tas\nexit\n")
	require.NoError(t, s.loop(context.Background()))

	assert.Contains(t, out.String(), "Defined: tas_annualmeans")

	_, err := s.con.Pool.Get(context.Background(), "tas_annualmeans")
	require.NoError(t, err)
}

func TestSessionLoop_RunStatisticWithChoices(t *testing.T) {
	// Variance prompts for centered, biased and max_pct_missing; the
	// middle one is filled in, the others skipped.
	s, out := newTestSession(t, "run stat.variance tas\n\ntrue\n\nshow\nexit\n")
	require.NoError(t, s.loop(context.Background()))

	assert.Contains(t, out.String(), "Variance = ")
	assert.Contains(t, out.String(), "biased=true")
}

func TestSessionLoop_RunUnknownOp(t *testing.T) {
	s, out := newTestSession(t, "run bogus.op tas\nexit\n")
	require.NoError(t, s.loop(context.Background()))

	assert.Contains(t, out.String(), "unknown action")
}

func TestSessionLoop_RecordToggle(t *testing.T) {
	s, out := newTestSession(t, "record off\nrun bounds.yearly tas\nshow\nexit\n")
	require.NoError(t, s.loop(context.Background()))

	assert.Contains(t, out.String(), "Recording off.")
	assert.NotContains(t, out.String(), "times.setTimeBoundsYearly(tas)")
}

func TestParseChoiceValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"true", true},
		{"false", false},
		{"3", 3},
		{"0.5", 0.5},
		{"25,50,75", []float64{25, 50, 75}},
		{"whatever", "whatever"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseChoiceValue(tt.raw), "raw %q", tt.raw)
	}
}
