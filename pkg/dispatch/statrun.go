package dispatch

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/meridian-tools/meridian/pkg/domain"
	"github.com/meridian-tools/meridian/pkg/schema"
	"github.com/meridian-tools/meridian/pkg/series"
)

// StatRun is a statistic action awaiting configuration. The front end
// sets choices, then Execute validates and computes.
type StatRun struct {
	Desc      domain.ActionDescriptor
	Selection domain.Selection
	Choices   map[string]any

	d *Dispatcher
}

func (d *Dispatcher) newStatRun(desc domain.ActionDescriptor, sel domain.Selection) *StatRun {
	return &StatRun{
		Desc:      desc,
		Selection: append(domain.Selection(nil), sel...),
		Choices:   make(map[string]any),
		d:         d,
	}
}

// SetChoice records one named choice value.
func (r *StatRun) SetChoice(name string, value any) {
	r.Choices[name] = value
}

// Validate checks the selection size and every choice against the
// descriptor.
func (r *StatRun) Validate() error {
	if err := schema.ValidateArgs(r.Desc, len(r.Selection)); err != nil {
		return err
	}
	return schema.ForAction(r.Desc).Validate(r.Choices)
}

// StatResult is the computed output of a statistic. Scalars come back
// as a single value; lagged statistics and rank come back as a series
// over lags or samples.
type StatResult struct {
	Op     domain.OpID
	Label  string
	Values []float64

	// Regression is set for linear regression only.
	Regression *series.Regression
}

// Scalar returns the single value of a scalar statistic.
func (r StatResult) Scalar() float64 {
	if len(r.Values) == 0 {
		return 0
	}
	return r.Values[0]
}

// Execute validates the run, computes the statistic over the selected
// variables, and records the computation in the transcript.
func (r *StatRun) Execute(ctx context.Context) (StatResult, error) {
	if err := r.Validate(); err != nil {
		return StatResult{}, err
	}
	opts, err := schema.DecodeOptions(r.Choices)
	if err != nil {
		return StatResult{}, err
	}

	vars, err := r.d.pool.Selected(ctx, r.Selection)
	if err != nil {
		return StatResult{}, err
	}

	res := StatResult{Op: r.Desc.Op, Label: r.Desc.Label}
	x := vars[0].Values
	var y []float64
	if len(vars) > 1 {
		y = vars[1].Values
	}

	switch r.Desc.Stat {
	case domain.StatMean:
		res.Values, err = scalar(series.Mean(x))
	case domain.StatVariance:
		res.Values, err = scalar(series.Variance(x, opts))
	case domain.StatStd:
		res.Values, err = scalar(series.Std(x, opts))
	case domain.StatRMS:
		res.Values, err = scalar(series.RMS(x, y, opts))
	case domain.StatCorrelation:
		res.Values, err = scalar(series.Correlation(x, y, opts))
	case domain.StatCovariance:
		res.Values, err = scalar(series.Covariance(x, y, opts))
	case domain.StatLaggedCorr:
		res.Values, err = series.LaggedCorrelation(x, y, opts)
	case domain.StatLaggedCov:
		res.Values, err = series.LaggedCovariance(x, y, opts)
	case domain.StatAutocorrelation:
		res.Values, err = series.Autocorrelation(x, opts)
	case domain.StatAutocovariance:
		res.Values, err = series.Autocovariance(x, opts)
	case domain.StatMeanAbsDiff:
		res.Values, err = scalar(series.MeanAbsDiff(x, y, opts))
	case domain.StatLinearReg:
		indep := y
		if indep == nil {
			indep = indexAxis(len(x))
		}
		var reg series.Regression
		reg, err = series.LinearRegression(indep, x, opts)
		if err == nil {
			res.Regression = &reg
			res.Values = []float64{reg.Slope, reg.Intercept}
		}
	case domain.StatGeometricMean:
		res.Values, err = scalar(series.GeometricMean(x))
	case domain.StatMedian:
		res.Values, err = scalar(series.Median(x))
	case domain.StatRank:
		res.Values, err = series.Rank(x)
	case domain.StatPercentiles:
		ps := opts.Percentiles
		if len(ps) == 0 {
			ps = []float64{50}
		}
		res.Values, err = series.Percentiles(x, ps)
	default:
		return StatResult{}, fmt.Errorf("%w: %s", domain.ErrUnknownAction, r.Desc.Op)
	}
	if err != nil {
		return StatResult{}, fmt.Errorf("failed to compute %s: %w", r.Desc.Label, err)
	}

	if err := r.record(ctx); err != nil {
		return StatResult{}, err
	}
	return res, nil
}

func scalar(v float64, err error) ([]float64, error) {
	if err != nil {
		return nil, err
	}
	return []float64{v}, nil
}

// indexAxis is the implicit independent series of a one-argument
// regression: the sample index.
func indexAxis(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func (r *StatRun) record(ctx context.Context) error {
	if err := r.d.rec.Comment(ctx, "Computing %s", strings.ToLower(r.Desc.Label)); err != nil {
		return err
	}
	return r.d.rec.Record(ctx, "statistics.%s(%s)", string(r.Desc.Stat), strings.Join(r.callArgs(), ", "))
}

// callArgs renders the selection followed by the explicit choices in
// stable order, e.g. ["tas", "pr", "centered=0"].
func (r *StatRun) callArgs() []string {
	args := append([]string{}, r.Selection...)

	names := make([]string, 0, len(r.Choices))
	for name := range r.Choices {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		args = append(args, fmt.Sprintf("%s=%v", name, r.Choices[name]))
	}
	return args
}
