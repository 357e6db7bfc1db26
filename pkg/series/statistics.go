package series

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Statistics errors.
var (
	ErrNoValidSamples = errors.New("no valid samples")
	ErrLengthMismatch = errors.New("series lengths differ")
	ErrBadLag         = errors.New("lag out of range")
	ErrNonPositive    = errors.New("geometric mean requires positive values")
	ErrBadPercentile  = errors.New("percentile outside [0, 100]")
)

// StatOptions carries the named choices of the statistical operations.
// Zero value means: centered moments, unbiased estimators, full
// (non-partial) lag ranges.
type StatOptions struct {
	Centered      bool      `mapstructure:"centered"`
	Biased        bool      `mapstructure:"biased"`
	Partial       bool      `mapstructure:"partial"`
	NoLoop        bool      `mapstructure:"noloop"`
	Lag           int       `mapstructure:"lag"`
	MaxPctMissing float64   `mapstructure:"max_pct_missing"`
	ErrorEstimate int       `mapstructure:"error"`
	Probability   bool      `mapstructure:"probability"`
	NoIntercept   bool      `mapstructure:"nointercept"`
	NoSlope       bool      `mapstructure:"noslope"`
	Percentiles   []float64 `mapstructure:"percentiles"`
}

// DefaultStatOptions mirrors the library defaults of the original
// tool: centered, unbiased.
func DefaultStatOptions() StatOptions {
	return StatOptions{Centered: true}
}

// valid filters out NaN samples.
func valid(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// validPairs keeps only the indices where both series are present.
func validPairs(x, y []float64) ([]float64, []float64, error) {
	if len(x) != len(y) {
		return nil, nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(x), len(y))
	}
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if !math.IsNaN(x[i]) && !math.IsNaN(y[i]) {
			xs = append(xs, x[i])
			ys = append(ys, y[i])
		}
	}
	return xs, ys, nil
}

// checkMissing enforces the max_pct_missing choice: the fraction of
// dropped samples must not exceed the threshold (percent).
func checkMissing(total, kept int, opts StatOptions) error {
	if opts.MaxPctMissing <= 0 || total == 0 {
		return nil
	}
	missing := 100 * float64(total-kept) / float64(total)
	if missing > opts.MaxPctMissing {
		return fmt.Errorf("%w: %.1f%% missing exceeds %.1f%%", ErrNoValidSamples, missing, opts.MaxPctMissing)
	}
	return nil
}

// Mean is the arithmetic mean of the valid samples.
func Mean(x []float64) (float64, error) {
	xs := valid(x)
	if len(xs) == 0 {
		return 0, ErrNoValidSamples
	}
	var sum float64
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs)), nil
}

// Variance computes the (optionally centered, optionally biased)
// variance. Centered subtracts the sample mean first; biased divides
// by n instead of n-1.
func Variance(x []float64, opts StatOptions) (float64, error) {
	xs := valid(x)
	if err := checkMissing(len(x), len(xs), opts); err != nil {
		return 0, err
	}
	n := len(xs)
	if n == 0 || (!opts.Biased && n < 2) {
		return 0, ErrNoValidSamples
	}
	var center float64
	if opts.Centered {
		center, _ = Mean(xs)
	}
	var ss float64
	for _, v := range xs {
		d := v - center
		ss += d * d
	}
	div := float64(n - 1)
	if opts.Biased {
		div = float64(n)
	}
	return ss / div, nil
}

// Std is the square root of Variance.
func Std(x []float64, opts StatOptions) (float64, error) {
	v, err := Variance(x, opts)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// RMS is the root mean square difference between two series.
func RMS(x, y []float64, opts StatOptions) (float64, error) {
	xs, ys, err := validPairs(x, y)
	if err != nil {
		return 0, err
	}
	if err := checkMissing(len(x), len(xs), opts); err != nil {
		return 0, err
	}
	if len(xs) == 0 {
		return 0, ErrNoValidSamples
	}
	var ss float64
	for i := range xs {
		d := xs[i] - ys[i]
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs))), nil
}

// Covariance computes the joint second moment of two series.
func Covariance(x, y []float64, opts StatOptions) (float64, error) {
	xs, ys, err := validPairs(x, y)
	if err != nil {
		return 0, err
	}
	if err := checkMissing(len(x), len(xs), opts); err != nil {
		return 0, err
	}
	n := len(xs)
	if n == 0 || (!opts.Biased && n < 2) {
		return 0, ErrNoValidSamples
	}
	var mx, my float64
	if opts.Centered {
		mx, _ = Mean(xs)
		my, _ = Mean(ys)
	}
	var sum float64
	for i := range xs {
		sum += (xs[i] - mx) * (ys[i] - my)
	}
	div := float64(n - 1)
	if opts.Biased {
		div = float64(n)
	}
	return sum / div, nil
}

// Correlation is the Pearson correlation of two series. All three
// moments are computed over the pairwise-valid samples so that missing
// data cannot skew the normalization.
func Correlation(x, y []float64, opts StatOptions) (float64, error) {
	xs, ys, err := validPairs(x, y)
	if err != nil {
		return 0, err
	}
	cov, err := Covariance(xs, ys, opts)
	if err != nil {
		return 0, err
	}
	sx, err := Std(xs, opts)
	if err != nil {
		return 0, err
	}
	sy, err := Std(ys, opts)
	if err != nil {
		return 0, err
	}
	if sx == 0 || sy == 0 {
		return 0, fmt.Errorf("%w: zero variance", ErrNoValidSamples)
	}
	return cov / (sx * sy), nil
}

// shift aligns x against y delayed by lag steps.
func shift(x, y []float64, lag int) ([]float64, []float64, error) {
	if lag < 0 || lag >= len(x) {
		return nil, nil, fmt.Errorf("%w: %d with %d samples", ErrBadLag, lag, len(x))
	}
	return x[:len(x)-lag], y[lag:], nil
}

// LaggedCorrelation computes correlations for lags 0..opts.Lag. With
// NoLoop set only the single requested lag is computed.
func LaggedCorrelation(x, y []float64, opts StatOptions) ([]float64, error) {
	return laggedSeries(x, y, opts, func(a, b []float64) (float64, error) {
		return Correlation(a, b, opts)
	})
}

// LaggedCovariance computes covariances for lags 0..opts.Lag. With
// NoLoop set only the single requested lag is computed.
func LaggedCovariance(x, y []float64, opts StatOptions) ([]float64, error) {
	return laggedSeries(x, y, opts, func(a, b []float64) (float64, error) {
		return Covariance(a, b, opts)
	})
}

// Autocorrelation is LaggedCorrelation of a series against itself.
func Autocorrelation(x []float64, opts StatOptions) ([]float64, error) {
	return LaggedCorrelation(x, x, opts)
}

// Autocovariance is LaggedCovariance of a series against itself.
func Autocovariance(x []float64, opts StatOptions) ([]float64, error) {
	return LaggedCovariance(x, x, opts)
}

func laggedSeries(x, y []float64, opts StatOptions, f func(a, b []float64) (float64, error)) ([]float64, error) {
	maxLag := opts.Lag
	if maxLag == 0 && !opts.NoLoop {
		// Library convention: an unset lag sweeps the full range.
		maxLag = len(x) - 2
		if maxLag < 0 {
			maxLag = 0
		}
	}
	start := 0
	if opts.NoLoop {
		start = maxLag
	}
	out := make([]float64, 0, maxLag-start+1)
	for lag := start; lag <= maxLag; lag++ {
		a, b, err := shift(x, y, lag)
		if err != nil {
			return nil, err
		}
		v, err := f(a, b)
		if err != nil {
			// Short lags can run out of overlap; record as missing.
			v = math.NaN()
		}
		out = append(out, v)
	}
	return out, nil
}

// MeanAbsDiff is the mean absolute difference between two series.
func MeanAbsDiff(x, y []float64, opts StatOptions) (float64, error) {
	xs, ys, err := validPairs(x, y)
	if err != nil {
		return 0, err
	}
	if err := checkMissing(len(x), len(xs), opts); err != nil {
		return 0, err
	}
	if len(xs) == 0 {
		return 0, ErrNoValidSamples
	}
	var mx, my float64
	if opts.Centered {
		mx, _ = Mean(xs)
		my, _ = Mean(ys)
	}
	var sum float64
	for i := range xs {
		sum += math.Abs((xs[i] - mx) - (ys[i] - my))
	}
	return sum / float64(len(xs)), nil
}

// Regression is the result of LinearRegression.
type Regression struct {
	Slope          float64
	Intercept      float64
	SlopeError     float64
	InterceptError float64
	Probability    float64
}

// LinearRegression fits y = slope*x + intercept by least squares.
// ErrorEstimate > 0 fills the standard errors; Probability fills a
// two-sided p-value for the slope using a normal approximation.
// NoIntercept forces the fit through the origin.
func LinearRegression(x, y []float64, opts StatOptions) (Regression, error) {
	xs, ys, err := validPairs(x, y)
	if err != nil {
		return Regression{}, err
	}
	n := float64(len(xs))
	if len(xs) < 3 {
		return Regression{}, ErrNoValidSamples
	}

	var reg Regression
	if opts.NoIntercept {
		var sxy, sxx float64
		for i := range xs {
			sxy += xs[i] * ys[i]
			sxx += xs[i] * xs[i]
		}
		if sxx == 0 {
			return Regression{}, fmt.Errorf("%w: degenerate x", ErrNoValidSamples)
		}
		reg.Slope = sxy / sxx
	} else {
		mx, _ := Mean(xs)
		my, _ := Mean(ys)
		var sxy, sxx float64
		for i := range xs {
			sxy += (xs[i] - mx) * (ys[i] - my)
			sxx += (xs[i] - mx) * (xs[i] - mx)
		}
		if sxx == 0 {
			return Regression{}, fmt.Errorf("%w: degenerate x", ErrNoValidSamples)
		}
		reg.Slope = sxy / sxx
		reg.Intercept = my - reg.Slope*mx
	}

	// Residual variance for the error estimates.
	var rss, sxx float64
	mx, _ := Mean(xs)
	for i := range xs {
		pred := reg.Slope*xs[i] + reg.Intercept
		rss += (ys[i] - pred) * (ys[i] - pred)
		sxx += (xs[i] - mx) * (xs[i] - mx)
	}
	sigma2 := rss / (n - 2)

	if opts.ErrorEstimate > 0 {
		reg.SlopeError = math.Sqrt(sigma2 / sxx)
		reg.InterceptError = math.Sqrt(sigma2 * (1/n + mx*mx/sxx))
	}
	if opts.Probability {
		se := math.Sqrt(sigma2 / sxx)
		if se > 0 {
			t := math.Abs(reg.Slope / se)
			reg.Probability = math.Erfc(t / math.Sqrt2)
		}
	}
	return reg, nil
}

// GeometricMean is exp of the mean log; every valid sample must be
// positive.
func GeometricMean(x []float64) (float64, error) {
	xs := valid(x)
	if len(xs) == 0 {
		return 0, ErrNoValidSamples
	}
	var sum float64
	for _, v := range xs {
		if v <= 0 {
			return 0, fmt.Errorf("%w: got %g", ErrNonPositive, v)
		}
		sum += math.Log(v)
	}
	return math.Exp(sum / float64(len(xs))), nil
}

// Median returns the 50th percentile.
func Median(x []float64) (float64, error) {
	return Percentile(x, 50)
}

// Percentile computes a single percentile by linear interpolation
// between closest ranks.
func Percentile(x []float64, p float64) (float64, error) {
	if p < 0 || p > 100 {
		return 0, fmt.Errorf("%w: %g", ErrBadPercentile, p)
	}
	xs := valid(x)
	if len(xs) == 0 {
		return 0, ErrNoValidSamples
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	if len(sorted) == 1 {
		return sorted[0], nil
	}
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo], nil
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac, nil
}

// Percentiles evaluates several percentiles at once; a nil request
// defaults to the median.
func Percentiles(x []float64, ps []float64) ([]float64, error) {
	if len(ps) == 0 {
		ps = []float64{50}
	}
	out := make([]float64, len(ps))
	for i, p := range ps {
		v, err := Percentile(x, p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Rank maps each sample to its rank within the series, in percent of
// the value range (0 for the smallest, 100 for the largest). Missing
// samples stay NaN.
func Rank(x []float64) ([]float64, error) {
	xs := valid(x)
	if len(xs) == 0 {
		return nil, ErrNoValidSamples
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	out := make([]float64, len(x))
	for i, v := range x {
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}
		idx := sort.SearchFloat64s(sorted, v)
		if len(sorted) == 1 {
			out[i] = 0
			continue
		}
		out[i] = 100 * float64(idx) / float64(len(sorted)-1)
	}
	return out, nil
}
