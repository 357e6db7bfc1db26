package domain

// OpID is the enumerated identifier of a catalog action. Dispatch is
// keyed by OpID; the display label is presentation only.
type OpID string

// Time-bounds operations.
const (
	OpBoundsYearly     OpID = "bounds.yearly"
	OpBoundsMonthly    OpID = "bounds.monthly"
	OpBoundsDaily      OpID = "bounds.daily"
	OpBoundsTwiceDaily OpID = "bounds.twice-daily"
	OpBoundsSixHourly  OpID = "bounds.6-hourly"
	OpBoundsHourly     OpID = "bounds.hourly"
	OpBoundsXDaily     OpID = "bounds.x-daily"
)

// ActionKind distinguishes the three families of catalog actions.
type ActionKind string

const (
	ActionBounds    ActionKind = "bounds"
	ActionSeason    ActionKind = "season"
	ActionStatistic ActionKind = "statistic"
)

// Aggregation selects the time-aggregation function of a season action.
type Aggregation string

const (
	AggAnnual        Aggregation = "annualmeans"
	AggSeasonalCycle Aggregation = "seasonalmeans"
	AggAnnualCycle   Aggregation = "monthlymeans"
	AggDJF           Aggregation = "djf"
	AggMAM           Aggregation = "mam"
	AggJJA           Aggregation = "jja"
	AggSON           Aggregation = "son"
	AggJAN           Aggregation = "jan"
	AggFEB           Aggregation = "feb"
	AggMAR           Aggregation = "mar"
	AggAPR           Aggregation = "apr"
	AggMAY           Aggregation = "may"
	AggJUN           Aggregation = "jun"
	AggJUL           Aggregation = "jul"
	AggAUG           Aggregation = "aug"
	AggSEP           Aggregation = "sep"
	AggOCT           Aggregation = "oct"
	AggNOV           Aggregation = "nov"
	AggDEC           Aggregation = "dec"
)

// Mode selects the transform applied on top of an Aggregation.
type Mode string

const (
	ModeExtract     Mode = "Extract"
	ModeClimatology Mode = "Climatology"
	ModeDepartures  Mode = "Departures"
)

// StatID identifies one of the statistical operations.
type StatID string

const (
	StatMean            StatID = "mean"
	StatVariance        StatID = "variance"
	StatStd             StatID = "std"
	StatRMS             StatID = "rms"
	StatCorrelation     StatID = "correlation"
	StatLaggedCorr      StatID = "laggedcorrelation"
	StatCovariance      StatID = "covariance"
	StatLaggedCov       StatID = "laggedcovariance"
	StatAutocorrelation StatID = "autocorrelation"
	StatAutocovariance  StatID = "autocovariance"
	StatMeanAbsDiff     StatID = "meanabsdiff"
	StatLinearReg       StatID = "linearregression"
	StatGeometricMean   StatID = "geometricmean"
	StatMedian          StatID = "median"
	StatRank            StatID = "rank"
	StatPercentiles     StatID = "percentiles"
)

// Choice is an optional named parameter of a statistic. An empty
// Values slice means a boolean flag; otherwise the value must be one
// of Values.
type Choice struct {
	Name   string   `json:"name"`
	Values []string `json:"values,omitempty"`
}

// ActionDescriptor maps one catalog entry to an operation. Labels are
// unique within a menu and NArgsMin <= NArgsMax always holds; the
// catalog validates both at construction.
type ActionDescriptor struct {
	Op    OpID       `json:"op"`
	Label string     `json:"label"`
	Kind  ActionKind `json:"kind"`

	// Bounds actions: samples per day passed to the setter. Zero for
	// the yearly/monthly setters. X-Daily sets PromptFreq and the
	// frequency is collected at dispatch time.
	Freq       float64 `json:"freq,omitempty"`
	PromptFreq bool    `json:"prompt_freq,omitempty"`

	// Season actions.
	Agg  Aggregation `json:"agg,omitempty"`
	Mode Mode        `json:"mode,omitempty"`

	// Statistic actions.
	Stat     StatID   `json:"stat,omitempty"`
	NArgsMin int      `json:"nargs_min,omitempty"`
	NArgsMax int      `json:"nargs_max,omitempty"`
	Choices  []Choice `json:"choices,omitempty"`
}

// SeasonOp builds the OpID of a season action from its mode and
// aggregation, e.g. "season.Climatology.djf".
func SeasonOp(mode Mode, agg Aggregation) OpID {
	return OpID("season." + string(mode) + "." + string(agg))
}

// StatOp builds the OpID of a statistic action, e.g. "stat.variance".
func StatOp(stat StatID) OpID {
	return OpID("stat." + string(stat))
}
