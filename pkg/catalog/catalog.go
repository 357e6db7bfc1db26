package catalog

import (
	"fmt"
	"sort"

	"github.com/meridian-tools/meridian/pkg/domain"
)

// Menu is one level of the action tree: a title, the actions it
// offers, and nested submenus.
type Menu struct {
	Title    string                    `json:"title"`
	Actions  []domain.ActionDescriptor `json:"actions,omitempty"`
	Submenus []Menu                    `json:"submenus,omitempty"`
}

// Catalog is the full action tree plus an OpID index. It is immutable
// after New; lookups are safe for concurrent use.
type Catalog struct {
	menus []Menu
	byOp  map[domain.OpID]domain.ActionDescriptor
}

// New builds the fixed Meridian catalog and validates its invariants:
// unique labels per menu, unique OpIDs globally, NArgsMin <= NArgsMax.
func New() (*Catalog, error) {
	menus := buildMenus()

	c := &Catalog{
		menus: menus,
		byOp:  make(map[domain.OpID]domain.ActionDescriptor),
	}
	for _, m := range menus {
		if err := c.index(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) index(m Menu) error {
	seen := make(map[string]bool, len(m.Actions))
	for _, a := range m.Actions {
		if seen[a.Label] {
			return fmt.Errorf("menu %q: duplicate label %q", m.Title, a.Label)
		}
		seen[a.Label] = true

		if a.NArgsMin > a.NArgsMax {
			return fmt.Errorf("action %q: nargs min %d > max %d", a.Label, a.NArgsMin, a.NArgsMax)
		}
		if _, dup := c.byOp[a.Op]; dup {
			return fmt.Errorf("duplicate op %q", a.Op)
		}
		c.byOp[a.Op] = a
	}
	for _, sub := range m.Submenus {
		if err := c.index(sub); err != nil {
			return err
		}
	}
	return nil
}

// Menus returns the action tree for presentation.
func (c *Catalog) Menus() []Menu {
	return c.menus
}

// Resolve returns the descriptor for an OpID, or ErrUnknownAction.
func (c *Catalog) Resolve(op domain.OpID) (domain.ActionDescriptor, error) {
	desc, ok := c.byOp[op]
	if !ok {
		return domain.ActionDescriptor{}, fmt.Errorf("%w: %q", domain.ErrUnknownAction, op)
	}
	return desc, nil
}

// Ops returns every OpID in the catalog, sorted, for introspection.
func (c *Catalog) Ops() []domain.OpID {
	ops := make([]domain.OpID, 0, len(c.byOp))
	for op := range c.byOp {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

func buildMenus() []Menu {
	timeTools := Menu{
		Title: "Time Tools",
		Submenus: []Menu{
			boundsMenu(),
			seasonMenu(domain.ModeExtract),
			seasonMenu(domain.ModeClimatology),
			seasonMenu(domain.ModeDepartures),
		},
	}
	return []Menu{timeTools, statsMenu()}
}

func boundsMenu() Menu {
	return Menu{
		Title: "Bounds Set",
		Actions: []domain.ActionDescriptor{
			{Op: domain.OpBoundsYearly, Label: "Set Bounds For Yearly Data", Kind: domain.ActionBounds},
			{Op: domain.OpBoundsMonthly, Label: "Set Bounds For Monthly Data", Kind: domain.ActionBounds},
			{Op: domain.OpBoundsDaily, Label: "Set Bounds For Daily Data", Kind: domain.ActionBounds, Freq: 1},
			{Op: domain.OpBoundsTwiceDaily, Label: "Set Bounds For Twice-daily Data", Kind: domain.ActionBounds, Freq: 2},
			{Op: domain.OpBoundsSixHourly, Label: "Set Bounds For 6-Hourly Data", Kind: domain.ActionBounds, Freq: 4},
			{Op: domain.OpBoundsHourly, Label: "Set Bounds For Hourly Data", Kind: domain.ActionBounds, Freq: 24},
			{Op: domain.OpBoundsXDaily, Label: "Set Bounds For X-Daily Data", Kind: domain.ActionBounds, PromptFreq: true},
		},
	}
}

// seasonLabels pairs every aggregation with its display label, in menu
// order.
var seasonLabels = []struct {
	Label string
	Agg   domain.Aggregation
}{
	{"Annual Means", domain.AggAnnual},
	{"Seasonal Means", domain.AggSeasonalCycle},
	{"DJF", domain.AggDJF},
	{"MAM", domain.AggMAM},
	{"JJA", domain.AggJJA},
	{"SON", domain.AggSON},
	{"Monthly Means", domain.AggAnnualCycle},
	{"JAN", domain.AggJAN},
	{"FEB", domain.AggFEB},
	{"MAR", domain.AggMAR},
	{"APR", domain.AggAPR},
	{"MAY", domain.AggMAY},
	{"JUN", domain.AggJUN},
	{"JUL", domain.AggJUL},
	{"AUG", domain.AggAUG},
	{"SEP", domain.AggSEP},
	{"OCT", domain.AggOCT},
	{"NOV", domain.AggNOV},
	{"DEC", domain.AggDEC},
}

func seasonMenu(mode domain.Mode) Menu {
	m := Menu{Title: string(mode)}
	for _, s := range seasonLabels {
		m.Actions = append(m.Actions, domain.ActionDescriptor{
			Op:    domain.SeasonOp(mode, s.Agg),
			Label: s.Label,
			Kind:  domain.ActionSeason,
			Agg:   s.Agg,
			Mode:  mode,
		})
	}
	return m
}

// statChoices is shorthand for the common moment-statistic choice set.
func statChoices(names ...string) []domain.Choice {
	out := make([]domain.Choice, len(names))
	for i, n := range names {
		out[i] = domain.Choice{Name: n}
	}
	return out
}

func statsMenu() Menu {
	lagChoice := domain.Choice{Name: "lag"}
	errChoice := domain.Choice{Name: "error", Values: []string{"0", "1", "2", "3"}}

	actions := []domain.ActionDescriptor{
		{Stat: domain.StatMean, Label: "Mean", NArgsMin: 1, NArgsMax: 2},
		{Stat: domain.StatVariance, Label: "Variance", NArgsMin: 1, NArgsMax: 2,
			Choices: statChoices("centered", "biased", "max_pct_missing")},
		{Stat: domain.StatStd, Label: "Standard Deviation", NArgsMin: 1, NArgsMax: 2,
			Choices: statChoices("centered", "biased", "max_pct_missing")},
		{Stat: domain.StatRMS, Label: "Root Mean Square", NArgsMin: 2, NArgsMax: 3,
			Choices: statChoices("centered", "biased", "max_pct_missing")},
		{Stat: domain.StatCorrelation, Label: "Correlation", NArgsMin: 2, NArgsMax: 3,
			Choices: statChoices("centered", "biased", "max_pct_missing")},
		{Stat: domain.StatLaggedCorr, Label: "Lagged Correlation", NArgsMin: 2, NArgsMax: 2,
			Choices: append(statChoices("centered", "partial", "biased", "noloop"), lagChoice)},
		{Stat: domain.StatCovariance, Label: "Covariance", NArgsMin: 2, NArgsMax: 3,
			Choices: statChoices("centered", "biased", "max_pct_missing")},
		{Stat: domain.StatLaggedCov, Label: "Lagged Covariance", NArgsMin: 2, NArgsMax: 2,
			Choices: append(statChoices("centered", "partial", "noloop"), lagChoice)},
		{Stat: domain.StatAutocorrelation, Label: "Autocorrelation", NArgsMin: 1, NArgsMax: 1,
			Choices: append(statChoices("centered", "partial", "biased", "noloop"), lagChoice)},
		{Stat: domain.StatAutocovariance, Label: "Autocovariance", NArgsMin: 1, NArgsMax: 1,
			Choices: append(statChoices("centered", "partial", "noloop"), lagChoice)},
		{Stat: domain.StatMeanAbsDiff, Label: "Mean Absolute Difference", NArgsMin: 2, NArgsMax: 3,
			Choices: statChoices("centered")},
		{Stat: domain.StatLinearReg, Label: "Linear Regression", NArgsMin: 1, NArgsMax: 2,
			Choices: append(statChoices("probability", "nointercept", "noslope"), errChoice)},
		{Stat: domain.StatGeometricMean, Label: "Geometric Mean", NArgsMin: 1, NArgsMax: 1},
		{Stat: domain.StatMedian, Label: "Median", NArgsMin: 1, NArgsMax: 1},
		{Stat: domain.StatRank, Label: "Rank (in %)", NArgsMin: 1, NArgsMax: 1},
		{Stat: domain.StatPercentiles, Label: "Percentiles", NArgsMin: 1, NArgsMax: 1,
			Choices: statChoices("percentiles")},
	}

	// The statistics menu is presented sorted by label, like the
	// original descriptor table.
	sort.Slice(actions, func(i, j int) bool { return actions[i].Label < actions[j].Label })

	m := Menu{Title: "Statistics"}
	for _, a := range actions {
		a.Op = domain.StatOp(a.Stat)
		a.Kind = domain.ActionStatistic
		m.Actions = append(m.Actions, a)
	}
	return m
}
