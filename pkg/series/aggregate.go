package series

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/meridian-tools/meridian/pkg/domain"
)

// ErrNoSamples is returned when an aggregation selects no samples,
// e.g. extracting JAN from a series that contains no January steps.
var ErrNoSamples = errors.New("aggregation selected no samples")

// ErrAxisMismatch is returned when values and time axis differ in length.
var ErrAxisMismatch = errors.New("values and time axis lengths differ")

// Aggregate computes one derived series: the aggregation picks the
// time buckets (annual, per-season, per-month, or a single season or
// month), the mode picks the transform on top of them:
//
//   - ModeExtract: one mean per bucket occurrence (per year).
//   - ModeClimatology: buckets collapsed across years into the
//     repeating cycle.
//   - ModeDepartures: extract minus the climatological norm of the
//     sample's bucket.
//
// The input is not mutated. The result keeps the input's ID; callers
// that add it to a pool assign the derived identifier.
func Aggregate(v domain.Variable, agg domain.Aggregation, mode domain.Mode) (domain.Variable, error) {
	if len(v.Values) != v.Axis.Len() {
		return domain.Variable{}, fmt.Errorf("%w: %d values, %d times", ErrAxisMismatch, len(v.Values), v.Axis.Len())
	}
	if len(v.Values) == 0 {
		return domain.Variable{}, ErrNoSamples
	}

	groups := bucketize(v, agg)
	if len(groups) == 0 {
		return domain.Variable{}, fmt.Errorf("%w: %s over %q", ErrNoSamples, agg, v.ID)
	}

	switch mode {
	case domain.ModeClimatology:
		return collapse(v, groups), nil
	case domain.ModeDepartures:
		extracted := perOccurrence(v, groups)
		clim := cycleMeans(groups)
		for i, g := range sortedOccurrences(groups) {
			extracted.Values[i] -= clim[g.order]
		}
		return extracted, nil
	default: // ModeExtract
		return perOccurrence(v, groups), nil
	}
}

// occurrence is one bucket instance: a cycle position within one year.
type occurrence struct {
	year  int
	order int
	name  string
	sum   float64
	n     int
	minT  time.Time
	maxT  time.Time
}

func (o *occurrence) add(val float64, t time.Time) {
	if !math.IsNaN(val) {
		o.sum += val
		o.n++
	}
	if o.minT.IsZero() || t.Before(o.minT) {
		o.minT = t
	}
	if t.After(o.maxT) {
		o.maxT = t
	}
}

func (o *occurrence) mean() float64 {
	if o.n == 0 {
		return math.NaN()
	}
	return o.sum / float64(o.n)
}

type occKey struct {
	year  int
	order int
}

func bucketize(v domain.Variable, agg domain.Aggregation) map[occKey]*occurrence {
	groups := make(map[occKey]*occurrence)
	for i, t := range v.Axis.Times {
		name, order, year, ok := classify(agg, t)
		if !ok {
			continue
		}
		key := occKey{year: year, order: order}
		occ, exists := groups[key]
		if !exists {
			occ = &occurrence{year: year, order: order, name: name}
			groups[key] = occ
		}
		occ.add(v.Values[i], t)
	}
	return groups
}

// classify maps a sample time to its bucket under the aggregation.
// Seasons are anchored on the year they end in: December counts
// toward the following year's DJF.
func classify(agg domain.Aggregation, t time.Time) (name string, order int, year int, ok bool) {
	month := t.Month()
	switch agg {
	case domain.AggAnnual:
		return "annual", 0, t.Year(), true
	case domain.AggSeasonalCycle:
		name, order = seasonOf(month)
		year = t.Year()
		if month == time.December {
			year++
		}
		return name, order, year, true
	case domain.AggAnnualCycle:
		return monthName(month), int(month), t.Year(), true
	case domain.AggDJF, domain.AggMAM, domain.AggJJA, domain.AggSON:
		name, order = seasonOf(month)
		if name != string(agg) {
			return "", 0, 0, false
		}
		year = t.Year()
		if month == time.December {
			year++
		}
		return name, order, year, true
	default:
		// Single-month aggregations.
		if monthName(month) != string(agg) {
			return "", 0, 0, false
		}
		return monthName(month), int(month), t.Year(), true
	}
}

func seasonOf(m time.Month) (string, int) {
	switch m {
	case time.December, time.January, time.February:
		return "djf", 0
	case time.March, time.April, time.May:
		return "mam", 1
	case time.June, time.July, time.August:
		return "jja", 2
	default:
		return "son", 3
	}
}

func monthName(m time.Month) string {
	names := [...]string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}
	return names[int(m)-1]
}

func sortedOccurrences(groups map[occKey]*occurrence) []*occurrence {
	occs := make([]*occurrence, 0, len(groups))
	for _, occ := range groups {
		occs = append(occs, occ)
	}
	sort.Slice(occs, func(i, j int) bool {
		if occs[i].year != occs[j].year {
			return occs[i].year < occs[j].year
		}
		return occs[i].order < occs[j].order
	})
	return occs
}

// perOccurrence produces one value per bucket occurrence, in
// chronological order. The output time is the midpoint of the samples
// that fed the bucket.
func perOccurrence(v domain.Variable, groups map[occKey]*occurrence) domain.Variable {
	occs := sortedOccurrences(groups)
	out := derived(v, len(occs))
	for i, occ := range occs {
		out.Values[i] = occ.mean()
		out.Axis.Times[i] = midpoint(occ.minT, occ.maxT)
		out.Axis.Bounds[i] = domain.Bound{Start: occ.minT, End: occ.maxT}
	}
	return out
}

// collapse produces the repeating cycle: one value per cycle position,
// averaged across all years.
func collapse(v domain.Variable, groups map[occKey]*occurrence) domain.Variable {
	means := cycleMeans(groups)
	orders := make([]int, 0, len(means))
	for order := range means {
		orders = append(orders, order)
	}
	sort.Ints(orders)

	// Earliest sample time per cycle position, for a representative axis.
	first := make(map[int]*occurrence)
	for _, occ := range sortedOccurrences(groups) {
		if _, ok := first[occ.order]; !ok {
			first[occ.order] = occ
		}
	}

	out := derived(v, len(orders))
	for i, order := range orders {
		out.Values[i] = means[order]
		occ := first[order]
		out.Axis.Times[i] = midpoint(occ.minT, occ.maxT)
		out.Axis.Bounds[i] = domain.Bound{Start: occ.minT, End: occ.maxT}
	}
	return out
}

// cycleMeans averages every occurrence of a cycle position across
// years, weighting each sample equally.
func cycleMeans(groups map[occKey]*occurrence) map[int]float64 {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, occ := range groups {
		if occ.n == 0 {
			continue
		}
		sums[occ.order] += occ.sum
		counts[occ.order] += occ.n
	}
	means := make(map[int]float64, len(sums))
	for order, sum := range sums {
		means[order] = sum / float64(counts[order])
	}
	return means
}

func derived(v domain.Variable, n int) domain.Variable {
	out := domain.Variable{
		ID:     v.ID,
		Units:  v.Units,
		Values: make([]float64, n),
		Axis: domain.Axis{
			Times:  make([]time.Time, n),
			Bounds: make([]domain.Bound, n),
		},
	}
	if v.Attrs != nil {
		out.Attrs = make(map[string]string, len(v.Attrs))
		for k, val := range v.Attrs {
			out.Attrs[k] = val
		}
	}
	return out
}

func midpoint(a, b time.Time) time.Time {
	if b.Before(a) {
		return a
	}
	return a.Add(b.Sub(a) / 2)
}

// FuncName returns the replay-script name of an aggregation/mode pair,
// e.g. "times.SEASONALCYCLE.climatology". Transcript call lines use it.
func FuncName(agg domain.Aggregation, mode domain.Mode) string {
	var base string
	switch agg {
	case domain.AggAnnual:
		base = "times.YEAR"
	case domain.AggSeasonalCycle:
		base = "times.SEASONALCYCLE"
	case domain.AggAnnualCycle:
		base = "times.ANNUALCYCLE"
	default:
		base = "times." + strings.ToUpper(string(agg))
	}
	switch mode {
	case domain.ModeClimatology:
		return base + ".climatology"
	case domain.ModeDepartures:
		return base + ".departures"
	default:
		return base
	}
}
