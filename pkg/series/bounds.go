package series

import (
	"errors"
	"fmt"
	"time"

	"github.com/meridian-tools/meridian/pkg/domain"
)

// ErrEmptyAxis is returned when a bounds setter runs on a variable
// without time samples.
var ErrEmptyAxis = errors.New("variable has an empty time axis")

// ErrBadFrequency is returned for a non-positive samples-per-day value.
var ErrBadFrequency = errors.New("frequency must be positive")

// SetBoundsYearly attaches calendar-year bounds to every time step:
// January 1st of the sample's year through January 1st of the next.
func SetBoundsYearly(v *domain.Variable) error {
	if v.Axis.Len() == 0 {
		return ErrEmptyAxis
	}
	bounds := make([]domain.Bound, v.Axis.Len())
	for i, t := range v.Axis.Times {
		start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
		bounds[i] = domain.Bound{Start: start, End: start.AddDate(1, 0, 0)}
	}
	v.Axis.Bounds = bounds
	return nil
}

// SetBoundsMonthly attaches calendar-month bounds to every time step.
func SetBoundsMonthly(v *domain.Variable) error {
	if v.Axis.Len() == 0 {
		return ErrEmptyAxis
	}
	bounds := make([]domain.Bound, v.Axis.Len())
	for i, t := range v.Axis.Times {
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		bounds[i] = domain.Bound{Start: start, End: start.AddDate(0, 1, 0)}
	}
	v.Axis.Bounds = bounds
	return nil
}

// SetBoundsDaily attaches sub-daily bounds, freq samples per day.
// freq 1 gives whole-day bounds, 2 twice-daily, 4 six-hourly, 24
// hourly. Fractional frequencies below one span multiple days.
func SetBoundsDaily(v *domain.Variable, freq float64) error {
	if v.Axis.Len() == 0 {
		return ErrEmptyAxis
	}
	if freq <= 0 {
		return fmt.Errorf("%w: got %g", ErrBadFrequency, freq)
	}
	step := time.Duration(float64(24*time.Hour) / freq)
	bounds := make([]domain.Bound, v.Axis.Len())
	for i, t := range v.Axis.Times {
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		slot := 0
		if step > 0 && step < 24*time.Hour {
			slot = int(t.Sub(day) / step)
		}
		start := day.Add(step * time.Duration(slot))
		bounds[i] = domain.Bound{Start: start, End: start.Add(step)}
	}
	v.Axis.Bounds = bounds
	return nil
}
