package domain

import "time"

// Variable is a named time series over an explicit time axis.
// Values and Axis.Times are index-aligned. Missing samples are NaN.
type Variable struct {
	ID     string            `json:"id"`
	Values []float64         `json:"values"`
	Axis   Axis              `json:"axis"`
	Units  string            `json:"units,omitempty"`
	Attrs  map[string]string `json:"attrs,omitempty"`
}

// Axis is the time dimension of a Variable. Bounds, when present,
// carry one explicit interval per sample; some aggregations refuse to
// run without them.
type Axis struct {
	Times  []time.Time `json:"times"`
	Bounds []Bound     `json:"bounds,omitempty"`
}

// Bound marks the interval a single time step represents.
type Bound struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Len returns the number of samples on the axis.
func (a Axis) Len() int { return len(a.Times) }

// HasBounds reports whether every sample carries an explicit bound.
func (a Axis) HasBounds() bool {
	return len(a.Bounds) == len(a.Times) && len(a.Bounds) > 0
}

// Clone returns a deep copy so callers can derive new variables
// without aliasing the pool's backing slices.
func (v Variable) Clone() Variable {
	out := v
	out.Values = append([]float64(nil), v.Values...)
	out.Axis.Times = append([]time.Time(nil), v.Axis.Times...)
	if v.Axis.Bounds != nil {
		out.Axis.Bounds = append([]Bound(nil), v.Axis.Bounds...)
	}
	if v.Attrs != nil {
		out.Attrs = make(map[string]string, len(v.Attrs))
		for k, val := range v.Attrs {
			out.Attrs[k] = val
		}
	}
	return out
}

// Selection is a read-only ordered view of the variable IDs an
// invocation operates over. The pool owns the variables; the
// dispatcher only borrows them for the duration of one call.
type Selection []string
