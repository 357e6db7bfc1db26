package schema

import (
	"fmt"
	"sort"

	"github.com/meridian-tools/meridian/pkg/domain"
)

// Schema is a map of choice names to their expected types.
type Schema map[string]Type

// ForAction builds the Schema of a statistic action from its catalog
// descriptor. Enumerated choices become Enum validators; the typed
// choices (lag, max_pct_missing, percentiles) get their known types;
// everything else is a boolean flag.
func ForAction(desc domain.ActionDescriptor) Schema {
	s := make(Schema, len(desc.Choices))
	for _, c := range desc.Choices {
		switch {
		case len(c.Values) > 0:
			s[c.Name] = Enum(c.Values...)
		case c.Name == "lag":
			s[c.Name] = Int()
		case c.Name == "max_pct_missing":
			s[c.Name] = Float()
		case c.Name == "percentiles":
			s[c.Name] = Slice(Float())
		default:
			s[c.Name] = Bool()
		}
	}
	return s
}

// Validate checks a raw choice map against the schema. Choices are all
// optional, so only present keys are checked; keys the action does not
// declare are rejected. Every failure is reported, aggregated.
func (s Schema) Validate(data map[string]any) error {
	var errs []error

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		typ, declared := s[key]
		if !declared {
			errs = append(errs, &ValidationError{
				Key:    key,
				Reason: "not a choice of this action",
			})
			continue
		}
		if err := typ.Validate(data[key]); err != nil {
			errs = append(errs, &ValidationError{
				Key:    key,
				Reason: err.Error(),
				Value:  data[key],
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidateArgs checks the selection size against the action's argument
// range.
func ValidateArgs(desc domain.ActionDescriptor, n int) error {
	if n < desc.NArgsMin || n > desc.NArgsMax {
		if desc.NArgsMin == desc.NArgsMax {
			return fmt.Errorf("%s takes %d variable(s), got %d", desc.Label, desc.NArgsMin, n)
		}
		return fmt.Errorf("%s takes %d to %d variables, got %d", desc.Label, desc.NArgsMin, desc.NArgsMax, n)
	}
	return nil
}
