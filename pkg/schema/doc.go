// Package schema validates the named choices of statistical operations
// before they run.
//
// Each catalog action declares which choices it accepts and, for
// enumerated choices, which values are legal. This package turns that
// declaration into a Schema, validates a raw choice map against it,
// and decodes the result into series.StatOptions:
//
//	s := schema.ForAction(desc)
//	if err := s.Validate(raw); err != nil {
//	    // one ValidationError per offending choice
//	}
//	opts, err := schema.DecodeOptions(raw)
//
// Validation collects every failure rather than stopping at the first,
// so an interactive caller can report the full list at once.
package schema
