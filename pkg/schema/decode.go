package schema

import (
	"fmt"

	"github.com/meridian-tools/meridian/pkg/series"
	"github.com/mitchellh/mapstructure"
)

// DecodeOptions turns a validated choice map into series.StatOptions.
// Decoding is weakly typed so enumerated string values ("2") land in
// numeric fields. Absent choices keep the library defaults.
func DecodeOptions(raw map[string]any) (series.StatOptions, error) {
	opts := series.DefaultStatOptions()
	if len(raw) == 0 {
		return opts, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return opts, fmt.Errorf("failed to build options decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return opts, fmt.Errorf("failed to decode choices: %w", err)
	}
	return opts, nil
}
