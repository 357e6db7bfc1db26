package cli

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/meridian-tools/meridian/pkg/domain"
)

// variableFile is the on-disk shape of a variables file: a YAML (or
// JSON) document listing named series. Sample times are either listed
// explicitly or derived from a start time and a step.
type variableFile struct {
	Variables []variableSpec `yaml:"variables"`
}

type variableSpec struct {
	ID     string    `yaml:"id"`
	Units  string    `yaml:"units"`
	Values []float64 `yaml:"values"`

	// Times lists every sample time as RFC 3339. When absent, Start
	// and Step generate the axis instead.
	Times []string `yaml:"times"`
	Start string   `yaml:"start"`
	Step  string   `yaml:"step"` // month, day or hour
}

// LoadVariables reads a variables file into pool-ready variables.
func LoadVariables(path string) ([]domain.Variable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read variables file: %w", err)
	}

	var file variableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse variables file: %w", err)
	}
	if len(file.Variables) == 0 {
		return nil, fmt.Errorf("%s declares no variables", path)
	}

	out := make([]domain.Variable, 0, len(file.Variables))
	for _, spec := range file.Variables {
		v, err := spec.toVariable()
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", spec.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (s variableSpec) toVariable() (domain.Variable, error) {
	if s.ID == "" {
		return domain.Variable{}, fmt.Errorf("id is required")
	}
	if len(s.Values) == 0 {
		return domain.Variable{}, fmt.Errorf("values are required")
	}

	times, err := s.axisTimes()
	if err != nil {
		return domain.Variable{}, err
	}
	if len(times) != len(s.Values) {
		return domain.Variable{}, fmt.Errorf("%d values but %d times", len(s.Values), len(times))
	}

	return domain.Variable{
		ID:     s.ID,
		Units:  s.Units,
		Values: append([]float64(nil), s.Values...),
		Axis:   domain.Axis{Times: times},
	}, nil
}

func (s variableSpec) axisTimes() ([]time.Time, error) {
	if len(s.Times) > 0 {
		times := make([]time.Time, len(s.Times))
		for i, raw := range s.Times {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return nil, fmt.Errorf("bad time %q: %w", raw, err)
			}
			times[i] = t
		}
		return times, nil
	}

	if s.Start == "" {
		return nil, fmt.Errorf("either times or start/step is required")
	}
	start, err := time.Parse(time.RFC3339, s.Start)
	if err != nil {
		return nil, fmt.Errorf("bad start %q: %w", s.Start, err)
	}

	times := make([]time.Time, len(s.Values))
	for i := range times {
		switch s.Step {
		case "", "month":
			times[i] = start.AddDate(0, i, 0)
		case "day":
			times[i] = start.AddDate(0, 0, i)
		case "hour":
			times[i] = start.Add(time.Duration(i) * time.Hour)
		default:
			return nil, fmt.Errorf("unknown step %q", s.Step)
		}
	}
	return times, nil
}

// DemoVariables synthesizes two years of monthly surface temperature
// and precipitation so the console is usable without a data file.
func DemoVariables() []domain.Variable {
	const months = 24
	times := make([]time.Time, months)
	tas := make([]float64, months)
	pr := make([]float64, months)
	for i := 0; i < months; i++ {
		times[i] = time.Date(2020, time.Month(i%12+1), 15, 0, 0, 0, 0, time.UTC).AddDate(i/12, 0, 0)
		phase := 2 * math.Pi * float64(i%12) / 12
		tas[i] = 14 + 8*math.Sin(phase) + 0.05*float64(i)
		pr[i] = 3 + 1.5*math.Cos(phase)
	}

	return []domain.Variable{
		{ID: "tas", Units: "degC", Values: tas, Axis: domain.Axis{Times: times}},
		{ID: "pr", Units: "mm/day", Values: pr, Axis: domain.Axis{Times: append([]time.Time(nil), times...)}},
	}
}
