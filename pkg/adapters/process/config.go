package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// StepConfig describes one external command in the install plan.
type StepConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
}

// ConfigFile is the structure of steps.yaml.
type ConfigFile struct {
	Steps []StepConfig `yaml:"steps" json:"steps"`
}

// LoadSteps reads a configuration file (YAML or JSON) and returns a map
// of step names to configs. A missing file means no steps configured.
func LoadSteps(path string) (map[string]StepConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]StepConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read steps config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse steps.json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse steps.yaml: %w", err)
		}
	}

	stepMap := make(map[string]StepConfig)
	for _, step := range cfg.Steps {
		if step.Name == "" {
			continue
		}
		stepMap[step.Name] = step
	}
	return stepMap, nil
}
