package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeVariablesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "variables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadVariables_GeneratedAxis(t *testing.T) {
	path := writeVariablesFile(t, `
variables:
  - id: tas
    units: degC
    start: "2020-01-15T00:00:00Z"
    step: month
    values: [1, 2, 3]
`)

	vars, err := LoadVariables(path)
	require.NoError(t, err)
	require.Len(t, vars, 1)

	v := vars[0]
	assert.Equal(t, "tas", v.ID)
	assert.Equal(t, "degC", v.Units)
	assert.Equal(t, []float64{1, 2, 3}, v.Values)
	require.Len(t, v.Axis.Times, 3)
	assert.Equal(t, time.Date(2020, 2, 15, 0, 0, 0, 0, time.UTC), v.Axis.Times[1])
	assert.Equal(t, time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC), v.Axis.Times[2])
}

func TestLoadVariables_ExplicitTimes(t *testing.T) {
	path := writeVariablesFile(t, `
variables:
  - id: pr
    times: ["2020-01-01T00:00:00Z", "2020-01-01T06:00:00Z"]
    values: [0.5, 1.5]
`)

	vars, err := LoadVariables(path)
	require.NoError(t, err)
	require.Len(t, vars, 1)
	assert.Equal(t, time.Date(2020, 1, 1, 6, 0, 0, 0, time.UTC), vars[0].Axis.Times[1])
}

func TestLoadVariables_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "no variables",
			content: "variables: []\n",
			wantErr: "declares no variables",
		},
		{
			name: "length mismatch",
			content: `
variables:
  - id: tas
    times: ["2020-01-01T00:00:00Z"]
    values: [1, 2]
`,
			wantErr: "2 values but 1 times",
		},
		{
			name: "missing axis",
			content: `
variables:
  - id: tas
    values: [1, 2]
`,
			wantErr: "either times or start/step is required",
		},
		{
			name: "unknown step",
			content: `
variables:
  - id: tas
    start: "2020-01-01T00:00:00Z"
    step: fortnight
    values: [1]
`,
			wantErr: "unknown step",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeVariablesFile(t, tt.content)
			_, err := LoadVariables(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadVariables_MissingFile(t *testing.T) {
	_, err := LoadVariables(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestDemoVariables(t *testing.T) {
	vars := DemoVariables()
	require.Len(t, vars, 2)

	for _, v := range vars {
		assert.Len(t, v.Values, 24)
		assert.Len(t, v.Axis.Times, 24)
	}
	assert.Equal(t, "tas", vars[0].ID)
	assert.Equal(t, "pr", vars[1].ID)

	// Monthly axis spanning two years.
	first, last := vars[0].Axis.Times[0], vars[0].Axis.Times[23]
	assert.Equal(t, time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), first)
	assert.Equal(t, time.Date(2021, 12, 15, 0, 0, 0, 0, time.UTC), last)
}
