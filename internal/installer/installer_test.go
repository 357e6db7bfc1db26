package installer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/meridian-tools/meridian/internal/installer"
	"github.com/meridian-tools/meridian/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRunner returns a fixed exit code per step and records the
// order of invocations.
type scriptedRunner struct {
	codes map[string]int
	errs  map[string]error
	calls []string
	args  map[string]any
}

func (r *scriptedRunner) Run(ctx context.Context, name string, args map[string]any) (ports.StepResult, error) {
	r.calls = append(r.calls, name)
	r.args = args
	if err := r.errs[name]; err != nil {
		return ports.StepResult{}, err
	}
	return ports.StepResult{ExitCode: r.codes[name]}, nil
}

func config() installer.Config {
	return installer.Config{Workdir: "/tmp/work", PyVer: installer.Py3}
}

func TestRun_AllStepsSucceed(t *testing.T) {
	r := &scriptedRunner{codes: map[string]int{}}
	inst := installer.New(r)

	code, err := inst.Run(context.Background(), config())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{
		installer.StepBootstrap,
		installer.StepDistribution,
		installer.StepTestDeps,
	}, r.calls)
}

func TestRun_BootstrapFailureShortCircuits(t *testing.T) {
	r := &scriptedRunner{codes: map[string]int{installer.StepBootstrap: 2}}
	inst := installer.New(r)

	code, err := inst.Run(context.Background(), config())
	require.NoError(t, err)
	assert.Equal(t, 2, code)
	assert.Equal(t, []string{installer.StepBootstrap}, r.calls, "later steps must never run")
}

func TestRun_DistributionFailureSkipsTestDeps(t *testing.T) {
	r := &scriptedRunner{codes: map[string]int{installer.StepDistribution: 1}}
	inst := installer.New(r)

	code, err := inst.Run(context.Background(), config())
	require.NoError(t, err)
	assert.Equal(t, 1, code)
	assert.Equal(t, []string{installer.StepBootstrap, installer.StepDistribution}, r.calls)
}

func TestRun_TestDepsStatusIsTheExitCode(t *testing.T) {
	for _, status := range []int{0, 1, 7} {
		r := &scriptedRunner{codes: map[string]int{installer.StepTestDeps: status}}
		inst := installer.New(r)

		code, err := inst.Run(context.Background(), config())
		require.NoError(t, err)
		assert.Equal(t, status, code, "step-3 status must pass through verbatim")
	}
}

func TestRun_LaunchFailureIsAnError(t *testing.T) {
	r := &scriptedRunner{errs: map[string]error{installer.StepBootstrap: errors.New("no such step")}}
	inst := installer.New(r)

	code, err := inst.Run(context.Background(), config())
	require.Error(t, err)
	assert.Equal(t, 1, code)
}

func TestRun_StepsReceiveDerivedRoot(t *testing.T) {
	r := &scriptedRunner{codes: map[string]int{}}
	inst := installer.New(r)

	_, err := inst.Run(context.Background(), config())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/work/runtime", r.args["root"])
	assert.Equal(t, "py3", r.args["py_ver"])
}

func TestRun_RejectsBadConfig(t *testing.T) {
	inst := installer.New(&scriptedRunner{})

	code, err := inst.Run(context.Background(), installer.Config{Workdir: "/tmp", PyVer: "py4"})
	require.Error(t, err)
	assert.Equal(t, 1, code)

	code, err = inst.Run(context.Background(), installer.Config{PyVer: installer.Py3})
	require.Error(t, err)
	assert.Equal(t, 1, code)
}
