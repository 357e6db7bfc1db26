// Package process executes external commands for the installer. It
// follows a strict registry pattern: only steps registered up front can
// run, and caller arguments travel as environment variables rather than
// argv to rule out flag injection.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/meridian-tools/meridian/pkg/ports"
)

// RegisteredStep defines an allowed command execution.
type RegisteredStep struct {
	Command string
	Args    []string
	Env     map[string]string
}

// Runner implements ports.StepRunner over local processes.
type Runner struct {
	registry map[string]RegisteredStep
	baseDir  string
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(steps map[string]StepConfig) RunnerOption {
	return func(r *Runner) {
		for name, step := range steps {
			r.registry[name] = RegisteredStep{
				Command: step.Command,
				Args:    step.Args,
				Env:     step.Environment,
			}
		}
	}
}

// WithBaseDir sets the working directory for executed steps.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// NewRunner creates a process runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]RegisteredStep),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list.
func (r *Runner) Register(name string, command string, args ...string) {
	r.registry[name] = RegisteredStep{
		Command: command,
		Args:    args,
	}
}

// Run executes a registered step. The exit code of the process is
// reported in the result; err means the step never ran.
func (r *Runner) Run(ctx context.Context, name string, args map[string]any) (ports.StepResult, error) {
	step, ok := r.registry[name]
	if !ok {
		return ports.StepResult{}, fmt.Errorf("step not registered: %s", name)
	}

	cmd := exec.CommandContext(ctx, step.Command, step.Args...)
	cmd.Dir = r.baseDir

	env := cmd.Environ()
	for k, v := range step.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	for k, v := range args {
		env = append(env, fmt.Sprintf("MERIDIAN_ARG_%s=%s", strings.ToUpper(k), envValue(v)))
	}
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := ports.StepResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return ports.StepResult{}, fmt.Errorf("failed to run step %s: %w", name, err)
		}
		result.ExitCode = exitErr.ExitCode()
	}
	return result, nil
}

// envValue serializes an argument for the environment. Primitives pass
// through; anything structured becomes JSON.
func envValue(v any) string {
	switch v.(type) {
	case string, int, int64, float64, bool:
		return fmt.Sprintf("%v", v)
	case nil:
		return ""
	default:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", v)
	}
}
