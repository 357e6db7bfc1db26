package ports

import "context"

// StepResult is the outcome of one external step execution.
type StepResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Ok reports whether the step exited cleanly.
func (r StepResult) Ok() bool { return r.ExitCode == 0 }

// StepRunner executes a named, allow-listed external step. A non-zero
// exit is reported through StepResult, not through err; err is reserved
// for failures to launch (unknown step, missing binary).
type StepRunner interface {
	Run(ctx context.Context, name string, args map[string]any) (StepResult, error)
}
