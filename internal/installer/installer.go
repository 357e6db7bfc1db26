// Package installer orchestrates the environment install: a fixed
// linear sequence of external steps with no retries, no cleanup of
// partial installs, and no concurrency.
package installer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/meridian-tools/meridian/internal/logging"
	"github.com/meridian-tools/meridian/pkg/ports"
)

// Step names looked up in the runner's registry.
const (
	StepBootstrap    = "bootstrap-runtime"
	StepDistribution = "install-distribution"
	StepTestDeps     = "install-test-deps"
)

// Supported Python series of the installed distribution.
const (
	Py2 = "py2"
	Py3 = "py3"
)

// Config holds the install parameters.
type Config struct {
	// Workdir is where the package-manager runtime lands. The
	// installation root is derived from it.
	Workdir string

	// PyVer selects the distribution series, Py2 or Py3.
	PyVer string
}

// Root is the derived installation root the steps receive.
func (c Config) Root() string {
	return filepath.Join(c.Workdir, "runtime")
}

func (c Config) validate() error {
	if c.Workdir == "" {
		return fmt.Errorf("workdir is required")
	}
	if c.PyVer != Py2 && c.PyVer != Py3 {
		return fmt.Errorf("py_ver must be %s or %s, got %q", Py2, Py3, c.PyVer)
	}
	return nil
}

// Installer runs the install sequence through a step runner.
type Installer struct {
	runner ports.StepRunner
	logger *slog.Logger
}

// Option configures the Installer.
type Option func(*Installer)

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Installer) {
		i.logger = logger
	}
}

// New creates an Installer.
func New(runner ports.StepRunner, opts ...Option) *Installer {
	inst := &Installer{
		runner: runner,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(inst)
	}
	return inst
}

// Run executes the sequence and returns the process exit code:
//
//  1. bootstrap the package-manager runtime into the workdir; any
//     failure stops here with a nonzero code, the later steps never
//     run;
//  2. install the distribution for the configured series; failure
//     stops with that step's code;
//  3. install the test-only dependencies; its exit status becomes the
//     returned code verbatim, success or failure.
//
// err is only set when a step could not be launched at all; the code
// is still nonzero in that case.
func (i *Installer) Run(ctx context.Context, cfg Config) (int, error) {
	if err := cfg.validate(); err != nil {
		return 1, err
	}

	args := map[string]any{
		"workdir": cfg.Workdir,
		"root":    cfg.Root(),
		"py_ver":  cfg.PyVer,
	}

	for _, step := range []string{StepBootstrap, StepDistribution} {
		code, err := i.runStep(ctx, step, args)
		if err != nil {
			return 1, err
		}
		if code != 0 {
			i.logger.Error("install step failed, aborting", "step", step, "exit_code", code)
			return code, nil
		}
	}

	code, err := i.runStep(ctx, StepTestDeps, args)
	if err != nil {
		return 1, err
	}
	// The test-dependency status is the verdict, passed through as-is.
	i.logger.Info("install finished", "exit_code", code)
	return code, nil
}

func (i *Installer) runStep(ctx context.Context, name string, args map[string]any) (int, error) {
	i.logger.Info("running install step", "step", name)
	res, err := i.runner.Run(ctx, name, args)
	if err != nil {
		return 1, fmt.Errorf("step %s: %w", name, err)
	}
	if res.Stderr != "" {
		i.logger.Debug("step stderr", "step", name, "stderr", res.Stderr)
	}
	return res.ExitCode, nil
}
