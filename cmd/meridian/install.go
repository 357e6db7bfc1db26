package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/meridian-tools/meridian/internal/installer"
	"github.com/meridian-tools/meridian/internal/logging"
	"github.com/meridian-tools/meridian/pkg/adapters/process"
)

// installCmd represents the install command
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the analysis runtime and distribution",
	Long: `Runs the fixed install sequence: bootstrap the package-manager
runtime into the workdir, install the distribution for the requested
Python series, then install the test-only dependencies. The exit code
of the test-dependency step becomes the process exit code.`,
	Run: func(cmd *cobra.Command, args []string) {
		workdir, _ := cmd.Flags().GetString("workdir")
		pyVer, _ := cmd.Flags().GetString("py_ver")
		stepsPath, _ := cmd.Flags().GetString("steps")
		debug, _ := cmd.Flags().GetBool("debug")

		steps, err := process.LoadSteps(stepsPath)
		if err != nil {
			fmt.Printf("Error loading steps config: %v\n", err)
			os.Exit(1)
		}

		runner := process.NewRunner(
			process.WithRegistry(steps),
			process.WithBaseDir(workdir),
		)
		registerDefaultSteps(runner, steps)

		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		inst := installer.New(runner, installer.WithLogger(logging.New(level)))

		code, err := inst.Run(cmd.Context(), installer.Config{
			Workdir: workdir,
			PyVer:   pyVer,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
		}
		os.Exit(code)
	},
}

// registerDefaultSteps fills in the stock conda-based commands for any
// step the config file did not override. Step parameters arrive as
// MERIDIAN_ARG_* environment variables.
func registerDefaultSteps(r *process.Runner, loaded map[string]process.StepConfig) {
	defaults := map[string]string{
		installer.StepBootstrap: `curl -fsSL "https://repo.anaconda.com/miniconda/Miniconda3-latest-Linux-$(uname -m).sh" -o miniconda.sh && ` +
			`bash miniconda.sh -b -p "$MERIDIAN_ARG_ROOT"`,
		installer.StepDistribution: `"$MERIDIAN_ARG_ROOT/bin/conda" create -y -n meridian -c conda-forge "cdat-core=$MERIDIAN_ARG_PY_VER"`,
		installer.StepTestDeps:     `"$MERIDIAN_ARG_ROOT/bin/conda" install -y -n meridian -c conda-forge nose flake8`,
	}
	for name, script := range defaults {
		if _, ok := loaded[name]; ok {
			continue
		}
		r.Register(name, "bash", "-c", script)
	}
}

func init() {
	rootCmd.AddCommand(installCmd)

	installCmd.Flags().String("workdir", "", "Installation working directory (required)")
	installCmd.Flags().String("py_ver", installer.Py3, "Distribution series: py2 or py3")
	installCmd.Flags().String("steps", "install-steps.yaml", "YAML file overriding the install step commands")
	_ = installCmd.MarkFlagRequired("workdir")
}
