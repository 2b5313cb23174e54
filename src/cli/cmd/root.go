package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sofmeright/sboxbuild/src/config"
	"github.com/sofmeright/sboxbuild/src/stage"
)

// deps are the process-level collaborators of a build run.
type deps struct {
	stdout  io.Writer
	stderr  io.Writer
	environ []string
	workDir string

	// newLauncher builds the stage launcher for a resolved configuration.
	newLauncher func(config.BuildConfiguration, *zap.Logger) stage.Launcher
}

func defaultDeps() (deps, error) {
	wd, err := os.Getwd()
	if err != nil {
		return deps{}, fmt.Errorf("getting working directory: %w", err)
	}
	return deps{
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		environ: os.Environ(),
		workDir: wd,
		newLauncher: func(cfg config.BuildConfiguration, log *zap.Logger) stage.Launcher {
			return stage.NewWineLauncher(cfg, log)
		},
	}, nil
}

// Flags are parsed by the config package so that --help and unknown flags
// are handled in command-line order; cobra only dispatches subcommands.
var rootCmd = &cobra.Command{
	Use:   "sboxbuild [flags]",
	Short: "Staged engine, shader and content build under wine",
	Long: `sboxbuild: staged build front end for s&box under wine.

Builds the engine first, then shaders and content in parallel.`,
	Args:               cobra.ArbitraryArgs,
	DisableFlagParsing: true,
	SilenceUsage:       true,
	SilenceErrors:      true,
	CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := defaultDeps()
		if err != nil {
			return err
		}
		return runBuild(d, args)
	},
}

func init() {
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		if cmd != rootCmd {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n\nUsage:\n  %s\n", cmd.Short, cmd.UseLine())
			return
		}
		fmt.Fprint(cmd.OutOrStdout(), config.Usage())
	})
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) || !exitErr.Reported {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		return err
	}
	return nil
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return exitBuildFailed
}
