package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/actor/internal/app"
	"github.com/felixgeelhaar/actor/internal/tui"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run DEFINITION",
	Short: "Run a pipeline",
	Long: `Run loads a pipeline definition and runs its selected steps.

The run happens in a directory named after the pipeline, created next to
where actor is started. The configuration file is copied into it, the
report is written to index.html and, with --zip, the results are packaged
once every step succeeded.

Examples:
  actor run rnaseq.yaml                        # Run every step
  actor run rnaseq.yaml -c rnaseq.conf         # With a configuration file
  actor run rnaseq.yaml --steps align,count    # Only these steps
  actor run rnaseq.yaml --start-at count       # Earlier steps run dry
  actor run rnaseq.yaml --dry                  # Run nothing, show what would happen`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

var runOpts app.RunOptions

// errRunFailed is returned when a phase of the run failed.
var errRunFailed = errors.New("run failed")

// newRunner builds the runner used by the run command.
var newRunner = func(out io.Writer, in io.Reader) *app.Runner {
	return app.NewRunner(out,
		app.WithRunnerInput(in),
		app.WithRunnerLogger(newLogger(os.Stderr)),
		app.WithStepList(tui.RenderSteps))
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.StringVarP(&runOpts.ConfigPath, "conf", "c", "", "Path to the INI configuration file")
	f.StringVar(&runOpts.Steps, "steps", "", "Comma separated steps to run (a leading - removes a step)")
	f.StringVar(&runOpts.StartAt, "start-at", "", "Run steps dry until this key")
	f.StringVar(&runOpts.StopAt, "stop-at", "", "Stop each phase after this key")
	f.BoolVar(&runOpts.Dry, "dry", false, "Run every step dry")
	f.BoolVarP(&runOpts.Yes, "yes", "y", false, "Do not ask for confirmation")
	f.DurationVar(&runOpts.Poll, "poll", 0, "Interval between checks for finished jobs (default 5s)")
	f.BoolVar(&runOpts.Zip, "zip", false, "Package the results when the run is complete")
	f.StringVar(&runOpts.ZipName, "zip-name", "", "Name of the results archive (default <name>.zip)")
	f.BoolVarP(&runOpts.Timestamp, "timestamp", "t", false, "Add the start time to the run directory name")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := runOpts
	opts.DefinitionPath = args[0]
	opts.Version = version

	out := cmd.OutOrStdout()
	result, err := newRunner(out, cmd.InOrStdin()).Run(ctx, opts)
	if err != nil {
		return err
	}
	return reportRun(out, result)
}

// reportRun prints the outcome of a run. A failed run is an error so the
// process exits non-zero.
func reportRun(w io.Writer, result *app.RunResult) error {
	if !result.Success {
		if result.FailedPhase != "" {
			return fmt.Errorf("%w in %s: see the log in %s", errRunFailed, result.FailedPhase, result.RunDir)
		}
		return fmt.Errorf("%w: see the log in %s", errRunFailed, result.RunDir)
	}
	_, _ = fmt.Fprintf(w, "Run complete: %s\n", result.RunDir)
	if result.Archive != "" {
		_, _ = fmt.Fprintf(w, "Archive: %s\n", result.Archive)
	}
	return nil
}
