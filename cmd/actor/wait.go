package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/actor/internal/adapters/filesystem"
	"github.com/felixgeelhaar/actor/internal/domain/wait"
	"github.com/felixgeelhaar/actor/internal/tui"
	"github.com/spf13/cobra"
)

var waitCmd = &cobra.Command{
	Use:   "wait SPEC...",
	Short: "Wait for jobs to finish",
	Long: `Wait blocks until every spec is satisfied.

A spec is a file path, satisfied when the file exists, or path:count.
With a count, an @ in the path stands for a job id and the spec is
satisfied once count matching files exist; without @ the file must hold a
number of at least count. Satisfied files are removed unless --keep is
given.

Examples:
  actor wait align.done                  # Wait for one file
  actor wait 'align-@.done:12'           # Wait for twelve jobs
  actor wait 'align-@.done:12' --watch   # Show live progress`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWait,
}

var (
	waitWatch    bool
	waitKeep     bool
	waitInterval time.Duration
	waitMax      time.Duration
)

// errWaitStopped is returned when the user leaves the watch view early.
var errWaitStopped = errors.New("stopped before all jobs finished")

func init() {
	rootCmd.AddCommand(waitCmd)

	waitCmd.Flags().BoolVarP(&waitWatch, "watch", "w", false, "Show an interactive progress view")
	waitCmd.Flags().BoolVar(&waitKeep, "keep", false, "Leave satisfied files in place")
	waitCmd.Flags().DurationVar(&waitInterval, "interval", wait.DefaultInterval, "Interval between checks")
	waitCmd.Flags().DurationVar(&waitMax, "max-wait", 0, "Give up after this long (0 waits forever)")
}

func runWait(cmd *cobra.Command, args []string) error {
	specs, err := wait.ParseSpecs(args)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fsys := filesystem.NewRealFileSystem()
	out := cmd.OutOrStdout()

	if waitWatch {
		if waitMax > 0 {
			var stop context.CancelFunc
			ctx, stop = context.WithTimeout(ctx, waitMax)
			defer stop()
		}
		result, err := tui.RunWait(ctx, fsys, specs, tui.WaitOptions{
			Interval: waitInterval,
			Delete:   !waitKeep,
		})
		if err != nil {
			return err
		}
		if !result.Satisfied {
			return errWaitStopped
		}
		_, _ = fmt.Fprintf(out, "%d jobs completed.\n", result.Units)
		return nil
	}

	log := newLogger(os.Stderr)
	n, err := wait.Wait(ctx, fsys, specs, wait.Options{
		Interval: waitInterval,
		MaxWait:  waitMax,
		Delete:   !waitKeep,
		OnProgress: func(desc string) {
			log.Info(ctx, "Waiting for: "+desc)
		},
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "%d jobs completed.\n", n)
	return nil
}
