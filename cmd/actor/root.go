package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/felixgeelhaar/actor/internal/adapters/logging"
	"github.com/felixgeelhaar/actor/internal/app"
	"github.com/felixgeelhaar/actor/internal/ports"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose  bool
	jsonLogs bool
)

var rootCmd = &cobra.Command{
	Use:   "actor",
	Short: "Run analysis pipelines step by step",
	Long: `Actor runs analysis pipelines described by a definition file.

Each step of a pipeline goes through the same phases, one phase across all
steps at a time:
  Verify → PreExecute → Execute → PostExecute → Report

Steps can run shell commands, submit batch jobs to a cluster and wait for
them, and write an HTML report into the run directory.`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "log-json", false, "write log entries as JSON lines")

	rootCmd.AddCommand(versionCmd)
}

// newLogger returns the console logger the global flags ask for.
func newLogger(w io.Writer) *logging.RunLogger {
	level := ports.LevelInfo
	if verbose {
		level = ports.LevelDebug
	}
	return logging.New(
		logging.WithOutput(w),
		logging.WithLevel(level),
		logging.WithJSONFormat(jsonLogs),
	)
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var userErr *app.UserError
	if errors.As(err, &userErr) {
		msg := userErr.Error()
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}
	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}
