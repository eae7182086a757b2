package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/felixgeelhaar/actor/internal/adapters/journal"
	"github.com/felixgeelhaar/actor/internal/ports"
	"github.com/felixgeelhaar/actor/internal/validation"
	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List submitted batch jobs",
	Long: `Jobs lists the batch jobs recorded in the submission journal.

Every job a run submits is recorded with its run id, step, script and the
jobs it waited for. The journal lives in $XDG_DATA_HOME/actor/journal.db
unless [General] journal names another file.

Examples:
  actor jobs                       # All recorded jobs
  actor jobs --run 6ba7b810-...    # Jobs of one run
  actor jobs --json                # JSON output`,
	Args: cobra.NoArgs,
	RunE: runJobs,
}

var (
	jobsRun     string
	jobsJournal string
	jobsJSON    bool
)

func init() {
	rootCmd.AddCommand(jobsCmd)

	jobsCmd.Flags().StringVar(&jobsRun, "run", "", "Only list jobs of this run id")
	jobsCmd.Flags().StringVar(&jobsJournal, "journal", "", "Path to the journal database")
	jobsCmd.Flags().BoolVar(&jobsJSON, "json", false, "Output as JSON")
}

// openJournal opens the journal at path, or the default one.
func openJournal(path string) (ports.JobJournal, error) {
	if path == "" {
		var err error
		if path, err = journal.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return journal.Open(path)
}

func runJobs(cmd *cobra.Command, _ []string) error {
	if jobsRun != "" {
		if err := validation.ValidateRunID(jobsRun); err != nil {
			return err
		}
	}
	j, err := openJournal(jobsJournal)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer func() { _ = j.Close() }()

	records, err := j.List(cmd.Context(), jobsRun)
	if err != nil {
		return err
	}
	if jobsJSON {
		return writeJSON(cmd.OutOrStdout(), records)
	}
	return printJobs(cmd.OutOrStdout(), records)
}

func printJobs(w io.Writer, records []ports.JobRecord) error {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "No jobs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "JOB\tRUN\tSTEP\tSCRIPT\tAFTER\tSUBMITTED")
	for _, r := range records {
		run := r.RunID
		if len(run) > 8 {
			run = run[:8]
		}
		after := strings.Join(r.After, ",")
		if after == "" {
			after = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.JobID, run, r.Step, r.Script, after, r.SubmittedAt.Local().Format("2006-01-02 15:04"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "\nTotal: %d\n", len(records))
	return nil
}
