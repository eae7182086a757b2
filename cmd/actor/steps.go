package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/felixgeelhaar/actor/internal/app"
	"github.com/felixgeelhaar/actor/internal/domain/pipeline"
	"github.com/felixgeelhaar/actor/internal/library"
	"github.com/spf13/cobra"
)

var stepsCmd = &cobra.Command{
	Use:   "steps [DEFINITION]",
	Short: "List step types, or plan the steps of a definition",
	Long: `Without an argument, steps lists the step types definitions can use.

With a definition, steps shows each declared step and whether a run with
the given selection would run it, run it dry or skip it. Nothing is run.

Examples:
  actor steps                                  # List step types
  actor steps rnaseq.yaml                      # Plan every step
  actor steps rnaseq.yaml --start-at count     # Steps before count run dry
  actor steps rnaseq.yaml --json               # JSON output`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSteps,
}

var (
	stepsSelection string
	stepsStartAt   string
	stepsDry       bool
	stepsJSON      bool
)

func init() {
	rootCmd.AddCommand(stepsCmd)

	stepsCmd.Flags().StringVar(&stepsSelection, "steps", "", "Comma separated step selection")
	stepsCmd.Flags().StringVar(&stepsStartAt, "start-at", "", "Plan steps dry until this key")
	stepsCmd.Flags().BoolVar(&stepsDry, "dry", false, "Plan every step as dry")
	stepsCmd.Flags().BoolVar(&stepsJSON, "json", false, "Output as JSON")
}

func runSteps(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	reg := pipeline.NewRegistry(library.Builtin())

	if len(args) == 0 {
		return printStepTypes(out, reg, stepsJSON)
	}

	def, err := app.LoadDefinition(args[0], version)
	if err != nil {
		return app.NewDefinitionError(args[0], err)
	}
	planned, err := app.Plan(def, reg, app.PlanOptions{
		Steps:   stepsSelection,
		StartAt: stepsStartAt,
		Dry:     stepsDry,
	})
	if err != nil {
		return err
	}
	if stepsJSON {
		return writeJSON(out, planned)
	}
	printPlan(out, def.DisplayTitle(), planned)
	return nil
}

func printStepTypes(w io.Writer, reg *pipeline.Registry, asJSON bool) error {
	type stepType struct {
		Tag     string `json:"tag"`
		Library string `json:"library"`
	}
	types := make([]stepType, 0, len(reg.Tags()))
	for _, tag := range reg.Tags() {
		types = append(types, stepType{Tag: tag, Library: reg.LibraryOf(tag)})
	}
	if asJSON {
		return writeJSON(w, types)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TAG\tLIBRARY")
	for _, t := range types {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", t.Tag, t.Library)
	}
	return tw.Flush()
}

func printPlan(w io.Writer, title string, planned []app.PlannedStep) {
	_, _ = fmt.Fprintf(w, "%s\n\n", title)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STEP\tTAG\tACTION")
	for _, p := range planned {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Key, p.Tag, planAction(p))
	}
	_ = tw.Flush()
}

func planAction(p app.PlannedStep) string {
	switch {
	case !p.Known:
		return "unknown"
	case !p.Selected:
		return "skip"
	case p.Dry:
		return "dry"
	default:
		return "run"
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
