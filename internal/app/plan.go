package app

import (
	"io"

	"github.com/felixgeelhaar/actor/internal/adapters/config"
	"github.com/felixgeelhaar/actor/internal/adapters/logging"
	"github.com/felixgeelhaar/actor/internal/domain/definition"
	"github.com/felixgeelhaar/actor/internal/domain/pipeline"
	"github.com/felixgeelhaar/actor/internal/ports"
)

// PlannedStep is how a declared step would take part in a run.
type PlannedStep struct {
	Key      string `json:"key"`
	Tag      string `json:"tag"`
	Library  string `json:"library,omitempty"`
	Selected bool   `json:"selected"`
	Known    bool   `json:"known"`
	Dry      bool   `json:"dry"`
}

// PlanOptions choose the steps of a plan.
type PlanOptions struct {
	Steps   string
	StartAt string
	Dry     bool
}

// Plan materialises def without running it and reports, per declared step,
// whether it is selected, has a Line and would run dry. Nothing is
// executed and no files are touched.
func Plan(def *definition.Definition, reg *pipeline.Registry, opts PlanOptions) ([]PlannedStep, error) {
	cfg := config.Empty()
	if opts.Steps != "" {
		cfg.Set(ports.SectionGeneral, "steps", opts.Steps)
	}
	rt := NewActor(def, cfg,
		WithLogger(logging.NewNopLogger()),
		WithDry(opts.Dry),
		WithAsk(false),
		WithRunID("plan"))

	director, err := pipeline.NewDirector(rt, reg, pipeline.WithOutput(io.Discard))
	if err != nil {
		return nil, err
	}
	Select(director, cfg, def)

	planned := make([]PlannedStep, 0, len(def.Steps))
	lines := make(map[string]pipeline.Line, len(def.Steps))
	for _, step := range def.Steps {
		tag := pipeline.TagOf(step.Key)
		p := PlannedStep{
			Key:      step.Key,
			Tag:      tag,
			Library:  reg.LibraryOf(tag),
			Selected: director.StepPresent(step.Key),
			Known:    reg.Has(tag),
		}
		if line := director.Step(step.Key, step.Properties); line != nil {
			lines[step.Key] = line
		}
		planned = append(planned, p)
	}

	if opts.Dry {
		director.DryRun()
	}
	director.StartAt(opts.StartAt)

	for i := range planned {
		if line, ok := lines[planned[i].Key]; ok {
			planned[i].Dry = line.Dry()
		}
	}
	return planned, nil
}
