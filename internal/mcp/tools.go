// Package mcp provides the MCP (Model Context Protocol) tools of actor.
package mcp

import (
	"context"
	"fmt"
	"sort"

	"github.com/felixgeelhaar/actor/internal/app"
	"github.com/felixgeelhaar/actor/internal/domain/pipeline"
	"github.com/felixgeelhaar/actor/internal/domain/wait"
	"github.com/felixgeelhaar/actor/internal/ports"
	"github.com/felixgeelhaar/mcp-go"
)

// StepsInput is the input for the actor_steps tool.
type StepsInput struct {
	Library string `json:"library,omitempty" jsonschema:"description=Only list steps of this library"`
}

// StepsOutput is the output for the actor_steps tool.
type StepsOutput struct {
	Steps     []StepInfo     `json:"steps"`
	Overrides []OverrideInfo `json:"overrides,omitempty"`
}

// StepInfo describes a registered step type.
type StepInfo struct {
	Tag     string `json:"tag"`
	Library string `json:"library"`
}

// OverrideInfo records a step type replaced by a later library.
type OverrideInfo struct {
	Tag      string `json:"tag"`
	Previous string `json:"previous"`
	Library  string `json:"library"`
}

// PlanInput is the input for the actor_plan tool.
type PlanInput struct {
	DefinitionPath string `json:"definition_path,omitempty" jsonschema:"description=Path to the pipeline definition (default: pipeline.yaml)"`
	Steps          string `json:"steps,omitempty" jsonschema:"description=Comma separated step selection; a leading - removes a step"`
	StartAt        string `json:"start_at,omitempty" jsonschema:"description=Run steps dry until this key"`
	Dry            bool   `json:"dry,omitempty" jsonschema:"description=Plan every step as dry"`
}

// PlanOutput is the output for the actor_plan tool.
type PlanOutput struct {
	Name    string            `json:"name"`
	Title   string            `json:"title"`
	Summary PlanSummary       `json:"summary"`
	Steps   []app.PlannedStep `json:"steps"`
}

// PlanSummary contains plan statistics.
type PlanSummary struct {
	Declared int `json:"declared"`
	Selected int `json:"selected"`
	Run      int `json:"run"`
	Dry      int `json:"dry"`
	Unknown  int `json:"unknown"`
}

// WaitCheckInput is the input for the actor_wait_check tool.
type WaitCheckInput struct {
	Specs []string `json:"specs" jsonschema:"required,description=Wait specs: a file path or path:count where @ in the path matches job ids"`
}

// WaitCheckOutput is the output for the actor_wait_check tool.
type WaitCheckOutput struct {
	Satisfied bool   `json:"satisfied"`
	Total     int    `json:"total"`
	Pending   int    `json:"pending"`
	Waiting   string `json:"waiting,omitempty"`
	Jobs      int    `json:"jobs"`
}

// JobsInput is the input for the actor_jobs tool.
type JobsInput struct {
	RunID string `json:"run_id,omitempty" jsonschema:"description=Only list jobs of this run"`
	Limit int    `json:"limit,omitempty" jsonschema:"description=Maximum number of jobs to return (default: 50)"`
}

// JobsOutput is the output for the actor_jobs tool.
type JobsOutput struct {
	Jobs  []JobInfo `json:"jobs"`
	Total int       `json:"total"`
}

// JobInfo is one journaled job submission.
type JobInfo struct {
	JobID       string   `json:"job_id"`
	RunID       string   `json:"run_id"`
	Step        string   `json:"step"`
	Script      string   `json:"script"`
	After       []string `json:"after,omitempty"`
	Done        string   `json:"done,omitempty"`
	User        string   `json:"user,omitempty"`
	SubmittedAt string   `json:"submitted_at"`
}

// StatusInput is the input for the actor_status tool.
type StatusInput struct {
	DefinitionPath string `json:"definition_path,omitempty" jsonschema:"description=Path to the pipeline definition (default: pipeline.yaml)"`
}

// StatusOutput is the output for the actor_status tool.
type StatusOutput struct {
	Version          string `json:"version"`
	Commit           string `json:"commit"`
	BuildDate        string `json:"build_date"`
	DefinitionPath   string `json:"definition_path"`
	DefinitionExists bool   `json:"definition_exists"`
	IsValid          bool   `json:"is_valid"`
	Error            string `json:"error,omitempty"`
	StepCount        int    `json:"step_count"`
}

// VersionInfo contains version metadata for the MCP server.
type VersionInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// Options wire the tools to the rest of actor.
type Options struct {
	// Registry holds the step libraries.
	Registry *pipeline.Registry
	// DefaultDefinition is used when a tool input names none.
	DefaultDefinition string
	// FileSystem is where wait specs are checked.
	FileSystem wait.FileSystem
	// OpenJournal opens the submission journal. Nil disables actor_jobs.
	OpenJournal func() (ports.JobJournal, error)
	Version     VersionInfo
}

const defaultJobsLimit = 50

// RegisterAll registers all MCP tools with the server.
func RegisterAll(srv *mcp.Server, opts Options) {
	if opts.DefaultDefinition == "" {
		opts.DefaultDefinition = "pipeline.yaml"
	}
	registerStepsTool(srv, opts.Registry)
	registerPlanTool(srv, opts)
	registerWaitCheckTool(srv, opts.FileSystem)
	registerStatusTool(srv, opts)
	if opts.OpenJournal != nil {
		registerJobsTool(srv, opts.OpenJournal)
	}
}

func registerStepsTool(srv *mcp.Server, reg *pipeline.Registry) {
	srv.Tool("actor_steps").
		Description("List the step types that pipeline definitions can use, with the library providing each.").
		ReadOnly().
		Handler(func(_ context.Context, in StepsInput) (*StepsOutput, error) {
			if err := ValidateStepsInput(&in); err != nil {
				return nil, err
			}
			return listSteps(reg, in.Library), nil
		})
}

func listSteps(reg *pipeline.Registry, library string) *StepsOutput {
	out := &StepsOutput{Steps: []StepInfo{}}
	for _, tag := range reg.Tags() {
		lib := reg.LibraryOf(tag)
		if library != "" && lib != library {
			continue
		}
		out.Steps = append(out.Steps, StepInfo{Tag: tag, Library: lib})
	}
	for _, o := range reg.Overrides() {
		out.Overrides = append(out.Overrides, OverrideInfo{Tag: o.Tag, Previous: o.Previous, Library: o.Library})
	}
	return out
}

func registerPlanTool(srv *mcp.Server, opts Options) {
	srv.Tool("actor_plan").
		Description("Show which steps of a pipeline definition would run and which would run dry, without running anything.").
		ReadOnly().
		Handler(func(_ context.Context, in PlanInput) (*PlanOutput, error) {
			if in.DefinitionPath == "" {
				in.DefinitionPath = opts.DefaultDefinition
			}
			if err := ValidatePlanInput(&in); err != nil {
				return nil, err
			}

			def, err := app.LoadDefinition(in.DefinitionPath, opts.Version.Version)
			if err != nil {
				return nil, err
			}
			planned, err := app.Plan(def, opts.Registry, app.PlanOptions{
				Steps:   in.Steps,
				StartAt: in.StartAt,
				Dry:     in.Dry,
			})
			if err != nil {
				return nil, err
			}

			return &PlanOutput{
				Name:    def.Name,
				Title:   def.DisplayTitle(),
				Summary: summarize(planned),
				Steps:   planned,
			}, nil
		})
}

func summarize(planned []app.PlannedStep) PlanSummary {
	s := PlanSummary{Declared: len(planned)}
	for _, p := range planned {
		if !p.Known {
			s.Unknown++
			continue
		}
		if !p.Selected {
			continue
		}
		s.Selected++
		if p.Dry {
			s.Dry++
		} else {
			s.Run++
		}
	}
	return s
}

func registerWaitCheckTool(srv *mcp.Server, fsys wait.FileSystem) {
	srv.Tool("actor_wait_check").
		Description("Check once whether wait specs are satisfied. Files are left in place.").
		ReadOnly().
		Handler(func(_ context.Context, in WaitCheckInput) (*WaitCheckOutput, error) {
			if err := ValidateWaitCheckInput(&in); err != nil {
				return nil, err
			}
			return checkWait(fsys, in.Specs)
		})
}

func checkWait(fsys wait.FileSystem, args []string) (*WaitCheckOutput, error) {
	specs, err := wait.ParseSpecs(args)
	if err != nil {
		return nil, err
	}
	set := wait.NewSet(fsys, specs...)
	satisfied, err := set.Poll(false)
	if err != nil {
		return nil, err
	}

	out := &WaitCheckOutput{
		Satisfied: satisfied,
		Total:     set.Total(),
		Pending:   set.Pending(),
		Waiting:   set.Describe(),
	}
	if satisfied {
		out.Jobs = set.Wanted()
	}
	return out, nil
}

func registerJobsTool(srv *mcp.Server, open func() (ports.JobJournal, error)) {
	srv.Tool("actor_jobs").
		Description("List batch jobs recorded in the submission journal, newest first.").
		ReadOnly().
		Handler(func(ctx context.Context, in JobsInput) (*JobsOutput, error) {
			if err := ValidateJobsInput(&in); err != nil {
				return nil, err
			}
			j, err := open()
			if err != nil {
				return nil, fmt.Errorf("failed to open journal: %w", err)
			}
			defer func() { _ = j.Close() }()

			records, err := j.List(ctx, in.RunID)
			if err != nil {
				return nil, err
			}
			return toJobsOutput(records, in.Limit), nil
		})
}

func toJobsOutput(records []ports.JobRecord, limit int) *JobsOutput {
	if limit <= 0 {
		limit = defaultJobsLimit
	}
	sorted := append([]ports.JobRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SubmittedAt.After(sorted[j].SubmittedAt)
	})

	out := &JobsOutput{Jobs: []JobInfo{}, Total: len(sorted)}
	for i, r := range sorted {
		if i == limit {
			break
		}
		out.Jobs = append(out.Jobs, JobInfo{
			JobID:       r.JobID,
			RunID:       r.RunID,
			Step:        r.Step,
			Script:      r.Script,
			After:       r.After,
			Done:        r.Done,
			User:        r.User,
			SubmittedAt: r.SubmittedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	return out
}

func registerStatusTool(srv *mcp.Server, opts Options) {
	srv.Tool("actor_status").
		Description("Get actor version info and whether a pipeline definition loads.").
		ReadOnly().
		Handler(func(_ context.Context, in StatusInput) (*StatusOutput, error) {
			if in.DefinitionPath == "" {
				in.DefinitionPath = opts.DefaultDefinition
			}
			if err := ValidateStatusInput(&in); err != nil {
				return nil, err
			}

			output := &StatusOutput{
				Version:        opts.Version.Version,
				Commit:         opts.Version.Commit,
				BuildDate:      opts.Version.BuildDate,
				DefinitionPath: in.DefinitionPath,
			}
			if opts.FileSystem != nil {
				if _, err := opts.FileSystem.Stat(in.DefinitionPath); err != nil {
					return output, nil //nolint:nilerr // a missing definition is a status, not a failure
				}
			}
			output.DefinitionExists = true

			def, err := app.LoadDefinition(in.DefinitionPath, opts.Version.Version)
			if err != nil {
				output.Error = err.Error()
				return output, nil
			}
			output.IsValid = true
			output.StepCount = len(def.Steps)
			return output, nil
		})
}
