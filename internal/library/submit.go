package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/actor/internal/domain/pipeline"
	"github.com/felixgeelhaar/actor/internal/domain/wait"
	"github.com/felixgeelhaar/actor/internal/ports"
)

// Submit sends batch jobs to the cluster and waits for them.
//
// Properties: script (required), args (one job), jobs (one job per entry,
// each a space separated argument string), after, options, prefix, done
// (sentinel template, default "<key>-@.done"), wait (default true),
// include and exclude (package patterns).
type Submit struct {
	pipeline.Base
	jobIDs []string
}

// NewSubmit builds a Submit step.
func NewSubmit(b pipeline.Base) pipeline.Line {
	return &Submit{Base: b}
}

// JobIDs returns the ids of the submitted jobs.
func (s *Submit) JobIDs() []string {
	return s.jobIDs
}

func (s *Submit) doneTemplate() string {
	if d := s.Properties().String("done"); d != "" {
		return d
	}
	return s.Key() + "-" + wait.Template + ".done"
}

// argSets returns the arguments of each job to submit.
func (s *Submit) argSets() [][]string {
	props := s.Properties()
	if jobs := props.Strings("jobs"); len(jobs) > 0 {
		sets := make([][]string, 0, len(jobs))
		for _, j := range jobs {
			sets = append(sets, strings.Fields(j))
		}
		return sets
	}
	return [][]string{props.Strings("args")}
}

func (s *Submit) Verify(context.Context) bool {
	if s.Properties().String("script") == "" {
		return s.Fail("no script given")
	}
	return checkInputs(&s.Base, s.Properties().Strings("inputs"))
}

func (s *Submit) Execute(ctx context.Context) bool {
	rt := s.Runtime()
	props := s.Properties()
	sets := s.argSets()
	done := s.doneTemplate()

	if s.Dry() {
		s.Logger(ctx).Info(ctx, "Dry run, not submitting",
			ports.F("script", props.String("script")), ports.F("jobs", len(sets)))
		return true
	}

	for _, args := range sets {
		id, err := rt.Submit(ctx, s.Key(), ports.JobRequest{
			Script:  props.String("script"),
			Args:    args,
			After:   props.Strings("after"),
			Done:    done,
			Prefix:  props.String("prefix"),
			Options: props.String("options"),
		})
		if err != nil {
			return s.Fail("submit %s: %v", props.String("script"), err)
		}
		s.jobIDs = append(s.jobIDs, id)
	}

	if !props.Bool("wait", true) {
		return true
	}

	spec := wait.File(done)
	if strings.Contains(done, wait.Template) {
		spec = wait.Count(done, len(s.jobIDs))
	}
	if err := rt.Wait(ctx, spec); err != nil {
		return s.Fail("waiting for %d jobs: %v", len(s.jobIDs), err)
	}
	return true
}

func (s *Submit) PostExecute(context.Context) bool {
	if s.Dry() {
		return true
	}
	return addToPackage(&s.Base)
}

func (s *Submit) Report(context.Context) bool {
	rep := s.Runtime().Reporter()
	if err := rep.Scene(SceneTitle(s.Key(), s.Properties())); err != nil {
		return s.Fail("report: %v", err)
	}
	text := fmt.Sprintf("Script %s: %d job(s) submitted", s.Properties().String("script"), len(s.jobIDs))
	if len(s.jobIDs) > 0 {
		text += " (" + strings.Join(s.jobIDs, ", ") + ")"
	}
	if s.Dry() {
		text = fmt.Sprintf("Script %s: not submitted", s.Properties().String("script"))
	}
	if err := rep.Paragraph(text + "."); err != nil {
		return s.Fail("report: %v", err)
	}
	return true
}
