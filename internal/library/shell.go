package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/actor/internal/domain/pipeline"
	"github.com/felixgeelhaar/actor/internal/ports"
)

// Shell runs a command line.
//
// Properties: command (required), inputs (files that must exist),
// creates (skip when this file is newer than all inputs), report (include
// the output in the report), include and exclude (package patterns).
type Shell struct {
	pipeline.Base
	output  string
	skipped bool
}

// NewShell builds a Shell step.
func NewShell(b pipeline.Base) pipeline.Line {
	return &Shell{Base: b}
}

func (s *Shell) Verify(context.Context) bool {
	if s.Properties().String("command") == "" {
		return s.Fail("no command given")
	}
	return checkInputs(&s.Base, s.Properties().Strings("inputs"))
}

func (s *Shell) Execute(ctx context.Context) bool {
	rt := s.Runtime()
	props := s.Properties()
	cmd := props.String("command")

	if s.Dry() {
		s.Logger(ctx).Info(ctx, "Dry run, not executing", ports.F("cmd", cmd))
		return true
	}

	if creates := props.String("creates"); creates != "" {
		stale, err := MissingOrStale(rt.FileSystem(), creates, props.Strings("inputs")...)
		if err != nil {
			return s.Fail("checking %s: %v", creates, err)
		}
		if !stale {
			s.skipped = true
			s.Logger(ctx).Info(ctx, "Up to date, skipping", ports.F("file", creates))
			return true
		}
	}

	res, err := rt.Shell(ctx, cmd)
	if err != nil {
		return s.Fail("running %q: %v", cmd, err)
	}
	s.output = res.Output()
	if !res.Success() {
		return s.Fail("command exited with code %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return true
}

func (s *Shell) PostExecute(context.Context) bool {
	if s.Dry() {
		return true
	}
	return addToPackage(&s.Base)
}

func (s *Shell) Report(context.Context) bool {
	rep := s.Runtime().Reporter()
	props := s.Properties()
	if err := rep.Scene(SceneTitle(s.Key(), props)); err != nil {
		return s.Fail("report: %v", err)
	}
	text := fmt.Sprintf("Command: %s", props.String("command"))
	switch {
	case s.Dry():
		text += " (not executed)"
	case s.skipped:
		text += " (up to date)"
	}
	if err := rep.Paragraph(text); err != nil {
		return s.Fail("report: %v", err)
	}
	if props.Bool("report", false) && s.output != "" {
		if err := rep.Paragraph(s.output); err != nil {
			return s.Fail("report: %v", err)
		}
	}
	if creates := props.String("creates"); creates != "" {
		if err := rep.Link(creates, ""); err != nil {
			return s.Fail("report: %v", err)
		}
	}
	return true
}
