package library

import (
	"context"

	"github.com/felixgeelhaar/actor/internal/domain/pipeline"
)

// Mkdir creates a directory before execution starts. Creating an existing
// directory succeeds, so reruns are harmless.
type Mkdir struct {
	pipeline.Base
}

// NewMkdir builds a Mkdir step.
func NewMkdir(b pipeline.Base) pipeline.Line {
	return &Mkdir{Base: b}
}

func (m *Mkdir) Verify(context.Context) bool {
	if m.Properties().String("path") == "" {
		return m.Fail("no path given")
	}
	return true
}

func (m *Mkdir) PreExecute(context.Context) bool {
	path := m.Properties().String("path")
	if err := m.Runtime().FileSystem().MkdirAll(path, 0o755); err != nil {
		return m.Fail("creating %s: %v", path, err)
	}
	return true
}

// Report links the directory under its own scene when the step has a
// title.
func (m *Mkdir) Report(context.Context) bool {
	if m.Properties().String("title") == "" {
		return true
	}
	rep := m.Runtime().Reporter()
	if err := rep.Scene(SceneTitle(m.Key(), m.Properties())); err != nil {
		return m.Fail("report: %v", err)
	}
	if err := rep.Link(m.Properties().String("path"), ""); err != nil {
		return m.Fail("report: %v", err)
	}
	return true
}
