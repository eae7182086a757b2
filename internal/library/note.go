package library

import (
	"context"

	"github.com/felixgeelhaar/actor/internal/domain/pipeline"
)

// Note adds a titled paragraph to the report.
type Note struct {
	pipeline.Base
}

// NewNote builds a Note step.
func NewNote(b pipeline.Base) pipeline.Line {
	return &Note{Base: b}
}

func (n *Note) Report(context.Context) bool {
	rep := n.Runtime().Reporter()
	if err := rep.Scene(SceneTitle(n.Key(), n.Properties())); err != nil {
		return n.Fail("report: %v", err)
	}
	if text := n.Properties().String("text"); text != "" {
		if err := rep.Paragraph(text); err != nil {
			return n.Fail("report: %v", err)
		}
	}
	return true
}
