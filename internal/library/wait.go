package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/actor/internal/domain/pipeline"
	"github.com/felixgeelhaar/actor/internal/domain/wait"
	"github.com/felixgeelhaar/actor/internal/ports"
)

// Wait blocks until files appear.
//
// Properties: files (list of "path" or "path:N"), or pattern with count.
type Wait struct {
	pipeline.Base
	specs []wait.Spec
}

// NewWait builds a Wait step.
func NewWait(b pipeline.Base) pipeline.Line {
	return &Wait{Base: b}
}

func (w *Wait) Verify(context.Context) bool {
	props := w.Properties()
	specs, err := wait.ParseSpecs(props.Strings("files"))
	if err != nil {
		return w.Fail("%v", err)
	}
	if pattern := props.String("pattern"); pattern != "" {
		specs = append(specs, wait.Count(pattern, props.Int("count", 1)))
	}
	if len(specs) == 0 {
		return w.Fail("nothing to wait for: set files or pattern")
	}
	w.specs = specs
	return true
}

func (w *Wait) Execute(ctx context.Context) bool {
	rt := w.Runtime()
	if w.Dry() {
		w.Logger(ctx).Info(ctx, "Dry run, not waiting", ports.F("specs", w.describe()))
		return true
	}
	if err := rt.Wait(ctx, w.specs...); err != nil {
		return w.Fail("%v", err)
	}
	return true
}

func (w *Wait) Report(context.Context) bool {
	if w.Properties().String("title") == "" {
		return true
	}
	rep := w.Runtime().Reporter()
	if err := rep.Scene(SceneTitle(w.Key(), w.Properties())); err != nil {
		return w.Fail("report: %v", err)
	}
	if err := rep.Paragraph(fmt.Sprintf("Waited for %s.", w.describe())); err != nil {
		return w.Fail("report: %v", err)
	}
	return true
}

func (w *Wait) describe() string {
	parts := make([]string, 0, len(w.specs))
	for _, s := range w.specs {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, ", ")
}
