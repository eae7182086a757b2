package tui

import (
	"strings"

	"github.com/felixgeelhaar/actor/internal/domain/pipeline"
	"github.com/felixgeelhaar/actor/internal/tui/ui"
)

// RenderSteps renders the selected steps before a run. Steps that will
// run are marked with "+", dry ones with "-".
func RenderSteps(steps []pipeline.Line) string {
	return renderSteps(steps, ui.DefaultStyles())
}

func renderSteps(steps []pipeline.Line, styles ui.Styles) string {
	var b strings.Builder
	for _, s := range steps {
		mark, name := "+", styles.StepRun.Render(s.Key())
		if s.Dry() {
			mark, name = "-", styles.StepDry.Render(s.Key())
		}
		b.WriteString(styles.StepMark.Render(mark))
		b.WriteString(" ")
		b.WriteString(name)
		if s.Key() != s.Tag() {
			b.WriteString(" ")
			b.WriteString(styles.StepTag.Render("(" + s.Tag() + ")"))
		}
		b.WriteString("\n")
	}
	return b.String()
}
