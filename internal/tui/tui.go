// Package tui provides the terminal views of actor: the step list shown
// before a run and the interactive wait.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/felixgeelhaar/actor/internal/domain/wait"
)

// RunWait shows a live view of specs until they are all satisfied, the
// user stops it or ctx is done.
func RunWait(ctx context.Context, fsys wait.FileSystem, specs []wait.Spec, opts WaitOptions, progOpts ...tea.ProgramOption) (*WaitResult, error) {
	model := newWaitModel(wait.NewSet(fsys, specs...), opts)

	p := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithContext(ctx)}, progOpts...)...)
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("wait view failed: %w", err)
	}

	m, ok := finalModel.(waitModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}
	if m.err != nil {
		return m.result(), m.err
	}
	return m.result(), nil
}
