package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/felixgeelhaar/actor/internal/domain/wait"
	"github.com/felixgeelhaar/actor/internal/tui/components"
	"github.com/felixgeelhaar/actor/internal/tui/ui"
)

// WaitOptions tune the wait view.
type WaitOptions struct {
	// Title is shown above the progress bar.
	Title string
	// Interval between checks. Zero means wait.DefaultInterval.
	Interval time.Duration
	// Delete removes satisfied files.
	Delete bool
}

// WaitResult describes how the wait view ended.
type WaitResult struct {
	Satisfied bool
	Cancelled bool
	// Units is the number of jobs the satisfied waits stood for.
	Units int
}

type waitModel struct {
	set      *wait.Set
	opts     WaitOptions
	styles   ui.Styles
	keys     ui.KeyMap
	spinner  components.Spinner
	progress components.Progress
	width    int

	waiting   string
	polling   bool
	satisfied bool
	cancelled bool
	err       error
}

func newWaitModel(set *wait.Set, opts WaitOptions) waitModel {
	if opts.Interval <= 0 {
		opts.Interval = wait.DefaultInterval
	}
	if opts.Title == "" {
		opts.Title = "Waiting for jobs"
	}
	return waitModel{
		set:      set,
		opts:     opts,
		styles:   ui.DefaultStyles(),
		keys:     ui.DefaultKeyMap(),
		spinner:  components.NewSpinner(),
		progress: components.NewProgress(set.Total()).WithWidth(ui.DefaultProgressBarWidth),
		width:    ui.DefaultWidth,
		waiting:  set.Describe(),
		polling:  true,
	}
}

func (m waitModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), m.poll())
}

// poll checks the set once. Only one check is in flight at a time.
func (m waitModel) poll() tea.Cmd {
	set, del := m.set, m.opts.Delete
	return func() tea.Msg {
		done, err := set.Poll(del)
		return ui.PolledMsg{
			Satisfied: done,
			Pending:   set.Pending(),
			Waiting:   set.Describe(),
			Err:       err,
		}
	}
}

func (m waitModel) tick() tea.Cmd {
	return tea.Tick(m.opts.Interval, func(t time.Time) tea.Msg {
		return ui.TickMsg{At: t}
	})
}

func (m waitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := msg.Width - 4
		if w > ui.DefaultProgressBarWidth {
			w = ui.DefaultProgressBarWidth
		}
		m.progress = m.progress.WithWidth(w)
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.keys.IsQuit(msg):
			m.cancelled = true
			return m, tea.Quit
		case m.keys.IsRefresh(msg) && !m.polling:
			m.polling = true
			return m, m.poll()
		}
		return m, nil

	case ui.TickMsg:
		if m.polling {
			return m, nil
		}
		m.polling = true
		return m, m.poll()

	case ui.PolledMsg:
		m.polling = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, tea.Quit
		}
		m.progress = m.progress.SetDone(m.set.Total() - msg.Pending)
		m.waiting = msg.Waiting
		if msg.Satisfied {
			m.satisfied = true
			return m, tea.Quit
		}
		return m, m.tick()
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m waitModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(m.opts.Title))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(m.styles.Error.Render("✗ " + m.err.Error()))
		b.WriteString("\n")
		return b.String()
	case m.satisfied:
		b.WriteString(m.progress.View())
		b.WriteString("\n\n")
		b.WriteString(m.styles.Success.Render(fmt.Sprintf("✓ %d jobs completed.", m.set.Wanted())))
		b.WriteString("\n")
		return b.String()
	case m.cancelled:
		b.WriteString(m.styles.Warning.Render("Stopped waiting for: " + m.waiting))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.spinner.SetMessage("Waiting for: " + m.waiting).View())
	b.WriteString("\n\n")
	b.WriteString(m.progress.View())
	b.WriteString("\n\n")
	b.WriteString(m.styles.Help.Render(m.keys.HelpLine()))
	return b.String()
}

func (m waitModel) result() *WaitResult {
	r := &WaitResult{Satisfied: m.satisfied, Cancelled: m.cancelled}
	if m.satisfied {
		r.Units = m.set.Wanted()
	}
	return r
}
