// Package components provides the reusable widgets of the wait view.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/actor/internal/tui/ui"
)

// Progress displays how many of a fixed number of units are done.
type Progress struct {
	done    int
	total   int
	message string
	width   int
	styles  ui.Styles
}

// NewProgress creates a progress bar over total units.
func NewProgress(total int) Progress {
	if total < 0 {
		total = 0
	}
	return Progress{
		total:  total,
		width:  40,
		styles: ui.DefaultStyles(),
	}
}

// Done returns the number of finished units.
func (p Progress) Done() int {
	return p.done
}

// Total returns the number of units.
func (p Progress) Total() int {
	return p.total
}

// Message returns the line shown under the bar.
func (p Progress) Message() string {
	return p.message
}

// Percent returns the finished fraction, 0 to 1. An empty progress is
// complete.
func (p Progress) Percent() float64 {
	if p.total == 0 {
		return 1
	}
	return float64(p.done) / float64(p.total)
}

// SetDone sets the number of finished units, clamped to the total.
func (p Progress) SetDone(done int) Progress {
	if done < 0 {
		done = 0
	}
	if done > p.total {
		done = p.total
	}
	p.done = done
	return p
}

// SetMessage sets the line shown under the bar.
func (p Progress) SetMessage(message string) Progress {
	p.message = message
	return p
}

// WithWidth sets the bar width including its brackets.
func (p Progress) WithWidth(width int) Progress {
	if width < 3 {
		width = 3
	}
	p.width = width
	return p
}

// View renders the bar, the unit count and the message.
func (p Progress) View() string {
	var b strings.Builder

	barWidth := p.width - 2
	filled := int(p.Percent() * float64(barWidth))
	bar := fmt.Sprintf("[%s%s]",
		strings.Repeat("█", filled),
		strings.Repeat("░", barWidth-filled),
	)
	b.WriteString(p.styles.ProgressBar.Render(bar))
	fmt.Fprintf(&b, " %d/%d", p.done, p.total)

	if p.message != "" {
		b.WriteString("\n")
		b.WriteString(p.styles.Help.Render(p.message))
	}
	return b.String()
}

// Spinner displays an animated spinner with optional message.
type Spinner struct {
	spinner spinner.Model
	message string
}

// NewSpinner creates a new spinner component.
func NewSpinner() Spinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ui.ColorPrimary)
	return Spinner{spinner: s}
}

// Message returns the current message.
func (s Spinner) Message() string {
	return s.message
}

// SetMessage sets the spinner message.
func (s Spinner) SetMessage(message string) Spinner {
	s.message = message
	return s
}

// Init returns the initial command for the spinner.
func (s Spinner) Init() tea.Cmd {
	return s.spinner.Tick
}

// Update handles spinner animation.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner.
func (s Spinner) View() string {
	if s.message != "" {
		return fmt.Sprintf("%s %s", s.spinner.View(), s.message)
	}
	return s.spinner.View()
}
