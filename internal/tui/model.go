package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/converge/internal/reconcile"
)

// DoneMsg delivers the finished run to the program.
type DoneMsg struct {
	Result reconcile.Result
}

// Model shows a spinner while a reconciliation is in flight.
type Model struct {
	title     string
	spinner   spinner.Model
	cancel    context.CancelFunc
	result    *reconcile.Result
	finished  bool
	cancelled bool
}

// NewModel returns a spinner model labelled with title. cancel, when not nil,
// is called if the user interrupts the program.
func NewModel(title string, cancel context.CancelFunc) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return Model{title: title, spinner: s, cancel: cancel}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// IsFinished reports whether the run has returned or been cancelled.
func (m Model) IsFinished() bool {
	return m.finished
}

// Cancelled reports whether the user interrupted the run.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Result returns the delivered result, if any.
func (m Model) Result() (reconcile.Result, bool) {
	if m.result == nil {
		return reconcile.Result{}, false
	}
	return *m.result, true
}
