package tui

import (
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/converge/internal/reconcile"
)

func TestModelInitReturnsTickCommand(t *testing.T) {
	m := NewModel("brew install foo", nil)
	require.NotNil(t, m.Init())
	require.False(t, m.IsFinished())
}

func TestModelSpinnerTicksUntilDone(t *testing.T) {
	m := NewModel("brew", nil)

	updated, cmd := m.Update(spinner.TickMsg{ID: m.spinner.ID()})
	m = updated.(Model)
	require.NotNil(t, cmd)
	require.Contains(t, m.View(), "brew")

	updated, cmd = m.Update(DoneMsg{Result: reconcile.Result{Changed: true, Message: "Package installed: foo"}})
	m = updated.(Model)
	require.NotNil(t, cmd)
	require.True(t, m.IsFinished())
	require.Equal(t, "", m.View())

	res, ok := m.Result()
	require.True(t, ok)
	require.Equal(t, "Package installed: foo", res.Message)

	_, cmd = m.Update(spinner.TickMsg{ID: m.spinner.ID()})
	require.Nil(t, cmd)
}

func TestModelCtrlCCancelsRun(t *testing.T) {
	cancelled := false
	m := NewModel("conda", func() { cancelled = true })

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(Model)
	require.NotNil(t, cmd)
	require.True(t, cancelled)
	require.True(t, m.Cancelled())
	require.True(t, m.IsFinished())

	_, ok := m.Result()
	require.False(t, ok)
}

func TestModelMarksFinishedOnQuit(t *testing.T) {
	m := NewModel("brew", nil)

	updated, cmd := m.Update(tea.QuitMsg{})
	require.Nil(t, cmd)
	require.True(t, updated.(Model).IsFinished())
}
