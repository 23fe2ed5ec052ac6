package tui

import (
	"fmt"
)

// View renders the spinner line. Once finished it renders nothing so the
// report printed afterwards stands alone.
func (m Model) View() string {
	if m.finished {
		return ""
	}
	return fmt.Sprintf("%s %s\n", m.spinner.View(), titleStyle.Render(m.title))
}
