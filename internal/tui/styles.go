package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))

	changedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	unchangedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	failureStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	summaryStyle   = lipgloss.NewStyle().MarginTop(1)
)
