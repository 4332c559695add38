package ui

import "github.com/charmbracelet/lipgloss"

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorMuted   lipgloss.Color = "8" // Gray
)

var (
	nameStyle    = lipgloss.NewStyle().Bold(true).Width(16)
	addressStyle = lipgloss.NewStyle().Foreground(ColorMuted).Width(18)
	okStyle      = lipgloss.NewStyle().Foreground(ColorSuccess).Width(10).Align(lipgloss.Right)
	slowStyle    = lipgloss.NewStyle().Foreground(ColorWarning).Width(10).Align(lipgloss.Right)
	failStyle    = lipgloss.NewStyle().Foreground(ColorError).Width(14).Align(lipgloss.Right)
	timeStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
)
