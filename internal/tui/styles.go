package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginBottom(1)
	labelStyle    = lipgloss.NewStyle().Width(12).Foreground(lipgloss.Color("8"))
	focusedLabel  = labelStyle.Copy().Foreground(lipgloss.Color("12")).Bold(true)
	modeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	flashStyles = map[string]lipgloss.Style{
		"success": lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		"danger":  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		"warning": lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	}
)

func flashStyle(category string) lipgloss.Style {
	if s, ok := flashStyles[category]; ok {
		return s
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
}
