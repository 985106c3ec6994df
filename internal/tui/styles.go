package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Underline(true)
	linkStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	currentLinkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true).Underline(true)
	mutedStyle       = lipgloss.NewStyle().Faint(true)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	pendingStyle     = lipgloss.NewStyle().Reverse(true).Bold(true).Padding(0, 1)
	selectedStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("14")).PaddingLeft(1)
	itemStyle        = lipgloss.NewStyle().PaddingLeft(2)
	alertStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("9")).Padding(1, 2)
	headerStyle      = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, true, false).MarginBottom(1)
)

// link renders a navigable target, highlighted when it is the current
// location.
func link(label string, current bool) string {
	if current {
		return currentLinkStyle.Render(label)
	}
	return linkStyle.Render(label)
}
