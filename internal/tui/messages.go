package tui

import tea "github.com/charmbracelet/bubbletea"

// AlertMsg shows a blocking alert until dismissed.
type AlertMsg struct {
	Err error
}

func alert(err error) tea.Cmd {
	return func() tea.Msg {
		return AlertMsg{Err: err}
	}
}

type statusMsg string

type loggedOutMsg struct{ err error }
