package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/feedterm/internal/router"
	"github.com/jask/feedterm/internal/transport"
)

// errorPage is mounted when a page could not be produced.
type errorPage struct {
	err error
}

func newErrorPage(err error) router.Page {
	return &errorPage{err: err}
}

func (p *errorPage) Init() tea.Cmd { return nil }

func (p *errorPage) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		return router.Back()
	}
	return nil
}

func (p *errorPage) View(width, height int) string {
	title := "Something went wrong"
	if re, ok := transport.AsRequestError(p.err); ok {
		title = re.Kind
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(errorStyle.Render(p.err.Error()))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("esc back  ctrl+t home"))
	return b.String()
}
