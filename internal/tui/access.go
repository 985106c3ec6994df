package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/feedterm/internal/router"
)

// accessPage is shown at "/" to anonymous users.
type accessPage struct {
	ctx     context.Context
	deps    Deps
	email   textinput.Model
	pending bool
}

type loggedInMsg struct {
	page *accessPage
	err  error
}

func newAccessPage(ctx context.Context, deps Deps) *accessPage {
	ti := textinput.New()
	ti.Placeholder = "you@example.org"
	ti.Prompt = "email: "
	ti.CharLimit = 254
	ti.Width = 40
	ti.Cursor.SetMode(cursor.CursorStatic)
	return &accessPage{ctx: ctx, deps: deps, email: ti}
}

func (p *accessPage) Init() tea.Cmd {
	return p.email.Focus()
}

func (p *accessPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loggedInMsg:
		if msg.page != p {
			return nil
		}
		p.pending = false
		if msg.err != nil {
			return tea.Batch(alert(msg.err), p.email.Focus())
		}
		return router.Go("/")
	case tea.KeyMsg:
		if p.pending {
			return nil
		}
		if msg.String() == "enter" {
			return p.login()
		}
	}
	var cmd tea.Cmd
	p.email, cmd = p.email.Update(msg)
	return cmd
}

func (p *accessPage) login() tea.Cmd {
	email := strings.TrimSpace(p.email.Value())
	if email == "" {
		return nil
	}
	p.pending = true
	p.email.Blur()
	return func() tea.Msg {
		_, err := p.deps.Sessions.Login(p.ctx, email)
		return loggedInMsg{page: p, err: err}
	}
}

func (p *accessPage) View(width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Welcome"))
	b.WriteString("\n\n")
	b.WriteString("Log in with your email to see your timeline.\n\n")
	b.WriteString(p.email.View())
	b.WriteString("\n\n")
	if p.pending {
		b.WriteString(mutedStyle.Render("logging in..."))
	} else {
		b.WriteString(mutedStyle.Render("enter to log in"))
	}
	return b.String()
}
