package router

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Page is a mounted displayable unit.
type Page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(width, height int) string
}

// Disconnecter is implemented by pages that hold resources (streams,
// timers) to release when they are replaced.
type Disconnecter interface {
	Disconnect()
}

// LinkMarker is implemented by pages that render links and want the ones
// pointing at the current path highlighted.
type LinkMarker interface {
	MarkCurrent(path string)
}

// Params are the named captures of a matched route.
type Params map[string]string

func (p Params) Get(name string) string {
	if p == nil {
		return ""
	}
	return p[name]
}

// Producer builds a page for a matched route. It runs inside a tea.Cmd and
// may block.
type Producer func(ctx context.Context, params Params) (Page, error)

func disconnect(p Page) {
	if d, ok := p.(Disconnecter); ok {
		d.Disconnect()
	}
}
