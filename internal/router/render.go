package router

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/glog"
)

// Mount is the fixed region pages are rendered into.
type Mount interface {
	Clear()
	Append(p Page)
	// MarkCurrent highlights the mount's own links pointing at path.
	MarkCurrent(path string)
}

// Renderer owns the mounted page. Only the latest navigation is mounted;
// a resolution overtaken by a newer navigation is disconnected and
// dropped.
type Renderer struct {
	target    Mount
	errorPage func(error) Page
	current   Page
	gen       uint64
}

// RenderInto creates the renderer for target. errorPage builds the page
// shown when a producer fails.
func RenderInto(target Mount, errorPage func(error) Page) *Renderer {
	return &Renderer{target: target, errorPage: errorPage}
}

// Current is the mounted page, nil while a navigation is in flight.
func (r *Renderer) Current() Page {
	return r.current
}

type resolvedMsg struct {
	gen  uint64
	path string
	page Page
	err  error
}

func (r *Renderer) render(ctx context.Context, res Resolution) tea.Cmd {
	if r.current != nil {
		disconnect(r.current)
		r.current = nil
		r.target.Clear()
	}
	r.gen++
	gen := r.gen
	return func() tea.Msg {
		page, err := res.Page(ctx)
		return resolvedMsg{gen: gen, path: res.Path, page: page, err: err}
	}
}

func (r *Renderer) mount(msg resolvedMsg) (tea.Cmd, bool) {
	if msg.gen != r.gen {
		glog.V(2).Infof("[router]drop stale %s\n", msg.path)
		if msg.page != nil {
			disconnect(msg.page)
		}
		return nil, false
	}

	page := msg.page
	if msg.err != nil {
		glog.Errorf("[router]%s: %v\n", msg.path, msg.err)
		page = r.errorPage(msg.err)
	}

	r.target.Append(page)
	r.current = page
	cmd := page.Init()

	r.target.MarkCurrent(msg.path)
	if lm, ok := page.(LinkMarker); ok {
		lm.MarkCurrent(msg.path)
	}
	return cmd, true
}
