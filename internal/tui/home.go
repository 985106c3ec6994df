package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/glog"

	"github.com/jask/feedterm/internal/api"
	"github.com/jask/feedterm/internal/router"
	"github.com/jask/feedterm/internal/service"
)

// homePage shows the timeline of the logged in user with a compose box
// on top. All timeline state lives in the reconciler; the page only
// reflects it.
type homePage struct {
	ctx  context.Context
	deps Deps
	rec  *service.Reconciler

	compose    textarea.Model
	composing  bool
	publishing bool
	loaded     bool
	cursor     int
	width      int

	updates chan struct{}
	done    chan struct{}
	once    sync.Once
}

type homeChangedMsg struct{ page *homePage }

type homeLoadedMsg struct {
	page *homePage
	err  error
}

type publishedMsg struct {
	page *homePage
	item api.TimelineItem
	err  error
}

type loadedMoreMsg struct {
	page *homePage
	n    int
	err  error
}

func newHomePage(ctx context.Context, deps Deps) *homePage {
	ta := textarea.New()
	ta.Placeholder = "Write something..."
	ta.CharLimit = service.MaxContentLength
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(60)
	ta.Cursor.SetMode(cursor.CursorStatic)

	p := &homePage{
		ctx:     ctx,
		deps:    deps,
		compose: ta,
		updates: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	p.rec = service.NewReconciler(deps.API, deps.pageSize(), p.notify)
	return p
}

// notify wakes the page without blocking the reconciler.
func (p *homePage) notify() {
	select {
	case p.updates <- struct{}{}:
	default:
	}
}

func (p *homePage) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-p.updates:
			return homeChangedMsg{page: p}
		case <-p.done:
			return nil
		}
	}
}

func (p *homePage) Init() tea.Cmd {
	return tea.Batch(p.load(), p.wait())
}

func (p *homePage) load() tea.Cmd {
	return func() tea.Msg {
		if err := p.rec.InitialLoad(p.ctx); err != nil {
			return homeLoadedMsg{page: p, err: err}
		}
		p.rec.Listen()
		return homeLoadedMsg{page: p}
	}
}

func (p *homePage) Disconnect() {
	p.once.Do(func() {
		close(p.done)
		p.rec.Close()
	})
}

func (p *homePage) publish() tea.Cmd {
	content := p.compose.Value()
	if strings.TrimSpace(content) == "" || p.publishing {
		return nil
	}
	if err := service.ValidateContent(content); err != nil {
		return alert(err)
	}
	p.publishing = true
	p.compose.Blur()
	return func() tea.Msg {
		item, err := p.rec.Publish(p.ctx, content)
		return publishedMsg{page: p, item: item, err: err}
	}
}

func (p *homePage) loadMore() tea.Cmd {
	if !p.rec.HasMore() || p.rec.Loading() {
		return nil
	}
	return func() tea.Msg {
		n, err := p.rec.LoadMore(p.ctx)
		return loadedMoreMsg{page: p, n: n, err: err}
	}
}

func (p *homePage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		if 10 < msg.Width {
			p.compose.SetWidth(msg.Width - 4)
		}
		return nil
	case homeChangedMsg:
		if msg.page != p {
			return nil
		}
		p.clampCursor()
		return p.wait()
	case homeLoadedMsg:
		if msg.page != p {
			return nil
		}
		p.loaded = true
		if msg.err != nil && !errors.Is(msg.err, service.ErrClosed) {
			return alert(msg.err)
		}
		return nil
	case publishedMsg:
		if msg.page != p {
			return nil
		}
		p.publishing = false
		if msg.err != nil {
			if errors.Is(msg.err, service.ErrClosed) {
				return nil
			}
			p.composing = true
			return tea.Batch(alert(msg.err), p.compose.Focus())
		}
		glog.V(1).Infof("[home]published %s\n", msg.item.ID)
		p.compose.Reset()
		p.composing = false
		p.cursor = 0
		return func() tea.Msg { return statusMsg("published") }
	case loadedMoreMsg:
		if msg.page != p {
			return nil
		}
		if msg.err != nil {
			switch {
			case errors.Is(msg.err, service.ErrClosed), errors.Is(msg.err, service.ErrNoMore),
				errors.Is(msg.err, service.ErrLoadInFlight):
				return nil
			}
			return alert(msg.err)
		}
		return nil
	case tea.KeyMsg:
		if p.composing {
			return p.composeKey(msg)
		}
		return p.listKey(msg)
	}
	if p.composing {
		var cmd tea.Cmd
		p.compose, cmd = p.compose.Update(msg)
		return cmd
	}
	return nil
}

func (p *homePage) composeKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+s":
		return p.publish()
	case "tab", "esc":
		p.composing = false
		p.compose.Blur()
		return nil
	}
	if p.publishing {
		return nil
	}
	var cmd tea.Cmd
	p.compose, cmd = p.compose.Update(msg)
	return cmd
}

func (p *homePage) listKey(msg tea.KeyMsg) tea.Cmd {
	items := p.rec.Snapshot()
	switch msg.String() {
	case "tab", "i":
		if p.publishing {
			return nil
		}
		p.composing = true
		return p.compose.Focus()
	case "n":
		if 0 < p.rec.Flush() {
			p.cursor = 0
		}
		return nil
	case "m":
		return p.loadMore()
	case "j", "down":
		if p.cursor < len(items)-1 {
			p.cursor++
		}
		if p.cursor == len(items)-1 {
			return p.loadMore()
		}
		return nil
	case "k", "up":
		if 0 < p.cursor {
			p.cursor--
		}
		return nil
	case "enter":
		if post := selectedPost(items, p.cursor); post != nil {
			return router.Go(postPath(post.ID))
		}
		return nil
	case "u":
		if post := selectedPost(items, p.cursor); post != nil && post.User != nil {
			return router.Go(userPath(post.User.Username))
		}
		return nil
	}
	return nil
}

func selectedPost(items []api.TimelineItem, cursor int) *api.Post {
	if cursor < 0 || len(items) <= cursor {
		return nil
	}
	return items[cursor].Post
}

func (p *homePage) clampCursor() {
	n := len(p.rec.Snapshot())
	if n <= p.cursor {
		p.cursor = max(n-1, 0)
	}
}

func (p *homePage) View(width, height int) string {
	var b strings.Builder

	b.WriteString(p.compose.View())
	b.WriteString("\n")
	switch {
	case p.publishing:
		b.WriteString(mutedStyle.Render("publishing..."))
	case p.composing:
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d/%d  ctrl+s publish  tab leave",
			len([]rune(p.compose.Value())), service.MaxContentLength)))
	default:
		b.WriteString(mutedStyle.Render("tab compose  j/k move  enter open  u author  n new  m more"))
	}
	b.WriteString("\n")

	if n := p.rec.PendingCount(); 0 < n {
		label := fmt.Sprintf("%d new posts (n)", n)
		if n == 1 {
			label = "1 new post (n)"
		}
		b.WriteString(pendingStyle.Render(label))
		b.WriteString("\n")
	}

	items := p.rec.Snapshot()
	if !p.loaded {
		b.WriteString(mutedStyle.Render("loading timeline..."))
		return b.String()
	}
	if len(items) == 0 {
		b.WriteString(mutedStyle.Render("Your timeline is empty. Follow someone or publish a post."))
		return b.String()
	}

	// a post takes about four lines
	start, end := window(len(items), p.cursor, (height-6)/4)
	for i := start; i < end; i++ {
		if items[i].Post == nil {
			continue
		}
		b.WriteString(postView{
			post:       *items[i].Post,
			dateFormat: p.deps.dateFormat(),
			selected:   i == p.cursor && !p.composing,
			width:      width,
		}.render())
		b.WriteString("\n")
	}

	switch {
	case p.rec.Loading():
		b.WriteString(mutedStyle.Render("loading more..."))
	case p.rec.HasMore():
		b.WriteString(mutedStyle.Render("m load more"))
	}
	return b.String()
}
