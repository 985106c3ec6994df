package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/feedterm/internal/api"
	"github.com/jask/feedterm/internal/router"
)

// userPage shows a profile and its latest posts.
type userPage struct {
	ctx     context.Context
	deps    Deps
	user    api.UserProfile
	posts   []api.Post
	cursor  int
	current string
	pending bool
}

type followToggledMsg struct {
	page *userPage
	out  api.ToggleFollowOutput
	err  error
}

func loadUserPage(ctx context.Context, deps Deps, params router.Params) (router.Page, error) {
	username := params.Get("username")
	user, err := deps.API.User(ctx, username)
	if err != nil {
		return nil, err
	}
	posts, err := deps.API.Posts(ctx, username, deps.pageSize())
	if err != nil {
		return nil, err
	}
	return &userPage{ctx: ctx, deps: deps, user: user, posts: posts}, nil
}

func (p *userPage) Init() tea.Cmd { return nil }

func (p *userPage) MarkCurrent(path string) {
	p.current = path
}

func (p *userPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case followToggledMsg:
		if msg.page != p {
			return nil
		}
		p.pending = false
		if msg.err != nil {
			return alert(msg.err)
		}
		p.user.Following = msg.out.Following
		p.user.FollowersCount = msg.out.FollowersCount
		return nil
	case tea.KeyMsg:
		switch msg.String() {
		case "f":
			return p.toggleFollow()
		case "j", "down":
			if p.cursor < len(p.posts)-1 {
				p.cursor++
			}
		case "k", "up":
			if 0 < p.cursor {
				p.cursor--
			}
		case "enter":
			if p.cursor < len(p.posts) {
				return router.Go(postPath(p.posts[p.cursor].ID))
			}
		case "esc":
			return router.Back()
		}
	}
	return nil
}

func (p *userPage) toggleFollow() tea.Cmd {
	if p.user.Me || p.pending || p.deps.me() == "" {
		return nil
	}
	p.pending = true
	username := p.user.Username
	return func() tea.Msg {
		out, err := p.deps.API.ToggleFollow(p.ctx, username)
		return followToggledMsg{page: p, out: out, err: err}
	}
}

func (p *userPage) View(width, height int) string {
	var b strings.Builder
	b.WriteString(link("@"+p.user.Username, p.current == userPath(p.user.Username)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d followers  %d following", p.user.FollowersCount, p.user.FolloweesCount))
	if p.user.Followeed {
		b.WriteString(mutedStyle.Render("  follows you"))
	}
	b.WriteString("\n")
	switch {
	case p.user.Me:
		b.WriteString(mutedStyle.Render("this is you"))
	case p.pending:
		b.WriteString(mutedStyle.Render("..."))
	case p.user.Following:
		b.WriteString(mutedStyle.Render("following  f unfollow"))
	case p.deps.me() != "":
		b.WriteString(mutedStyle.Render("f follow"))
	}
	b.WriteString("\n\n")

	if len(p.posts) == 0 {
		b.WriteString(mutedStyle.Render("No posts yet."))
		return b.String()
	}
	start, end := window(len(p.posts), p.cursor, (height-4)/4)
	for i := start; i < end; i++ {
		b.WriteString(postView{
			post:       p.posts[i],
			dateFormat: p.deps.dateFormat(),
			current:    p.current,
			selected:   i == p.cursor,
			width:      width,
		}.render())
		b.WriteString("\n")
	}
	return b.String()
}
