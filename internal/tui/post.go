package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/feedterm/internal/api"
	"github.com/jask/feedterm/internal/router"
)

type postPage struct {
	deps     Deps
	post     api.Post
	comments []api.Comment
	current  string
}

func loadPostPage(ctx context.Context, deps Deps, params router.Params) (router.Page, error) {
	id := params.Get("postID")
	post, err := deps.API.Post(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := deps.API.Comments(ctx, id, deps.pageSize())
	if err != nil {
		return nil, err
	}
	return &postPage{deps: deps, post: post, comments: comments}, nil
}

func (p *postPage) Init() tea.Cmd { return nil }

func (p *postPage) MarkCurrent(path string) {
	p.current = path
}

func (p *postPage) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "u":
			if p.post.User != nil {
				return router.Go(userPath(p.post.User.Username))
			}
		case "esc":
			return router.Back()
		}
	}
	return nil
}

func (p *postPage) View(width, height int) string {
	var b strings.Builder
	b.WriteString(postView{
		post:       p.post,
		dateFormat: p.deps.dateFormat(),
		current:    p.current,
		width:      width,
	}.render())
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render("Comments"))
	b.WriteString("\n")
	if len(p.comments) == 0 {
		b.WriteString(mutedStyle.Render("No comments yet."))
	}
	for _, c := range p.comments {
		b.WriteString(renderComment(c, p.deps.dateFormat(), width))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("u author  esc back"))
	return b.String()
}
