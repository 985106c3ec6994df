package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/feedterm/internal/api"
)

func userPath(username string) string {
	return "/users/" + username
}

func postPath(id string) string {
	return "/posts/" + id
}

type postView struct {
	post       api.Post
	dateFormat string
	current    string
	selected   bool
	width      int
}

func (v postView) render() string {
	p := v.post
	author := "unknown"
	if p.User != nil {
		author = link("@"+p.User.Username, v.current == userPath(p.User.Username))
	}
	head := author + "  " + mutedStyle.Render(p.CreatedAt.Local().Format(v.dateFormat))
	if p.Mine {
		head += mutedStyle.Render("  (you)")
	}

	body := p.Content
	switch {
	case p.SpoilerOf != nil:
		body = mutedStyle.Render(fmt.Sprintf("spoiler of %s", *p.SpoilerOf))
	case p.NSFW:
		body = mutedStyle.Render("[nsfw]")
	}
	if 8 < v.width {
		body = lipgloss.NewStyle().Width(v.width - 4).Render(body)
	}

	counts := fmt.Sprintf("%s  %d likes  %d comments",
		link("#"+p.ID, v.current == postPath(p.ID)), p.LikesCount, p.CommentsCount)

	block := strings.Join([]string{head, body, mutedStyle.Render(counts)}, "\n")
	if v.selected {
		return selectedStyle.Render(block)
	}
	return itemStyle.Render(block)
}

func renderComment(c api.Comment, dateFormat string, width int) string {
	author := "unknown"
	if c.User != nil {
		author = linkStyle.Render("@" + c.User.Username)
	}
	body := c.Content
	if 8 < width {
		body = lipgloss.NewStyle().Width(width - 4).Render(body)
	}
	return itemStyle.Render(author + "  " + mutedStyle.Render(c.CreatedAt.Local().Format(dateFormat)) + "\n" + body)
}

// window returns the [start, end) range of n entries to show so that
// cursor is visible when at most size fit.
func window(n, cursor, size int) (int, int) {
	if size < 1 {
		size = 1
	}
	if n <= size {
		return 0, n
	}
	start := cursor - size + 1
	if start < 0 {
		start = 0
	}
	end := start + size
	if n < end {
		end = n
		start = end - size
	}
	return start, end
}
