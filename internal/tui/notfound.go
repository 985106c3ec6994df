package tui

import (
	"strings"

	"github.com/agnivade/levenshtein"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/feedterm/internal/router"
)

// sections are the first path segments the route table knows.
var sections = []string{"users", "posts"}

// maxTypo is the largest edit distance still considered a typo.
const maxTypo = 2

type notFoundPage struct {
	path       string
	suggestion string
}

func newNotFoundPage(path string) *notFoundPage {
	return &notFoundPage{path: path, suggestion: suggest(path)}
}

// suggest proposes the closest known location for path. The first segment
// is corrected when it is a near miss of a known section; anything else
// leads home.
func suggest(path string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	if len(segs) == 2 && segs[1] != "" {
		best, dist := "", maxTypo+1
		for _, s := range sections {
			if d := levenshtein.ComputeDistance(strings.ToLower(segs[0]), s); d < dist {
				best, dist = s, d
			}
		}
		if best != "" {
			if candidate := "/" + best + "/" + segs[1]; isKnownPath(candidate) {
				return candidate
			}
		}
	}
	return "/"
}

func (p *notFoundPage) Init() tea.Cmd { return nil }

func (p *notFoundPage) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			return router.Go(p.suggestion)
		case "esc":
			return router.Back()
		}
	}
	return nil
}

func (p *notFoundPage) View(width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Not found"))
	b.WriteString("\n\n")
	b.WriteString("Nothing lives at " + errorStyle.Render(p.path) + ".\n\n")
	if p.suggestion == "/" {
		b.WriteString("Go " + linkStyle.Render("home") + "?\n\n")
	} else {
		b.WriteString("Did you mean " + linkStyle.Render(p.suggestion) + "?\n\n")
	}
	b.WriteString(mutedStyle.Render("enter go  esc back"))
	return b.String()
}
