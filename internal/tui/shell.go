package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/feedterm/internal/router"
)

type navLink struct {
	label   string
	path    string
	current bool
}

// Shell is the program model. Its main region is the router's mount
// point; around it sit the navigation links, a status line and the alert
// overlay.
type Shell struct {
	ctx    context.Context
	deps   Deps
	router *router.Router
	views  *router.Views
	start  string

	page    router.Page
	current string
	links   []navLink
	alert   error
	status  string
	width   int
	height  int
}

// New builds the shell and its route table. start is the first location.
func New(ctx context.Context, deps Deps, start string) (*Shell, error) {
	if start == "" {
		start = "/"
	}
	s := &Shell{ctx: ctx, deps: deps, start: start}
	s.router = router.New(ctx, router.RenderInto(s, newErrorPage))
	s.views = NewViews(deps)
	if err := Routes(s.router, s.views, deps); err != nil {
		return nil, err
	}
	s.refreshLinks()
	return s, nil
}

// Router exposes the shell's router.
func (s *Shell) Router() *router.Router {
	return s.router
}

func (s *Shell) Init() tea.Cmd {
	cmd, err := s.router.Install(s.start)
	if err != nil {
		return alert(err)
	}
	return cmd
}

// Clear empties the main region.
func (s *Shell) Clear() {
	s.page = nil
}

// Append mounts p in the main region.
func (s *Shell) Append(p router.Page) {
	s.page = p
	if 0 < s.width {
		p.Update(tea.WindowSizeMsg{Width: s.width, Height: s.mainHeight()})
	}
}

// MarkCurrent highlights the navigation links pointing at path.
func (s *Shell) MarkCurrent(path string) {
	s.current = path
	s.refreshLinks()
}

func (s *Shell) refreshLinks() {
	links := []navLink{{label: "Home", path: "/"}}
	if me := s.deps.me(); me != "" {
		links = append(links, navLink{label: "Profile", path: "/users/" + me})
	}
	for i := range links {
		links[i].current = links[i].path == s.current
	}
	s.links = links
}

// Close tears down the mounted page.
func (s *Shell) Close() {
	if d, ok := s.page.(router.Disconnecter); ok {
		d.Disconnect()
	}
	s.page = nil
}

func (s *Shell) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width, s.height = msg.Width, msg.Height
		if s.page != nil {
			return s, s.page.Update(tea.WindowSizeMsg{Width: s.width, Height: s.mainHeight()})
		}
		return s, nil
	case AlertMsg:
		s.alert = msg.Err
		return s, nil
	case statusMsg:
		s.status = string(msg)
		return s, nil
	case loggedOutMsg:
		if msg.err != nil {
			s.alert = msg.err
		}
		s.status = "logged out"
		s.refreshLinks()
		return s, router.Go("/")
	case tea.KeyMsg:
		if s.alert != nil {
			switch msg.String() {
			case "ctrl+c":
				s.Close()
				return s, tea.Quit
			case "enter", "esc":
				s.alert = nil
			}
			return s, nil
		}
		s.status = ""
		switch msg.String() {
		case "ctrl+c":
			s.Close()
			return s, tea.Quit
		case "ctrl+b":
			return s, router.Back()
		case "ctrl+t":
			return s, router.Go("/")
		case "ctrl+p":
			if me := s.deps.me(); me != "" {
				return s, router.Go("/users/" + me)
			}
			return s, nil
		case "ctrl+l":
			if s.deps.Viewer != nil && s.deps.Viewer.IsAuthenticated() {
				return s, s.logout()
			}
			return s, nil
		}
	}

	if cmd, ok := s.router.Update(msg); ok {
		return s, cmd
	}
	if s.page != nil {
		return s, s.page.Update(msg)
	}
	return s, nil
}

func (s *Shell) logout() tea.Cmd {
	return func() tea.Msg {
		return loggedOutMsg{err: s.deps.Sessions.Logout(s.ctx)}
	}
}

const headerLines = 3
const footerLines = 2

func (s *Shell) mainHeight() int {
	h := s.height - headerLines - footerLines
	if h < 1 {
		return 1
	}
	return h
}

func (s *Shell) View() string {
	var nav []string
	for _, l := range s.links {
		nav = append(nav, link(l.label, l.current))
	}
	header := headerStyle.Width(max(s.width, 1)).Render(titleStyle.Render("feedterm") + "  " + strings.Join(nav, "  "))

	main := mutedStyle.Render("loading...")
	if s.page != nil {
		main = s.page.View(s.width, s.mainHeight())
	}
	if s.alert != nil {
		box := alertStyle.Render(errorStyle.Render(s.alert.Error()) + "\n\n" + mutedStyle.Render("enter to dismiss"))
		main = placeOver(main, box, s.width, s.mainHeight())
	}

	help := "ctrl+t home  ctrl+p profile  ctrl+b back  ctrl+l logout  ctrl+c quit"
	if s.deps.Viewer == nil || !s.deps.Viewer.IsAuthenticated() {
		help = "ctrl+t home  ctrl+b back  ctrl+c quit"
	}
	footer := mutedStyle.Render(help)
	if s.status != "" {
		footer = s.status + "\n" + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, main, footer)
}
