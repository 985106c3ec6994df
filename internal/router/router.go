package router

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/glog"
)

var (
	ErrInstalled        = errors.New("router: routes cannot change after install")
	ErrAlreadyInstalled = errors.New("router: already installed")
	ErrNoCatchAll       = errors.New("router: last route must be a catch-all")
	ErrNoRoute          = errors.New("router: no route matches")
	errNilPage          = errors.New("router: producer returned no page")
)

// NavigateMsg asks the installed router to show another location.
type NavigateMsg struct {
	To string
}

// BackMsg asks the installed router to return to the previous location.
type BackMsg struct{}

// Go returns a command that navigates to location.
func Go(location string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{To: location}
	}
}

// Back returns a command that navigates back.
func Back() tea.Cmd {
	return func() tea.Msg {
		return BackMsg{}
	}
}

type State int

const (
	Idle State = iota
	Navigating
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Navigating:
		return "navigating"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type route struct {
	matcher  Matcher
	producer Producer
}

type Router struct {
	ctx       context.Context
	renderer  *Renderer
	routes    []route
	installed bool
	state     State
	location  string
	history   history
}

// New creates a router bound to its one renderer. ctx is handed to every
// producer.
func New(ctx context.Context, renderer *Renderer) *Router {
	return &Router{ctx: ctx, renderer: renderer}
}

// Route registers a route. Routes are tried in registration order.
func (r *Router) Route(m Matcher, p Producer) error {
	if r.installed {
		return ErrInstalled
	}
	if m == nil || p == nil {
		return fmt.Errorf("router: route needs a matcher and a producer")
	}
	r.routes = append(r.routes, route{matcher: m, producer: p})
	return nil
}

// Install starts handling navigation messages and renders location.
func (r *Router) Install(location string) (tea.Cmd, error) {
	if r.installed {
		return nil, ErrAlreadyInstalled
	}
	if len(r.routes) == 0 || !isCatchAll(r.routes[len(r.routes)-1].matcher) {
		return nil, ErrNoCatchAll
	}
	r.installed = true
	return r.navigate(location), nil
}

// Resolution is a matched route, ready to produce its page.
type Resolution struct {
	Location string
	Path     string
	Params   Params
	// Route is the index of the matched route, -1 when none matched.
	Route    int
	producer Producer
}

// Page runs the producer. A panicking producer is reported as an error.
func (res Resolution) Page(ctx context.Context) (page Page, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			page = nil
			err = fmt.Errorf("render %s: %v", res.Path, rec)
		}
	}()
	if res.producer == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRoute, res.Path)
	}
	page, err = res.producer(ctx, res.Params)
	if err == nil && page == nil {
		err = errNilPage
	}
	return page, err
}

// Resolve finds the first route matching location. Later routes are not
// consulted once one matches.
func (r *Router) Resolve(location string) Resolution {
	path := pathOf(location)
	for i, rt := range r.routes {
		if params, ok := rt.matcher.Match(path); ok {
			return Resolution{Location: location, Path: path, Params: params, Route: i, producer: rt.producer}
		}
	}
	return Resolution{Location: location, Path: path, Route: -1}
}

func pathOf(location string) string {
	u, err := url.Parse(location)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

// Navigate shows location and records the current one for BackMsg.
func (r *Router) Navigate(location string) tea.Cmd {
	if r.location != location {
		r.history.Push(r.location)
	}
	return r.navigate(location)
}

func (r *Router) navigate(location string) tea.Cmd {
	glog.V(2).Infof("[router]navigate %s\n", location)
	r.location = location
	r.state = Navigating
	return r.renderer.render(r.ctx, r.Resolve(location))
}

// Update handles navigation messages. It reports whether msg was consumed.
func (r *Router) Update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case NavigateMsg:
		if !r.installed {
			return nil, false
		}
		return r.Navigate(msg.To), true
	case BackMsg:
		if !r.installed {
			return nil, false
		}
		prev, ok := r.history.Pop()
		if !ok {
			return nil, true
		}
		return r.navigate(prev), true
	case resolvedMsg:
		cmd, latest := r.renderer.mount(msg)
		if latest {
			r.state = Idle
		}
		return cmd, true
	}
	return nil, false
}

func (r *Router) State() State {
	return r.state
}

// Location is the location most recently navigated to.
func (r *Router) Location() string {
	return r.location
}

// CanGoBack reports whether BackMsg has somewhere to go.
func (r *Router) CanGoBack() bool {
	return 0 < r.history.Len()
}
