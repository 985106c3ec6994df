package tui

import (
	"context"

	"github.com/jask/feedterm/internal/api"
	"github.com/jask/feedterm/internal/auth"
	"github.com/jask/feedterm/internal/service"
)

// API is the part of the nakama API the pages use.
type API interface {
	service.TimelineSource
	User(ctx context.Context, username string) (api.UserProfile, error)
	Posts(ctx context.Context, username string, last int) ([]api.Post, error)
	Post(ctx context.Context, postID string) (api.Post, error)
	Comments(ctx context.Context, postID string, last int) ([]api.Comment, error)
	ToggleFollow(ctx context.Context, username string) (api.ToggleFollowOutput, error)
}

// Sessions runs the login and logout flows.
type Sessions interface {
	Login(ctx context.Context, email string) (auth.Session, error)
	Logout(ctx context.Context) error
}

// Viewer reports who is looking.
type Viewer interface {
	IsAuthenticated() bool
	Session() (auth.Session, bool)
}

type Deps struct {
	API        API
	Sessions   Sessions
	Viewer     Viewer
	PageSize   int
	DateFormat string
}

func (d Deps) pageSize() int {
	if d.PageSize <= 0 {
		return service.DefaultPageSize
	}
	return d.PageSize
}

func (d Deps) dateFormat() string {
	if d.DateFormat == "" {
		return "Jan 2 15:04"
	}
	return d.DateFormat
}

// me is the logged in username, "" when anonymous.
func (d Deps) me() string {
	if d.Viewer == nil {
		return ""
	}
	if s, ok := d.Viewer.Session(); ok {
		return s.Username
	}
	return ""
}
