package tui

import (
	"context"
	"regexp"

	"github.com/golang/glog"

	"github.com/jask/feedterm/internal/router"
)

var (
	userRoute = regexp.MustCompile(`^/users/(?P<username>[a-zA-Z][a-zA-Z0-9_-]{0,17})$`)
	postRoute = regexp.MustCompile(`^/posts/(?P<postID>\d+)$`)
)

func isKnownPath(path string) bool {
	return path == "/" || userRoute.MatchString(path) || postRoute.MatchString(path)
}

// NewViews registers the page loaders by view name.
func NewViews(deps Deps) *router.Views {
	loaded := func(name string, p router.Producer) router.Loader {
		return func(context.Context) (router.Producer, error) {
			glog.V(1).Infof("[views]load %s\n", name)
			return p, nil
		}
	}
	return router.NewViews(map[string]router.Loader{
		"home": loaded("home", func(ctx context.Context, _ router.Params) (router.Page, error) {
			return newHomePage(ctx, deps), nil
		}),
		"access": loaded("access", func(ctx context.Context, _ router.Params) (router.Page, error) {
			return newAccessPage(ctx, deps), nil
		}),
		"user": loaded("user", func(ctx context.Context, params router.Params) (router.Page, error) {
			return loadUserPage(ctx, deps, params)
		}),
		"post": loaded("post", func(ctx context.Context, params router.Params) (router.Page, error) {
			return loadPostPage(ctx, deps, params)
		}),
		"not-found": loaded("not-found", func(_ context.Context, params router.Params) (router.Page, error) {
			return newNotFoundPage(params.Get("path")), nil
		}),
	})
}

// Routes installs the route table on r. The catch-all comes last.
func Routes(r *router.Router, views *router.Views, deps Deps) error {
	authenticated := func() bool {
		return deps.Viewer != nil && deps.Viewer.IsAuthenticated()
	}
	routes := []struct {
		m router.Matcher
		p router.Producer
	}{
		{router.Exact("/"), router.Guard(authenticated, views.View("home"), views.View("access"))},
		{router.Pattern(userRoute), views.View("user")},
		{router.Pattern(postRoute), views.View("post")},
		{router.CatchAll(), views.View("not-found")},
	}
	for _, rt := range routes {
		if err := r.Route(rt.m, rt.p); err != nil {
			return err
		}
	}
	return nil
}
