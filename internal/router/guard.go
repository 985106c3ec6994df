package router

import "context"

// Guard picks authed or fallback each time it is invoked, depending on
// authenticated at that moment.
func Guard(authenticated func() bool, authed, fallback Producer) Producer {
	return func(ctx context.Context, params Params) (Page, error) {
		if authenticated() {
			return authed(ctx, params)
		}
		return fallback(ctx, params)
	}
}
