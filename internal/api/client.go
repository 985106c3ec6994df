// Package api is the typed surface of the nakama HTTP API used by feedterm.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/golang/glog"

	"github.com/jask/feedterm/internal/auth"
)

// Transport is the request facade the client is built on.
type Transport interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body any, out any) error
	Subscribe(path string, onMessage func(json.RawMessage)) (cancel func())
}

// SessionSource reports who is logged in.
type SessionSource interface {
	Session() (auth.Session, bool)
}

type Client struct {
	t       Transport
	session SessionSource
}

func New(t Transport, session SessionSource) *Client {
	return &Client{t: t, session: session}
}

// Timeline fetches up to last items older than cursor, newest first.
func (c *Client) Timeline(ctx context.Context, cursor Cursor, last int) ([]TimelineItem, error) {
	q := url.Values{}
	q.Set("before", cursor.String())
	q.Set("last", strconv.Itoa(last))
	var tt []TimelineItem
	if err := c.t.Get(ctx, "/api/timeline?"+q.Encode(), &tt); err != nil {
		return nil, err
	}
	return tt, nil
}

type createPostInput struct {
	Content string `json:"content"`
}

// PublishPost creates a post. The server does not echo the author, so the
// logged in user is stamped onto the returned post.
func (c *Client) PublishPost(ctx context.Context, content string) (TimelineItem, error) {
	var ti TimelineItem
	if err := c.t.Post(ctx, "/api/posts", createPostInput{Content: content}, &ti); err != nil {
		return TimelineItem{}, err
	}
	if ti.Post == nil {
		ti.Post = &Post{Content: content}
	}
	if me, ok := c.me(); ok {
		ti.Post.User = &me
		ti.Post.Mine = true
	}
	return ti, nil
}

// SubscribeToTimeline delivers every timeline item pushed by the server.
// Messages that are not timeline items are dropped.
func (c *Client) SubscribeToTimeline(onItem func(TimelineItem)) (cancel func()) {
	return c.t.Subscribe("/api/timeline", func(raw json.RawMessage) {
		var ti TimelineItem
		if err := json.Unmarshal(raw, &ti); err != nil {
			glog.V(2).Infof("[api]drop timeline message: %s\n", err)
			return
		}
		onItem(ti)
	})
}

func (c *Client) User(ctx context.Context, username string) (UserProfile, error) {
	var u UserProfile
	err := c.t.Get(ctx, "/api/users/"+url.PathEscape(username), &u)
	return u, err
}

func (c *Client) Posts(ctx context.Context, username string, last int) ([]Post, error) {
	var pp []Post
	path := fmt.Sprintf("/api/users/%s/posts?last=%d", url.PathEscape(username), last)
	if err := c.t.Get(ctx, path, &pp); err != nil {
		return nil, err
	}
	return pp, nil
}

func (c *Client) Post(ctx context.Context, postID string) (Post, error) {
	var p Post
	err := c.t.Get(ctx, "/api/posts/"+url.PathEscape(postID), &p)
	return p, err
}

func (c *Client) Comments(ctx context.Context, postID string, last int) ([]Comment, error) {
	var cc []Comment
	path := fmt.Sprintf("/api/posts/%s/comments?last=%d", url.PathEscape(postID), last)
	if err := c.t.Get(ctx, path, &cc); err != nil {
		return nil, err
	}
	return cc, nil
}

func (c *Client) ToggleFollow(ctx context.Context, username string) (ToggleFollowOutput, error) {
	var out ToggleFollowOutput
	err := c.t.Post(ctx, "/api/users/"+url.PathEscape(username)+"/toggle_follow", nil, &out)
	return out, err
}

type loginInput struct {
	Email string `json:"email"`
}

// DevLogin logs in by email alone. Only development servers expose it.
func (c *Client) DevLogin(ctx context.Context, email string) (AuthOutput, error) {
	var out AuthOutput
	err := c.t.Post(ctx, "/api/dev_login", loginInput{Email: email}, &out)
	return out, err
}

func (c *Client) me() (User, bool) {
	if c.session == nil {
		return User{}, false
	}
	s, ok := c.session.Session()
	if !ok {
		return User{}, false
	}
	u := User{ID: s.UserID, Username: s.Username}
	if s.AvatarURL != "" {
		avatar := s.AvatarURL
		u.AvatarURL = &avatar
	}
	return u, true
}
