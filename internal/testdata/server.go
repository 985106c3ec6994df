// Package testdata provides an in-memory nakama API for tests and demos.
package testdata

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"

	"github.com/jask/feedterm/internal/api"
)

const defaultPageSize = 10

type account struct {
	profile api.UserProfile
	email   string
	follows map[string]bool
}

// Server serves the subset of the nakama API feedterm uses. The zero value
// is not usable; call NewServer.
type Server struct {
	mu       sync.Mutex
	mux      *http.ServeMux
	upgrader websocket.Upgrader
	accounts map[string]*account
	tokens   map[string]string
	items    []api.TimelineItem
	posts    map[string]*api.Post
	comments map[string][]api.Comment
	nextID   api.ID
	subs     map[chan api.TimelineItem]struct{}
	queries  []string
	failPost bool
}

func NewServer() *Server {
	s := &Server{
		accounts: map[string]*account{},
		tokens:   map[string]string{},
		posts:    map[string]*api.Post{},
		comments: map[string][]api.Comment{},
		subs:     map[chan api.TimelineItem]struct{}{},
		nextID:   1,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/timeline", s.timeline)
	mux.HandleFunc("POST /api/posts", s.createPost)
	mux.HandleFunc("GET /api/posts/{postID}", s.post)
	mux.HandleFunc("GET /api/posts/{postID}/comments", s.postComments)
	mux.HandleFunc("GET /api/users/{username}", s.user)
	mux.HandleFunc("GET /api/users/{username}/posts", s.userPosts)
	mux.HandleFunc("POST /api/users/{username}/toggle_follow", s.toggleFollow)
	mux.HandleFunc("POST /api/dev_login", s.devLogin)
	s.mux = mux
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// AddUser registers an account that can log in with email.
func (s *Server) AddUser(username, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[username] = &account{
		profile: api.UserProfile{ID: strconv.Itoa(len(s.accounts) + 1), Username: username},
		email:   email,
		follows: map[string]bool{},
	}
}

// Token returns a valid bearer token for username without a login request.
func (s *Server) Token(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueToken(username)
}

// Publish adds a post by username to the timeline and pushes it to every
// open stream, as if another client had published it.
func (s *Server) Publish(username, content string) api.TimelineItem {
	s.mu.Lock()
	ti := s.addPost(username, content, time.Now().UTC())
	subs := make([]chan api.TimelineItem, 0, len(s.subs))
	for ch := range s.subs {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ti:
		default:
		}
	}
	return ti
}

// Comment adds a comment by username to a post.
func (s *Server) Comment(postID, username, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := api.Comment{
		ID:        strconv.Itoa(len(s.comments[postID]) + 1),
		Content:   content,
		CreatedAt: time.Now().UTC(),
		User:      s.userRef(username),
	}
	s.comments[postID] = append(s.comments[postID], c)
	if p, ok := s.posts[postID]; ok {
		p.CommentsCount++
	}
}

// FailPublish makes POST /api/posts answer 500 until turned off again.
func (s *Server) FailPublish(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPost = fail
}

// Subscribers is the number of open push streams.
func (s *Server) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// TimelineQueries returns the raw query of every timeline page request.
func (s *Server) TimelineQueries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

// caller holds mu
func (s *Server) issueToken(username string) string {
	token := fmt.Sprintf("token-%s-%d", username, len(s.tokens)+1)
	s.tokens[token] = username
	return token
}

// caller holds mu
func (s *Server) userRef(username string) *api.User {
	u := &api.User{Username: username}
	if a, ok := s.accounts[username]; ok {
		u.ID = a.profile.ID
		u.AvatarURL = a.profile.AvatarURL
	}
	return u
}

// caller holds mu
func (s *Server) addPost(username, content string, at time.Time) api.TimelineItem {
	id := s.nextID
	s.nextID++
	p := &api.Post{
		ID:        id.String(),
		Content:   content,
		CreatedAt: at,
		User:      s.userRef(username),
	}
	s.posts[p.ID] = p
	ti := api.TimelineItem{ID: id, Post: p}
	s.items = append([]api.TimelineItem{ti}, s.items...)
	return ti
}

func (s *Server) authUser(r *http.Request) (string, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" {
		token = r.URL.Query().Get("auth_token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	username, ok := s.tokens[token]
	return username, ok
}

func (s *Server) timeline(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		s.timelineSocket(w, r)
		return
	}
	if a, _, err := mime.ParseMediaType(r.Header.Get("Accept")); err == nil && a == "text/event-stream" {
		s.timelineStream(w, r)
		return
	}
	if _, ok := s.authUser(r); !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()
	last, _ := strconv.Atoi(q.Get("last"))
	if last <= 0 || 99 < last {
		last = defaultPageSize
	}
	var before api.ID
	if b := q.Get("before"); b != "" {
		id, err := api.ParseID(b)
		if err != nil {
			http.Error(w, "invalid timeline item id", http.StatusUnprocessableEntity)
			return
		}
		before = id
	}

	s.mu.Lock()
	s.queries = append(s.queries, r.URL.RawQuery)
	tt := make([]api.TimelineItem, 0, last)
	for _, ti := range s.items {
		if before != 0 && before <= ti.ID {
			continue
		}
		tt = append(tt, ti)
		if len(tt) == last {
			break
		}
	}
	s.mu.Unlock()

	respond(w, tt, http.StatusOK)
}

func (s *Server) subscribe() (chan api.TimelineItem, func()) {
	ch := make(chan api.TimelineItem, 16)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch, func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}
}

func (s *Server) timelineStream(w http.ResponseWriter, r *http.Request) {
	f, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	if _, ok := s.authUser(r); !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	ch, unsub := s.subscribe()
	defer unsub()

	header := w.Header()
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("Content-Type", "text/event-stream; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	f.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ti := <-ch:
			b, _ := json.Marshal(ti)
			fmt.Fprintf(w, "data: %s\n\n", b)
			f.Flush()
		}
	}
}

func (s *Server) timelineSocket(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authUser(r); !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer ws.Close()
	ch, unsub := s.subscribe()
	defer unsub()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case ti := <-ch:
			if err := ws.WriteJSON(ti); err != nil {
				return
			}
		}
	}
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	username, ok := s.authUser(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	var in struct{ Content string }
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	content := strings.TrimSpace(in.Content)
	if content == "" || 480 < utf8.RuneCountInString(content) {
		http.Error(w, "invalid content", http.StatusUnprocessableEntity)
		return
	}

	s.mu.Lock()
	fail := s.failPost
	var out api.TimelineItem
	if !fail {
		ti := s.addPost(username, content, time.Now().UTC())
		// the author is not part of the create response
		p := *ti.Post
		p.User = nil
		p.Mine = true
		out = api.TimelineItem{ID: ti.ID, Post: &p}
	}
	s.mu.Unlock()
	if fail {
		http.Error(w, "could not create post", http.StatusInternalServerError)
		return
	}
	respond(w, out, http.StatusCreated)
}

func (s *Server) post(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p, ok := s.posts[r.PathValue("postID")]
	var out api.Post
	if ok {
		out = *p
	}
	s.mu.Unlock()
	if !ok {
		http.Error(w, "post not found", http.StatusNotFound)
		return
	}
	respond(w, out, http.StatusOK)
}

func (s *Server) postComments(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	cc := append([]api.Comment{}, s.comments[r.PathValue("postID")]...)
	s.mu.Unlock()
	respond(w, cc, http.StatusOK)
}

func (s *Server) user(w http.ResponseWriter, r *http.Request) {
	me, _ := s.authUser(r)
	username := r.PathValue("username")
	s.mu.Lock()
	a, ok := s.accounts[username]
	var out api.UserProfile
	if ok {
		out = a.profile
		out.Me = me == username
		if viewer, ok := s.accounts[me]; ok {
			out.Following = viewer.follows[username]
			out.Followeed = a.follows[me]
		}
	}
	s.mu.Unlock()
	if !ok {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	respond(w, out, http.StatusOK)
}

func (s *Server) userPosts(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	last, _ := strconv.Atoi(r.URL.Query().Get("last"))
	if last <= 0 || 99 < last {
		last = defaultPageSize
	}
	s.mu.Lock()
	pp := []api.Post{}
	for _, ti := range s.items {
		if ti.Post.User != nil && ti.Post.User.Username == username {
			pp = append(pp, *ti.Post)
			if len(pp) == last {
				break
			}
		}
	}
	s.mu.Unlock()
	respond(w, pp, http.StatusOK)
}

func (s *Server) toggleFollow(w http.ResponseWriter, r *http.Request) {
	me, ok := s.authUser(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	username := r.PathValue("username")
	if me == username {
		http.Error(w, "forbidden follow", http.StatusForbidden)
		return
	}

	s.mu.Lock()
	viewer, okViewer := s.accounts[me]
	target, okTarget := s.accounts[username]
	var out api.ToggleFollowOutput
	if okViewer && okTarget {
		following := !viewer.follows[username]
		viewer.follows[username] = following
		if following {
			target.profile.FollowersCount++
			viewer.profile.FolloweesCount++
		} else {
			target.profile.FollowersCount--
			viewer.profile.FolloweesCount--
		}
		out = api.ToggleFollowOutput{Following: following, FollowersCount: target.profile.FollowersCount}
	}
	s.mu.Unlock()
	if !okTarget {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	respond(w, out, http.StatusOK)
}

func (s *Server) devLogin(w http.ResponseWriter, r *http.Request) {
	var in struct{ Email string }
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	var found *account
	for _, a := range s.accounts {
		if strings.EqualFold(a.email, strings.TrimSpace(in.Email)) {
			found = a
			break
		}
	}
	var out api.AuthOutput
	if found != nil {
		out = api.AuthOutput{
			User:      *s.userRef(found.profile.Username),
			Token:     s.issueToken(found.profile.Username),
			ExpiresAt: time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second),
		}
	}
	s.mu.Unlock()
	if found == nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	respond(w, out, http.StatusOK)
}

func respond(w http.ResponseWriter, v any, statusCode int) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write(b)
}
