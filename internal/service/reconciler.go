package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/golang/glog"

	"github.com/jask/feedterm/internal/api"
)

const (
	MaxContentLength = 480
	DefaultPageSize  = 10
)

var (
	ErrInvalidContent  = errors.New("invalid content")
	ErrPublishInFlight = errors.New("publish already in flight")
	ErrLoadInFlight    = errors.New("load already in flight")
	ErrNoMore          = errors.New("no more timeline items")
	ErrClosed          = errors.New("timeline closed")
)

// TimelineSource is what the reconciler needs from the API.
type TimelineSource interface {
	Timeline(ctx context.Context, cursor api.Cursor, last int) ([]api.TimelineItem, error)
	PublishPost(ctx context.Context, content string) (api.TimelineItem, error)
	SubscribeToTimeline(onItem func(api.TimelineItem)) (cancel func())
}

// Reconciler owns one timeline view: the visible items (newest first),
// the live items staged until the user flushes them, and the backward
// pagination state.
//
// Requests run without the lock held; only their mutation steps are
// serialized, so a publish and a load more can be in flight together.
// Live items may arrive on any goroutine.
type Reconciler struct {
	source   TimelineSource
	pageSize int
	onChange func()

	mu         sync.Mutex
	visible    []api.TimelineItem
	pending    []api.TimelineItem
	hasMore    bool
	loading    bool
	publishing bool
	closed     bool
	cancel     func()
}

// NewReconciler creates a reconciler. onChange, when set, is called after
// every state change, never with the lock held.
func NewReconciler(source TimelineSource, pageSize int, onChange func()) *Reconciler {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Reconciler{source: source, pageSize: pageSize, onChange: onChange}
}

func (r *Reconciler) changed() {
	if r.onChange != nil {
		r.onChange()
	}
}

// InitialLoad fetches the newest page.
func (r *Reconciler) InitialLoad(ctx context.Context) error {
	items, err := r.source.Timeline(ctx, api.Newest(), r.pageSize)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	r.visible = descending(items, nil)
	r.hasMore = len(items) == r.pageSize
	r.mu.Unlock()

	r.changed()
	return nil
}

// Listen subscribes to the live stream. Calling it again is a no-op.
func (r *Reconciler) Listen() {
	r.mu.Lock()
	if r.closed || r.cancel != nil {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	cancel := r.source.SubscribeToTimeline(r.OnLiveItem)

	r.mu.Lock()
	if r.closed || r.cancel != nil {
		r.mu.Unlock()
		cancel()
		return
	}
	r.cancel = cancel
	r.mu.Unlock()
}

// OnLiveItem stages an item pushed by the server. Items already shown or
// staged, and items not newer than the visible front, are dropped. Staged
// items stay in descending id order: with in-order delivery the latest
// arrival is first, and a late older item slots in behind newer ones.
func (r *Reconciler) OnLiveItem(item api.TimelineItem) {
	r.mu.Lock()
	if r.closed || r.has(item.ID) {
		r.mu.Unlock()
		return
	}
	if 0 < len(r.visible) && item.ID <= r.visible[0].ID {
		r.mu.Unlock()
		glog.V(2).Infof("[timeline]drop stale live item %s\n", item.ID)
		return
	}
	r.pending = stage(r.pending, item)
	r.mu.Unlock()

	r.changed()
}

// Flush moves every staged item to the front of the visible list, newest
// first, and returns how many moved.
func (r *Reconciler) Flush() int {
	r.mu.Lock()
	n := r.flushLocked()
	r.mu.Unlock()

	if 0 < n {
		r.changed()
	}
	return n
}

func (r *Reconciler) flushLocked() int {
	n := len(r.pending)
	if n == 0 {
		return 0
	}
	visible := make([]api.TimelineItem, 0, n+len(r.visible))
	visible = append(visible, r.pending...)
	r.visible = append(visible, r.visible...)
	r.pending = nil
	return n
}

// ValidateContent reports whether content can be published.
func ValidateContent(content string) error {
	content = strings.TrimSpace(content)
	if content == "" || MaxContentLength < utf8.RuneCountInString(content) {
		return ErrInvalidContent
	}
	return nil
}

// Publish creates a post. On success staged items are flushed and the new
// item is put at the very front. On failure nothing changes.
func (r *Reconciler) Publish(ctx context.Context, content string) (api.TimelineItem, error) {
	if err := ValidateContent(content); err != nil {
		return api.TimelineItem{}, err
	}

	r.mu.Lock()
	switch {
	case r.closed:
		r.mu.Unlock()
		return api.TimelineItem{}, ErrClosed
	case r.publishing:
		r.mu.Unlock()
		return api.TimelineItem{}, ErrPublishInFlight
	}
	r.publishing = true
	r.mu.Unlock()
	r.changed()

	item, err := r.source.PublishPost(ctx, content)

	r.mu.Lock()
	r.publishing = false
	if err != nil || r.closed {
		r.mu.Unlock()
		r.changed()
		return item, err
	}
	r.flushLocked()
	r.visible = prepend(remove(r.visible, item.ID), item)
	r.mu.Unlock()

	r.changed()
	return item, nil
}

// LoadMore fetches the page older than the current last visible item and
// appends it. It returns how many items were appended.
func (r *Reconciler) LoadMore(ctx context.Context) (int, error) {
	r.mu.Lock()
	switch {
	case r.closed:
		r.mu.Unlock()
		return 0, ErrClosed
	case !r.hasMore:
		r.mu.Unlock()
		return 0, ErrNoMore
	case r.loading:
		r.mu.Unlock()
		return 0, ErrLoadInFlight
	}
	r.loading = true
	cursor := api.Newest()
	if n := len(r.visible); 0 < n {
		cursor = api.Before(r.visible[n-1].ID)
	}
	r.mu.Unlock()
	r.changed()

	items, err := r.source.Timeline(ctx, cursor, r.pageSize)

	r.mu.Lock()
	r.loading = false
	if r.closed {
		r.mu.Unlock()
		return 0, ErrClosed
	}
	if err != nil {
		r.mu.Unlock()
		r.changed()
		return 0, err
	}
	var bound *api.ID
	if n := len(r.visible); 0 < n {
		last := r.visible[n-1].ID
		bound = &last
	}
	older := descending(items, bound)
	older = r.withoutKnown(older)
	r.visible = append(r.visible, older...)
	r.hasMore = len(items) == r.pageSize
	r.mu.Unlock()

	r.changed()
	return len(older), nil
}

// Close cancels the live subscription. Responses arriving afterwards are
// ignored. Close is idempotent.
func (r *Reconciler) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	cancel := r.cancel
	r.cancel = nil
	r.pending = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Snapshot returns a copy of the visible items.
func (r *Reconciler) Snapshot() []api.TimelineItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]api.TimelineItem(nil), r.visible...)
}

func (r *Reconciler) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

func (r *Reconciler) HasMore() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasMore && !r.closed
}

func (r *Reconciler) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

func (r *Reconciler) Publishing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.publishing
}

// caller holds mu
func (r *Reconciler) has(id api.ID) bool {
	for _, ti := range r.pending {
		if ti.ID == id {
			return true
		}
	}
	for _, ti := range r.visible {
		if ti.ID == id {
			return true
		}
	}
	return false
}

// caller holds mu
func (r *Reconciler) withoutKnown(items []api.TimelineItem) []api.TimelineItem {
	out := items[:0]
	for _, ti := range items {
		if !r.has(ti.ID) {
			out = append(out, ti)
		}
	}
	return out
}

// descending keeps the items that continue a strictly descending run, all
// below bound when one is given. The server already orders pages; this
// only guards the visible list against a misbehaving one.
func descending(items []api.TimelineItem, bound *api.ID) []api.TimelineItem {
	out := make([]api.TimelineItem, 0, len(items))
	for _, ti := range items {
		if bound != nil && *bound <= ti.ID {
			continue
		}
		if n := len(out); 0 < n && out[n-1].ID <= ti.ID {
			continue
		}
		out = append(out, ti)
	}
	return out
}

func remove(items []api.TimelineItem, id api.ID) []api.TimelineItem {
	for i, ti := range items {
		if ti.ID == id {
			return append(items[:i:i], items[i+1:]...)
		}
	}
	return items
}

// stage inserts item into pending, which is ordered by descending id.
func stage(pending []api.TimelineItem, item api.TimelineItem) []api.TimelineItem {
	i := 0
	for i < len(pending) && item.ID < pending[i].ID {
		i++
	}
	out := make([]api.TimelineItem, 0, len(pending)+1)
	out = append(out, pending[:i]...)
	out = append(out, item)
	return append(out, pending[i:]...)
}

func prepend(items []api.TimelineItem, item api.TimelineItem) []api.TimelineItem {
	out := make([]api.TimelineItem, 0, len(items)+1)
	out = append(out, item)
	return append(out, items...)
}
