package router

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"
)

var ErrUnknownView = errors.New("router: unknown view")

// Loader prepares the producer of a named view. It runs at most once per
// name for the life of a Views, unless it fails.
type Loader func(ctx context.Context) (Producer, error)

// Views is the view cache: named producers loaded on first use.
// Concurrent first uses of one name share a single load.
type Views struct {
	loaders map[string]Loader

	mu    sync.RWMutex
	cache map[string]Producer
	group singleflight.Group
	loads *atomic.Int64
}

func NewViews(loaders map[string]Loader) *Views {
	v := &Views{
		loaders: make(map[string]Loader, len(loaders)),
		cache:   map[string]Producer{},
		loads:   atomic.NewInt64(0),
	}
	for name, l := range loaders {
		v.loaders[name] = l
	}
	return v
}

// View returns a producer that loads the named view when first invoked.
func (v *Views) View(name string) Producer {
	return func(ctx context.Context, params Params) (Page, error) {
		p, err := v.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		return p(ctx, params)
	}
}

func (v *Views) cached(name string) (Producer, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	p, ok := v.cache[name]
	return p, ok
}

// Load returns the producer for name, loading it if needed.
func (v *Views) Load(ctx context.Context, name string) (Producer, error) {
	if p, ok := v.cached(name); ok {
		return p, nil
	}
	loader, ok := v.loaders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownView, name)
	}

	res, err, _ := v.group.Do(name, func() (any, error) {
		// a load may have finished between the cache check and Do
		if p, ok := v.cached(name); ok {
			return p, nil
		}
		v.loads.Inc()
		p, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, errors.New("loader returned no producer")
		}
		v.mu.Lock()
		v.cache[name] = p
		v.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load view %s: %w", name, err)
	}
	return res.(Producer), nil
}

// Loads counts loader invocations.
func (v *Views) Loads() int64 {
	return v.loads.Load()
}
