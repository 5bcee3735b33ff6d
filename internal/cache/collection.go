// Package cache holds the client-side snapshots of server collections:
// landmarks, the session user's bookmarks, and the reviews of one landmark.
//
// Snapshots change only after the server confirms a mutation. Mutations of
// one collection run one at a time through a keyed executor; loads are
// tagged with a generation so a response that arrives after a newer load
// started is dropped.
package cache

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hierovision/hierovision/client/internal/api"
	"github.com/hierovision/hierovision/client/internal/types"
)

// Executor serializes jobs that share a key.
type Executor interface {
	Do(ctx context.Context, key string, fn func(context.Context) error) error
}

// Deps are the collaborators every cache needs.
type Deps struct {
	API      api.Requester
	Session  types.Identity
	Executor Executor
	Logger   zerolog.Logger
}

// collection is the snapshot shared by the caches.
type collection[T any] struct {
	name string

	mu      sync.RWMutex
	items   []T
	loading int
	err     string
	gen     uint64
}

func newCollection[T any](name string) *collection[T] {
	return &collection[T]{name: name, items: []T{}}
}

func (c *collection[T]) snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// find returns a copy of the first element matching pred.
func (c *collection[T]) find(pred func(T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if pred(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func (c *collection[T]) isLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading > 0
}

func (c *collection[T]) stickyErr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// beginLoad marks a load in flight and returns its generation.
func (c *collection[T]) beginLoad() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.loading++
	return c.gen
}

// finishLoad settles the load tagged gen. It reports false when a newer
// load or reset superseded it and the result was dropped.
func (c *collection[T]) finishLoad(gen uint64, items []T, failed bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading--
	if gen != c.gen {
		return false
	}
	if failed {
		c.err = "Failed to fetch " + c.name
		return true
	}
	if items == nil {
		items = []T{}
	}
	c.items = items
	c.err = ""
	return true
}

// reset empties the snapshot and invalidates loads in flight.
func (c *collection[T]) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.items = []T{}
	c.err = ""
}

func (c *collection[T]) mutate(fn func([]T) []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = fn(c.items)
}

// load runs fetch under the generation protocol and records the outcome.
func load[T any](ctx context.Context, c *collection[T], log zerolog.Logger, fetch func(context.Context) ([]T, error)) error {
	gen := c.beginLoad()
	items, err := fetch(ctx)
	if !c.finishLoad(gen, items, err != nil) {
		loadsTotal.WithLabelValues(c.name, "stale").Inc()
		log.Debug().Str("cache", c.name).Msg("dropping superseded load")
		return nil
	}
	if err != nil {
		loadsTotal.WithLabelValues(c.name, "error").Inc()
		log.Error().Err(err).Str("cache", c.name).Msg("load failed")
		return err
	}
	loadsTotal.WithLabelValues(c.name, "ok").Inc()
	return nil
}

func observeMutation(cacheName, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	mutationsTotal.WithLabelValues(cacheName, op, result).Inc()
}
