// Package querycache holds read results keyed by resource and query parameters.
//
// Mutations invalidate a whole resource: every entry under it is evicted and
// fetches that were already in flight are not allowed to store their result.
// Entries older than the TTL are served once more while a background fetch
// replaces them. A zero TTL makes every entry stale as soon as it is stored.
package querycache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/codr1/CabinDesk/internal/clock"
)

const DefaultFetchTimeout = 10 * time.Second

// Key identifies one cached read. ID must encode every query parameter
// (filter, sort, page) so that any change yields a different key.
type Key struct {
	Resource string
	ID       string
}

func (k Key) String() string {
	return k.Resource + "|" + k.ID
}

type entry struct {
	value     any
	fetchedAt time.Time
}

type Options struct {
	TTL          time.Duration
	FetchTimeout time.Duration
	Clock        clock.Clock
	Logger       *zerolog.Logger
}

type Cache struct {
	ttl          time.Duration
	fetchTimeout time.Duration
	clock        clock.Clock
	logger       zerolog.Logger

	mu          sync.Mutex
	entries     map[string]map[string]entry
	generations map[string]uint64
	closed      bool

	flights singleflight.Group
	wg      sync.WaitGroup
}

func New(opts Options) *Cache {
	logger := log.Logger.With().Str("component", "querycache").Logger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	fetchTimeout := opts.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	return &Cache{
		ttl:          opts.TTL,
		fetchTimeout: fetchTimeout,
		clock:        clock.OrReal(opts.Clock),
		logger:       logger,
		entries:      make(map[string]map[string]entry),
		generations:  make(map[string]uint64),
	}
}

type lookupState int

const (
	miss lookupState = iota
	stale
	fresh
)

// Get returns the cached value for key, fetching it when absent.
// A stale value is returned as is and refreshed in the background.
func Get[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	erased := erase(fetch)

	value, state := c.lookup(key)
	if state != miss {
		if typed, ok := value.(T); ok {
			if state == stale {
				c.spawn(key, erased)
			}
			return typed, nil
		}
	}

	loaded, err := c.load(ctx, key, erased)
	if err != nil {
		return zero, err
	}
	typed, ok := loaded.(T)
	if !ok {
		return zero, fmt.Errorf("querycache: %s holds %T", key, loaded)
	}
	return typed, nil
}

// Prefetch populates key in the background unless a fresh entry exists.
// It never blocks, and a failed prefetch is logged and dropped.
func Prefetch[T any](c *Cache, key Key, fetch func(context.Context) (T, error)) {
	if _, state := c.lookup(key); state == fresh {
		return
	}
	c.spawn(key, erase(fetch))
}

// Invalidate evicts every entry of the given resources.
func (c *Cache) Invalidate(resources ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, resource := range resources {
		delete(c.entries, resource)
		c.generations[resource]++
	}
	c.logger.Debug().Strs("resources", resources).Msg("Invalidated cached queries")
}

// Len reports how many entries are cached for resource.
func (c *Cache) Len(resource string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries[resource])
}

// Wait blocks until background fetches started so far have finished.
func (c *Cache) Wait() {
	c.wg.Wait()
}

// Close stops new background fetches and waits for running ones.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.wg.Wait()
}

func erase[T any](fetch func(context.Context) (T, error)) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}
}

func (c *Cache) lookup(key Key) (any, lookupState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.Resource][key.ID]
	if !ok {
		return nil, miss
	}
	if c.ttl > 0 && c.clock.Now().Sub(e.fetchedAt) < c.ttl {
		return e.value, fresh
	}
	return e.value, stale
}

func (c *Cache) generation(resource string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[resource]
}

// store keeps value only if the resource was not invalidated since gen was read.
func (c *Cache) store(key Key, gen uint64, value any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[key.Resource] != gen {
		return false
	}
	byID, ok := c.entries[key.Resource]
	if !ok {
		byID = make(map[string]entry)
		c.entries[key.Resource] = byID
	}
	byID[key.ID] = entry{value: value, fetchedAt: c.clock.Now()}
	return true
}

// load runs one fetch per key and generation. The fetch is detached from the
// caller's cancellation so that an abandoned read still fills the cache.
func (c *Cache) load(ctx context.Context, key Key, fetch func(context.Context) (any, error)) (any, error) {
	gen := c.generation(key.Resource)
	flightKey := fmt.Sprintf("%s#%d", key, gen)

	ch := c.flights.DoChan(flightKey, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		value, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		if !c.store(key, gen, value) {
			c.logger.Debug().Str("key", key.String()).Msg("Dropped result fetched before invalidation")
		}
		return value, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (c *Cache) spawn(key Key, fetch func(context.Context) (any, error)) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		if _, err := c.load(context.Background(), key, fetch); err != nil {
			c.logger.Debug().Err(err).Str("key", key.String()).Msg("Background fetch failed")
		}
	}()
}
