// Package query binds typed reads to the query cache.
//
// A Query turns parameters into a cache key and a fetch. Changing the
// parameters moves the query to another entry; the result never shows data
// of the previous key. A query whose Enabled predicate is false issues no
// request and reports StatusDisabled.
package query

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/hangarkeeper/internal/client/querycache"
)

// DefaultStaleTime is used when Options.StaleTime is zero.
const DefaultStaleTime = 30 * time.Second

type Options[P, T any] struct {
	Key   func(P) querycache.Key
	Fetch func(ctx context.Context, p P) (T, error)
	// Enabled defaults to always true. Use Required for the usual
	// "all parameters present" rule.
	Enabled   func(P) bool
	StaleTime time.Duration
}

// Required reports whether every value is non-empty.
func Required(values ...string) bool {
	for _, v := range values {
		if v == "" {
			return false
		}
	}
	return true
}

type Query[P, T any] struct {
	cache *querycache.Cache
	opts  Options[P, T]

	mu          sync.Mutex
	params      P
	enabled     bool
	key         querycache.Key
	sub         *querycache.Subscription
	lastVersion uint64
	listeners   map[int]func(Result[T])
	nextID      int
	closed      bool
}

// New creates a query observing the entry for params. Nothing is fetched
// until Load.
func New[P, T any](cache *querycache.Cache, opts Options[P, T], params P) *Query[P, T] {
	if opts.StaleTime == 0 {
		opts.StaleTime = DefaultStaleTime
	}
	q := &Query[P, T]{
		cache:     cache,
		opts:      opts,
		listeners: make(map[int]func(Result[T])),
	}
	q.mu.Lock()
	q.switchLocked(params)
	q.mu.Unlock()
	return q
}

func (q *Query[P, T]) isEnabled(p P) bool {
	return q.opts.Enabled == nil || q.opts.Enabled(p)
}

// switchLocked points the query at the entry for p.
func (q *Query[P, T]) switchLocked(p P) {
	q.params = p
	enabled := q.isEnabled(p)

	var key querycache.Key
	if enabled {
		key = q.opts.Key(p)
	}

	if q.sub != nil && (!enabled || !q.sub.Key().Equal(key)) {
		q.sub.Unsubscribe()
		q.sub = nil
	}

	q.enabled = enabled
	q.key = key
	if enabled && q.sub == nil {
		q.sub = q.cache.Subscribe(key, q.onChange)
		snap, _ := q.cache.Get(key)
		q.lastVersion = snap.Version
	}
}

// SetParams moves the query to the entry for p and loads it.
func (q *Query[P, T]) SetParams(ctx context.Context, p P) Result[T] {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return disabled[T]()
	}
	q.switchLocked(p)
	r := q.resultLocked()
	fns := q.listenersLocked()
	q.mu.Unlock()

	for _, fn := range fns {
		fn(r)
	}
	return q.Load(ctx)
}

func (q *Query[P, T]) Params() P {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.params
}

func (q *Query[P, T]) Key() querycache.Key {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.key
}

func (q *Query[P, T]) fetcher(p P) querycache.Fetcher {
	return func(ctx context.Context) (any, error) {
		return q.opts.Fetch(ctx, p)
	}
}

// Load returns the entry, fetching it first when it is stale.
func (q *Query[P, T]) Load(ctx context.Context) Result[T] {
	q.mu.Lock()
	if q.closed || !q.enabled {
		q.mu.Unlock()
		return disabled[T]()
	}
	key, p := q.key, q.params
	q.mu.Unlock()

	snap, err := q.cache.EnsureFresh(ctx, key, q.fetcher(p), q.opts.StaleTime)
	return withErr(fromSnapshot[T](snap), err)
}

// Refetch fetches the entry regardless of its freshness.
func (q *Query[P, T]) Refetch(ctx context.Context) Result[T] {
	q.mu.Lock()
	if q.closed || !q.enabled {
		q.mu.Unlock()
		return disabled[T]()
	}
	key, p := q.key, q.params
	q.mu.Unlock()

	snap, err := q.cache.Refetch(ctx, key, q.fetcher(p))
	return withErr(fromSnapshot[T](snap), err)
}

func withErr[T any](r Result[T], err error) Result[T] {
	if err != nil && r.Err == nil {
		r.Err = err
	}
	return r
}

// Result returns the current state without fetching.
func (q *Query[P, T]) Result() Result[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.resultLocked()
}

func (q *Query[P, T]) resultLocked() Result[T] {
	if q.closed || !q.enabled {
		return disabled[T]()
	}
	snap, ok := q.cache.Get(q.key)
	if !ok {
		return Result[T]{Status: StatusIdle}
	}
	return fromSnapshot[T](snap)
}

// Subscribe calls fn with a fresh Result whenever the entry changes or the
// query moves to another key. The returned func removes fn.
func (q *Query[P, T]) Subscribe(fn func(Result[T])) (cancel func()) {
	q.mu.Lock()
	id := q.nextID
	q.nextID++
	q.listeners[id] = fn
	q.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			q.mu.Lock()
			delete(q.listeners, id)
			q.mu.Unlock()
		})
	}
}

func (q *Query[P, T]) listenersLocked() []func(Result[T]) {
	fns := make([]func(Result[T]), 0, len(q.listeners))
	for _, fn := range q.listeners {
		fns = append(fns, fn)
	}
	return fns
}

func (q *Query[P, T]) onChange(snap querycache.Snapshot) {
	q.mu.Lock()
	if q.closed || !q.enabled || !snap.Key.Equal(q.key) || snap.Version <= q.lastVersion {
		q.mu.Unlock()
		return
	}
	q.lastVersion = snap.Version
	r := fromSnapshot[T](snap)
	fns := q.listenersLocked()
	q.mu.Unlock()

	for _, fn := range fns {
		fn(r)
	}
}

// Close releases the cache entry so it can be garbage collected.
func (q *Query[P, T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	if q.sub != nil {
		q.sub.Unsubscribe()
		q.sub = nil
	}
	clear(q.listeners)
}
