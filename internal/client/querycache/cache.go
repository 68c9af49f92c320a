package querycache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrNoFetcher is returned by Refetch for a key no fetcher was ever
// registered for.
var ErrNoFetcher = errors.New("no fetcher registered for key")

// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	flight  singleflight.Group
	opts    options

	// seq is cache-wide so flight keys stay unique across Clear.
	seq     uint64
	nextSub uint64

	hits          atomic.Int64
	misses        atomic.Int64
	fetches       atomic.Int64
	fetchErrors   atomic.Int64
	superseded    atomic.Int64
	invalidations atomic.Int64
	evictions     atomic.Int64
}

func New(opts ...Option) *Cache {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache{
		entries: make(map[string]*entry),
		opts:    o,
	}
}

type outcome struct {
	snap       Snapshot
	superseded bool
}

// Get returns a snapshot of the entry for key.
func (c *Cache) Get(key Key) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.String()]
	if !ok {
		return Snapshot{}, false
	}
	return e.snapshot(), true
}

// EnsureFresh returns the cached value for key, fetching it first when it is
// absent, invalidated or older than staleTime. Concurrent callers share one
// fetch. The fetch itself is detached from ctx: a caller whose ctx ends gets
// ctx.Err() while the fetch still settles into the cache.
//
// The returned error is the error of the settled fetch, if any; the snapshot
// is returned in every case.
func (c *Cache) EnsureFresh(ctx context.Context, key Key, fetch Fetcher, staleTime time.Duration) (Snapshot, error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	if fetch != nil {
		e.fetcher = fetch
	}

	if e.fresh(c.opts.now(), staleTime) {
		snap := e.snapshot()
		c.mu.Unlock()
		c.hits.Add(1)
		lookupsTotal.WithLabelValues("hit").Inc()
		return snap, nil
	}

	c.misses.Add(1)
	lookupsTotal.WithLabelValues("miss").Inc()

	if e.fetcher == nil {
		c.mu.Unlock()
		return Snapshot{Key: key}, ErrNoFetcher
	}

	var ch <-chan singleflight.Result
	var notify func()
	if e.inflight {
		ch = c.flight.DoChan(e.flightKey, e.call)
	} else {
		ch, notify = c.beginLocked(ctx, e, e.fetcher)
	}
	c.mu.Unlock()

	if notify != nil {
		notify()
	}
	return c.await(ctx, e, ch)
}

// Refetch starts a new fetch for key that supersedes any fetch already in
// flight. fetch may be nil to reuse the fetcher last registered for key.
func (c *Cache) Refetch(ctx context.Context, key Key, fetch Fetcher) (Snapshot, error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	if fetch != nil {
		e.fetcher = fetch
	}
	if e.fetcher == nil {
		c.mu.Unlock()
		return Snapshot{Key: key}, ErrNoFetcher
	}
	ch, notify := c.beginLocked(ctx, e, e.fetcher)
	c.mu.Unlock()

	notify()
	return c.await(ctx, e, ch)
}

// Invalidate marks every entry whose key starts with prefix stale and returns
// how many were marked. Entries with subscribers are refetched in the
// background; an entry whose fetch is already in flight only records one
// follow-up refetch, however often it is invalidated.
func (c *Cache) Invalidate(prefix Key) int {
	c.mu.Lock()

	var notifies []func()
	n := 0
	for _, e := range c.entries {
		if !e.key.HasPrefix(prefix) {
			continue
		}
		n++
		e.invalidated = true
		e.version++

		// A fetch in flight may have started before the write; it must not
		// clear the flag when it settles.
		switch {
		case e.inflight:
			e.refetchPending = true
			notifies = append(notifies, c.listenersLocked(e))
		case e.observers == 0 || e.fetcher == nil:
			notifies = append(notifies, c.listenersLocked(e))
		default:
			_, notify := c.beginLocked(context.Background(), e, e.fetcher)
			notifies = append(notifies, notify)
		}
	}
	c.mu.Unlock()

	c.invalidations.Add(int64(n))
	invalidationsTotal.Add(float64(n))
	c.opts.log.Debug(context.Background(), "cache invalidated", "prefix", prefix.String(), "entries", n)

	for _, notify := range notifies {
		notify()
	}
	return n
}

// InvalidateAll invalidates every entry.
func (c *Cache) InvalidateAll() int {
	return c.Invalidate(Key{})
}

// beginLocked starts a new generation for e. The returned func delivers the
// change to listeners and must be called after c.mu is released.
func (c *Cache) beginLocked(ctx context.Context, e *entry, fetch Fetcher) (<-chan singleflight.Result, func()) {
	c.seq++
	gen := c.seq

	e.gen = gen
	e.inflight = true
	e.refetchPending = false
	if e.status == StatusIdle {
		e.status = StatusLoading
	}
	e.version++

	fetchCtx := context.WithoutCancel(ctx)
	e.flightKey = e.key.String() + "@" + strconv.FormatUint(gen, 10)
	e.call = func() (any, error) {
		return c.run(fetchCtx, e, gen, fetch), nil
	}

	c.fetches.Add(1)
	ch := c.flight.DoChan(e.flightKey, e.call)
	return ch, c.listenersLocked(e)
}

func (c *Cache) run(ctx context.Context, e *entry, gen uint64, fetch Fetcher) outcome {
	c.opts.log.Debug(ctx, "cache fetch started", "key", e.key.String(), "gen", gen)
	val, err := safeFetch(ctx, fetch)

	c.mu.Lock()
	if gen != e.gen {
		c.mu.Unlock()
		c.superseded.Add(1)
		fetchesTotal.WithLabelValues("superseded").Inc()
		c.opts.log.Debug(ctx, "cache fetch superseded", "key", e.key.String(), "gen", gen)
		return outcome{superseded: true}
	}

	e.inflight = false
	e.call = nil
	if err != nil {
		e.err = err
		e.status = StatusError
	} else {
		e.value = val
		e.hasValue = true
		e.err = nil
		e.status = StatusSuccess
		e.updatedAt = c.opts.now()
		e.invalidated = false
	}
	e.version++

	notify := c.listenersLocked(e)
	if e.refetchPending {
		e.refetchPending = false
		e.invalidated = true
		if e.observers > 0 && e.fetcher != nil {
			_, notify = c.beginLocked(context.Background(), e, e.fetcher)
		}
	}
	snap := e.snapshot()
	snap.Fetching = false
	c.mu.Unlock()

	if err != nil {
		c.fetchErrors.Add(1)
		fetchesTotal.WithLabelValues("error").Inc()
		c.opts.log.Debug(ctx, "cache fetch failed", "key", e.key.String(), "error", err)
	} else {
		fetchesTotal.WithLabelValues("success").Inc()
	}

	notify()
	return outcome{snap: snap}
}

func safeFetch(ctx context.Context, fetch Fetcher) (val any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("fetch panicked: %v", p)
		}
	}()
	return fetch(ctx)
}

// await waits for the fetch behind ch. When that fetch was superseded it
// follows the newest one, so callers always see the authoritative result.
func (c *Cache) await(ctx context.Context, e *entry, ch <-chan singleflight.Result) (Snapshot, error) {
	for {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			snap := e.snapshot()
			c.mu.Unlock()
			return snap, ctx.Err()
		case res := <-ch:
			out := res.Val.(outcome)
			if !out.superseded {
				return out.snap, out.snap.Err
			}
		}

		c.mu.Lock()
		if !e.inflight {
			snap := e.snapshot()
			c.mu.Unlock()
			return snap, snap.Err
		}
		ch = c.flight.DoChan(e.flightKey, e.call)
		c.mu.Unlock()
	}
}

func (c *Cache) entryLocked(key Key) *entry {
	id := key.String()
	e, ok := c.entries[id]
	if !ok {
		e = &entry{key: key, idleSince: c.opts.now()}
		c.entries[id] = e
	}
	return e
}

// listenersLocked captures the current snapshot and listeners of e and
// returns a func delivering it outside the lock.
func (c *Cache) listenersLocked(e *entry) func() {
	if len(e.listeners) == 0 {
		return func() {}
	}
	snap := e.snapshot()
	fns := make([]func(Snapshot), 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	return func() {
		for _, fn := range fns {
			fn(snap)
		}
	}
}

// Subscription is one observer of an entry.
type Subscription struct {
	c    *Cache
	e    *entry
	id   uint64
	once sync.Once
}

// Subscribe registers an observer of key. listener, when non-nil, receives a
// snapshot after every change of the entry; snapshots may arrive out of
// order, compare Version. The entry is kept from garbage collection while it
// has observers.
func (c *Cache) Subscribe(key Key, listener func(Snapshot)) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key)
	c.nextSub++
	id := c.nextSub

	e.observers++
	if listener != nil {
		if e.listeners == nil {
			e.listeners = make(map[uint64]func(Snapshot))
		}
		e.listeners[id] = listener
	}
	return &Subscription{c: c, e: e, id: id}
}

func (s *Subscription) Key() Key { return s.e.key }

// Unsubscribe is idempotent.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		c, e := s.c, s.e
		c.mu.Lock()
		defer c.mu.Unlock()

		delete(e.listeners, s.id)
		if e.observers > 0 {
			e.observers--
		}
		if e.observers == 0 {
			e.idleSince = c.opts.now()
		}
	})
}

// Sweep removes entries that have had no observers for longer than the GC
// window and returns how many were removed. Entries with a fetch in flight
// are kept.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	now := c.opts.now()
	n := 0
	for id, e := range c.entries {
		if e.observers > 0 || e.inflight {
			continue
		}
		if now.Sub(e.idleSince) > c.opts.gcWindow {
			delete(c.entries, id)
			n++
		}
	}
	c.mu.Unlock()

	if n > 0 {
		c.evictions.Add(int64(n))
		evictionsTotal.Add(float64(n))
		c.opts.log.Debug(context.Background(), "cache swept", "evicted", n)
	}
	return n
}

// Run sweeps on every tick until ctx is done.
func (c *Cache) Run(ctx context.Context) {
	ticker := time.NewTicker(c.opts.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// Clear drops every entry nobody observes and resets observed ones to idle,
// discarding their values and any fetch in flight. Subscriptions stay valid.
func (c *Cache) Clear() {
	c.mu.Lock()
	var notifies []func()
	n := 0
	for id, e := range c.entries {
		n++
		if e.observers == 0 {
			delete(c.entries, id)
			continue
		}
		c.seq++
		e.gen = c.seq
		e.inflight = false
		e.call = nil
		e.refetchPending = false
		e.value = nil
		e.hasValue = false
		e.err = nil
		e.status = StatusIdle
		e.updatedAt = time.Time{}
		e.invalidated = false
		e.version++
		notifies = append(notifies, c.listenersLocked(e))
	}
	c.mu.Unlock()

	c.opts.log.Debug(context.Background(), "cache cleared", "entries", n)
	for _, notify := range notifies {
		notify()
	}
}

// Stats is a point-in-time view of the cache counters.
type Stats struct {
	Entries       int
	Hits          int64
	Misses        int64
	Fetches       int64
	FetchErrors   int64
	Superseded    int64
	Invalidations int64
	Evictions     int64
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	n := len(c.entries)
	c.mu.Unlock()

	return Stats{
		Entries:       n,
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Fetches:       c.fetches.Load(),
		FetchErrors:   c.fetchErrors.Load(),
		Superseded:    c.superseded.Load(),
		Invalidations: c.invalidations.Load(),
		Evictions:     c.evictions.Load(),
	}
}
