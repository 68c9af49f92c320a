package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// counter returns a fetcher yielding 1, 2, 3, ... and the call count.
func counter() (Fetcher, *atomic.Int32) {
	var n atomic.Int32
	return func(context.Context) (any, error) {
		return int(n.Add(1)), nil
	}, &n
}

// gated returns a fetcher blocking until gate is closed.
func gated(gate <-chan struct{}, val any) (Fetcher, *atomic.Int32) {
	var n atomic.Int32
	return func(context.Context) (any, error) {
		n.Add(1)
		<-gate
		return val, nil
	}, &n
}

const wait = 2 * time.Second
const tick = 5 * time.Millisecond

func TestEnsureFresh_ServesFreshEntryFromCache(t *testing.T) {
	clk := newClock()
	c := New(WithClock(clk.Now))
	fetch, calls := counter()
	key := NewKey("companies")

	snap, err := c.EnsureFresh(context.Background(), key, fetch, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Value)
	assert.Equal(t, StatusSuccess, snap.Status)

	snap, err = c.EnsureFresh(context.Background(), key, fetch, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Value)
	assert.EqualValues(t, 1, calls.Load())

	clk.Advance(time.Minute + time.Second)
	snap, err = c.EnsureFresh(context.Background(), key, fetch, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Value)

	st := c.Stats()
	assert.EqualValues(t, 1, st.Hits)
	assert.EqualValues(t, 2, st.Misses)
}

func TestEnsureFresh_ConcurrentCallersShareOneFetch(t *testing.T) {
	c := New()
	gate := make(chan struct{})
	fetch, calls := gated(gate, "payload")
	key := NewKey("articles", "hangar74", "active")

	const callers = 10
	var wg sync.WaitGroup
	results := make([]Snapshot, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Fresh but equal keys must still land on the same entry.
			results[i], _ = c.EnsureFresh(context.Background(), NewKey("articles", "hangar74", "active"), fetch, 0)
		}()
	}

	require.Eventually(t, func() bool { return c.Stats().Misses == callers }, wait, tick)
	close(gate)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	for _, r := range results {
		assert.Equal(t, "payload", r.Value)
	}
	snap, ok := c.Get(key)
	require.True(t, ok)
	assert.False(t, snap.Fetching)
}

func TestEnsureFresh_ErrorKeepsLastGoodValue(t *testing.T) {
	c := New()
	key := NewKey("cash", "123")
	fetch, _ := counter()

	_, err := c.EnsureFresh(context.Background(), key, fetch, time.Hour)
	require.NoError(t, err)

	boom := errors.New("502 bad gateway")
	snap, err := c.Refetch(context.Background(), key, func(context.Context) (any, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StatusError, snap.Status)
	assert.True(t, snap.HasValue)
	assert.Equal(t, 1, snap.Value)
	assert.ErrorIs(t, snap.Err, boom)

	// An errored entry is not fresh.
	snap, err = c.EnsureFresh(context.Background(), key, fetch, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Value)
	assert.NoError(t, snap.Err)
}

func TestEnsureFresh_FetchPanicBecomesError(t *testing.T) {
	c := New()
	_, err := c.EnsureFresh(context.Background(), NewKey("x"), func(context.Context) (any, error) {
		panic("nil map")
	}, 0)
	require.ErrorContains(t, err, "fetch panicked: nil map")
}

func TestEnsureFresh_CallerCancellationDoesNotAbortFetch(t *testing.T) {
	c := New()
	gate := make(chan struct{})
	var fetchCtxDone atomic.Bool
	key := NewKey("flights", "hangar74")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.EnsureFresh(ctx, key, func(fctx context.Context) (any, error) {
			<-gate
			fetchCtxDone.Store(fctx.Err() != nil)
			return "flights", nil
		}, 0)
		done <- err
	}()

	require.Eventually(t, func() bool {
		s, ok := c.Get(key)
		return ok && s.Fetching
	}, wait, tick)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	close(gate)
	require.Eventually(t, func() bool {
		s, _ := c.Get(key)
		return s.Status == StatusSuccess
	}, wait, tick)
	snap, _ := c.Get(key)
	assert.Equal(t, "flights", snap.Value)
	assert.False(t, fetchCtxDone.Load())
}

func TestRefetch_LastInitiatedWins_LaterSettlesFirst(t *testing.T) {
	c := New()
	key := NewKey("cash", "123")
	gateA, gateB := make(chan struct{}), make(chan struct{})
	fetchA, _ := gated(gateA, "A")
	fetchB, _ := gated(gateB, "B")

	resA := make(chan Snapshot, 1)
	go func() {
		s, _ := c.EnsureFresh(context.Background(), key, fetchA, 0)
		resA <- s
	}()
	require.Eventually(t, func() bool { return c.Stats().Fetches == 1 }, wait, tick)

	resB := make(chan Snapshot, 1)
	go func() {
		s, _ := c.Refetch(context.Background(), key, fetchB)
		resB <- s
	}()
	require.Eventually(t, func() bool { return c.Stats().Fetches == 2 }, wait, tick)

	close(gateB)
	assert.Equal(t, "B", (<-resB).Value)

	close(gateA)
	assert.Equal(t, "B", (<-resA).Value)

	snap, _ := c.Get(key)
	assert.Equal(t, "B", snap.Value)
	assert.EqualValues(t, 1, c.Stats().Superseded)
}

func TestRefetch_LastInitiatedWins_EarlierSettlesFirst(t *testing.T) {
	c := New()
	key := NewKey("cash", "123")
	gateA, gateB := make(chan struct{}), make(chan struct{})
	fetchA, _ := gated(gateA, "A")
	fetchB, _ := gated(gateB, "B")

	resA := make(chan Snapshot, 1)
	go func() {
		s, _ := c.EnsureFresh(context.Background(), key, fetchA, 0)
		resA <- s
	}()
	require.Eventually(t, func() bool { return c.Stats().Fetches == 1 }, wait, tick)

	resB := make(chan Snapshot, 1)
	go func() {
		s, _ := c.Refetch(context.Background(), key, fetchB)
		resB <- s
	}()
	require.Eventually(t, func() bool { return c.Stats().Fetches == 2 }, wait, tick)

	close(gateA)
	require.Eventually(t, func() bool { return c.Stats().Superseded == 1 }, wait, tick)
	snap, _ := c.Get(key)
	assert.False(t, snap.HasValue, "superseded result must not be committed")

	close(gateB)
	assert.Equal(t, "B", (<-resB).Value)
	assert.Equal(t, "B", (<-resA).Value)
}

func TestRefetch_UnknownKey(t *testing.T) {
	_, err := New().Refetch(context.Background(), NewKey("nope"), nil)
	require.ErrorIs(t, err, ErrNoFetcher)
}

func TestInvalidate_PrefixMarksAndRefetchesSubscribed(t *testing.T) {
	c := New()
	ctx := context.Background()

	watched := NewKey("articles", "hangar74")
	unwatched := NewKey("articles", "hangar74", "archived")
	other := NewKey("batches", "hangar74")

	fetchW, callsW := counter()
	fetchU, callsU := counter()
	fetchO, callsO := counter()

	var seen atomic.Int32
	sub := c.Subscribe(watched, func(Snapshot) { seen.Add(1) })
	defer sub.Unsubscribe()

	_, err := c.EnsureFresh(ctx, watched, fetchW, time.Hour)
	require.NoError(t, err)
	_, err = c.EnsureFresh(ctx, unwatched, fetchU, time.Hour)
	require.NoError(t, err)
	_, err = c.EnsureFresh(ctx, other, fetchO, time.Hour)
	require.NoError(t, err)

	n := c.Invalidate(NewKey("articles"))
	assert.Equal(t, 2, n)

	require.Eventually(t, func() bool {
		s, _ := c.Get(watched)
		return s.Value == 2 && !s.Invalidated && !s.Fetching
	}, wait, tick)

	s, _ := c.Get(unwatched)
	assert.True(t, s.Invalidated)
	assert.Equal(t, 1, s.Value)
	assert.EqualValues(t, 1, callsU.Load())

	s, _ = c.Get(other)
	assert.False(t, s.Invalidated)
	assert.EqualValues(t, 1, callsO.Load())
	assert.EqualValues(t, 2, callsW.Load())
	assert.Positive(t, seen.Load())

	// The unwatched entry refetches on next demand.
	s, err = c.EnsureFresh(ctx, unwatched, fetchU, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Value)
}

func TestInvalidate_WhileInFlightCoalescesToOneFollowUp(t *testing.T) {
	c := New()
	key := NewKey("credits", "hangar74")
	gate := make(chan struct{})
	var calls atomic.Int32
	fetch := func(context.Context) (any, error) {
		n := calls.Add(1)
		<-gate
		return int(n), nil
	}

	sub := c.Subscribe(key, nil)
	defer sub.Unsubscribe()

	go func() { _, _ = c.EnsureFresh(context.Background(), key, fetch, time.Hour) }()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, wait, tick)

	for range 5 {
		assert.Equal(t, 1, c.Invalidate(NewKey("credits")))
	}
	assert.EqualValues(t, 1, calls.Load())

	close(gate)
	require.Eventually(t, func() bool {
		s, _ := c.Get(key)
		return s.Value == 2 && !s.Fetching
	}, wait, tick)
	assert.EqualValues(t, 2, calls.Load())
}

func TestInvalidate_WhileInFlightWithoutObserversStaysStale(t *testing.T) {
	c := New()
	key := NewKey("articles", "hangar74", "all")
	gate := make(chan struct{})
	var calls atomic.Int32
	fetch := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			<-gate
			return "before-write", nil
		}
		return "after-write", nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.EnsureFresh(context.Background(), key, fetch, time.Minute)
	}()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, wait, tick)

	assert.Equal(t, 1, c.Invalidate(NewKey("articles")))
	close(gate)
	<-done

	s, ok := c.Get(key)
	require.True(t, ok)
	assert.True(t, s.Invalidated)
	assert.False(t, s.Fetching)
	assert.EqualValues(t, 1, calls.Load(), "no observers, no background refetch")

	snap, err := c.EnsureFresh(context.Background(), key, fetch, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "after-write", snap.Value)
	assert.EqualValues(t, 2, calls.Load())
}

func TestInvalidateAll(t *testing.T) {
	c := New()
	fetch, _ := counter()
	for _, k := range []Key{NewKey("a"), NewKey("b", 1), NewKey("c", "x", "y")} {
		_, err := c.EnsureFresh(context.Background(), k, fetch, time.Hour)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, c.InvalidateAll())
	assert.EqualValues(t, 3, c.Stats().Invalidations)
}

func TestSweep_RemovesUnobservedEntriesAfterWindow(t *testing.T) {
	clk := newClock()
	c := New(WithClock(clk.Now), WithGCWindow(5*time.Minute))
	fetch, _ := counter()
	ctx := context.Background()

	idle := NewKey("employees", "hangar74")
	watched := NewKey("certificates", "hangar74")

	_, err := c.EnsureFresh(ctx, idle, fetch, time.Hour)
	require.NoError(t, err)
	sub := c.Subscribe(watched, nil)
	_, err = c.EnsureFresh(ctx, watched, fetch, time.Hour)
	require.NoError(t, err)

	clk.Advance(4 * time.Minute)
	assert.Zero(t, c.Sweep())

	clk.Advance(2 * time.Minute)
	assert.Equal(t, 1, c.Sweep())
	_, ok := c.Get(idle)
	assert.False(t, ok)
	_, ok = c.Get(watched)
	assert.True(t, ok)

	sub.Unsubscribe()
	sub.Unsubscribe()
	assert.Zero(t, c.Sweep())

	clk.Advance(6 * time.Minute)
	assert.Equal(t, 1, c.Sweep())
	assert.Zero(t, c.Stats().Entries)
	assert.EqualValues(t, 2, c.Stats().Evictions)
}

func TestRun_StopsWithContext(t *testing.T) {
	c := New(WithSweepInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(wait):
		t.Fatal("Run did not return after cancel")
	}
}

func TestClear_ResetsObservedAndDropsRest(t *testing.T) {
	c := New()
	fetch, _ := counter()
	ctx := context.Background()

	watched := NewKey("stations", "hangar74")
	var last atomic.Value
	sub := c.Subscribe(watched, func(s Snapshot) { last.Store(s) })
	defer sub.Unsubscribe()

	_, err := c.EnsureFresh(ctx, watched, fetch, time.Hour)
	require.NoError(t, err)
	_, err = c.EnsureFresh(ctx, NewKey("companies"), fetch, time.Hour)
	require.NoError(t, err)

	c.Clear()

	assert.Equal(t, 1, c.Stats().Entries)
	s, ok := c.Get(watched)
	require.True(t, ok)
	assert.Equal(t, StatusIdle, s.Status)
	assert.False(t, s.HasValue)
	assert.Equal(t, StatusIdle, last.Load().(Snapshot).Status)
}

func TestSubscribe_ListenerSeesLoadingThenSuccess(t *testing.T) {
	c := New()
	key := NewKey("safety-reports", "hangar74")

	var mu sync.Mutex
	var statuses []Status
	sub := c.Subscribe(key, func(s Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		statuses = append(statuses, s.Status)
	})
	defer sub.Unsubscribe()
	assert.True(t, sub.Key().Equal(key))

	fetch, _ := counter()
	_, err := c.EnsureFresh(context.Background(), key, fetch, 0)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, statuses, StatusLoading)
	assert.Contains(t, statuses, StatusSuccess)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "error", StatusError.String())
	assert.Equal(t, "unknown", Status(42).String())
}
