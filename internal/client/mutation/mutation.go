// Package mutation runs side-effecting requests. A successful mutation
// invalidates the cache prefixes it declares and then tells the user; a
// failed one leaves the cache alone and reports the error. Nothing is
// retried.
package mutation

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/dmitrijs2005/hangarkeeper/internal/client/client"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/notify"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/querycache"
	"github.com/dmitrijs2005/hangarkeeper/internal/logging"
	"github.com/google/uuid"
)

type Options[In, Out any] struct {
	// Name is a short human label, e.g. "Create article".
	Name string
	Do   func(ctx context.Context, in In) (Out, error)
	// Invalidates lists the key prefixes made stale by a successful call.
	Invalidates func(in In, out Out) []querycache.Key
	// SuccessMessage overrides the default "<Name> succeeded".
	SuccessMessage func(in In, out Out) string
}

// Result is the typed outcome of Execute.
type Result[Out any] struct {
	Data        Out
	Err         error
	Kind        client.ErrorKind
	Invalidated int
}

func (r Result[Out]) OK() bool { return r.Err == nil }

type Mutation[In, Out any] struct {
	cache    *querycache.Cache
	notifier notify.Notifier
	log      logging.Logger
	opts     Options[In, Out]
	pending  atomic.Int32
}

func New[In, Out any](cache *querycache.Cache, n notify.Notifier, log logging.Logger, opts Options[In, Out]) *Mutation[In, Out] {
	if n == nil {
		n = notify.Discard
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Mutation[In, Out]{cache: cache, notifier: n, log: log, opts: opts}
}

// Plan returns the prefixes a successful call with in and out invalidates.
func (m *Mutation[In, Out]) Plan(in In, out Out) []querycache.Key {
	if m.opts.Invalidates == nil {
		return nil
	}
	return m.opts.Invalidates(in, out)
}

// Pending is the number of calls currently running.
func (m *Mutation[In, Out]) Pending() int {
	return int(m.pending.Load())
}

// Execute calls Do exactly once. A 401 is not reported here; the session
// expiry handler owns that path.
func (m *Mutation[In, Out]) Execute(ctx context.Context, in In) Result[Out] {
	m.pending.Add(1)
	defer m.pending.Add(-1)

	log := m.log.With("mutation", m.opts.Name, "mutation_id", uuid.NewString())

	out, err := m.do(ctx, in)
	if err != nil {
		kind := client.Classify(err)
		log.Warn(ctx, "mutation failed", "kind", kind.String(), "error", err)
		if kind != client.KindAuth {
			m.notifier.Notify(ctx, notify.Notification{
				Level:   notify.LevelError,
				Title:   m.opts.Name + " failed",
				Message: client.UserMessage(err),
			})
		}
		return Result[Out]{Err: err, Kind: kind}
	}

	n := 0
	for _, prefix := range m.Plan(in, out) {
		n += m.cache.Invalidate(prefix)
	}
	log.Debug(ctx, "mutation succeeded", "invalidated", n)

	msg := m.opts.Name + " succeeded"
	if m.opts.SuccessMessage != nil {
		msg = m.opts.SuccessMessage(in, out)
	}
	m.notifier.Notify(ctx, notify.Notification{Level: notify.LevelSuccess, Title: msg})

	return Result[Out]{Data: out, Invalidated: n}
}

func (m *Mutation[In, Out]) do(ctx context.Context, in In) (out Out, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s panicked: %v", m.opts.Name, p)
		}
	}()
	return m.opts.Do(ctx, in)
}
