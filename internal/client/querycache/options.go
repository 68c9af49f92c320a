package querycache

import (
	"time"

	"github.com/dmitrijs2005/hangarkeeper/internal/logging"
)

const (
	DefaultGCWindow      = 5 * time.Minute
	DefaultSweepInterval = time.Minute
)

type options struct {
	gcWindow      time.Duration
	sweepInterval time.Duration
	log           logging.Logger
	now           func() time.Time
}

// Option configures a Cache.
type Option func(*options)

// WithGCWindow sets how long an entry without observers survives.
func WithGCWindow(d time.Duration) Option {
	return func(o *options) { o.gcWindow = d }
}

// WithSweepInterval sets the tick of Run.
func WithSweepInterval(d time.Duration) Option {
	return func(o *options) { o.sweepInterval = d }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func defaultOptions() options {
	return options{
		gcWindow:      DefaultGCWindow,
		sweepInterval: DefaultSweepInterval,
		log:           logging.Nop(),
		now:           time.Now,
	}
}
