package querycache

import (
	"context"
	"time"
)

// Fetcher loads the value of one key from the server.
type Fetcher func(ctx context.Context) (any, error)

type Status int

const (
	// StatusIdle means no fetch has ever been started for the entry.
	StatusIdle Status = iota
	// StatusLoading means the first fetch is in flight.
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable copy of an entry.
type Snapshot struct {
	Key      Key
	Value    any
	HasValue bool
	// Err is the error of the last settled fetch; Value still holds the last
	// good value when there was one.
	Err         error
	Status      Status
	UpdatedAt   time.Time
	Invalidated bool
	Fetching    bool
	// Version grows on every change of the entry.
	Version uint64
}

type entry struct {
	key Key

	value     any
	hasValue  bool
	err       error
	status    Status
	updatedAt time.Time

	invalidated bool
	fetcher     Fetcher

	// gen is the generation of the most recently initiated fetch; only that
	// fetch may commit. inflight is true while it runs.
	gen            uint64
	inflight       bool
	flightKey      string
	call           func() (any, error)
	refetchPending bool

	observers int
	listeners map[uint64]func(Snapshot)
	idleSince time.Time

	version uint64
}

func (e *entry) snapshot() Snapshot {
	return Snapshot{
		Key:         e.key,
		Value:       e.value,
		HasValue:    e.hasValue,
		Err:         e.err,
		Status:      e.status,
		UpdatedAt:   e.updatedAt,
		Invalidated: e.invalidated,
		Fetching:    e.inflight,
		Version:     e.version,
	}
}

// fresh reports whether the entry can be served without a fetch. A negative
// staleTime disables age-based staleness.
func (e *entry) fresh(now time.Time, staleTime time.Duration) bool {
	if !e.hasValue || e.invalidated || e.err != nil {
		return false
	}
	if staleTime < 0 {
		return true
	}
	return now.Sub(e.updatedAt) <= staleTime
}
