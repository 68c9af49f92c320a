package query

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/hangarkeeper/internal/client/querycache"
)

// ErrUnexpectedType means the cached payload is not of the query's type.
var ErrUnexpectedType = errors.New("unexpected payload type")

type Status int

const (
	// StatusDisabled means a required parameter is missing; nothing is
	// fetched and this is not an error.
	StatusDisabled Status = iota
	// StatusIdle means enabled but never loaded.
	StatusIdle
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusDisabled:
		return "disabled"
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

// Result is what presentation code sees of a read. Data is the last good
// value when HasData is set, even in StatusError. Err may also carry the
// caller's context error when Load gave up waiting.
type Result[T any] struct {
	Data      T
	HasData   bool
	Status    Status
	Err       error
	Fetching  bool
	UpdatedAt time.Time
}

func (r Result[T]) IsDisabled() bool { return r.Status == StatusDisabled }
func (r Result[T]) IsLoading() bool  { return r.Status == StatusLoading }
func (r Result[T]) IsSuccess() bool  { return r.Status == StatusSuccess }
func (r Result[T]) IsError() bool    { return r.Status == StatusError }

func disabled[T any]() Result[T] {
	return Result[T]{Status: StatusDisabled}
}

func fromSnapshot[T any](snap querycache.Snapshot) Result[T] {
	r := Result[T]{
		Err:       snap.Err,
		Fetching:  snap.Fetching,
		UpdatedAt: snap.UpdatedAt,
	}

	switch snap.Status {
	case querycache.StatusIdle:
		r.Status = StatusIdle
	case querycache.StatusLoading:
		r.Status = StatusLoading
	case querycache.StatusSuccess:
		r.Status = StatusSuccess
	case querycache.StatusError:
		r.Status = StatusError
	}

	if snap.HasValue {
		v, ok := snap.Value.(T)
		if !ok {
			var zero T
			return Result[T]{
				Status: StatusError,
				Err:    fmt.Errorf("%w: have %T, want %T", ErrUnexpectedType, snap.Value, zero),
			}
		}
		r.Data = v
		r.HasData = true
	}
	return r
}
