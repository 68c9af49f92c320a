// Package notify delivers transient user-facing messages, the terminal
// equivalent of a toast. It is kept apart from cache invalidation so the
// data layer stays testable without a UI.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/hangarkeeper/internal/logging"
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

type Notification struct {
	Level   Level
	Title   string
	Message string
}

func (n Notification) String() string {
	if n.Title == "" {
		return n.Message
	}
	if n.Message == "" {
		return n.Title
	}
	return n.Title + ": " + n.Message
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(context.Context, Notification) {})

type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter prints one line per notification to w.
func NewWriter(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

var marks = map[Level]string{
	LevelInfo:    "[i]",
	LevelSuccess: "[✓]",
	LevelError:   "[✗]",
}

func (wn *WriterNotifier) Notify(_ context.Context, n Notification) {
	wn.mu.Lock()
	defer wn.mu.Unlock()
	fmt.Fprintf(wn.w, "%s %s\n", marks[n.Level], n)
}

type logNotifier struct {
	log logging.Logger
}

// NewLogNotifier writes notifications to the structured log.
func NewLogNotifier(l logging.Logger) Notifier {
	return logNotifier{log: l}
}

func (ln logNotifier) Notify(ctx context.Context, n Notification) {
	args := []any{"kind", n.Level.String(), "title", n.Title, "message", n.Message}
	if n.Level == LevelError {
		ln.log.Warn(ctx, "notification", args...)
		return
	}
	ln.log.Info(ctx, "notification", args...)
}

type multi []Notifier

// Multi fans a notification out to every notifier, in order.
func Multi(ns ...Notifier) Notifier {
	return multi(ns)
}

func (m multi) Notify(ctx context.Context, n Notification) {
	for _, x := range m {
		x.Notify(ctx, n)
	}
}

// Recorder keeps every notification; handy in tests.
type Recorder struct {
	mu  sync.Mutex
	all []Notification
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, n)
}

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.all...)
}
