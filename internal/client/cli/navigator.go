package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
)

// Navigator is the terminal implementation of session.Navigator. The REPL
// has a single screen: navigating prints why and makes the App fall back
// to the logged-out command set before the next prompt.
type Navigator struct {
	out io.Writer

	mu      sync.Mutex
	pending string
	fired   bool
}

func NewNavigator(out io.Writer) *Navigator {
	return &Navigator{out: out}
}

func (n *Navigator) Navigate(_ context.Context, target string) {
	n.mu.Lock()
	n.pending, n.fired = target, true
	n.mu.Unlock()

	fmt.Fprintln(n.out, navigationMessage(target))
}

// take returns the last target and resets it.
func (n *Navigator) take() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	target, fired := n.pending, n.fired
	n.pending, n.fired = "", false
	return target, fired
}

func navigationMessage(target string) string {
	u, err := url.Parse(target)
	if err == nil && u.Query().Get("session") == "expired" {
		return "Your session has expired, please log in again"
	}
	return "Please log in"
}
