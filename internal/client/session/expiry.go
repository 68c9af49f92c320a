// Package session reacts to the server rejecting the credential.
package session

import (
	"context"
	"net/url"
	"sync/atomic"

	"github.com/dmitrijs2005/hangarkeeper/internal/common"
	"github.com/dmitrijs2005/hangarkeeper/internal/logging"
)

// ExpiredTarget is where the user is sent when the session ends.
var ExpiredTarget = common.LoginPath + "?" + url.Values{"session": {"expired"}}.Encode()

// Navigator moves the user to another screen.
type Navigator interface {
	Navigate(ctx context.Context, target string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, target string)

func (f NavigatorFunc) Navigate(ctx context.Context, target string) { f(ctx, target) }

// Credentials is the part of the credential store the handler needs.
type Credentials interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// ExpiryHandler clears the credential and navigates to the login screen.
// Many requests may fail with 401 at the same moment; only the first of
// them navigates until Rearm is called. A 401 while no credential is stored
// (a rejected login) is not an expiry and is ignored.
type ExpiryHandler struct {
	creds Credentials
	nav   Navigator
	log   logging.Logger

	fired atomic.Bool
}

func NewExpiryHandler(creds Credentials, nav Navigator, log logging.Logger) *ExpiryHandler {
	if log == nil {
		log = logging.Nop()
	}
	return &ExpiryHandler{creds: creds, nav: nav, log: log}
}

// Expire implements client.ExpiryHandler.
func (h *ExpiryHandler) Expire(ctx context.Context) {
	if h.fired.Load() {
		return
	}

	ctx = context.WithoutCancel(ctx)
	if token, err := h.creds.Token(ctx); err == nil && token == "" {
		return
	}
	if !h.fired.CompareAndSwap(false, true) {
		return
	}

	if err := h.creds.Clear(ctx); err != nil {
		h.log.Error(ctx, "failed to clear credential", "error", err)
	}
	h.log.Info(ctx, "session expired", "target", ExpiredTarget)
	h.nav.Navigate(ctx, ExpiredTarget)
}

// Rearm re-enables navigation after a successful login.
func (h *ExpiryHandler) Rearm() {
	h.fired.Store(false)
}

// Expired reports whether the handler fired since the last Rearm.
func (h *ExpiryHandler) Expired() bool {
	return h.fired.Load()
}
