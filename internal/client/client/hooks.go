package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/hangarkeeper/internal/common"
	"github.com/google/uuid"
)

// RequestHook runs before a request is sent. Returning an error aborts the
// request.
type RequestHook func(req *http.Request) error

// ResponseHook runs after a response is received and before its status is
// interpreted.
type ResponseHook func(resp *http.Response) error

// TokenSource yields the current bearer token, "" when logged out.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// ExpiryHandler reacts to an authorization failure reported by the server.
type ExpiryHandler interface {
	Expire(ctx context.Context)
}

type sessionlessKey struct{}

// WithoutSession marks requests made with ctx as not belonging to the user
// session: no bearer token is attached and a 401 is not a session expiry.
// Login uses it, where a 401 means wrong credentials.
func WithoutSession(ctx context.Context) context.Context {
	return context.WithValue(ctx, sessionlessKey{}, true)
}

func sessionless(ctx context.Context) bool {
	v, _ := ctx.Value(sessionlessKey{}).(bool)
	return v
}

// AuthHook sets the Authorization header. The token is read from src on
// every request so a rotated credential is picked up immediately.
func AuthHook(src TokenSource) RequestHook {
	return func(req *http.Request) error {
		if sessionless(req.Context()) {
			return nil
		}
		token, err := src.Token(req.Context())
		if err != nil {
			return fmt.Errorf("read credential: %w", err)
		}
		if token != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
		}
		return nil
	}
}

// BypassHook sets the tunnelling proxy interstitial bypass header.
func BypassHook() RequestHook {
	return func(req *http.Request) error {
		req.Header.Set(common.BypassHeaderName, common.BypassHeaderValue)
		return nil
	}
}

// RequestIDHook tags each request with a random X-Request-ID unless the
// caller already set one.
func RequestIDHook() RequestHook {
	return func(req *http.Request) error {
		if req.Header.Get(common.RequestIDHeaderName) == "" {
			req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
		}
		return nil
	}
}

// SessionExpiryHook hands every 401 response of a session request to h.
func SessionExpiryHook(h ExpiryHandler) ResponseHook {
	return func(resp *http.Response) error {
		if resp.StatusCode == http.StatusUnauthorized && !sessionless(resp.Request.Context()) {
			h.Expire(resp.Request.Context())
		}
		return nil
	}
}
