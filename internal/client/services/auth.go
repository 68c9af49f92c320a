package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/hangarkeeper/internal/client/client"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/credentials"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/models"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/querycache"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/selection"
	"github.com/dmitrijs2005/hangarkeeper/internal/common"
	"github.com/dmitrijs2005/hangarkeeper/internal/logging"
)

// ErrBadCredentials is returned by Login when the server rejects the
// email/password pair.
var ErrBadCredentials = errors.New("invalid email or password")

// Rearmer re-enables the session-expiry handler after a login.
type Rearmer interface {
	Rearm()
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: exchange email/password for a token and store it.
//   - Logout: drop the token, the cached server state and the selection.
//   - Status: what the client knows about the session without a request.
//   - Ping: check server liveness.
type AuthService interface {
	Login(ctx context.Context, email string, password []byte) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) (SessionStatus, error)
	Ping(ctx context.Context) error
}

type SessionStatus struct {
	LoggedIn  bool
	Claims    credentials.Claims
	Selection selection.State
}

type authService struct {
	api    client.API
	creds  credentials.Store
	expiry Rearmer
	cache  *querycache.Cache
	sel    *selection.Store
	log    logging.Logger
}

func NewAuthService(d Deps, creds credentials.Store, expiry Rearmer, sel *selection.Store) AuthService {
	return &authService{api: d.API, creds: creds, expiry: expiry, cache: d.Cache, sel: sel, log: d.logger()}
}

// Login posts the credentials to /auth/login. The request runs outside the
// current session, so a rejected password leaves a stored token alone.
// Cached state of a previous session is dropped on success.
func (a *authService) Login(ctx context.Context, email string, password []byte) error {
	req := models.LoginRequest{Email: email, Password: string(password)}
	var resp models.LoginResponse

	if err := a.api.Do(client.WithoutSession(ctx), http.MethodPost, "/auth/login", req, &resp); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return ErrBadCredentials
		}
		return fmt.Errorf("login error: %w", err)
	}
	if resp.Token == "" {
		return fmt.Errorf("login error: %w", common.ErrInvalidToken)
	}

	if err := a.creds.Set(ctx, resp.Token); err != nil {
		return fmt.Errorf("login error: %w", err)
	}
	a.cache.Clear()
	a.expiry.Rearm()
	a.log.Info(ctx, "logged in", "email", email)
	return nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.creds.Clear(ctx); err != nil {
		return fmt.Errorf("logout error: %w", err)
	}
	a.cache.Clear()
	if err := a.sel.Reset(ctx); err != nil {
		return fmt.Errorf("logout error: %w", err)
	}
	a.log.Info(ctx, "logged out")
	return nil
}

func (a *authService) Status(ctx context.Context) (SessionStatus, error) {
	st := SessionStatus{Selection: a.sel.State()}

	token, err := a.creds.Token(ctx)
	if err != nil {
		return st, err
	}
	if token == "" {
		return st, nil
	}

	st.LoggedIn = true
	claims, err := credentials.Inspect(token)
	if err != nil {
		// Opaque tokens are fine; the server decides.
		a.log.Debug(ctx, "token is not a readable JWT", "error", err)
		return st, nil
	}
	st.Claims = claims
	return st, nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.api.Ping(ctx)
}
