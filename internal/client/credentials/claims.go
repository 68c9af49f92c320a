package credentials

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/hangarkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is what the client can tell about its token without the server's
// signing key.
type Claims struct {
	Subject   string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token is past its exp claim at now. A token
// without exp never expires client-side.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Inspect decodes the claims of a JWT without verifying its signature. The
// result is informational only; the server stays the authority on validity.
func Inspect(token string) (Claims, error) {
	if token == "" {
		return Claims{}, common.ErrNoToken
	}

	var tc tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &tc); err != nil {
		return Claims{}, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	c := Claims{Subject: tc.Subject, Email: tc.Email}
	if tc.IssuedAt != nil {
		c.IssuedAt = tc.IssuedAt.Time
	}
	if tc.ExpiresAt != nil {
		c.ExpiresAt = tc.ExpiresAt.Time
	}
	return c, nil
}
