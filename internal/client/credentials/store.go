// Package credentials keeps the bearer token outside application memory.
// Every request reads it afresh, so a token rotated or cleared by another
// process is picked up on the next call.
package credentials

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/hangarkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/hangarkeeper/internal/common"
)

// Store holds the opaque bearer token issued at login.
type Store interface {
	Token(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type SQLiteStore struct {
	repo metadata.Repository
}

func NewSQLiteStore(repo metadata.Repository) *SQLiteStore {
	return &SQLiteStore{repo: repo}
}

// Token returns "" when no credential is stored.
func (s *SQLiteStore) Token(ctx context.Context) (string, error) {
	b, err := s.repo.Get(ctx, common.AuthTokenKey)
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	return string(b), nil
}

func (s *SQLiteStore) Set(ctx context.Context, token string) error {
	if token == "" {
		return common.ErrNoToken
	}
	if err := s.repo.Set(ctx, common.AuthTokenKey, []byte(token)); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx, common.AuthTokenKey); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}
