package credentials

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/hangarkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/hangarkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newRepo(t *testing.T) *metadata.SQLiteRepository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)
	return metadata.NewSQLiteRepository(db)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewSQLiteStore(newRepo(t))

	tok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.Set(ctx, "abc"))
	tok, err = s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	require.NoError(t, s.Clear(ctx))
	tok, err = s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestSQLiteStore_ObservesExternalRotation(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	s := NewSQLiteStore(repo)

	require.NoError(t, s.Set(ctx, "old"))
	require.NoError(t, repo.Set(ctx, common.AuthTokenKey, []byte("new")))

	tok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", tok)
}

func TestSQLiteStore_SetEmptyRejected(t *testing.T) {
	err := NewSQLiteStore(newRepo(t)).Set(context.Background(), "")
	require.ErrorIs(t, err, common.ErrNoToken)
}

type failingRepo struct{ metadata.Repository }

func (failingRepo) Get(context.Context, string) ([]byte, error) { return nil, errors.New("disk") }

func TestSQLiteStore_TokenError(t *testing.T) {
	_, err := NewSQLiteStore(failingRepo{}).Token(context.Background())
	require.ErrorContains(t, err, "load credential: disk")
}

func TestInspect(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-7",
		"email": "pilot@example.com",
		"exp":   exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("not-the-server-key"))
	require.NoError(t, err)

	c, err := Inspect(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-7", c.Subject)
	assert.Equal(t, "pilot@example.com", c.Email)
	assert.True(t, c.ExpiresAt.Equal(exp))
	assert.False(t, c.Expired(time.Now()))
	assert.True(t, c.Expired(exp.Add(time.Second)))
}

func TestInspect_Invalid(t *testing.T) {
	_, err := Inspect("")
	require.ErrorIs(t, err, common.ErrNoToken)

	_, err = Inspect("not-a-jwt")
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestClaims_NoExpiry(t *testing.T) {
	assert.False(t, Claims{}.Expired(time.Now()))
}
