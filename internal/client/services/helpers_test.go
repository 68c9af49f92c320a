package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/hangarkeeper/internal/client/client"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/credentials"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/models"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/notify"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/querycache"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/selection"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/session"
	"github.com/stretchr/testify/require"
)

// backend is an in-memory stand-in for the remote API.
type backend struct {
	mu       sync.Mutex
	articles map[string][]models.Record
	hits     map[string]int
	bodies   map[string][]map[string]any
	auth     []string
}

func newBackend() *backend {
	return &backend{
		articles: map[string][]models.Record{"hangar74": {{"id": "a-1", "name": "Oil filter"}}},
		hits:     map[string]int{},
		bodies:   map[string][]map[string]any{},
	}
}

func (b *backend) record(r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hits[r.Method+" "+r.URL.Path]++
	b.auth = append(b.auth, r.Header.Get("Authorization"))
	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
		var body map[string]any
		if json.NewDecoder(r.Body).Decode(&body) == nil {
			b.bodies[r.Method+" "+r.URL.Path] = append(b.bodies[r.Method+" "+r.URL.Path], body)
		}
	}
}

func (b *backend) count(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

func (b *backend) lastBody(route string) map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	all := b.bodies[route]
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

func (b *backend) lastAuth() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.auth) == 0 {
		return ""
	}
	return b.auth[len(b.auth)-1]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		body := b.lastBody("POST /auth/login")
		if body["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": "tok-1"})
	})
	mux.HandleFunc("GET /companies", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		writeJSON(w, http.StatusOK, []models.Company{{Slug: "hangar74", Name: "Hangar 74"}})
	})
	mux.HandleFunc("GET /{company}/stations", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		writeJSON(w, http.StatusOK, []models.Station{{ID: "LOC1", Name: "Riga"}})
	})
	mux.HandleFunc("GET /{company}/articles", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		b.mu.Lock()
		list := append([]models.Record(nil), b.articles[r.PathValue("company")]...)
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, list)
	})
	mux.HandleFunc("POST /{company}/articles", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		body := b.lastBody(r.Method + " " + r.URL.Path)
		if body["name"] == "dup" {
			writeJSON(w, http.StatusConflict, map[string]string{"message": "Part number already exists"})
			return
		}
		rec := models.Record(body)
		rec["id"] = "a-new"
		b.mu.Lock()
		c := r.PathValue("company")
		b.articles[c] = append(b.articles[c], rec)
		b.mu.Unlock()
		writeJSON(w, http.StatusCreated, rec)
	})
	mux.HandleFunc("GET /{company}/{station}/warehouse/articles", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		writeJSON(w, http.StatusOK, []models.Record{{"id": "a-1", "qty": 3}})
	})
	mux.HandleFunc("PATCH /{company}/flights/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		writeJSON(w, http.StatusOK, models.Record{"id": r.PathValue("id")})
	})
	mux.HandleFunc("GET /{company}/flights", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		writeJSON(w, http.StatusOK, []models.Record{{"id": "f-1", "query": r.URL.RawQuery}})
	})
	mux.HandleFunc("GET /{company}/cash/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		writeJSON(w, http.StatusOK, models.Record{"clientId": r.PathValue("id"), "balance": 100})
	})
	mux.HandleFunc("GET /{company}/credits", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		writeJSON(w, http.StatusOK, []models.Record{})
	})
	mux.HandleFunc("POST /{company}/employees/{id}/work-schedules", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /{company}/employees/{id}/work-schedules", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		writeJSON(w, http.StatusOK, []models.Record{})
	})
	mux.HandleFunc("DELETE /{company}/articles/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		w.WriteHeader(http.StatusNoContent)
	})
	return rejectRevoked(mux)
}

const revokedToken = "revoked"

func rejectRevoked(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer "+revokedToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type env struct {
	backend *backend
	srv     *httptest.Server
	db      *sql.DB
	creds   *credentials.SQLiteStore
	expiry  *session.ExpiryHandler
	sel     *selection.Store
	notes   *notify.Recorder
	nav     []string
	deps    Deps
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{backend: newBackend(), notes: &notify.Recorder{}}
	e.srv = httptest.NewServer(e.backend.handler())
	t.Cleanup(e.srv.Close)

	db, err := client.OpenDatabase(context.Background(), filepath.Join(t.TempDir(), "hangar.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	e.db = db

	e.creds = credentials.NewSQLiteStore(metadata.NewSQLiteRepository(db))
	e.expiry = session.NewExpiryHandler(e.creds, session.NavigatorFunc(func(_ context.Context, target string) {
		e.nav = append(e.nav, target)
	}), nil)
	e.sel = selection.NewStore(db, nil)

	api := client.New(e.srv.URL,
		client.WithRequestHook(client.AuthHook(e.creds), client.BypassHook(), client.RequestIDHook()),
		client.WithResponseHook(client.SessionExpiryHook(e.expiry)),
	)
	e.deps = Deps{API: api, Cache: querycache.New(), Notifier: e.notes}
	return e
}
