package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/hangarkeeper/internal/client/client"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/credentials"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/models"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/notify"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/querycache"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/selection"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/services"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/session"
	"github.com/stretchr/testify/require"
)

// backend is a minimal stand-in for the remote API.
type backend struct {
	mu       sync.Mutex
	hits     map[string]int
	articles []models.Record
	bodies   map[string]map[string]any
}

func newBackend() *backend {
	return &backend{
		hits:     map[string]int{},
		articles: []models.Record{{"id": "a-1", "name": "Oil filter"}},
		bodies:   map[string]map[string]any{},
	}
}

func (b *backend) record(r *http.Request) map[string]any {
	route := r.Method + " " + r.URL.Path
	var body map[string]any
	if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.hits[route]++
	if body != nil {
		b.bodies[route] = body
	}
	return body
}

func (b *backend) count(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

func (b *backend) body(route string) map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[route]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		body := b.record(r)
		if body["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, models.LoginResponse{Token: "tok-1"})
	})
	mux.HandleFunc("GET /companies", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		writeJSON(w, http.StatusOK, []models.Company{{Slug: "hangar74", Name: "Hangar 74"}, {Slug: "aeroclub"}})
	})
	mux.HandleFunc("GET /{company}/stations", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		writeJSON(w, http.StatusOK, []models.Station{{ID: "LOC1", Name: "Riga", Code: "RIX"}})
	})
	mux.HandleFunc("GET /{company}/articles", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		b.mu.Lock()
		list := append([]models.Record(nil), b.articles...)
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, list)
	})
	mux.HandleFunc("POST /{company}/articles", func(w http.ResponseWriter, r *http.Request) {
		body := b.record(r)
		if body["name"] == "dup" {
			writeJSON(w, http.StatusConflict, map[string]string{"message": "Part number already exists"})
			return
		}
		rec := models.Record(body)
		rec["id"] = "a-2"
		b.mu.Lock()
		b.articles = append(b.articles, rec)
		b.mu.Unlock()
		writeJSON(w, http.StatusCreated, rec)
	})
	mux.HandleFunc("GET /{company}/{station}/warehouse/articles", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		writeJSON(w, http.StatusOK, []models.Record{{"id": "a-1", "qty": 3, "station": r.PathValue("station")}})
	})
	mux.HandleFunc("GET /{company}/flights", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		writeJSON(w, http.StatusOK, []models.Record{{"id": "f-1", "query": r.URL.RawQuery}})
	})
	mux.HandleFunc("GET /{company}/cash/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		writeJSON(w, http.StatusOK, models.Record{"clientId": r.PathValue("id"), "balance": 120})
	})
	mux.HandleFunc("POST /{company}/employees/{id}/work-schedules", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		w.WriteHeader(http.StatusNoContent)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer "+revokedToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		mux.ServeHTTP(w, r)
	})
}

const revokedToken = "revoked"

type env struct {
	backend *backend
	out     *bytes.Buffer
	creds   *credentials.SQLiteStore
	sel     *selection.Store
	cache   *querycache.Cache
	app     *App
}

// newEnv wires a real App against an httptest backend. input is what the
// user types.
func newEnv(t *testing.T, input string) *env {
	t.Helper()

	e := &env{backend: newBackend(), out: &bytes.Buffer{}}
	srv := httptest.NewServer(e.backend.handler())
	t.Cleanup(srv.Close)

	db, err := client.OpenDatabase(context.Background(), filepath.Join(t.TempDir(), "hangar.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	e.creds = credentials.NewSQLiteStore(metadata.NewSQLiteRepository(db))
	e.sel = selection.NewStore(db, nil)
	e.cache = querycache.New()

	nav := NewNavigator(e.out)
	expiry := session.NewExpiryHandler(e.creds, nav, nil)

	api := client.New(srv.URL,
		client.WithRequestHook(client.AuthHook(e.creds), client.RequestIDHook()),
		client.WithResponseHook(client.SessionExpiryHook(expiry)),
	)
	d := services.Deps{API: api, Cache: e.cache, Notifier: notify.NewWriter(e.out)}

	e.app = NewApp(Deps{
		Services: Services{
			Auth:      services.NewAuthService(d, e.creds, expiry, e.sel),
			Companies: services.NewCompanyService(d),
			Warehouse: services.NewWarehouseService(d),
			Flights:   services.NewFlightService(d),
			Credits:   services.NewCreditService(d),
			Safety:    services.NewSafetyService(d),
			HR:        services.NewHRService(d),
		},
		Selection: e.sel,
		Cache:     e.cache,
		Navigator: nav,
		In:        strings.NewReader(input),
		Out:       e.out,
	})
	return e
}

func (e *env) run(t *testing.T) string {
	t.Helper()
	require.NoError(t, e.app.Run(context.Background()))
	return e.out.String()
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(*bufio.Reader, io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}
