package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/hangarkeeper/internal/client/client"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/keys"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/models"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/mutation"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/notify"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/query"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/querycache"
	"github.com/dmitrijs2005/hangarkeeper/internal/common"
	"github.com/dmitrijs2005/hangarkeeper/internal/logging"
)

// Deps is what every service is built from.
type Deps struct {
	API       client.API
	Cache     *querycache.Cache
	Notifier  notify.Notifier
	Log       logging.Logger
	StaleTime time.Duration
}

func (d Deps) logger() logging.Logger {
	if d.Log == nil {
		return logging.Nop()
	}
	return d.Log
}

// Tenant addresses station-scoped endpoints.
type Tenant struct {
	Company string
	Station string
}

// Item addresses one resource of a company.
type Item struct {
	Company string
	ID      string
}

// Input is the argument of every record mutation. ID is the resource for
// updates and deletes, or the parent resource for nested creates.
type Input struct {
	Company string
	ID      string
	Data    models.Record
}

func companyOnly(company string) bool { return query.Required(company) }

func (t Tenant) ready() bool { return query.Required(t.Company, t.Station) }

func (i Item) ready() bool { return query.Required(i.Company, i.ID) }

func newQuery[P, T any](d Deps, key func(P) querycache.Key, path func(P) string, enabled func(P) bool, p P) *query.Query[P, T] {
	return query.New(d.Cache, query.Options[P, T]{
		Key: key,
		Fetch: func(ctx context.Context, p P) (T, error) {
			var out T
			err := d.API.Do(ctx, http.MethodGet, path(p), nil, &out)
			return out, err
		},
		Enabled:   enabled,
		StaleTime: d.StaleTime,
	}, p)
}

// recordWrite describes a mutation on a record endpoint.
type recordWrite struct {
	name    string
	method  string
	path    func(Input) string
	needsID bool
	affects func(Input) []querycache.Key
}

func newRecordMutation(d Deps, w recordWrite) *mutation.Mutation[Input, models.Record] {
	return mutation.New(d.Cache, d.Notifier, d.logger(), mutation.Options[Input, models.Record]{
		Name: w.name,
		Do: func(ctx context.Context, in Input) (models.Record, error) {
			if in.Company == "" {
				return nil, fmt.Errorf("%w: %w", client.ErrInvalidInput, common.ErrNoCompanySelected)
			}
			if w.needsID && in.ID == "" {
				return nil, fmt.Errorf("%w: missing id", client.ErrInvalidInput)
			}
			var body any
			if in.Data != nil {
				body = in.Data
			}
			var out models.Record
			if err := d.API.Do(ctx, w.method, w.path(in), body, &out); err != nil {
				return nil, err
			}
			return out, nil
		},
		Invalidates: func(in Input, _ models.Record) []querycache.Key {
			return w.affects(in)
		},
	})
}

func roots(rs ...keys.Root) []querycache.Key {
	out := make([]querycache.Key, len(rs))
	for i, r := range rs {
		out[i] = r.Key()
	}
	return out
}
