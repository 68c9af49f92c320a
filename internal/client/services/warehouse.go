package services

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/hangarkeeper/internal/client/client"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/keys"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/models"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/mutation"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/query"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/querycache"
)

type ArticlesParams struct {
	Company string
	Status  keys.ArticleStatus
}

// WarehouseService covers the article catalogue, per-station stock and
// batches (stock receipts).
type WarehouseService interface {
	Articles(p ArticlesParams) *query.Query[ArticlesParams, []models.Record]
	WarehouseArticles(t Tenant) *query.Query[Tenant, []models.Record]
	Batches(t Tenant) *query.Query[Tenant, []models.Record]

	CreateArticle(ctx context.Context, in Input) mutation.Result[models.Record]
	UpdateArticle(ctx context.Context, in Input) mutation.Result[models.Record]
	DeleteArticle(ctx context.Context, in Input) mutation.Result[models.Record]
	CreateBatch(ctx context.Context, in Input) mutation.Result[models.Record]
}

type warehouseService struct {
	d Deps

	createArticle *mutation.Mutation[Input, models.Record]
	updateArticle *mutation.Mutation[Input, models.Record]
	deleteArticle *mutation.Mutation[Input, models.Record]
	createBatch   *mutation.Mutation[Input, models.Record]
}

func articleAffects(Input) []querycache.Key {
	return roots(keys.RootArticles, keys.RootWarehouseArticles)
}

func NewWarehouseService(d Deps) WarehouseService {
	return &warehouseService{
		d: d,
		createArticle: newRecordMutation(d, recordWrite{
			name:    "Create article",
			method:  http.MethodPost,
			path:    func(in Input) string { return client.Path(in.Company, "articles") },
			affects: articleAffects,
		}),
		updateArticle: newRecordMutation(d, recordWrite{
			name:    "Update article",
			method:  http.MethodPut,
			path:    func(in Input) string { return client.Path(in.Company, "articles", in.ID) },
			needsID: true,
			affects: articleAffects,
		}),
		deleteArticle: newRecordMutation(d, recordWrite{
			name:    "Delete article",
			method:  http.MethodDelete,
			path:    func(in Input) string { return client.Path(in.Company, "articles", in.ID) },
			needsID: true,
			affects: articleAffects,
		}),
		createBatch: newRecordMutation(d, recordWrite{
			name:   "Create batch",
			method: http.MethodPost,
			path:   func(in Input) string { return client.Path(in.Company, "batches") },
			affects: func(Input) []querycache.Key {
				return roots(keys.RootBatches, keys.RootArticles, keys.RootWarehouseArticles)
			},
		}),
	}
}

// Articles is GET /{company}/articles?status=.
func (s *warehouseService) Articles(p ArticlesParams) *query.Query[ArticlesParams, []models.Record] {
	return newQuery[ArticlesParams, []models.Record](s.d,
		func(p ArticlesParams) querycache.Key { return keys.Articles(p.Company, p.Status) },
		func(p ArticlesParams) string {
			q := url.Values{}
			if p.Status != "" && p.Status != keys.ArticleStatusAll {
				q.Set("status", string(p.Status))
			}
			return client.WithQuery(client.Path(p.Company, "articles"), q)
		},
		func(p ArticlesParams) bool { return companyOnly(p.Company) },
		p,
	)
}

// WarehouseArticles is GET /{company}/{station}/warehouse/articles.
func (s *warehouseService) WarehouseArticles(t Tenant) *query.Query[Tenant, []models.Record] {
	return newQuery[Tenant, []models.Record](s.d,
		func(t Tenant) querycache.Key { return keys.WarehouseArticles(t.Company, t.Station) },
		func(t Tenant) string { return client.Path(t.Company, t.Station, "warehouse", "articles") },
		Tenant.ready,
		t,
	)
}

// Batches is GET /{company}/batches?station=.
func (s *warehouseService) Batches(t Tenant) *query.Query[Tenant, []models.Record] {
	return newQuery[Tenant, []models.Record](s.d,
		func(t Tenant) querycache.Key { return keys.Batches(t.Company, t.Station) },
		func(t Tenant) string {
			return client.WithQuery(client.Path(t.Company, "batches"), url.Values{"station": {t.Station}})
		},
		Tenant.ready,
		t,
	)
}

func (s *warehouseService) CreateArticle(ctx context.Context, in Input) mutation.Result[models.Record] {
	return s.createArticle.Execute(ctx, in)
}

func (s *warehouseService) UpdateArticle(ctx context.Context, in Input) mutation.Result[models.Record] {
	return s.updateArticle.Execute(ctx, in)
}

func (s *warehouseService) DeleteArticle(ctx context.Context, in Input) mutation.Result[models.Record] {
	return s.deleteArticle.Execute(ctx, in)
}

func (s *warehouseService) CreateBatch(ctx context.Context, in Input) mutation.Result[models.Record] {
	return s.createBatch.Execute(ctx, in)
}
