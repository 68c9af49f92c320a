package services

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/hangarkeeper/internal/client/client"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/keys"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/models"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/mutation"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/query"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/querycache"
)

type SafetyService interface {
	Reports(company string) *query.Query[string, []models.Record]
	Report(it Item) *query.Query[Item, models.Record]
	CreateReport(ctx context.Context, in Input) mutation.Result[models.Record]
	UpdateReport(ctx context.Context, in Input) mutation.Result[models.Record]
}

type safetyService struct {
	d      Deps
	create *mutation.Mutation[Input, models.Record]
	update *mutation.Mutation[Input, models.Record]
}

func safetyAffects(Input) []querycache.Key {
	return roots(keys.RootSafetyReports)
}

func NewSafetyService(d Deps) SafetyService {
	return &safetyService{
		d: d,
		create: newRecordMutation(d, recordWrite{
			name:    "Create safety report",
			method:  http.MethodPost,
			path:    func(in Input) string { return client.Path(in.Company, "safety-reports") },
			affects: safetyAffects,
		}),
		update: newRecordMutation(d, recordWrite{
			name:    "Update safety report",
			method:  http.MethodPut,
			path:    func(in Input) string { return client.Path(in.Company, "safety-reports", in.ID) },
			needsID: true,
			affects: safetyAffects,
		}),
	}
}

func (s *safetyService) Reports(company string) *query.Query[string, []models.Record] {
	return newQuery[string, []models.Record](s.d,
		keys.SafetyReports,
		func(c string) string { return client.Path(c, "safety-reports") },
		companyOnly,
		company,
	)
}

func (s *safetyService) Report(it Item) *query.Query[Item, models.Record] {
	return newQuery[Item, models.Record](s.d,
		func(it Item) querycache.Key { return keys.SafetyReport(it.Company, it.ID) },
		func(it Item) string { return client.Path(it.Company, "safety-reports", it.ID) },
		Item.ready,
		it,
	)
}

func (s *safetyService) CreateReport(ctx context.Context, in Input) mutation.Result[models.Record] {
	return s.create.Execute(ctx, in)
}

func (s *safetyService) UpdateReport(ctx context.Context, in Input) mutation.Result[models.Record] {
	return s.update.Execute(ctx, in)
}
