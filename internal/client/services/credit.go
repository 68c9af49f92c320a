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

// CreditService reads client balances and records credit purchases.
type CreditService interface {
	Cash(it Item) *query.Query[Item, models.Record]
	Credits(company string) *query.Query[string, []models.Record]
	AddCredit(ctx context.Context, in Input) mutation.Result[models.Record]
}

type creditService struct {
	d   Deps
	add *mutation.Mutation[Input, models.Record]
}

func NewCreditService(d Deps) CreditService {
	return &creditService{
		d: d,
		add: newRecordMutation(d, recordWrite{
			name:   "Add credit",
			method: http.MethodPost,
			path:   func(in Input) string { return client.Path(in.Company, "credits") },
			affects: func(Input) []querycache.Key {
				return roots(keys.RootCredits, keys.RootCash)
			},
		}),
	}
}

// Cash is GET /{company}/cash/{clientId}; Item.ID is the client id.
func (s *creditService) Cash(it Item) *query.Query[Item, models.Record] {
	return newQuery[Item, models.Record](s.d,
		func(it Item) querycache.Key { return keys.Cash(it.Company, it.ID) },
		func(it Item) string { return client.Path(it.Company, "cash", it.ID) },
		Item.ready,
		it,
	)
}

// Credits is GET /{company}/credits.
func (s *creditService) Credits(company string) *query.Query[string, []models.Record] {
	return newQuery[string, []models.Record](s.d,
		keys.Credits,
		func(c string) string { return client.Path(c, "credits") },
		companyOnly,
		company,
	)
}

func (s *creditService) AddCredit(ctx context.Context, in Input) mutation.Result[models.Record] {
	return s.add.Execute(ctx, in)
}
