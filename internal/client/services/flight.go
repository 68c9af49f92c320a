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

type FlightsParams struct {
	Company string
	Filter  keys.FlightFilter
}

// FlightService manages flights. A flight consumes credits of its client,
// so every flight write also invalidates credits and cash balances.
type FlightService interface {
	Flights(p FlightsParams) *query.Query[FlightsParams, []models.Record]
	Flight(it Item) *query.Query[Item, models.Record]

	CreateFlight(ctx context.Context, in Input) mutation.Result[models.Record]
	UpdateFlight(ctx context.Context, in Input) mutation.Result[models.Record]
	DeleteFlight(ctx context.Context, in Input) mutation.Result[models.Record]
}

type flightService struct {
	d Deps

	create *mutation.Mutation[Input, models.Record]
	update *mutation.Mutation[Input, models.Record]
	remove *mutation.Mutation[Input, models.Record]
}

func flightAffects(Input) []querycache.Key {
	return roots(keys.RootFlights, keys.RootCredits, keys.RootCash)
}

func NewFlightService(d Deps) FlightService {
	return &flightService{
		d: d,
		create: newRecordMutation(d, recordWrite{
			name:    "Create flight",
			method:  http.MethodPost,
			path:    func(in Input) string { return client.Path(in.Company, "flights") },
			affects: flightAffects,
		}),
		update: newRecordMutation(d, recordWrite{
			name:    "Update flight",
			method:  http.MethodPatch,
			path:    func(in Input) string { return client.Path(in.Company, "flights", in.ID) },
			needsID: true,
			affects: flightAffects,
		}),
		remove: newRecordMutation(d, recordWrite{
			name:    "Delete flight",
			method:  http.MethodDelete,
			path:    func(in Input) string { return client.Path(in.Company, "flights", in.ID) },
			needsID: true,
			affects: flightAffects,
		}),
	}
}

// Flights is GET /{company}/flights?from=&to=&clientId=.
func (s *flightService) Flights(p FlightsParams) *query.Query[FlightsParams, []models.Record] {
	return newQuery[FlightsParams, []models.Record](s.d,
		func(p FlightsParams) querycache.Key { return keys.Flights(p.Company, p.Filter) },
		func(p FlightsParams) string {
			return client.WithQuery(client.Path(p.Company, "flights"), url.Values{
				"from":     {p.Filter.From},
				"to":       {p.Filter.To},
				"clientId": {p.Filter.ClientID},
			})
		},
		func(p FlightsParams) bool { return companyOnly(p.Company) },
		p,
	)
}

// Flight is GET /{company}/flights/{id}.
func (s *flightService) Flight(it Item) *query.Query[Item, models.Record] {
	return newQuery[Item, models.Record](s.d,
		func(it Item) querycache.Key { return keys.Flight(it.Company, it.ID) },
		func(it Item) string { return client.Path(it.Company, "flights", it.ID) },
		Item.ready,
		it,
	)
}

func (s *flightService) CreateFlight(ctx context.Context, in Input) mutation.Result[models.Record] {
	return s.create.Execute(ctx, in)
}

func (s *flightService) UpdateFlight(ctx context.Context, in Input) mutation.Result[models.Record] {
	return s.update.Execute(ctx, in)
}

func (s *flightService) DeleteFlight(ctx context.Context, in Input) mutation.Result[models.Record] {
	return s.remove.Execute(ctx, in)
}
