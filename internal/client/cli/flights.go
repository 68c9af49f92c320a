package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/hangarkeeper/internal/client/keys"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/services"
)

func (a *App) ListFlights(ctx context.Context, args []string) error {
	opts, err := options(args)
	if err != nil {
		return err
	}

	var f keys.FlightFilter
	for name, value := range opts {
		switch name {
		case "from", "to":
			if _, err := time.Parse(time.DateOnly, value); err != nil {
				return fmt.Errorf("%s: expected YYYY-MM-DD, got %q", name, value)
			}
			if name == "from" {
				f.From = value
			} else {
				f.To = value
			}
		case "client":
			f.ClientID = value
		default:
			return fmt.Errorf("unknown filter %q", name)
		}
	}

	list, err := load(ctx, a.svc.Flights.Flights(services.FlightsParams{Company: a.company(), Filter: f}), errNeedCompany)
	if err != nil {
		return err
	}
	renderRecords(a.out, list)
	return nil
}

func (a *App) ShowFlight(ctx context.Context, args []string) error {
	rec, err := load(ctx, a.svc.Flights.Flight(services.Item{Company: a.company(), ID: args[0]}), errNeedCompany)
	if err != nil {
		return err
	}
	renderRecord(a.out, rec)
	return nil
}

func (a *App) AddFlight(ctx context.Context, args []string) error {
	in, err := a.input("", args)
	if err != nil {
		return err
	}
	return a.written(a.svc.Flights.CreateFlight(ctx, in))
}

func (a *App) UpdateFlight(ctx context.Context, args []string) error {
	in, err := a.input(args[0], args[1:])
	if err != nil {
		return err
	}
	return a.written(a.svc.Flights.UpdateFlight(ctx, in))
}

func (a *App) DeleteFlight(ctx context.Context, args []string) error {
	return a.written(a.svc.Flights.DeleteFlight(ctx, services.Input{Company: a.company(), ID: args[0]}))
}
