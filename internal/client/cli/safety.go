package cli

import (
	"context"

	"github.com/dmitrijs2005/hangarkeeper/internal/client/services"
)

func (a *App) ListReports(ctx context.Context, _ []string) error {
	list, err := load(ctx, a.svc.Safety.Reports(a.company()), errNeedCompany)
	if err != nil {
		return err
	}
	renderRecords(a.out, list)
	return nil
}

func (a *App) ShowReport(ctx context.Context, args []string) error {
	rec, err := load(ctx, a.svc.Safety.Report(services.Item{Company: a.company(), ID: args[0]}), errNeedCompany)
	if err != nil {
		return err
	}
	renderRecord(a.out, rec)
	return nil
}

func (a *App) AddReport(ctx context.Context, args []string) error {
	in, err := a.input("", args)
	if err != nil {
		return err
	}
	return a.written(a.svc.Safety.CreateReport(ctx, in))
}

func (a *App) UpdateReport(ctx context.Context, args []string) error {
	in, err := a.input(args[0], args[1:])
	if err != nil {
		return err
	}
	return a.written(a.svc.Safety.UpdateReport(ctx, in))
}
