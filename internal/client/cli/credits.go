package cli

import (
	"context"

	"github.com/dmitrijs2005/hangarkeeper/internal/client/services"
)

func (a *App) ShowCash(ctx context.Context, args []string) error {
	rec, err := load(ctx, a.svc.Credits.Cash(services.Item{Company: a.company(), ID: args[0]}), errNeedCompany)
	if err != nil {
		return err
	}
	renderRecord(a.out, rec)
	return nil
}

func (a *App) ListCredits(ctx context.Context, _ []string) error {
	list, err := load(ctx, a.svc.Credits.Credits(a.company()), errNeedCompany)
	if err != nil {
		return err
	}
	renderRecords(a.out, list)
	return nil
}

func (a *App) AddCredit(ctx context.Context, args []string) error {
	in, err := a.input("", args)
	if err != nil {
		return err
	}
	return a.written(a.svc.Credits.AddCredit(ctx, in))
}
