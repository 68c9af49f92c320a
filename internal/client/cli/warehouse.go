package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/hangarkeeper/internal/client/keys"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/services"
)

func (a *App) ListArticles(ctx context.Context, args []string) error {
	status := keys.ArticleStatusAll
	if len(args) > 0 {
		switch s := keys.ArticleStatus(args[0]); s {
		case keys.ArticleStatusAll, keys.ArticleStatusActive, keys.ArticleStatusArchived:
			status = s
		default:
			return fmt.Errorf("unknown article status %q", args[0])
		}
	}

	list, err := load(ctx, a.svc.Warehouse.Articles(services.ArticlesParams{Company: a.company(), Status: status}), errNeedCompany)
	if err != nil {
		return err
	}
	renderRecords(a.out, list)
	return nil
}

func (a *App) AddArticle(ctx context.Context, args []string) error {
	in, err := a.input("", args)
	if err != nil {
		return err
	}
	return a.written(a.svc.Warehouse.CreateArticle(ctx, in))
}

func (a *App) UpdateArticle(ctx context.Context, args []string) error {
	in, err := a.input(args[0], args[1:])
	if err != nil {
		return err
	}
	return a.written(a.svc.Warehouse.UpdateArticle(ctx, in))
}

func (a *App) DeleteArticle(ctx context.Context, args []string) error {
	return a.written(a.svc.Warehouse.DeleteArticle(ctx, services.Input{Company: a.company(), ID: args[0]}))
}

// ListStock shows the selected station's warehouse.
func (a *App) ListStock(ctx context.Context, _ []string) error {
	list, err := load(ctx, a.svc.Warehouse.WarehouseArticles(a.tenant()), a.notReady())
	if err != nil {
		return err
	}
	renderRecords(a.out, list)
	return nil
}

func (a *App) ListBatches(ctx context.Context, _ []string) error {
	list, err := load(ctx, a.svc.Warehouse.Batches(a.tenant()), a.notReady())
	if err != nil {
		return err
	}
	renderRecords(a.out, list)
	return nil
}

// AddBatch receives stock into the selected station unless the fields name
// another one.
func (a *App) AddBatch(ctx context.Context, args []string) error {
	in, err := a.input("", args)
	if err != nil {
		return err
	}
	if _, ok := in.Data["station"]; !ok && a.tenant().Station != "" {
		in.Data["station"] = a.tenant().Station
	}
	return a.written(a.svc.Warehouse.CreateBatch(ctx, in))
}
