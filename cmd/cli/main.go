package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/hangarkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/cli"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/client"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/config"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/credentials"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/notify"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/querycache"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/selection"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/services"
	"github.com/dmitrijs2005/hangarkeeper/internal/client/session"
	"github.com/dmitrijs2005/hangarkeeper/internal/filex"
	"github.com/dmitrijs2005/hangarkeeper/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()
	log := logging.NewTextLogger(os.Stderr, cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "cli stopped", "error", err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	if err := filex.EnsureParentDir(cfg.DBPath); err != nil {
		return err
	}
	db, err := client.OpenDatabase(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	creds := credentials.NewSQLiteStore(metadata.NewSQLiteRepository(db))
	sel := selection.NewStore(db, log)
	nav := cli.NewNavigator(os.Stdout)
	expiry := session.NewExpiryHandler(creds, nav, log)

	api := client.New(cfg.APIURL,
		client.WithLogger(log),
		client.WithRequestHook(client.AuthHook(creds), client.BypassHook(), client.RequestIDHook()),
		client.WithResponseHook(client.SessionExpiryHook(expiry)),
	)

	cache := querycache.New(querycache.WithGCWindow(cfg.GCWindow), querycache.WithLogger(log))
	go cache.Run(ctx)

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, log)
	}

	var notifier notify.Notifier = notify.NewWriter(os.Stdout)
	if logging.ParseLevel(cfg.LogLevel) <= slog.LevelDebug {
		notifier = notify.Multi(notifier, notify.NewLogNotifier(log))
	}

	d := services.Deps{API: api, Cache: cache, Notifier: notifier, Log: log, StaleTime: cfg.StaleTime}

	app := cli.NewApp(cli.Deps{
		Services: cli.Services{
			Auth:      services.NewAuthService(d, creds, expiry, sel),
			Companies: services.NewCompanyService(d),
			Warehouse: services.NewWarehouseService(d),
			Flights:   services.NewFlightService(d),
			Credits:   services.NewCreditService(d),
			Safety:    services.NewSafetyService(d),
			HR:        services.NewHRService(d),
		},
		Selection:     sel,
		Cache:         cache,
		Navigator:     nav,
		Log:           log,
		CheckInterval: cfg.OnlineCheckInterval,
	})

	return app.Run(ctx)
}

// serveMetrics exposes the Prometheus registry until ctx is done.
func serveMetrics(ctx context.Context, addr string, log logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	log.Info(ctx, "serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(ctx, "metrics server failed", "error", err)
	}
}
