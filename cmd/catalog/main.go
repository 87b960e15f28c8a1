package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"

	"ProductAPI/internal/catalog"
	"ProductAPI/pkg/kit"
)

func main() {
	service := "catalog"

	cfg, err := catalog.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := kit.NewLogger(service, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	store, err := newStore(cfg)
	if err != nil {
		log.Fatal("init store failed", zap.Error(err))
	}

	s := &catalog.Server{
		Store:  store,
		Images: catalog.NewIngestor(cfg.UploadDir, cfg.ImagePublicPath),
		Status: catalog.NewStatusClient(cfg.StatusURL),
		Log:    log,
	}

	reg := prometheus.NewRegistry()
	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:             log,
		Service:         service,
		Registry:        reg,
		MetricsEnabled:  cfg.MetricsEnabled,
		MetricsToken:    cfg.MetricsToken,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimit:       cfg.RateLimit,
		RateLimitWindow: cfg.RateLimitWindow,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reporter := &catalog.StatsReporter{Store: store, Log: log, Interval: cfg.StatsInterval}
	go reporter.Run(ctx)

	if err := kit.RunHTTPServer(ctx, cfg.Addr, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func newStore(cfg *catalog.Config) (catalog.Store, error) {
	if cfg.PGDSN != "" {
		db, err := sql.Open("pgx", cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		return catalog.NewPostgresStore(db), nil
	}

	mem := catalog.NewMemStore()
	if cfg.SeedDemoData {
		mem.SeedDemo()
	}
	return mem, nil
}
