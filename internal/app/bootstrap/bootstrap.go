package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	marketplaceengine "nftmarket/contexts/market-core/marketplace-engine"
	"nftmarket/contexts/market-core/marketplace-engine/adapters/memory"
	postgresadapter "nftmarket/contexts/market-core/marketplace-engine/adapters/postgres"
	workerapp "nftmarket/contexts/market-core/marketplace-engine/application/workers"
	"nftmarket/internal/platform/config"
	"nftmarket/internal/platform/db"
	"nftmarket/internal/platform/httpserver"
	"nftmarket/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  workerapp.OutboxRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	var (
		pg     *db.Postgres
		module marketplaceengine.Module
	)
	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err = db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}

		// Custody and payments stay on the in-memory registries until the
		// external asset and ledger integrations land.
		assets := memory.NewAssetRegistry()
		ledger := memory.NewPaymentLedger()
		module = marketplaceengine.NewModule(marketplaceengine.Dependencies{
			Repository:    postgresadapter.NewRepository(pg.DB, logger),
			Custody:       assets,
			Payments:      ledger,
			Royalty:       assets,
			Clock:         postgresadapter.SystemClock{},
			IDGenerator:   postgresadapter.UUIDGenerator{},
			Owner:         cfg.MarketOwner,
			EscrowAccount: cfg.EscrowAccount,
			Logger:        logger,
		})
	} else {
		logger.Info("no postgres dsn configured, using in-memory registries",
			"event", "bootstrap_in_memory_wiring",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		module = marketplaceengine.NewInMemoryModule(cfg.MarketOwner, logger)
	}

	if cfg.PlatformFeeBps > 0 {
		if err := module.Service.UpdatePlatformFee(context.Background(), cfg.MarketOwner, cfg.PlatformFeeBps, cfg.PlatformFeeAccount); err != nil {
			return nil, err
		}
	}

	server := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    repo,
			Publisher: kafka,
			Clock:     postgresadapter.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.outboxRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
