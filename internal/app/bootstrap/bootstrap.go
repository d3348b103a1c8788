package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	voterregistry "agora/contexts/governance/voter-registry"
	registrymemory "agora/contexts/governance/voter-registry/adapters/memory"
	registrypostgres "agora/contexts/governance/voter-registry/adapters/postgres"
	votingengine "agora/contexts/governance/voting-engine"
	governancememory "agora/contexts/governance/voting-engine/adapters/memory"
	governancepostgres "agora/contexts/governance/voting-engine/adapters/postgres"
	governanceworkers "agora/contexts/governance/voting-engine/application/workers"
	"agora/contexts/governance/voting-engine/domain/entities"
	"agora/internal/platform/config"
	"agora/internal/platform/db"
	"agora/internal/platform/httpserver"
	"agora/internal/platform/messaging"
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
	outboxRelay  governanceworkers.OutboxRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	clock := governancememory.TickingClock{Genesis: time.Now().UTC()}
	chain := governancememory.NewSeededChainLedger(entities.Balance(cfg.DefaultBalance))

	governanceRepo := governancepostgres.NewRepository(pg.DB, logger)
	governanceModule := votingengine.NewModule(votingengine.Dependencies{
		Proposals:        governanceRepo,
		Ledger:           governanceRepo,
		Registry:         governanceRepo,
		Balances:         chain,
		Clock:            clock,
		IDGen:            governancepostgres.UUIDGenerator{},
		Outbox:           governanceRepo,
		MaxVotes:         cfg.MaxVotes,
		ProposalDuration: entities.BlockNumber(cfg.ProposalDuration),
		Logger:           logger,
	})

	registryRepo := registrypostgres.NewRepository(pg.DB, logger)
	registryModule := voterregistry.NewModule(voterregistry.Dependencies{
		Registry:   registryRepo,
		Authorizer: registrymemory.NewRootAuthorizer(cfg.RootAccounts),
		Clock:      registryClock{inner: clock},
		IDGen:      registrypostgres.UUIDGenerator{},
		Outbox:     registryRepo,
		Logger:     logger,
	})

	server := httpserver.New(registryModule, governanceModule, logger, normalizeAddr(cfg.HTTPPort))
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

	repo := governancepostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		outboxRelay: governanceworkers.OutboxRelay{
			Outbox:    repo,
			Publisher: kafka,
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

// registryClock bridges the shared ticking clock into the registry module,
// which counts blocks as plain uint64.
type registryClock struct {
	inner governancememory.TickingClock
}

func (c registryClock) CurrentBlock() uint64 {
	return uint64(c.inner.CurrentBlock())
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
