package cli

import (
	"context"
	"log/slog"

	"github.com/roach88/msgstore/internal/config"
	"github.com/roach88/msgstore/internal/metrics"
	"github.com/roach88/msgstore/internal/queryprovider"
	"github.com/roach88/msgstore/internal/store"
)

// env is the opened configuration, database and repository a command runs
// against.
type env struct {
	cfg     *config.Config
	db      *store.DB
	repo    *store.Repository
	metrics *metrics.Collector
}

func (e *env) Close() {
	if err := e.db.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// openEnv loads the config, opens the database and builds the repository.
// Failures are ExitErrors with ExitCommandError.
func openEnv(ctx context.Context, opts *RootOptions) (*env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err).WithCode(ErrCodeConfig)
	}

	dialect, err := cfg.Database.ResolveDialect()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to resolve dialect", err).WithCode(ErrCodeConfig)
	}
	s, err := cfg.NewSerializer()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to resolve serializer", err).WithCode(ErrCodeConfig)
	}
	provider, err := queryprovider.New(dialect, s)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to build query provider", err).WithCode(ErrCodeConfig)
	}

	slog.Debug("opening database", "driver", cfg.Database.Driver, "dialect", dialect)
	db, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err).WithCode(ErrCodeDatabase)
	}

	collector := metrics.New()
	repo, err := store.NewRepository(db, provider,
		store.WithLogger(slog.Default()),
		store.WithMetrics(collector),
	)
	if err != nil {
		db.Close()
		return nil, WrapExitError(ExitCommandError, "failed to create repository", err).WithCode(ErrCodeDatabase)
	}

	return &env{cfg: cfg, db: db, repo: repo, metrics: collector}, nil
}
