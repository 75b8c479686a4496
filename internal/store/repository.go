package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/msgstore/internal/message"
	"github.com/roach88/msgstore/internal/metrics"
	"github.com/roach88/msgstore/internal/queryprovider"
	"github.com/roach88/msgstore/internal/serializer"
)

// Repository stores and queries message records through a dialect's
// query provider. It holds no mutable state and is safe for concurrent use
// as long as its Executor is.
type Repository struct {
	exec       Executor
	provider   queryprovider.Provider
	serializer serializer.Serializer
	logger     *slog.Logger
	metrics    *metrics.Collector
	now        func() time.Time
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics records operation metrics on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(r *Repository) { r.metrics = c }
}

// WithClock sets the time source used when Add receives a zero CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRepository creates a Repository. The provider's serializer decides how
// payload columns are written and read.
func NewRepository(exec Executor, provider queryprovider.Provider, opts ...Option) (*Repository, error) {
	if exec == nil {
		return nil, fmt.Errorf("%w: executor is nil", message.ErrInvalidArgument)
	}
	if provider == nil {
		return nil, fmt.Errorf("%w: query provider is nil", message.ErrInvalidArgument)
	}
	if provider.Serializer() == nil {
		return nil, fmt.Errorf("%w: provider has no serializer", message.ErrInvalidArgument)
	}

	r := &Repository{
		exec:       exec,
		provider:   provider,
		serializer: provider.Serializer(),
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Provider returns the query provider the repository runs.
func (r *Repository) Provider() queryprovider.Provider {
	return r.provider
}

// Serializer returns the payload serializer.
func (r *Repository) Serializer() serializer.Serializer {
	return r.serializer
}

// EnsureSchema creates the messages table and its indexes if the existence
// check finds no table. Calling it on every startup is safe.
func (r *Repository) EnsureSchema(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { r.metrics.Observe(metrics.OpEnsureSchema, start, err) }()

	exists, err := r.tableExists(ctx)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	if exists {
		r.logger.DebugContext(ctx, "messages table present", "dialect", r.provider.Dialect())
		return nil
	}

	if _, err := r.exec.ExecContext(ctx, r.provider.GetCreateTableScript()); err != nil {
		return fmt.Errorf("ensure schema: create table: %w", err)
	}
	r.metrics.SchemaCreated()
	r.logger.InfoContext(ctx, "created messages table",
		"dialect", r.provider.Dialect(),
		"text_payload", r.serializer.IsText(),
	)
	return nil
}

func (r *Repository) tableExists(ctx context.Context) (bool, error) {
	script, args := r.provider.GetExistsTableScript()
	rows, err := r.exec.QueryContext(ctx, script, args...)
	if err != nil {
		return false, fmt.Errorf("check table: %w", err)
	}
	defer rows.Close()

	found := rows.Next()
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("check table: %w", err)
	}
	return found, nil
}
