package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/msgstore/internal/message"
	"github.com/roach88/msgstore/internal/metrics"
)

// Insert writes rec as one row. rec.ID is ignored; the database assigns it.
//
// The record is validated first, so an invalid record fails with
// message.ErrInvalidArgument before any I/O. Content type and error type are
// stored NFC-normalized. CreatedAt is stored in UTC truncated to
// message.TimePrecision and ExecutionDuration truncated to
// message.DurationPrecision (see message.Record.Truncate).
func (r *Repository) Insert(ctx context.Context, rec message.Record) (err error) {
	start := time.Now()
	defer func() { r.metrics.Observe(metrics.OpInsert, start, err) }()

	rec = rec.Truncate()
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	_, err = r.exec.ExecContext(ctx, r.provider.GetInsertMessageScript(), r.insertArgs(rec)...)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	r.logger.DebugContext(ctx, "message stored",
		"content_id", rec.ContentID,
		"content_type", rec.ContentType,
		"status", rec.Status,
	)
	return nil
}

// Add serializes env with the repository's serializer and inserts it.
// It returns the record as stored, without the database-assigned id: a
// Query by its ContentID yields an equal record apart from ID.
func (r *Repository) Add(ctx context.Context, env message.Envelope) (message.Record, error) {
	if env.CreatedAt.IsZero() {
		env.CreatedAt = r.now()
	}

	rec, err := message.NewRecord(r.serializer, env)
	if err != nil {
		return message.Record{}, fmt.Errorf("add message: %w", err)
	}
	if err := r.Insert(ctx, rec); err != nil {
		return message.Record{}, err
	}
	return rec, nil
}

// insertArgs binds rec in queryprovider.InsertColumns order.
func (r *Repository) insertArgs(rec message.Record) []any {
	return []any{
		rec.Type.Code(),
		rec.ContentID,
		message.NormalizeName(rec.ContentType),
		r.payloadArg(rec.Content),
		r.payloadArg(rec.Data),
		r.payloadArg(rec.ErrorDetails),
		rec.ErrorMessage,
		message.NormalizeName(rec.ErrorType),
		rec.CreatedAt.UTC(),
		rec.ExecutionDuration.Milliseconds(),
		rec.Status.Code(),
	}
}
