package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/msgstore/internal/message"
	"github.com/roach88/msgstore/internal/metrics"
)

// Query returns the records matching q, ordered by id ascending.
//
// Returns an empty slice (not nil) when nothing matches. A nil q fails with
// message.ErrInvalidArgument before touching storage.
func (r *Repository) Query(ctx context.Context, q *message.Query) (records []message.Record, err error) {
	start := time.Now()
	defer func() { r.metrics.Observe(metrics.OpQuery, start, err) }()

	script, args, err := r.provider.GetFilterScript(q)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	r.logger.DebugContext(ctx, "running filter script", "sql", script, "params", len(args))

	rows, err := r.exec.QueryContext(ctx, script, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	records = []message.Record{}
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	r.metrics.AddRows(len(records))
	return records, nil
}

// scanRecord decodes one row in queryprovider.Columns order.
func (r *Repository) scanRecord(rows *sql.Rows) (message.Record, error) {
	var (
		rec                       message.Record
		typeCode, statusCode      int64
		durationMillis            int64
		content, data, errDetails payloadColumn
	)
	content.text, data.text, errDetails.text = r.serializer.IsText(), r.serializer.IsText(), r.serializer.IsText()

	if err := rows.Scan(
		&rec.ID, &typeCode, &rec.ContentID, &rec.ContentType,
		&content, &data, &errDetails,
		&rec.ErrorMessage, &rec.ErrorType, &rec.CreatedAt,
		&durationMillis, &statusCode,
	); err != nil {
		return message.Record{}, fmt.Errorf("scan message: %w", err)
	}

	var err error
	if rec.Type, err = message.TypeFromCode(typeCode); err != nil {
		return message.Record{}, fmt.Errorf("scan message %d: %w", rec.ID, err)
	}
	if rec.Status, err = message.StatusFromCode(statusCode); err != nil {
		return message.Record{}, fmt.Errorf("scan message %d: %w", rec.ID, err)
	}

	rec.Content = content.value
	if rec.Content == nil {
		rec.Content = []byte{}
	}
	rec.Data = data.value
	rec.ErrorDetails = errDetails.value
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.ExecutionDuration = time.Duration(durationMillis) * time.Millisecond
	return rec, nil
}
