package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/msgstore/internal/message"
	"github.com/roach88/msgstore/internal/metrics"
	"github.com/roach88/msgstore/internal/queryprovider"
	"github.com/roach88/msgstore/internal/serializer"
	"github.com/roach88/msgstore/internal/sqlbuilder"
	fixtures "github.com/roach88/msgstore/internal/testutil"
)

type orderPlaced struct {
	OrderID string `json:"order_id" yaml:"order_id"`
	Total   int    `json:"total" yaml:"total"`
}

func TestNewRepository_RejectsNilCollaborators(t *testing.T) {
	db := openTestDB(t)
	p, err := queryprovider.New(sqlbuilder.SQLite, serializer.JSON{})
	require.NoError(t, err)

	_, err = NewRepository(nil, p)
	assert.ErrorIs(t, err, message.ErrInvalidArgument)

	_, err = NewRepository(db, nil)
	assert.ErrorIs(t, err, message.ErrInvalidArgument)
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	collector := metrics.New()
	repo := createTestRepository(t, serializer.JSON{}, WithMetrics(collector))
	ctx := context.Background()

	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.EnsureSchema(ctx))

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.SchemaCreate), "table must be created exactly once")
	assert.Equal(t, 3.0, testutil.ToFloat64(collector.Operations.WithLabelValues(metrics.OpEnsureSchema, "ok")))
}

func TestEnsureSchema_CreatesIndexes(t *testing.T) {
	repo := createTestRepository(t, serializer.JSON{})
	db := repo.exec.(*DB)

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = 'messages' ORDER BY name")
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{
		"ix_messages_content_id",
		"ix_messages_content_type",
		"ix_messages_error_type",
	}, names)
}

func TestInsertQuery_RoundTrip(t *testing.T) {
	for _, s := range []serializer.Serializer{serializer.JSON{}, serializer.YAML{}, serializer.Gob{}} {
		t.Run(fmt.Sprintf("%T", s), func(t *testing.T) {
			repo := createTestRepository(t, s)
			ctx := context.Background()

			content, err := s.Serialize(orderPlaced{OrderID: "o-1", Total: 42})
			require.NoError(t, err)
			data, err := s.Serialize(map[string]string{"tenant": "acme"})
			require.NoError(t, err)

			want := message.Record{
				Type:              message.TypeEvent,
				ContentID:         uuid.Must(uuid.NewV7()),
				ContentType:       "Orders.OrderPlaced",
				Content:           content,
				Data:              data,
				CreatedAt:         time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
				ExecutionDuration: 1500 * time.Millisecond,
				Status:            message.StatusCompleted,
			}
			require.NoError(t, repo.Insert(ctx, want))

			got, err := repo.Query(ctx, message.NewQuery())
			require.NoError(t, err)
			require.Len(t, got, 1)

			rec := got[0]
			assert.Equal(t, int64(1), rec.ID)
			assert.Equal(t, want.Type, rec.Type)
			assert.Equal(t, want.ContentID, rec.ContentID)
			assert.Equal(t, want.ContentType, rec.ContentType)
			assert.Equal(t, want.Content, rec.Content)
			assert.Equal(t, want.Data, rec.Data)
			assert.Nil(t, rec.ErrorDetails)
			assert.Empty(t, rec.ErrorMessage)
			assert.Empty(t, rec.ErrorType)
			assert.True(t, want.CreatedAt.Equal(rec.CreatedAt), "created_at: want %v got %v", want.CreatedAt, rec.CreatedAt)
			assert.Equal(t, want.ExecutionDuration, rec.ExecutionDuration)
			assert.Equal(t, want.Status, rec.Status)

			var decoded orderPlaced
			require.NoError(t, rec.DecodeContent(s, &decoded))
			assert.Equal(t, orderPlaced{OrderID: "o-1", Total: 42}, decoded)
		})
	}
}

func TestInsert_RejectsInvalidRecord(t *testing.T) {
	repo := createTestRepository(t, serializer.JSON{})
	ctx := context.Background()

	rec := fixtures.NewRecord("orders.Create", fixtures.Epoch)
	rec.ContentType = ""
	err := repo.Insert(ctx, rec)
	assert.ErrorIs(t, err, message.ErrInvalidArgument)

	got, err := repo.Query(ctx, message.NewQuery())
	require.NoError(t, err)
	assert.Empty(t, got, "invalid record must not be written")
}

func TestInsert_NormalizesNames(t *testing.T) {
	repo := createTestRepository(t, serializer.JSON{})
	ctx := context.Background()

	rec := fixtures.NewRecord("Café.Opened", fixtures.Epoch)
	require.NoError(t, repo.Insert(ctx, rec))

	got, err := repo.Query(ctx, message.NewQuery().WithContentType("Café"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Café.Opened", got[0].ContentType)
}

func TestAdd_SerializesEnvelope(t *testing.T) {
	repo := createTestRepository(t, serializer.JSON{})
	ctx := context.Background()

	cause := errors.New("card declined")
	rec, err := repo.Add(ctx, message.Envelope{
		Type:              message.TypeCommand,
		ContentType:       "Payments.Charge",
		Content:           orderPlaced{OrderID: "o-2", Total: 7},
		Data:              map[string]string{"attempt": "1"},
		Err:               fmt.Errorf("charge: %w", cause),
		ExecutionDuration: 20 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, rec.ContentID)
	assert.Equal(t, message.StatusFailed, rec.Status)
	assert.Equal(t, fixtures.Epoch, rec.CreatedAt, "zero CreatedAt takes the repository clock")

	got, err := repo.Query(ctx, message.NewQuery().WithID(rec.ContentID))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "*fmt.wrapError", got[0].ErrorType)
	assert.Equal(t, "charge: card declined", got[0].ErrorMessage)
	assert.JSONEq(t, `{"order_id":"o-2","total":7}`, string(got[0].Content))
	assert.JSONEq(t, `{"attempt":"1"}`, string(got[0].Data))

	var detail message.ErrorDetail
	require.NoError(t, got[0].DecodeErrorDetails(serializer.JSON{}, &detail))
	assert.Equal(t, "charge: card declined", detail.Message)
	require.Len(t, detail.Causes, 1)
	assert.Equal(t, "card declined", detail.Causes[0].Message)
}

func TestAdd_ReturnsRecordAsStored(t *testing.T) {
	repo := createTestRepository(t, serializer.JSON{})
	ctx := context.Background()

	added, err := repo.Add(ctx, message.Envelope{
		Type:              message.TypeEvent,
		ContentType:       "Orders.Placed",
		Content:           orderPlaced{OrderID: "o-3", Total: 12},
		CreatedAt:         time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC),
		ExecutionDuration: 1500 * time.Microsecond,
	})
	require.NoError(t, err)
	assert.Equal(t, time.Millisecond, added.ExecutionDuration)
	assert.Equal(t, 123456000, added.CreatedAt.Nanosecond())

	got, err := repo.Query(ctx, message.NewQuery().WithID(added.ContentID))
	require.NoError(t, err)
	require.Len(t, got, 1)

	stored := got[0]
	assert.NotZero(t, stored.ID)
	assert.True(t, added.CreatedAt.Equal(stored.CreatedAt), "added %s, stored %s", added.CreatedAt, stored.CreatedAt)
	stored.ID = 0
	stored.CreatedAt = added.CreatedAt
	assert.Equal(t, added, stored)
}

func TestInsert_TruncatesSubPrecisionValues(t *testing.T) {
	repo := createTestRepository(t, serializer.JSON{})
	ctx := context.Background()

	rec := fixtures.NewRecord("Orders.Placed", fixtures.Epoch.Add(999*time.Nanosecond))
	rec.ExecutionDuration = 2*time.Millisecond + 700*time.Microsecond
	require.NoError(t, repo.Insert(ctx, rec))

	got, err := repo.Query(ctx, message.NewQuery().WithID(rec.ContentID))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2*time.Millisecond, got[0].ExecutionDuration)
	assert.True(t, fixtures.Epoch.Equal(got[0].CreatedAt))
}

func TestInsert_RejectsUnstorableDuration(t *testing.T) {
	repo := createTestRepository(t, serializer.JSON{})
	ctx := context.Background()

	rec := fixtures.NewRecord("Orders.Placed", fixtures.Epoch)
	rec.ExecutionDuration = 30 * 24 * time.Hour
	assert.ErrorIs(t, repo.Insert(ctx, rec), message.ErrInvalidArgument)
}

func TestQuery_Filters(t *testing.T) {
	repo := createTestRepository(t, serializer.JSON{})
	ctx := context.Background()
	base := fixtures.Epoch

	ok1 := fixtures.NewRecord("Orders.Create", base)
	ok2 := fixtures.NewRecord("Orders.Cancel", base.Add(time.Hour))
	ok2.ExecutionDuration = 2 * time.Second
	failed := fixtures.NewFailedRecord("Billing.Charge", "Billing.DeclinedError", "declined", base.Add(2*time.Hour))
	failed.Type = message.TypeQuery
	event := fixtures.NewRecord("Orders.Created", base.Add(3*time.Hour))
	event.Type = message.TypeEvent
	for _, rec := range []message.Record{ok1, ok2, failed, event} {
		require.NoError(t, repo.Insert(ctx, rec))
	}

	tests := []struct {
		name  string
		query *message.Query
		want  []uuid.UUID
	}{
		{"empty query returns all in id order", message.NewQuery(), []uuid.UUID{ok1.ContentID, ok2.ContentID, failed.ContentID, event.ContentID}},
		{"by content id", message.NewQuery().WithID(failed.ContentID), []uuid.UUID{failed.ContentID}},
		{"content type prefix", message.NewQuery().WithContentType("Orders.C"), []uuid.UUID{ok1.ContentID, ok2.ContentID, event.ContentID}},
		{"content type prefix is not a pattern", message.NewQuery().WithContentType("Orders_"), nil},
		{"error type prefix", message.NewQuery().WithErrorType("Billing."), []uuid.UUID{failed.ContentID}},
		{"status", message.NewQuery().WithStatus(message.StatusFailed), []uuid.UUID{failed.ContentID}},
		{"type", message.NewQuery().WithType(message.TypeEvent), []uuid.UUID{event.ContentID}},
		{"created range inclusive", message.NewQuery().WithCreatedRange(base.Add(time.Hour), base.Add(2*time.Hour)), []uuid.UUID{ok2.ContentID, failed.ContentID}},
		{"created from only", message.NewQuery().WithCreatedRange(base.Add(3*time.Hour), time.Time{}), []uuid.UUID{event.ContentID}},
		{"duration above", message.NewQuery().WithExecutionDuration(time.Second, -1), []uuid.UUID{ok2.ContentID}},
		{"duration below", message.NewQuery().WithExecutionDuration(-1, 25*time.Millisecond), []uuid.UUID{ok1.ContentID, failed.ContentID, event.ContentID}},
		{"combined", message.NewQuery().WithContentType("Orders").WithType(message.TypeCommand).WithExecutionDuration(time.Second, -1), []uuid.UUID{ok2.ContentID}},
		{"no match", message.NewQuery().WithStatus(message.StatusRejected), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Query(ctx, tt.query)
			require.NoError(t, err)
			require.NotNil(t, got, "result must be an empty slice, not nil")

			ids := make([]uuid.UUID, 0, len(got))
			for _, rec := range got {
				ids = append(ids, rec.ContentID)
			}
			if tt.want == nil {
				assert.Empty(t, ids)
				return
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestQuery_Pagination(t *testing.T) {
	repo := createTestRepository(t, serializer.JSON{})
	ctx := context.Background()

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		rec := fixtures.NewRecord("Orders.Create", fixtures.Epoch.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Insert(ctx, rec))
		ids = append(ids, rec.ContentID)
	}

	tests := []struct {
		name       string
		skip, take int
		want       []uuid.UUID
	}{
		{"take only", 0, 2, ids[:2]},
		{"skip only", 3, 0, ids[3:]},
		{"skip and take", 1, 3, ids[1:4]},
		{"skip past end", 10, 0, nil},
		{"take more than available", 4, 10, ids[4:]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Query(ctx, message.NewQuery().Page(tt.skip, tt.take))
			require.NoError(t, err)

			var gotIDs []uuid.UUID
			for _, rec := range got {
				gotIDs = append(gotIDs, rec.ContentID)
			}
			assert.Equal(t, tt.want, gotIDs)
		})
	}
}

func TestQuery_InvalidQuery(t *testing.T) {
	repo := createTestRepository(t, serializer.JSON{})

	_, err := repo.Query(context.Background(), nil)
	assert.ErrorIs(t, err, message.ErrInvalidArgument)

	_, err = repo.Query(context.Background(), message.NewQuery().Page(-1, 0))
	assert.ErrorIs(t, err, message.ErrInvalidArgument)
}

func TestQuery_CancelledContext(t *testing.T) {
	repo := createTestRepository(t, serializer.JSON{})
	require.NoError(t, repo.Insert(context.Background(), fixtures.NewRecord("Orders.Create", fixtures.Epoch)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Query(ctx, message.NewQuery())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStorageErrorsPropagate(t *testing.T) {
	collector := metrics.New()
	db := openTestDB(t)
	p, err := queryprovider.New(sqlbuilder.SQLite, serializer.JSON{})
	require.NoError(t, err)
	repo, err := NewRepository(db, p,
		WithMetrics(collector),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	ctx := context.Background()

	// No EnsureSchema: the table is missing.
	err = repo.Insert(ctx, fixtures.NewRecord("Orders.Create", fixtures.Epoch))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such table")

	_, err = repo.Query(ctx, message.NewQuery())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such table")

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Operations.WithLabelValues(metrics.OpInsert, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Operations.WithLabelValues(metrics.OpQuery, "error")))

	require.NoError(t, db.Close())
	err = repo.EnsureSchema(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ensure schema")
}

func TestQuery_Concurrent(t *testing.T) {
	repo := createTestRepository(t, serializer.JSON{})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Insert(ctx, fixtures.NewRecord("Orders.Create", fixtures.Epoch)))
	}

	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			got, err := repo.Query(ctx, message.NewQuery().WithContentType("Orders"))
			if err == nil && len(got) != 3 {
				err = fmt.Errorf("got %d records, want 3", len(got))
			}
			errs <- err
		}()
	}
	for i := 0; i < 10; i++ {
		assert.NoError(t, <-errs)
	}
}
