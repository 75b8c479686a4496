package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/msgstore/internal/message"
	"github.com/roach88/msgstore/internal/queryprovider"
	"github.com/roach88/msgstore/internal/serializer"
	"github.com/roach88/msgstore/internal/sqlbuilder"
	"github.com/roach88/msgstore/internal/store"
	"github.com/roach88/msgstore/internal/testutil"
)

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every query returned exactly its expected messages.
	Pass    bool          `json:"pass"`
	Queries []QueryResult `json:"queries"`
	Errors  []string      `json:"errors,omitempty"`
}

// QueryResult records what one query step generated and selected.
type QueryResult struct {
	Name string `json:"name"`
	SQL  string `json:"sql"`
	Args []any  `json:"args"`
	// Matched lists the numbers of the returned messages, in result order.
	Matched []int `json:"matched"`
}

func (r *Result) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Run records the scenario's messages in a fresh in-memory SQLite store and
// evaluates its queries against them.
//
// Content ids are sequential and all times are offsets from testutil.Epoch,
// so two runs of the same scenario produce identical results.
func Run(ctx context.Context, s *Scenario) (*Result, error) {
	ser, err := serializer.ByName(s.Serializer)
	if err != nil {
		return nil, err
	}
	provider, err := queryprovider.New(sqlbuilder.SQLite, ser)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(ctx, store.DriverSQLite, ":memory:")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	repo, err := store.NewRepository(db, provider,
		store.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		return nil, err
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	ids := &testutil.SequentialIDs{}
	byID := make(map[uuid.UUID]int, len(s.Messages))
	contentIDs := make([]uuid.UUID, len(s.Messages))
	for i, step := range s.Messages {
		rec, err := step.record(ser, ids.Next())
		if err != nil {
			return nil, fmt.Errorf("messages[%d]: %w", i, err)
		}
		if err := repo.Insert(ctx, rec); err != nil {
			return nil, fmt.Errorf("messages[%d]: %w", i, err)
		}
		contentIDs[i] = rec.ContentID
		byID[rec.ContentID] = i + 1
	}

	result := &Result{Pass: true, Queries: []QueryResult{}}
	for i, step := range s.Queries {
		q, err := step.Filter.query(contentIDs)
		if err != nil {
			return nil, fmt.Errorf("queries[%d]: %w", i, err)
		}
		sql, args, err := provider.GetFilterScript(q)
		if err != nil {
			return nil, fmt.Errorf("queries[%d]: %w", i, err)
		}
		records, err := repo.Query(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("queries[%d]: %w", i, err)
		}

		matched := make([]int, 0, len(records))
		for _, rec := range records {
			matched = append(matched, byID[rec.ContentID])
		}
		result.Queries = append(result.Queries, QueryResult{
			Name:    step.Name,
			SQL:     sql,
			Args:    args,
			Matched: matched,
		})

		expect := step.Expect
		if expect == nil {
			expect = []int{}
		}
		if !slices.Equal(expect, matched) {
			result.addError("%s: expected messages %v, got %v", step.Name, expect, matched)
		}
	}

	return result, nil
}

func (m MessageStep) record(ser serializer.Serializer, id uuid.UUID) (message.Record, error) {
	typ, err := message.ParseType(m.Type)
	if err != nil {
		return message.Record{}, err
	}
	env := message.Envelope{
		Type:              typ,
		ContentID:         id,
		ContentType:       m.ContentType,
		Content:           m.Content,
		Data:              m.Data,
		CreatedAt:         testutil.Epoch.Add(m.Created),
		ExecutionDuration: m.Duration,
	}
	if m.Status != "" {
		if env.Status, err = message.ParseStatus(m.Status); err != nil {
			return message.Record{}, err
		}
	} else if m.Error != nil {
		env.Status = message.StatusFailed
	}

	rec, err := message.NewRecord(ser, env)
	if err != nil {
		return message.Record{}, err
	}
	if m.Error != nil {
		detail := message.ErrorDetail{Type: m.Error.Type, Message: m.Error.Message}
		if rec.ErrorDetails, err = ser.Serialize(detail); err != nil {
			return message.Record{}, fmt.Errorf("serialize error details: %w", err)
		}
		rec.ErrorType = message.NormalizeName(m.Error.Type)
		rec.ErrorMessage = m.Error.Message
	}
	return rec, nil
}

func (f Filter) query(contentIDs []uuid.UUID) (*message.Query, error) {
	q := message.NewQuery()
	if f.Message > 0 {
		q.WithID(contentIDs[f.Message-1])
	}
	var from, to time.Time
	if f.CreatedFrom != nil {
		from = testutil.Epoch.Add(*f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		to = testutil.Epoch.Add(*f.CreatedTo)
	}
	q.WithCreatedRange(from, to)
	if f.ContentType != nil {
		q.WithContentType(*f.ContentType)
	}
	if f.ErrorType != nil {
		q.WithErrorType(*f.ErrorType)
	}
	if f.Status != "" {
		s, err := message.ParseStatus(f.Status)
		if err != nil {
			return nil, err
		}
		q.WithStatus(s)
	}
	if f.Type != "" {
		t, err := message.ParseType(f.Type)
		if err != nil {
			return nil, err
		}
		q.WithType(t)
	}
	above, below := time.Duration(-1), time.Duration(-1)
	if f.DurationAbove != nil {
		above = *f.DurationAbove
	}
	if f.DurationBelow != nil {
		below = *f.DurationBelow
	}
	q.WithExecutionDuration(above, below)
	return q.Page(f.Skip, f.Take), nil
}
