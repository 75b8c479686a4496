// Package httpapi serves stored messages over HTTP.
package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/msgstore/internal/message"
)

// Querier is the read side of the message repository.
type Querier interface {
	Query(ctx context.Context, q *message.Query) ([]message.Record, error)
}

// MessageHandler serves stored messages over HTTP.
type MessageHandler struct {
	store  Querier
	text   bool
	logger *slog.Logger
}

// NewMessageHandler creates a handler over store. textPayload selects how
// payload columns are rendered: verbatim strings, or base64 when false.
func NewMessageHandler(store Querier, textPayload bool, logger *slog.Logger) *MessageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageHandler{store: store, text: textPayload, logger: logger}
}

// Record is the JSON form of a stored message.
type Record struct {
	ID                  int64     `json:"id"`
	Type                string    `json:"type"`
	ContentID           uuid.UUID `json:"content_id"`
	ContentType         string    `json:"content_type"`
	Content             *string   `json:"content"`
	Data                *string   `json:"data"`
	ErrorDetails        *string   `json:"error_details"`
	ErrorMessage        string    `json:"error_message"`
	ErrorType           string    `json:"error_type"`
	CreatedAt           time.Time `json:"created_at"`
	ExecutionDurationMs int64     `json:"execution_duration_ms"`
	Status              string    `json:"status"`
}

// GET /messages?id=&content_type=&error_type=&status=&type=&created_from=&created_to=
//
//	&duration_above_ms=&duration_below_ms=&skip=&take=
//
// 200: [Record, ...]
// 400: malformed parameter
// 500: storage error
func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.store.Query(r.Context(), q)
	if err != nil {
		if errors.Is(err, message.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "query messages failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, RenderRecords(records, h.text))
}

// RenderRecords converts records to their JSON form. Payloads are kept as
// text when textPayload is set and base64-encoded otherwise.
func RenderRecords(records []message.Record, textPayload bool) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		out = append(out, RenderRecord(rec, textPayload))
	}
	return out
}

// RenderRecord converts one record to its JSON form.
func RenderRecord(rec message.Record, textPayload bool) Record {
	content := payload(rec.Content, textPayload)
	if content == nil {
		empty := ""
		content = &empty
	}
	return Record{
		ID:                  rec.ID,
		Type:                rec.Type.String(),
		ContentID:           rec.ContentID,
		ContentType:         rec.ContentType,
		Content:             content,
		Data:                payload(rec.Data, textPayload),
		ErrorDetails:        payload(rec.ErrorDetails, textPayload),
		ErrorMessage:        rec.ErrorMessage,
		ErrorType:           rec.ErrorType,
		CreatedAt:           rec.CreatedAt,
		ExecutionDurationMs: rec.ExecutionDuration.Milliseconds(),
		Status:              rec.Status.String(),
	}
}

func payload(b []byte, text bool) *string {
	if b == nil {
		return nil
	}
	var s string
	if text {
		s = string(b)
	} else {
		s = base64.StdEncoding.EncodeToString(b)
	}
	return &s
}

// parseQuery maps URL parameters onto a message.Query.
func parseQuery(r *http.Request) (*message.Query, error) {
	values := r.URL.Query()
	get := func(name string) string { return strings.TrimSpace(values.Get(name)) }
	q := message.NewQuery()

	if raw := get("id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, errors.New("invalid id, expected UUID")
		}
		q.WithID(id)
	}

	var from, to time.Time
	for name, dst := range map[string]*time.Time{"created_from": &from, "created_to": &to} {
		if raw := get(name); raw != "" {
			t, err := time.Parse(time.RFC3339Nano, raw)
			if err != nil {
				return nil, errors.New("invalid " + name + ", expected RFC3339")
			}
			*dst = t
		}
	}
	q.WithCreatedRange(from, to)

	if _, ok := values["content_type"]; ok {
		q.WithContentType(values.Get("content_type"))
	}
	if _, ok := values["error_type"]; ok {
		q.WithErrorType(values.Get("error_type"))
	}

	if raw := get("status"); raw != "" {
		s, err := message.ParseStatus(raw)
		if err != nil {
			return nil, err
		}
		q.WithStatus(s)
	}
	if raw := get("type"); raw != "" {
		t, err := message.ParseType(raw)
		if err != nil {
			return nil, err
		}
		q.WithType(t)
	}

	above, err := nonNegative(get("duration_above_ms"), "duration_above_ms", -1)
	if err != nil {
		return nil, err
	}
	below, err := nonNegative(get("duration_below_ms"), "duration_below_ms", -1)
	if err != nil {
		return nil, err
	}
	q.WithExecutionDuration(msDuration(above), msDuration(below))

	skip, err := nonNegative(get("skip"), "skip", 0)
	if err != nil {
		return nil, err
	}
	take, err := nonNegative(get("take"), "take", 0)
	if err != nil {
		return nil, err
	}
	q.Page(skip, take)

	return q, nil
}

// nonNegative parses raw, returning def when raw is empty.
func nonNegative(raw, name string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return n, nil
}

func msDuration(ms int) time.Duration {
	if ms < 0 {
		return -1
	}
	return time.Duration(ms) * time.Millisecond
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
