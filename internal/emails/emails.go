// Package emails runs email send handlers through pluggable execution
// strategies and can record each execution in the message store.
package emails

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/msgstore/internal/message"
)

// ContentType is the content type under which email executions are stored.
const ContentType = "emails.Email"

// Email is an outgoing message.
type Email struct {
	From    string   `json:"from" yaml:"from"`
	To      []string `json:"to" yaml:"to"`
	Cc      []string `json:"cc,omitempty" yaml:"cc,omitempty"`
	Subject string   `json:"subject" yaml:"subject"`
	Body    string   `json:"body" yaml:"body"`
	HTML    bool     `json:"html,omitempty" yaml:"html,omitempty"`
}

// Handler delivers msg. data carries template or transport values.
type Handler func(ctx context.Context, msg *Email, data map[string]any) error

// ExecutionStrategy decides how a handler is run for one email.
type ExecutionStrategy interface {
	Execute(ctx context.Context, h Handler, msg *Email, data map[string]any) error
}

// DefaultExecutionStrategy calls the handler once.
type DefaultExecutionStrategy struct{}

func (DefaultExecutionStrategy) Execute(ctx context.Context, h Handler, msg *Email, data map[string]any) error {
	if h == nil {
		return fmt.Errorf("%w: email handler is nil", message.ErrInvalidArgument)
	}
	if msg == nil {
		return fmt.Errorf("%w: email is nil", message.ErrInvalidArgument)
	}
	return h(ctx, msg, data)
}

// Adder persists message envelopes. *store.Repository implements it.
type Adder interface {
	Add(ctx context.Context, env message.Envelope) (message.Record, error)
}

// RecordingStrategy runs Next and stores every execution as a command
// message: completed on success, failed with the handler error otherwise.
type RecordingStrategy struct {
	Next   ExecutionStrategy
	Store  Adder
	Now    func() time.Time
	Logger *slog.Logger
}

// NewRecordingStrategy wraps next (DefaultExecutionStrategy when nil).
func NewRecordingStrategy(next ExecutionStrategy, store Adder) (*RecordingStrategy, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: message store is nil", message.ErrInvalidArgument)
	}
	if next == nil {
		next = DefaultExecutionStrategy{}
	}
	return &RecordingStrategy{Next: next, Store: store, Now: time.Now, Logger: slog.Default()}, nil
}

// Execute returns the handler error. A failure to store the execution is
// joined to it.
func (s *RecordingStrategy) Execute(ctx context.Context, h Handler, msg *Email, data map[string]any) error {
	if h == nil {
		return fmt.Errorf("%w: email handler is nil", message.ErrInvalidArgument)
	}
	if msg == nil {
		return fmt.Errorf("%w: email is nil", message.ErrInvalidArgument)
	}

	start := s.Now()
	runErr := s.Next.Execute(ctx, h, msg, data)
	elapsed := s.Now().Sub(start)

	rec, err := s.Store.Add(ctx, message.Envelope{
		Type:              message.TypeCommand,
		ContentType:       ContentType,
		Content:           msg,
		Data:              stringify(data),
		Err:               runErr,
		CreatedAt:         start,
		ExecutionDuration: elapsed,
	})
	if err != nil {
		s.Logger.ErrorContext(ctx, "failed to record email execution", "subject", msg.Subject, "error", err)
		return errors.Join(runErr, fmt.Errorf("record email execution: %w", err))
	}

	s.Logger.DebugContext(ctx, "email execution recorded",
		"content_id", rec.ContentID,
		"status", rec.Status,
		"duration", elapsed,
	)
	return runErr
}

// stringify flattens handler data for the data column.
func stringify(data map[string]any) map[string]string {
	if len(data) == 0 {
		return nil
	}
	out := make(map[string]string, len(data))
	for k, v := range data {
		out[k] = fmt.Sprint(v)
	}
	return out
}
