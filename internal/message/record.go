package message

import (
	"errors"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/msgstore/internal/serializer"
)

// MaxNameLength bounds content_type, error_type and error_message (runes).
const MaxNameLength = 255

// Storage precision. Every dialect stores created_at to the microsecond and
// execution_duration as whole milliseconds in a 32-bit integer column.
const (
	TimePrecision        = time.Microsecond
	DurationPrecision    = time.Millisecond
	MaxExecutionDuration = math.MaxInt32 * time.Millisecond
)

// Record is one persisted message execution.
//
// Content, Data and ErrorDetails hold serializer output. A nil Data or
// ErrorDetails is stored as NULL.
type Record struct {
	ID                int64
	Type              Type
	ContentID         uuid.UUID
	ContentType       string
	Content           []byte
	Data              []byte
	ErrorDetails      []byte
	ErrorMessage      string
	ErrorType         string
	CreatedAt         time.Time
	ExecutionDuration time.Duration
	Status            Status
}

// Validate checks the record invariants that must hold before it is written.
func (r Record) Validate() error {
	if !r.Type.Valid() {
		return fmt.Errorf("%w: message type %s", ErrInvalidArgument, r.Type)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("%w: message status %s", ErrInvalidArgument, r.Status)
	}
	if r.ContentID == uuid.Nil {
		return fmt.Errorf("%w: content id is empty", ErrInvalidArgument)
	}
	if r.ContentType == "" {
		return fmt.Errorf("%w: content type is empty", ErrInvalidArgument)
	}
	for name, v := range map[string]string{
		"content type":  r.ContentType,
		"error type":    r.ErrorType,
		"error message": r.ErrorMessage,
	} {
		if utf8.RuneCountInString(v) > MaxNameLength {
			return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidArgument, name, MaxNameLength)
		}
	}
	if r.Content == nil {
		return fmt.Errorf("%w: content is nil", ErrInvalidArgument)
	}
	if r.ExecutionDuration < 0 {
		return fmt.Errorf("%w: negative execution duration", ErrInvalidArgument)
	}
	if r.ExecutionDuration > MaxExecutionDuration {
		return fmt.Errorf("%w: execution duration %s exceeds %s", ErrInvalidArgument, r.ExecutionDuration, MaxExecutionDuration)
	}
	if r.Status.Failing() && (r.ErrorType == "" || r.ErrorMessage == "") {
		return fmt.Errorf("%w: %s message requires error type and message", ErrInvalidArgument, r.Status)
	}
	return nil
}

// DecodeContent deserializes Content into v.
func (r Record) DecodeContent(s serializer.Serializer, v any) error {
	return s.Deserialize(r.Content, v)
}

// DecodeData deserializes Data into v. It is a no-op when Data is NULL.
func (r Record) DecodeData(s serializer.Serializer, v any) error {
	if r.Data == nil {
		return nil
	}
	return s.Deserialize(r.Data, v)
}

// DecodeErrorDetails deserializes ErrorDetails into v. It is a no-op when no
// error was recorded.
func (r Record) DecodeErrorDetails(s serializer.Serializer, v any) error {
	if r.ErrorDetails == nil {
		return nil
	}
	return s.Deserialize(r.ErrorDetails, v)
}

// Envelope is the unserialized form of a message, as produced by whatever
// executed it.
type Envelope struct {
	Type Type
	// ContentID defaults to a new UUIDv7 when zero.
	ContentID   uuid.UUID
	ContentType string
	Content     any
	Data        map[string]string
	// Err is the failure, if any. A zero Status resolves to StatusFailed when
	// Err is set and StatusCompleted otherwise.
	Err               error
	CreatedAt         time.Time
	ExecutionDuration time.Duration
	Status            Status
}

// ErrorDetail is the serialized shape of a failure and its wrapped causes.
type ErrorDetail struct {
	Type    string        `json:"type" yaml:"type"`
	Message string        `json:"message" yaml:"message"`
	Causes  []ErrorDetail `json:"causes,omitempty" yaml:"causes,omitempty"`
}

// NewErrorDetail describes err and the chain of errors it wraps.
func NewErrorDetail(err error) ErrorDetail {
	d := ErrorDetail{Type: ErrorTypeName(err), Message: err.Error()}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, cause := range u.Unwrap() {
			if cause != nil {
				d.Causes = append(d.Causes, NewErrorDetail(cause))
			}
		}
	default:
		if cause := errors.Unwrap(err); cause != nil {
			d.Causes = append(d.Causes, NewErrorDetail(cause))
		}
	}
	return d
}

// ErrorTypeName is the fully-qualified Go type of err as stored in error_type.
func ErrorTypeName(err error) string {
	return fmt.Sprintf("%T", err)
}

// NewRecord serializes env through s into a Record ready for insertion.
func NewRecord(s serializer.Serializer, env Envelope) (Record, error) {
	if s == nil {
		return Record{}, fmt.Errorf("%w: serializer is nil", ErrInvalidArgument)
	}

	content, err := s.Serialize(env.Content)
	if err != nil {
		return Record{}, fmt.Errorf("serialize content: %w", err)
	}

	rec := Record{
		Type:              env.Type,
		ContentID:         env.ContentID,
		ContentType:       NormalizeName(env.ContentType),
		Content:           content,
		CreatedAt:         env.CreatedAt.UTC(),
		ExecutionDuration: env.ExecutionDuration,
		Status:            env.Status,
	}.Truncate()
	if rec.ContentID == uuid.Nil {
		rec.ContentID = uuid.Must(uuid.NewV7())
	}

	if len(env.Data) > 0 {
		if rec.Data, err = s.Serialize(env.Data); err != nil {
			return Record{}, fmt.Errorf("serialize data: %w", err)
		}
	}

	if env.Err != nil {
		if rec.ErrorDetails, err = s.Serialize(NewErrorDetail(env.Err)); err != nil {
			return Record{}, fmt.Errorf("serialize error details: %w", err)
		}
		rec.ErrorMessage = truncate(env.Err.Error(), MaxNameLength)
		rec.ErrorType = truncate(NormalizeName(ErrorTypeName(env.Err)), MaxNameLength)
	}

	if rec.Status == StatusNotInitialized {
		if env.Err != nil {
			rec.Status = StatusFailed
		} else {
			rec.Status = StatusCompleted
		}
	}

	return rec, nil
}

// Truncate rounds CreatedAt down to TimePrecision (in UTC) and
// ExecutionDuration down to DurationPrecision, the values storage keeps.
func (r Record) Truncate() Record {
	r.CreatedAt = r.CreatedAt.UTC().Truncate(TimePrecision)
	r.ExecutionDuration = r.ExecutionDuration.Truncate(DurationPrecision)
	return r
}

// NormalizeName puts a content or error type name in Unicode NFC so that
// stored names and filter prefixes compare byte-for-byte.
func NormalizeName(s string) string {
	return norm.NFC.String(s)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
