package message

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Query selects stored messages. Nil fields are unconstrained; Skip and Take
// only apply when positive.
type Query struct {
	// ID matches the caller-assigned content id.
	ID                     *uuid.UUID
	CreatedStartDate       *time.Time
	CreatedEndDate         *time.Time
	ContentType            *string // prefix
	ErrorType              *string // prefix
	Status                 *Status
	Type                   *Type
	ExecutionDurationAbove *time.Duration
	ExecutionDurationBelow *time.Duration
	Skip                   int
	Take                   int
}

// NewQuery returns an unconstrained query.
func NewQuery() *Query {
	return &Query{}
}

// Validate rejects values no dialect can express.
func (q *Query) Validate() error {
	if q == nil {
		return fmt.Errorf("%w: query is nil", ErrInvalidArgument)
	}
	if q.Skip < 0 || q.Take < 0 {
		return fmt.Errorf("%w: skip and take must not be negative", ErrInvalidArgument)
	}
	if q.ExecutionDurationAbove != nil && *q.ExecutionDurationAbove < 0 ||
		q.ExecutionDurationBelow != nil && *q.ExecutionDurationBelow < 0 {
		return fmt.Errorf("%w: execution duration bounds must not be negative", ErrInvalidArgument)
	}
	return nil
}

// Empty reports whether the query constrains nothing, pagination aside.
func (q *Query) Empty() bool {
	return q.ID == nil && q.CreatedStartDate == nil && q.CreatedEndDate == nil &&
		q.ContentType == nil && q.ErrorType == nil && q.Status == nil && q.Type == nil &&
		q.ExecutionDurationAbove == nil && q.ExecutionDurationBelow == nil
}

func (q *Query) WithID(id uuid.UUID) *Query {
	q.ID = &id
	return q
}

// WithCreatedRange bounds created_at inclusively. A zero time leaves that
// side open.
func (q *Query) WithCreatedRange(start, end time.Time) *Query {
	if !start.IsZero() {
		q.CreatedStartDate = &start
	}
	if !end.IsZero() {
		q.CreatedEndDate = &end
	}
	return q
}

func (q *Query) WithContentType(prefix string) *Query {
	q.ContentType = &prefix
	return q
}

func (q *Query) WithErrorType(prefix string) *Query {
	q.ErrorType = &prefix
	return q
}

func (q *Query) WithStatus(s Status) *Query {
	q.Status = &s
	return q
}

func (q *Query) WithType(t Type) *Query {
	q.Type = &t
	return q
}

// WithExecutionDuration bounds execution_duration inclusively. A negative
// bound leaves that side open.
func (q *Query) WithExecutionDuration(above, below time.Duration) *Query {
	if above >= 0 {
		q.ExecutionDurationAbove = &above
	}
	if below >= 0 {
		q.ExecutionDurationBelow = &below
	}
	return q
}

func (q *Query) Page(skip, take int) *Query {
	q.Skip = skip
	q.Take = take
	return q
}
