package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/roach88/msgstore/internal/message"
)

// NewRecord returns a valid completed command record with a fresh content id.
func NewRecord(contentType string, createdAt time.Time) message.Record {
	return message.Record{
		Type:              message.TypeCommand,
		ContentID:         uuid.New(),
		ContentType:       contentType,
		Content:           []byte(`{"name":"test"}`),
		CreatedAt:         createdAt.UTC(),
		ExecutionDuration: 25 * time.Millisecond,
		Status:            message.StatusCompleted,
	}
}

// NewFailedRecord returns a valid failed record carrying an error.
func NewFailedRecord(contentType, errorType, errorMessage string, createdAt time.Time) message.Record {
	rec := NewRecord(contentType, createdAt)
	rec.Status = message.StatusFailed
	rec.ErrorType = errorType
	rec.ErrorMessage = errorMessage
	rec.ErrorDetails = []byte(`{"type":"` + errorType + `","message":"` + errorMessage + `"}`)
	return rec
}
