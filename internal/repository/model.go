package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/roach88/msgstore/internal/message"
	"github.com/roach88/msgstore/internal/store"
)

// MessageModel maps a row of the messages table.
type MessageModel struct {
	ID                int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Type              int16     `gorm:"column:type;not null"`
	ContentID         uuid.UUID `gorm:"column:content_id;not null"`
	ContentType       string    `gorm:"column:content_type;size:255;not null"`
	Content           []byte    `gorm:"column:content;not null"`
	Data              []byte    `gorm:"column:data"`
	ErrorDetails      []byte    `gorm:"column:error_details"`
	ErrorMessage      string    `gorm:"column:error_message;size:255;not null;default:''"`
	ErrorType         string    `gorm:"column:error_type;size:255;not null;default:''"`
	CreatedAt         time.Time `gorm:"column:created_at;not null"`
	ExecutionDuration int64     `gorm:"column:execution_duration;not null"`
	Status            int16     `gorm:"column:status;not null"`
}

func (MessageModel) TableName() string {
	return "messages"
}

// NewMessageModel converts rec for writing through gorm.
func NewMessageModel(rec message.Record) MessageModel {
	rec = rec.Truncate()
	return MessageModel{
		ID:                rec.ID,
		Type:              rec.Type.Code(),
		ContentID:         rec.ContentID,
		ContentType:       message.NormalizeName(rec.ContentType),
		Content:           rec.Content,
		Data:              rec.Data,
		ErrorDetails:      rec.ErrorDetails,
		ErrorMessage:      rec.ErrorMessage,
		ErrorType:         message.NormalizeName(rec.ErrorType),
		CreatedAt:         rec.CreatedAt.UTC(),
		ExecutionDuration: rec.ExecutionDuration.Milliseconds(),
		Status:            rec.Status.Code(),
	}
}

// Record converts m back to a message.Record.
func (m MessageModel) Record() (message.Record, error) {
	typ, err := message.TypeFromCode(int64(m.Type))
	if err != nil {
		return message.Record{}, err
	}
	status, err := message.StatusFromCode(int64(m.Status))
	if err != nil {
		return message.Record{}, err
	}
	return message.Record{
		ID:                m.ID,
		Type:              typ,
		ContentID:         m.ContentID,
		ContentType:       m.ContentType,
		Content:           m.Content,
		Data:              nonEmpty(m.Data),
		ErrorDetails:      nonEmpty(m.ErrorDetails),
		ErrorMessage:      m.ErrorMessage,
		ErrorType:         m.ErrorType,
		CreatedAt:         m.CreatedAt.UTC(),
		ExecutionDuration: time.Duration(m.ExecutionDuration) * time.Millisecond,
		Status:            status,
	}, nil
}

// nonEmpty maps an empty optional payload to nil. Some drivers write a nil
// []byte as a zero-length blob rather than NULL.
func nonEmpty(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

// Open wraps an already open connection pool in gorm, so gorm and the SQL
// repository share one database. driver is one of the store.Driver* names.
func Open(driver string, conn *sql.DB) (*gorm.DB, error) {
	if conn == nil {
		return nil, fmt.Errorf("%w: connection is nil", message.ErrInvalidArgument)
	}

	var dialector gorm.Dialector
	switch driver {
	case store.DriverSQLite:
		dialector = sqlite.New(sqlite.Config{Conn: conn})
	case store.DriverPgx, store.DriverPgxPool, store.DriverPq:
		dialector = postgres.New(postgres.Config{Conn: conn})
	case store.DriverMySQL:
		dialector = mysql.New(mysql.Config{Conn: conn})
	default:
		return nil, fmt.Errorf("%w: no gorm dialector for driver %q", message.ErrInvalidArgument, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}
	return db, nil
}
