package store

import (
	"database/sql"
	"fmt"
)

// payloadArg binds a payload column. Text serializers bind a string so text
// columns receive text; binary serializers bind bytes. A nil payload binds
// NULL (a nil []byte would bind an empty blob on some drivers).
func (r *Repository) payloadArg(b []byte) any {
	if b == nil {
		return nil
	}
	if r.serializer.IsText() {
		return string(b)
	}
	return b
}

// payloadColumn scans a content, data or error_details column according to
// the serializer mode. value stays nil for NULL.
type payloadColumn struct {
	text  bool
	value []byte
}

func (p *payloadColumn) Scan(src any) error {
	if p.text {
		var s sql.NullString
		if err := s.Scan(src); err != nil {
			return fmt.Errorf("scan text payload: %w", err)
		}
		if s.Valid {
			p.value = []byte(s.String)
		}
		return nil
	}

	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		p.value = append([]byte{}, v...)
		return nil
	case string:
		p.value = []byte(v)
		return nil
	default:
		return fmt.Errorf("scan binary payload: unsupported type %T", src)
	}
}
