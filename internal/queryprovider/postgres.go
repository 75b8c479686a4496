package queryprovider

import (
	"github.com/roach88/msgstore/internal/serializer"
	"github.com/roach88/msgstore/internal/sqlbuilder"
)

var postgresSpec = dialectSpec{
	dialect: sqlbuilder.Postgres,
	types: columnTypes{
		id:        "bigserial PRIMARY KEY",
		smallInt:  "smallint",
		uuid:      "uuid",
		name:      "varchar(255)",
		text:      "text",
		binary:    "bytea",
		timestamp: "timestamp",
		integer:   "integer",
	},
	exists: "SELECT 1 FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?",
}

// NewPostgres returns the PostgreSQL provider.
func NewPostgres(s serializer.Serializer) (Provider, error) {
	return newProvider(postgresSpec, s)
}
