package queryprovider

import (
	"github.com/roach88/msgstore/internal/serializer"
	"github.com/roach88/msgstore/internal/sqlbuilder"
)

// created_at is declared TIMESTAMP so go-sqlite3 scans it back into time.Time.
var sqliteSpec = dialectSpec{
	dialect: sqlbuilder.SQLite,
	types: columnTypes{
		id:        "INTEGER PRIMARY KEY AUTOINCREMENT",
		smallInt:  "INTEGER",
		uuid:      "TEXT",
		name:      "VARCHAR(255)",
		text:      "TEXT",
		binary:    "BLOB",
		timestamp: "TIMESTAMP",
		integer:   "INTEGER",
	},
	exists: "SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?",
}

// NewSQLite returns the SQLite provider.
func NewSQLite(s serializer.Serializer) (Provider, error) {
	return newProvider(sqliteSpec, s)
}
