package queryprovider

import (
	"github.com/roach88/msgstore/internal/serializer"
	"github.com/roach88/msgstore/internal/sqlbuilder"
)

// The create script holds several statements; the connection must allow
// multiStatements (store.Open sets it).
var mysqlSpec = dialectSpec{
	dialect: sqlbuilder.MySQL,
	types: columnTypes{
		id:        "BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY",
		smallInt:  "SMALLINT",
		uuid:      "CHAR(36)",
		name:      "VARCHAR(255)",
		text:      "LONGTEXT",
		binary:    "LONGBLOB",
		timestamp: "DATETIME(6)",
		integer:   "INT",
	},
	exists: "SELECT 1 FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?",
}

// NewMySQL returns the MySQL provider.
func NewMySQL(s serializer.Serializer) (Provider, error) {
	return newProvider(mysqlSpec, s)
}
