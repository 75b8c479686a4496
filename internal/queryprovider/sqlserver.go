package queryprovider

import (
	"github.com/roach88/msgstore/internal/serializer"
	"github.com/roach88/msgstore/internal/sqlbuilder"
)

var sqlServerSpec = dialectSpec{
	dialect: sqlbuilder.SQLServer,
	types: columnTypes{
		id:        "BIGINT IDENTITY(1,1) PRIMARY KEY",
		smallInt:  "SMALLINT",
		uuid:      "UNIQUEIDENTIFIER",
		name:      "NVARCHAR(255)",
		text:      "NVARCHAR(MAX)",
		binary:    "VARBINARY(MAX)",
		timestamp: "DATETIME2",
		integer:   "INT",
	},
	exists: "SELECT 1 FROM information_schema.tables WHERE table_name = ?",
}

// NewSQLServer returns the SQL Server provider. No driver is registered for
// it; callers supply their own *sql.DB.
func NewSQLServer(s serializer.Serializer) (Provider, error) {
	return newProvider(sqlServerSpec, s)
}
