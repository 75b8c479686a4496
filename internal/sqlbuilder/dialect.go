package sqlbuilder

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Dialect identifies a database engine's SQL variant.
type Dialect int

const (
	Postgres Dialect = iota + 1
	MySQL
	SQLite
	SQLServer
)

// Dialects lists every supported dialect.
var Dialects = []Dialect{Postgres, MySQL, SQLite, SQLServer}

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case MySQL:
		return "mysql"
	case SQLite:
		return "sqlite"
	case SQLServer:
		return "sqlserver"
	default:
		return fmt.Sprintf("dialect(%d)", int(d))
	}
}

// ParseDialect accepts a dialect name or a database/sql driver name.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql", "pgx", "pgxpool":
		return Postgres, nil
	case "mysql", "mariadb":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "sqlserver", "mssql":
		return SQLServer, nil
	default:
		return 0, fmt.Errorf("unsupported dialect %q", s)
	}
}

// Placeholders returns the squirrel placeholder format of the dialect.
func (d Dialect) Placeholders() sq.PlaceholderFormat {
	switch d {
	case Postgres:
		return sq.Dollar
	case SQLServer:
		return sq.AtP
	default:
		return sq.Question
	}
}

// Rebind rewrites '?' placeholders in query into the dialect's format.
func (d Dialect) Rebind(query string) (string, error) {
	return d.Placeholders().ReplacePlaceholders(query)
}
