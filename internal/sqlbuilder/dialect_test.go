package sqlbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDialect(t *testing.T) {
	tests := map[string]Dialect{
		"postgres":   Postgres,
		"PostgreSQL": Postgres,
		"pgx":        Postgres,
		"pgxpool":    Postgres,
		"mysql":      MySQL,
		"sqlite3":    SQLite,
		"sqlite":     SQLite,
		"mssql":      SQLServer,
		"sqlserver":  SQLServer,
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			got, err := ParseDialect(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := ParseDialect("oracle")
	assert.Error(t, err)
}

func TestDialect_Rebind(t *testing.T) {
	tests := []struct {
		dialect Dialect
		want    string
	}{
		{Postgres, "VALUES ($1, $2)"},
		{MySQL, "VALUES (?, ?)"},
		{SQLite, "VALUES (?, ?)"},
		{SQLServer, "VALUES (@p1, @p2)"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.String(), func(t *testing.T) {
			got, err := tt.dialect.Rebind("VALUES (?, ?)")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
