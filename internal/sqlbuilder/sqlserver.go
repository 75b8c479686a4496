package sqlbuilder

import sq "github.com/Masterminds/squirrel"

// SQL Server paginates with OFFSET ... ROWS FETCH NEXT ... ROWS ONLY, which is
// only valid after an ORDER BY. The row counts are bound like any other value.
func sqlServerPaginate(b sq.SelectBuilder, skip, take uint64, ordered bool) sq.SelectBuilder {
	if !ordered {
		b = b.OrderBy("(SELECT NULL)")
	}
	if take == 0 {
		return b.Suffix("OFFSET ? ROWS", skip)
	}
	return b.Suffix("OFFSET ? ROWS FETCH NEXT ? ROWS ONLY", skip, take)
}
