package sqlbuilder

import sq "github.com/Masterminds/squirrel"

// PostgreSQL accepts LIMIT and OFFSET independently.
func postgresPaginate(b sq.SelectBuilder, skip, take uint64, _ bool) sq.SelectBuilder {
	if take > 0 {
		b = b.Limit(take)
	}
	if skip > 0 {
		b = b.Offset(skip)
	}
	return b
}
