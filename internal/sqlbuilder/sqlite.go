package sqlbuilder

import (
	"math"

	sq "github.com/Masterminds/squirrel"
)

// SQLite requires LIMIT before OFFSET. LIMIT -1 means unbounded, but squirrel
// takes an unsigned limit, so the largest signed value stands in for it.
const sqliteNoLimit uint64 = math.MaxInt64

func sqlitePaginate(b sq.SelectBuilder, skip, take uint64, _ bool) sq.SelectBuilder {
	if take == 0 {
		take = sqliteNoLimit
	}
	b = b.Limit(take)
	if skip > 0 {
		b = b.Offset(skip)
	}
	return b
}
