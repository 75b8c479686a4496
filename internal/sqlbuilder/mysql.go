package sqlbuilder

import (
	"math"

	sq "github.com/Masterminds/squirrel"
)

// mysqlNoLimit is the documented "all remaining rows" LIMIT for MySQL, which
// has no OFFSET without LIMIT.
const mysqlNoLimit uint64 = math.MaxUint64

func mysqlPaginate(b sq.SelectBuilder, skip, take uint64, _ bool) sq.SelectBuilder {
	if take == 0 {
		take = mysqlNoLimit
	}
	b = b.Limit(take)
	if skip > 0 {
		b = b.Offset(skip)
	}
	return b
}
