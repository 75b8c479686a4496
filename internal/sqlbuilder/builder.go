package sqlbuilder

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// ErrUnknownColumn reports an identifier outside the builder's allow-list.
var ErrUnknownColumn = errors.New("unknown column")

// LikeEscape is the escape character used by Like predicates.
const LikeEscape = '!'

// SelectBuilder builds one SELECT statement.
type SelectBuilder interface {
	// SelectAll projects every column (SELECT *).
	SelectAll() SelectBuilder
	// Select projects the named columns in order.
	Select(columns ...string) SelectBuilder
	From(table string) SelectBuilder
	// Where starts a predicate on column. Predicates are joined with AND.
	Where(column string) Predicate
	OrderBy(columns ...string) SelectBuilder
	// Skip and Take only paginate when n > 0.
	Skip(n int) SelectBuilder
	Take(n int) SelectBuilder
	// Build returns the statement and its bound values in placeholder order.
	Build() (string, []any, error)
}

// Predicate completes a Where clause on its bound column.
type Predicate interface {
	EqualsTo(v any) SelectBuilder
	// Like matches values starting with prefix.
	Like(prefix string) SelectBuilder
	GreaterOrEqualsTo(v any) SelectBuilder
	LessOrEqualsTo(v any) SelectBuilder
}

// paginator applies Skip/Take to a statement. skip and take are zero when
// unset. ordered reports whether an ORDER BY is present.
type paginator func(b sq.SelectBuilder, skip, take uint64, ordered bool) sq.SelectBuilder

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// New returns the builder for dialect. columns is the allow-list of
// identifiers accepted by Select, Where and OrderBy.
func New(d Dialect, columns ...string) (SelectBuilder, error) {
	var page paginator
	switch d {
	case Postgres:
		page = postgresPaginate
	case MySQL:
		page = mysqlPaginate
	case SQLite:
		page = sqlitePaginate
	case SQLServer:
		page = sqlServerPaginate
	default:
		return nil, fmt.Errorf("unsupported dialect %s", d)
	}

	allowed := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		allowed[c] = struct{}{}
	}

	return &builder{
		dialect: d,
		page:    page,
		allowed: allowed,
	}, nil
}

// builder is the shared SelectBuilder; dialects differ only by placeholder
// format and paginator.
type builder struct {
	dialect Dialect
	page    paginator
	allowed map[string]struct{}

	columns []string
	table   string
	where   []sq.Sqlizer
	orderBy []string
	skip    uint64
	take    uint64
	err     error
}

func (b *builder) SelectAll() SelectBuilder {
	b.columns = []string{"*"}
	return b
}

func (b *builder) Select(columns ...string) SelectBuilder {
	for _, c := range columns {
		b.check(c)
	}
	b.columns = append(b.columns[:0:0], columns...)
	return b
}

func (b *builder) From(table string) SelectBuilder {
	if !identifierRe.MatchString(table) {
		b.fail(fmt.Errorf("invalid table name %q", table))
	}
	b.table = table
	return b
}

func (b *builder) Where(column string) Predicate {
	b.check(column)
	return &predicate{b: b, column: column}
}

func (b *builder) OrderBy(columns ...string) SelectBuilder {
	for _, c := range columns {
		b.check(c)
		b.orderBy = append(b.orderBy, c+" ASC")
	}
	return b
}

func (b *builder) Skip(n int) SelectBuilder {
	if n > 0 {
		b.skip = uint64(n)
	}
	return b
}

func (b *builder) Take(n int) SelectBuilder {
	if n > 0 {
		b.take = uint64(n)
	}
	return b
}

func (b *builder) Build() (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	if b.table == "" {
		return "", nil, errors.New("select has no FROM table")
	}
	columns := b.columns
	if len(columns) == 0 {
		columns = []string{"*"}
	}

	stmt := sq.StatementBuilder.
		PlaceholderFormat(b.dialect.Placeholders()).
		Select(columns...).
		From(b.table)
	for _, w := range b.where {
		stmt = stmt.Where(w)
	}
	if len(b.orderBy) > 0 {
		stmt = stmt.OrderBy(b.orderBy...)
	}
	if b.skip > 0 || b.take > 0 {
		stmt = b.page(stmt, b.skip, b.take, len(b.orderBy) > 0)
	}

	query, args, err := stmt.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build %s select: %w", b.dialect, err)
	}
	return query, args, nil
}

func (b *builder) check(column string) {
	if _, ok := b.allowed[column]; !ok {
		b.fail(fmt.Errorf("%w: %q", ErrUnknownColumn, column))
	}
}

// fail keeps the first error; Build reports it.
func (b *builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

type predicate struct {
	b      *builder
	column string
}

func (p *predicate) add(op string, v any) SelectBuilder {
	p.b.where = append(p.b.where, sq.Expr(p.column+" "+op+" ?", v))
	return p.b
}

func (p *predicate) EqualsTo(v any) SelectBuilder {
	return p.add("=", v)
}

func (p *predicate) GreaterOrEqualsTo(v any) SelectBuilder {
	return p.add(">=", v)
}

func (p *predicate) LessOrEqualsTo(v any) SelectBuilder {
	return p.add("<=", v)
}

func (p *predicate) Like(prefix string) SelectBuilder {
	p.b.where = append(p.b.where,
		sq.Expr(fmt.Sprintf("%s LIKE ? ESCAPE '%c'", p.column, LikeEscape), p.b.dialect.EscapeLike(prefix)+"%"))
	return p.b
}

var (
	likeReplacer = strings.NewReplacer(
		string(LikeEscape), string(LikeEscape)+string(LikeEscape),
		"%", string(LikeEscape)+"%",
		"_", string(LikeEscape)+"_",
	)
	// SQL Server also treats [ as the start of a character class.
	sqlServerLikeReplacer = strings.NewReplacer(
		string(LikeEscape), string(LikeEscape)+string(LikeEscape),
		"%", string(LikeEscape)+"%",
		"_", string(LikeEscape)+"_",
		"[", string(LikeEscape)+"[",
	)
)

// EscapeLike escapes the LIKE metacharacters of d in s so it matches
// literally.
func (d Dialect) EscapeLike(s string) string {
	if d == SQLServer {
		return sqlServerLikeReplacer.Replace(s)
	}
	return likeReplacer.Replace(s)
}
