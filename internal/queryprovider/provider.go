package queryprovider

import (
	"fmt"
	"strings"

	"github.com/roach88/msgstore/internal/message"
	"github.com/roach88/msgstore/internal/serializer"
	"github.com/roach88/msgstore/internal/sqlbuilder"
)

// TableName is the messages table.
const TableName = "messages"

// Columns is the table's column order. It is part of the storage contract and
// must not be reordered.
var Columns = []string{
	"id",
	"type",
	"content_id",
	"content_type",
	"content",
	"data",
	"error_details",
	"error_message",
	"error_type",
	"created_at",
	"execution_duration",
	"status",
}

// InsertColumns are the columns bound by the insert script, in bind order.
var InsertColumns = Columns[1:]

// Indexed columns, each with a non-unique index named ix_messages_<column>.
var IndexedColumns = []string{"content_id", "content_type", "error_type"}

// Provider generates the SQL scripts of one dialect.
type Provider interface {
	Dialect() sqlbuilder.Dialect
	// Serializer is the serializer the payload column types were chosen for.
	Serializer() serializer.Serializer
	GetCreateTableScript() string
	GetExistsTableScript() (string, []any)
	GetInsertMessageScript() string
	GetFilterScript(q *message.Query) (string, []any, error)
}

// columnTypes are the dialect's SQL types for each kind of column.
type columnTypes struct {
	id        string
	smallInt  string
	uuid      string
	name      string
	text      string
	binary    string
	timestamp string
	integer   string
}

// dialectSpec is everything that varies between dialects.
type dialectSpec struct {
	dialect sqlbuilder.Dialect
	types   columnTypes
	// exists is the existence check with a single '?' bound to the table name.
	exists string
}

type provider struct {
	spec       dialectSpec
	serializer serializer.Serializer
	create     string
	exists     string
	insert     string
}

// New returns the provider for dialect d.
func New(d sqlbuilder.Dialect, s serializer.Serializer) (Provider, error) {
	switch d {
	case sqlbuilder.Postgres:
		return NewPostgres(s)
	case sqlbuilder.MySQL:
		return NewMySQL(s)
	case sqlbuilder.SQLite:
		return NewSQLite(s)
	case sqlbuilder.SQLServer:
		return NewSQLServer(s)
	default:
		return nil, fmt.Errorf("%w: unsupported dialect %s", message.ErrInvalidArgument, d)
	}
}

func newProvider(spec dialectSpec, s serializer.Serializer) (*provider, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: serializer is nil", message.ErrInvalidArgument)
	}

	p := &provider{spec: spec, serializer: s}
	p.create = p.buildCreateTableScript()

	var err error
	if p.exists, err = spec.dialect.Rebind(spec.exists); err != nil {
		return nil, fmt.Errorf("rebind exists script: %w", err)
	}
	if p.insert, err = p.buildInsertScript(); err != nil {
		return nil, fmt.Errorf("rebind insert script: %w", err)
	}
	return p, nil
}

func (p *provider) Dialect() sqlbuilder.Dialect { return p.spec.dialect }

func (p *provider) Serializer() serializer.Serializer { return p.serializer }

func (p *provider) GetCreateTableScript() string { return p.create }

func (p *provider) GetExistsTableScript() (string, []any) {
	return p.exists, []any{TableName}
}

func (p *provider) GetInsertMessageScript() string { return p.insert }

func (p *provider) buildCreateTableScript() string {
	t := p.spec.types
	payload := t.binary
	if p.serializer.IsText() {
		payload = t.text
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", TableName)
	defs := []string{
		"id " + t.id,
		"type " + t.smallInt + " NOT NULL",
		"content_id " + t.uuid + " NOT NULL",
		"content_type " + t.name + " NOT NULL",
		"content " + payload + " NOT NULL",
		"data " + payload,
		"error_details " + payload,
		"error_message " + t.name + " NOT NULL DEFAULT ''",
		"error_type " + t.name + " NOT NULL DEFAULT ''",
		"created_at " + t.timestamp + " NOT NULL",
		"execution_duration " + t.integer + " NOT NULL",
		"status " + t.smallInt + " NOT NULL",
	}
	b.WriteString("    ")
	b.WriteString(strings.Join(defs, ",\n    "))
	b.WriteString("\n);\n")
	for _, col := range IndexedColumns {
		fmt.Fprintf(&b, "CREATE INDEX ix_%s_%s ON %s (%s);\n", TableName, col, TableName, col)
	}
	return b.String()
}

func (p *provider) buildInsertScript() (string, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(InsertColumns)), ", ")
	return p.spec.dialect.Rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		TableName, strings.Join(InsertColumns, ", "), placeholders))
}

// GetFilterScript applies each set field of q as one predicate, in a fixed
// order, then orders by id and paginates.
func (p *provider) GetFilterScript(q *message.Query) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("%w: message query is nil", message.ErrInvalidArgument)
	}
	if err := q.Validate(); err != nil {
		return "", nil, err
	}

	b, err := sqlbuilder.New(p.spec.dialect, Columns...)
	if err != nil {
		return "", nil, err
	}
	b.SelectAll().From(TableName)

	if q.ID != nil {
		b.Where("content_id").EqualsTo(*q.ID)
	}
	if q.CreatedStartDate != nil {
		b.Where("created_at").GreaterOrEqualsTo(q.CreatedStartDate.UTC())
	}
	if q.CreatedEndDate != nil {
		b.Where("created_at").LessOrEqualsTo(q.CreatedEndDate.UTC())
	}
	if q.ContentType != nil {
		b.Where("content_type").Like(message.NormalizeName(*q.ContentType))
	}
	if q.ErrorType != nil {
		b.Where("error_type").Like(message.NormalizeName(*q.ErrorType))
	}
	if q.Status != nil {
		b.Where("status").EqualsTo(q.Status.Code())
	}
	if q.Type != nil {
		b.Where("type").EqualsTo(q.Type.Code())
	}
	if q.ExecutionDurationAbove != nil {
		b.Where("execution_duration").GreaterOrEqualsTo(q.ExecutionDurationAbove.Milliseconds())
	}
	if q.ExecutionDurationBelow != nil {
		b.Where("execution_duration").LessOrEqualsTo(q.ExecutionDurationBelow.Milliseconds())
	}

	// Pagination without a total order is not repeatable on any engine.
	b.OrderBy("id")
	b.Skip(q.Skip).Take(q.Take)

	query, args, err := b.Build()
	if err != nil {
		return "", nil, fmt.Errorf("build filter script: %w", err)
	}
	return query, args, nil
}
