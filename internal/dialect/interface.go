package dialect

import (
	"fmt"

	"github.com/kayabey/schemasync/internal/schema"
)

// Dialect abstracts database-specific behavior: introspection queries,
// identifier quoting, type naming and DDL rendering.
type Dialect interface {
	Name() string
	Driver() string

	// Introspection. All queries take the schema (or database) name as
	// their single bind parameter and return rows ordered by table name
	// so the reader can group them.
	TablesQuery() string
	ColumnsQuery() string
	IndexesQuery() string
	ForeignKeysQuery() string

	// Type mapping. RegisterTypeMapping records a logical-to-native pair
	// so the platform can fold a native column type back to its logical
	// type when a live schema is read and compared.
	RegisterTypeMapping(logical, native string)
	NormalizeType(nativeType string) string
	NormalizeDefault(literal string) string
	ColumnTypeSQL(col schema.Column) string

	// DDL rendering.
	QuoteIdent(name string) string
	CreateTableSQL(t schema.Table) string
	DropTableSQL(table string) string
	AddColumnSQL(table string, col schema.Column) string
	AlterColumnSQL(table string, col schema.Column) []string
	DropColumnSQL(table, column string) string
	CreateIndexSQL(table string, idx schema.Index) string
	DropIndexSQL(table, index string) string
	AddForeignKeySQL(table string, fk schema.ForeignKey) string
	DropForeignKeySQL(table, constraint string) string
}

// New returns the dialect for a configured database type.
func New(dbType string) (Dialect, error) {
	switch dbType {
	case "postgres":
		return NewPostgres(), nil
	case "mysql":
		return NewMySQL(), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}

var _ Dialect = (*PostgresDialect)(nil)
var _ Dialect = (*MySQLDialect)(nil)
