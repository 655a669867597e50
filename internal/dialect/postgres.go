package dialect

import (
	"fmt"
	"strings"

	"github.com/kayabey/schemasync/internal/schema"
)

type PostgresDialect struct {
	nativeByLogical map[string]string
	logicalByNative map[string]string
}

func NewPostgres() *PostgresDialect {
	return &PostgresDialect{
		nativeByLogical: map[string]string{},
		logicalByNative: map[string]string{},
	}
}

func (d *PostgresDialect) Name() string {
	return "postgres"
}

func (d *PostgresDialect) Driver() string {
	return "postgres"
}

func (d *PostgresDialect) TablesQuery() string {
	return `
		SELECT t.table_name
		FROM information_schema.tables t
		WHERE t.table_schema = $1 AND t.table_type = 'BASE TABLE'
		ORDER BY t.table_name
	`
}

func (d *PostgresDialect) ColumnsQuery() string {
	return `
		SELECT
			c.table_name,
			c.column_name,
			c.data_type,
			c.is_nullable,
			c.column_default,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale
		FROM information_schema.columns c
		JOIN information_schema.tables t
			ON t.table_schema = c.table_schema AND t.table_name = c.table_name
		WHERE c.table_schema = $1 AND t.table_type = 'BASE TABLE'
		ORDER BY c.table_name, c.ordinal_position
	`
}

func (d *PostgresDialect) IndexesQuery() string {
	return `
		SELECT
			t.relname AS table_name,
			i.relname AS index_name,
			a.attname AS column_name,
			ix.indisunique,
			ix.indisprimary
		FROM pg_index ix
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord) ON true
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
		WHERE n.nspname = $1 AND t.relkind = 'r'
		ORDER BY t.relname, i.relname, k.ord
	`
}

func (d *PostgresDialect) ForeignKeysQuery() string {
	return `
		SELECT
			tc.table_name,
			tc.constraint_name,
			kcu.column_name,
			ccu.table_name AS referenced_table,
			ccu.column_name AS referenced_column,
			rc.delete_rule,
			rc.update_rule
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		JOIN information_schema.referential_constraints rc
			ON tc.constraint_name = rc.constraint_name
			AND tc.table_schema = rc.constraint_schema
		WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_schema = $1
		ORDER BY tc.table_name, tc.constraint_name
	`
}

func (d *PostgresDialect) RegisterTypeMapping(logical, native string) {
	d.nativeByLogical[logical] = native
	d.logicalByNative[strings.ToLower(native)] = logical
}

var postgresTypeAliases = map[string]string{
	"int4":                        "int",
	"int2":                        "int",
	"integer":                     "int",
	"serial":                      "int",
	"int8":                        "bigint",
	"bigserial":                   "bigint",
	"character varying":           "varchar",
	"bpchar":                      "char",
	"character":                   "char",
	"float4":                      "float",
	"float8":                      "float",
	"real":                        "float",
	"double precision":            "float",
	"boolean":                     "bool",
	"timestamp":                   "datetime",
	"timestamp without time zone": "datetime",
	"timestamptz":                 "datetime",
	"timestamp with time zone":    "datetime",
	"jsonb":                       "json",
	"numeric":                     "decimal",
}

// NormalizeType collapses postgres aliases to a canonical name, then folds
// the result back to its logical type when one has been registered. Both
// snapshots of a comparison pass through here, so equivalent spellings never
// show up as alterations.
func (d *PostgresDialect) NormalizeType(nativeType string) string {
	t := strings.ToLower(strings.TrimSpace(nativeType))
	if i := strings.Index(t, "("); i >= 0 {
		t = t[:i]
	}
	if canonical, ok := postgresTypeAliases[t]; ok {
		t = canonical
	}
	if logical, ok := d.logicalByNative[t]; ok {
		return logical
	}
	return t
}

func (d *PostgresDialect) NormalizeDefault(literal string) string {
	s := strings.TrimSpace(literal)
	if i := strings.Index(s, "::"); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(s, "'")
	if strings.EqualFold(s, "null") {
		return ""
	}
	return s
}

var postgresTypeNames = map[string]string{
	"varchar":  "varchar",
	"char":     "char",
	"text":     "text",
	"int":      "integer",
	"bigint":   "bigint",
	"float":    "double precision",
	"bool":     "boolean",
	"date":     "date",
	"datetime": "timestamp",
	"json":     "jsonb",
	"decimal":  "numeric",
}

func (d *PostgresDialect) ColumnTypeSQL(col schema.Column) string {
	name := col.Type
	if native, ok := d.nativeByLogical[name]; ok {
		name = native
	}
	if platform, ok := postgresTypeNames[name]; ok {
		name = platform
	}

	switch {
	case col.MaxLength != nil && (name == "varchar" || name == "char"):
		return fmt.Sprintf("%s(%d)", name, *col.MaxLength)
	case col.Precision != nil && name == "numeric":
		if col.Scale != nil {
			return fmt.Sprintf("%s(%d,%d)", name, *col.Precision, *col.Scale)
		}
		return fmt.Sprintf("%s(%d)", name, *col.Precision)
	}
	return name
}

func (d *PostgresDialect) QuoteIdent(name string) string {
	return `"` + name + `"`
}

func (d *PostgresDialect) CreateTableSQL(t schema.Table) string {
	var defs []string
	for _, col := range t.Columns {
		defs = append(defs, columnDefSQL(d, col))
	}
	if len(t.PrimaryKeys) > 0 {
		defs = append(defs, primaryKeySQL(d, t.PrimaryKeys))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", d.QuoteIdent(t.Name), strings.Join(defs, ", "))
}

func (d *PostgresDialect) DropTableSQL(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", d.QuoteIdent(table))
}

func (d *PostgresDialect) AddColumnSQL(table string, col schema.Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", d.QuoteIdent(table), columnDefSQL(d, col))
}

func (d *PostgresDialect) AlterColumnSQL(table string, col schema.Column) []string {
	prefix := fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s", d.QuoteIdent(table), d.QuoteIdent(col.Name))

	stmts := []string{fmt.Sprintf("%s TYPE %s", prefix, d.ColumnTypeSQL(col))}
	if col.IsNullable {
		stmts = append(stmts, prefix+" DROP NOT NULL")
	} else {
		stmts = append(stmts, prefix+" SET NOT NULL")
	}
	if col.DefaultValue != nil {
		stmts = append(stmts, fmt.Sprintf("%s SET DEFAULT %s", prefix, defaultLiteral(*col.DefaultValue)))
	} else {
		stmts = append(stmts, prefix+" DROP DEFAULT")
	}
	return stmts
}

func (d *PostgresDialect) DropColumnSQL(table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", d.QuoteIdent(table), d.QuoteIdent(column))
}

func (d *PostgresDialect) CreateIndexSQL(table string, idx schema.Index) string {
	unique := ""
	if idx.IsUnique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf(
		"CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
		unique,
		d.QuoteIdent(idx.Name),
		d.QuoteIdent(table),
		quoteAll(d, idx.Columns),
	)
}

func (d *PostgresDialect) DropIndexSQL(table, index string) string {
	return fmt.Sprintf("DROP INDEX IF EXISTS %s", d.QuoteIdent(index))
}

func (d *PostgresDialect) AddForeignKeySQL(table string, fk schema.ForeignKey) string {
	return addForeignKeySQL(d, table, fk)
}

func (d *PostgresDialect) DropForeignKeySQL(table, constraint string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", d.QuoteIdent(table), d.QuoteIdent(constraint))
}
