package dialect

import (
	"fmt"
	"strings"

	"github.com/kayabey/schemasync/internal/schema"
)

type MySQLDialect struct {
	nativeByLogical map[string]string
	logicalByNative map[string]string
}

func NewMySQL() *MySQLDialect {
	return &MySQLDialect{
		nativeByLogical: map[string]string{},
		logicalByNative: map[string]string{},
	}
}

func (d *MySQLDialect) Name() string {
	return "mysql"
}

func (d *MySQLDialect) Driver() string {
	return "mysql"
}

func (d *MySQLDialect) TablesQuery() string {
	return `SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`
}

func (d *MySQLDialect) ColumnsQuery() string {
	return `
		SELECT
			TABLE_NAME,
			COLUMN_NAME,
			DATA_TYPE,
			IS_NULLABLE,
			COLUMN_DEFAULT,
			CHARACTER_MAXIMUM_LENGTH,
			NUMERIC_PRECISION,
			NUMERIC_SCALE
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = ?
		ORDER BY TABLE_NAME, ORDINAL_POSITION
	`
}

func (d *MySQLDialect) IndexesQuery() string {
	return `
		SELECT
			TABLE_NAME,
			INDEX_NAME,
			COLUMN_NAME,
			NON_UNIQUE = 0,
			INDEX_NAME = 'PRIMARY'
		FROM information_schema.STATISTICS
		WHERE TABLE_SCHEMA = ?
		ORDER BY TABLE_NAME, INDEX_NAME, SEQ_IN_INDEX
	`
}

func (d *MySQLDialect) ForeignKeysQuery() string {
	return `
		SELECT
			kcu.TABLE_NAME,
			kcu.CONSTRAINT_NAME,
			kcu.COLUMN_NAME,
			kcu.REFERENCED_TABLE_NAME,
			kcu.REFERENCED_COLUMN_NAME,
			rc.DELETE_RULE,
			rc.UPDATE_RULE
		FROM information_schema.KEY_COLUMN_USAGE kcu
		JOIN information_schema.REFERENTIAL_CONSTRAINTS rc
			ON rc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME
			AND rc.CONSTRAINT_SCHEMA = kcu.TABLE_SCHEMA
		WHERE kcu.TABLE_SCHEMA = ? AND kcu.REFERENCED_TABLE_NAME IS NOT NULL
		ORDER BY kcu.TABLE_NAME, kcu.CONSTRAINT_NAME
	`
}

func (d *MySQLDialect) RegisterTypeMapping(logical, native string) {
	d.nativeByLogical[logical] = native
	d.logicalByNative[strings.ToLower(native)] = logical
}

var mysqlTypeAliases = map[string]string{
	"integer":    "int",
	"mediumint":  "int",
	"smallint":   "int",
	"double":     "float",
	"real":       "float",
	"tinyint":    "bool",
	"boolean":    "bool",
	"timestamp":  "datetime",
	"numeric":    "decimal",
	"longtext":   "text",
	"mediumtext": "text",
}

func (d *MySQLDialect) NormalizeType(nativeType string) string {
	t := strings.ToLower(strings.TrimSpace(nativeType))
	if i := strings.Index(t, "("); i >= 0 {
		t = t[:i]
	}
	if canonical, ok := mysqlTypeAliases[t]; ok {
		t = canonical
	}
	if logical, ok := d.logicalByNative[t]; ok {
		return logical
	}
	return t
}

func (d *MySQLDialect) NormalizeDefault(literal string) string {
	s := strings.TrimSpace(literal)
	s = strings.Trim(s, "'")
	if strings.EqualFold(s, "null") {
		return ""
	}
	return s
}

var mysqlTypeNames = map[string]string{
	"varchar":  "varchar",
	"char":     "char",
	"text":     "text",
	"int":      "int",
	"bigint":   "bigint",
	"float":    "double",
	"bool":     "tinyint(1)",
	"date":     "date",
	"datetime": "datetime",
	"json":     "json",
	"decimal":  "decimal",
}

func (d *MySQLDialect) ColumnTypeSQL(col schema.Column) string {
	name := col.Type
	if native, ok := d.nativeByLogical[name]; ok {
		name = native
	}
	if platform, ok := mysqlTypeNames[name]; ok {
		name = platform
	}

	switch {
	case col.MaxLength != nil && (name == "varchar" || name == "char"):
		return fmt.Sprintf("%s(%d)", name, *col.MaxLength)
	case col.Precision != nil && name == "decimal":
		if col.Scale != nil {
			return fmt.Sprintf("%s(%d,%d)", name, *col.Precision, *col.Scale)
		}
		return fmt.Sprintf("%s(%d)", name, *col.Precision)
	}
	return name
}

func (d *MySQLDialect) QuoteIdent(name string) string {
	return "`" + name + "`"
}

func (d *MySQLDialect) CreateTableSQL(t schema.Table) string {
	var defs []string
	for _, col := range t.Columns {
		defs = append(defs, columnDefSQL(d, col))
	}
	if len(t.PrimaryKeys) > 0 {
		defs = append(defs, primaryKeySQL(d, t.PrimaryKeys))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", d.QuoteIdent(t.Name), strings.Join(defs, ", "))
}

func (d *MySQLDialect) DropTableSQL(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", d.QuoteIdent(table))
}

func (d *MySQLDialect) AddColumnSQL(table string, col schema.Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", d.QuoteIdent(table), columnDefSQL(d, col))
}

// MySQL restates the whole column definition in a single MODIFY.
func (d *MySQLDialect) AlterColumnSQL(table string, col schema.Column) []string {
	return []string{
		fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s", d.QuoteIdent(table), columnDefSQL(d, col)),
	}
}

func (d *MySQLDialect) DropColumnSQL(table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", d.QuoteIdent(table), d.QuoteIdent(column))
}

func (d *MySQLDialect) CreateIndexSQL(table string, idx schema.Index) string {
	unique := ""
	if idx.IsUnique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf(
		"CREATE %sINDEX %s ON %s (%s)",
		unique,
		d.QuoteIdent(idx.Name),
		d.QuoteIdent(table),
		quoteAll(d, idx.Columns),
	)
}

func (d *MySQLDialect) DropIndexSQL(table, index string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP INDEX %s", d.QuoteIdent(table), d.QuoteIdent(index))
}

func (d *MySQLDialect) AddForeignKeySQL(table string, fk schema.ForeignKey) string {
	return addForeignKeySQL(d, table, fk)
}

func (d *MySQLDialect) DropForeignKeySQL(table, constraint string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s", d.QuoteIdent(table), d.QuoteIdent(constraint))
}
