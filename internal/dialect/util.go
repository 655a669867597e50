package dialect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kayabey/schemasync/internal/schema"
)

var defaultKeywords = map[string]bool{
	"current_timestamp": true,
	"current_date":      true,
	"now()":             true,
	"null":              true,
	"true":              true,
	"false":             true,
}

// defaultLiteral renders a metadata default value as a SQL literal. Numbers
// and known keywords pass through, everything else is quoted as a string.
func defaultLiteral(value string) string {
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return value
	}
	if defaultKeywords[strings.ToLower(value)] {
		return value
	}
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func columnDefSQL(d Dialect, col schema.Column) string {
	def := fmt.Sprintf("%s %s", d.QuoteIdent(col.Name), d.ColumnTypeSQL(col))
	if !col.IsNullable {
		def += " NOT NULL"
	}
	if col.DefaultValue != nil {
		def += " DEFAULT " + defaultLiteral(*col.DefaultValue)
	}
	return def
}

func primaryKeySQL(d Dialect, columns []string) string {
	return fmt.Sprintf("PRIMARY KEY (%s)", quoteAll(d, columns))
}

func quoteAll(d Dialect, names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = d.QuoteIdent(name)
	}
	return strings.Join(quoted, ", ")
}

func addForeignKeySQL(d Dialect, table string, fk schema.ForeignKey) string {
	sql := fmt.Sprintf(
		"ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		d.QuoteIdent(table),
		d.QuoteIdent(fk.Name),
		d.QuoteIdent(fk.ColumnName),
		d.QuoteIdent(fk.ReferencedTable),
		d.QuoteIdent(fk.ReferencedColumn),
	)
	if fk.OnDelete != "" && !strings.EqualFold(fk.OnDelete, "NO ACTION") {
		sql += " ON DELETE " + strings.ToUpper(fk.OnDelete)
	}
	if fk.OnUpdate != "" && !strings.EqualFold(fk.OnUpdate, "NO ACTION") {
		sql += " ON UPDATE " + strings.ToUpper(fk.OnUpdate)
	}
	return sql
}
