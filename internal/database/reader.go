package database

import (
	"database/sql"
	"fmt"

	"github.com/kayabey/schemasync/internal/schema"
	"github.com/kayabey/schemasync/pkg/logger"
)

// Reader builds a snapshot of the live database structure through the
// dialect's introspection queries. Every Read hits the database again: the
// rebuild needs a true "before" picture per invocation, so nothing is
// cached.
type Reader struct {
	conn   *Connection
	logger *logger.Logger
}

func NewReader(conn *Connection, logger *logger.Logger) *Reader {
	return &Reader{
		conn:   conn,
		logger: logger,
	}
}

func (r *Reader) Read() (*schema.Snapshot, error) {
	r.logger.Debug("Reading live schema...")

	snapshot := &schema.Snapshot{}
	schemaName := r.conn.SchemaName()

	byName := map[string]*schema.Table{}

	tableNames, err := r.readTableNames(schemaName)
	if err != nil {
		return nil, err
	}
	for _, name := range tableNames {
		snapshot.Tables = append(snapshot.Tables, schema.Table{Name: name})
	}
	for i := range snapshot.Tables {
		byName[snapshot.Tables[i].Name] = &snapshot.Tables[i]
	}

	if err := r.readColumns(schemaName, byName); err != nil {
		return nil, err
	}
	if err := r.readIndexes(schemaName, byName); err != nil {
		return nil, err
	}
	if err := r.readForeignKeys(schemaName, byName); err != nil {
		return nil, err
	}

	r.logger.Debugf("Live schema read: %d tables", len(snapshot.Tables))
	return snapshot, nil
}

func (r *Reader) readTableNames(schemaName string) ([]string, error) {
	rows, err := r.conn.DB.Query(r.conn.Dialect.TablesQuery(), schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to read table metadata: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *Reader) readColumns(schemaName string, byName map[string]*schema.Table) error {
	rows, err := r.conn.DB.Query(r.conn.Dialect.ColumnsQuery(), schemaName)
	if err != nil {
		return fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			tableName    string
			col          schema.Column
			isNullable   string
			defaultValue sql.NullString
			maxLength    sql.NullInt64
			precision    sql.NullInt64
			scale        sql.NullInt64
		)
		if err := rows.Scan(&tableName, &col.Name, &col.Type, &isNullable, &defaultValue, &maxLength, &precision, &scale); err != nil {
			return fmt.Errorf("failed to read column metadata: %w", err)
		}

		col.IsNullable = isNullable == "YES"
		if defaultValue.Valid {
			value := defaultValue.String
			col.DefaultValue = &value
		}
		if maxLength.Valid {
			length := int(maxLength.Int64)
			col.MaxLength = &length
		}
		if precision.Valid {
			p := int(precision.Int64)
			col.Precision = &p
		}
		if scale.Valid {
			s := int(scale.Int64)
			col.Scale = &s
		}

		if table, ok := byName[tableName]; ok {
			table.Columns = append(table.Columns, col)
		}
	}
	return rows.Err()
}

func (r *Reader) readIndexes(schemaName string, byName map[string]*schema.Table) error {
	rows, err := r.conn.DB.Query(r.conn.Dialect.IndexesQuery(), schemaName)
	if err != nil {
		return fmt.Errorf("failed to query index metadata: %w", err)
	}
	defer rows.Close()

	// Rows arrive ordered by table, index, column position; consecutive
	// rows for the same index fold into one entry.
	for rows.Next() {
		var (
			tableName  string
			indexName  string
			columnName string
			isUnique   bool
			isPrimary  bool
		)
		if err := rows.Scan(&tableName, &indexName, &columnName, &isUnique, &isPrimary); err != nil {
			return fmt.Errorf("failed to read index metadata: %w", err)
		}

		table, ok := byName[tableName]
		if !ok {
			continue
		}

		if idx, found := table.Index(indexName); found {
			idx.Columns = append(idx.Columns, columnName)
		} else {
			table.Indexes = append(table.Indexes, schema.Index{
				Name:      indexName,
				Columns:   []string{columnName},
				IsUnique:  isUnique,
				IsPrimary: isPrimary,
			})
		}

		if isPrimary {
			table.PrimaryKeys = append(table.PrimaryKeys, columnName)
		}
	}
	return rows.Err()
}

func (r *Reader) readForeignKeys(schemaName string, byName map[string]*schema.Table) error {
	rows, err := r.conn.DB.Query(r.conn.Dialect.ForeignKeysQuery(), schemaName)
	if err != nil {
		return fmt.Errorf("failed to query foreign key metadata: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			tableName string
			fk        schema.ForeignKey
		)
		if err := rows.Scan(&tableName, &fk.Name, &fk.ColumnName, &fk.ReferencedTable, &fk.ReferencedColumn, &fk.OnDelete, &fk.OnUpdate); err != nil {
			return fmt.Errorf("failed to read foreign key metadata: %w", err)
		}

		if table, ok := byName[tableName]; ok {
			table.ForeignKeys = append(table.ForeignKeys, fk)
		}
	}
	return rows.Err()
}
