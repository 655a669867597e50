package dialect

import (
	"github.com/kayabey/schemasync/internal/schema"
)

// Emitter renders a schema diff into platform statements. It never executes
// anything, so the output can equally be printed, logged or run.
type Emitter struct {
	dialect Dialect
}

func NewEmitter(d Dialect) *Emitter {
	return &Emitter{dialect: d}
}

// ToSQL materializes each diff operation, in diff order, into one or more
// statements. The diff's dependency ordering is preserved as-is.
func (e *Emitter) ToSQL(diff *schema.Diff) []string {
	var stmts []string
	for _, op := range diff.Operations {
		stmts = append(stmts, e.operationSQL(op)...)
	}
	return stmts
}

func (e *Emitter) operationSQL(op schema.Operation) []string {
	d := e.dialect
	switch op.Kind {
	case schema.OpCreateTable:
		return []string{d.CreateTableSQL(*op.Table)}
	case schema.OpDropTable:
		return []string{d.DropTableSQL(op.TableName)}
	case schema.OpAddColumn:
		return []string{d.AddColumnSQL(op.TableName, *op.Column)}
	case schema.OpAlterColumn:
		return d.AlterColumnSQL(op.TableName, *op.Column)
	case schema.OpDropColumn:
		return []string{d.DropColumnSQL(op.TableName, op.ColumnName)}
	case schema.OpAddIndex:
		return []string{d.CreateIndexSQL(op.TableName, *op.Index)}
	case schema.OpDropIndex:
		return []string{d.DropIndexSQL(op.TableName, op.IndexName)}
	case schema.OpAddForeignKey:
		return []string{d.AddForeignKeySQL(op.TableName, *op.ForeignKey)}
	case schema.OpDropForeignKey:
		return []string{d.DropForeignKeySQL(op.TableName, op.FKName)}
	}
	return nil
}
