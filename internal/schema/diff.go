package schema

type OpKind string

const (
	OpCreateTable    OpKind = "CREATE_TABLE"
	OpDropTable      OpKind = "DROP_TABLE"
	OpAddColumn      OpKind = "ADD_COLUMN"
	OpDropColumn     OpKind = "DROP_COLUMN"
	OpAlterColumn    OpKind = "ALTER_COLUMN"
	OpAddIndex       OpKind = "ADD_INDEX"
	OpDropIndex      OpKind = "DROP_INDEX"
	OpAddForeignKey  OpKind = "ADD_FOREIGN_KEY"
	OpDropForeignKey OpKind = "DROP_FOREIGN_KEY"
)

// Operation is a single structural change. Which payload fields are set
// depends on Kind: CreateTable carries the whole Table, Add/Alter operations
// carry the target definition, Drop operations carry only names.
type Operation struct {
	Kind       OpKind
	TableName  string
	Table      *Table
	Column     *Column
	ColumnName string
	Index      *Index
	IndexName  string
	ForeignKey *ForeignKey
	FKName     string
}

// Diff is an ordered set of operations transforming one snapshot into
// another. Diffs are derived by the Comparator, never hand-built: ordering
// (creates before alters before drops, foreign-key drops before table drops)
// is what keeps execution valid under referential constraints.
type Diff struct {
	Operations []Operation
}

func (d *Diff) Empty() bool {
	return len(d.Operations) == 0
}

func (d *Diff) add(op Operation) {
	d.Operations = append(d.Operations, op)
}
