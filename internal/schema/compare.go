package schema

import "strings"

// Normalizer collapses platform type aliases and default-literal syntax so
// that equivalent representations compare equal. Implemented by the active
// dialect.
type Normalizer interface {
	NormalizeType(nativeType string) string
	NormalizeDefault(literal string) string
}

type Comparator struct {
	norm Normalizer
}

func NewComparator(norm Normalizer) *Comparator {
	return &Comparator{norm: norm}
}

// Compare computes the ordered diff that transforms `from` into `to`.
// Creates come first, then column/index alterations, then foreign-key
// additions (so every referenced table already exists), then removals with
// foreign keys dropped before the tables that own or back them.
func (c *Comparator) Compare(from, to *Snapshot) *Diff {
	diff := &Diff{}

	var addFKs []Operation

	for i := range to.Tables {
		target := &to.Tables[i]
		current, exists := from.Table(target.Name)

		if !exists {
			diff.add(Operation{Kind: OpCreateTable, TableName: target.Name, Table: target})
			for j := range target.Indexes {
				if target.Indexes[j].IsPrimary {
					continue
				}
				diff.add(Operation{Kind: OpAddIndex, TableName: target.Name, Index: &target.Indexes[j]})
			}
			for j := range target.ForeignKeys {
				addFKs = append(addFKs, Operation{Kind: OpAddForeignKey, TableName: target.Name, ForeignKey: &target.ForeignKeys[j]})
			}
			continue
		}

		c.compareColumns(diff, current, target)
		c.compareIndexes(diff, current, target)
		addFKs = append(addFKs, c.compareForeignKeys(diff, current, target)...)
	}

	diff.Operations = append(diff.Operations, addFKs...)

	c.compareRemovals(diff, from, to)

	return diff
}

func (c *Comparator) compareColumns(diff *Diff, current, target *Table) {
	for i := range target.Columns {
		col := &target.Columns[i]
		existing, ok := current.Column(col.Name)
		if !ok {
			diff.add(Operation{Kind: OpAddColumn, TableName: target.Name, Column: col})
			continue
		}
		if !c.columnsEqual(existing, col) {
			diff.add(Operation{Kind: OpAlterColumn, TableName: target.Name, Column: col})
		}
	}
}

func (c *Comparator) compareIndexes(diff *Diff, current, target *Table) {
	for i := range target.Indexes {
		idx := &target.Indexes[i]
		if idx.IsPrimary {
			continue
		}
		existing, ok := current.Index(idx.Name)
		if !ok {
			diff.add(Operation{Kind: OpAddIndex, TableName: target.Name, Index: idx})
			continue
		}
		if !indexesEqual(existing, idx) {
			// Same name, different definition: recreate in place.
			diff.add(Operation{Kind: OpDropIndex, TableName: target.Name, IndexName: idx.Name})
			diff.add(Operation{Kind: OpAddIndex, TableName: target.Name, Index: idx})
		}
	}
}

func (c *Comparator) compareForeignKeys(diff *Diff, current, target *Table) []Operation {
	var adds []Operation
	for i := range target.ForeignKeys {
		fk := &target.ForeignKeys[i]
		existing, ok := current.ForeignKey(fk.Name)
		if !ok {
			adds = append(adds, Operation{Kind: OpAddForeignKey, TableName: target.Name, ForeignKey: fk})
			continue
		}
		if !foreignKeysEqual(existing, fk) {
			diff.add(Operation{Kind: OpDropForeignKey, TableName: target.Name, FKName: fk.Name})
			adds = append(adds, Operation{Kind: OpAddForeignKey, TableName: target.Name, ForeignKey: fk})
		}
	}
	return adds
}

// compareRemovals emits everything present in `from` but absent from `to`.
// Foreign keys go first, across all tables, so that no DropTable runs while
// a constraint still references it.
func (c *Comparator) compareRemovals(diff *Diff, from, to *Snapshot) {
	var dropIndexes, dropColumns, dropTables []Operation

	for i := range from.Tables {
		current := &from.Tables[i]
		target, exists := to.Table(current.Name)

		if !exists {
			for j := range current.ForeignKeys {
				diff.add(Operation{Kind: OpDropForeignKey, TableName: current.Name, FKName: current.ForeignKeys[j].Name})
			}
			dropTables = append(dropTables, Operation{Kind: OpDropTable, TableName: current.Name})
			continue
		}

		for j := range current.ForeignKeys {
			if _, ok := target.ForeignKey(current.ForeignKeys[j].Name); !ok {
				diff.add(Operation{Kind: OpDropForeignKey, TableName: current.Name, FKName: current.ForeignKeys[j].Name})
			}
		}
		for j := range current.Indexes {
			if current.Indexes[j].IsPrimary {
				continue
			}
			if _, ok := target.Index(current.Indexes[j].Name); !ok {
				dropIndexes = append(dropIndexes, Operation{Kind: OpDropIndex, TableName: current.Name, IndexName: current.Indexes[j].Name})
			}
		}
		for j := range current.Columns {
			if _, ok := target.Column(current.Columns[j].Name); !ok {
				dropColumns = append(dropColumns, Operation{Kind: OpDropColumn, TableName: current.Name, ColumnName: current.Columns[j].Name})
			}
		}
	}

	diff.Operations = append(diff.Operations, dropIndexes...)
	diff.Operations = append(diff.Operations, dropColumns...)
	diff.Operations = append(diff.Operations, dropTables...)
}

// columnsEqual compares the semantic parts of a column definition.
// Representation-only differences (type aliases, default literal syntax,
// an unreported length on one side) must not count as alterations.
func (c *Comparator) columnsEqual(a, b *Column) bool {
	if c.norm.NormalizeType(a.Type) != c.norm.NormalizeType(b.Type) {
		return false
	}
	if a.IsNullable != b.IsNullable {
		return false
	}
	if !defaultsEqual(c.norm, a.DefaultValue, b.DefaultValue) {
		return false
	}
	if !sizesEqual(a.MaxLength, b.MaxLength) {
		return false
	}
	if !sizesEqual(a.Precision, b.Precision) {
		return false
	}
	return sizesEqual(a.Scale, b.Scale)
}

func defaultsEqual(norm Normalizer, a, b *string) bool {
	var na, nb string
	if a != nil {
		na = norm.NormalizeDefault(*a)
	}
	if b != nil {
		nb = norm.NormalizeDefault(*b)
	}
	return na == nb
}

// sizesEqual treats a missing size on either side as a match: introspection
// not reporting a length for a type must not churn the schema.
func sizesEqual(a, b *int) bool {
	if a == nil || b == nil {
		return true
	}
	return *a == *b
}

func indexesEqual(a, b *Index) bool {
	if a.IsUnique != b.IsUnique || len(a.Columns) != len(b.Columns) {
		return false
	}
	for i := range a.Columns {
		if a.Columns[i] != b.Columns[i] {
			return false
		}
	}
	return true
}

func foreignKeysEqual(a, b *ForeignKey) bool {
	return a.ColumnName == b.ColumnName &&
		a.ReferencedTable == b.ReferencedTable &&
		a.ReferencedColumn == b.ReferencedColumn &&
		normalizeRule(a.OnDelete) == normalizeRule(b.OnDelete) &&
		normalizeRule(a.OnUpdate) == normalizeRule(b.OnUpdate)
}

func normalizeRule(rule string) string {
	rule = strings.ToUpper(strings.TrimSpace(rule))
	if rule == "" {
		return "NO ACTION"
	}
	return rule
}
