package schema

// Snapshot is an immutable structural picture of a database schema at one
// point in time. It is built either from live introspection or from entity
// metadata, never edited in place.
type Snapshot struct {
	Tables []Table
}

func (s *Snapshot) Table(name string) (*Table, bool) {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i], true
		}
	}
	return nil, false
}

func (s *Snapshot) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for i := range s.Tables {
		names = append(names, s.Tables[i].Name)
	}
	return names
}

type Table struct {
	Name        string
	Columns     []Column
	PrimaryKeys []string
	Indexes     []Index
	ForeignKeys []ForeignKey
}

func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

func (t *Table) Index(name string) (*Index, bool) {
	for i := range t.Indexes {
		if t.Indexes[i].Name == name {
			return &t.Indexes[i], true
		}
	}
	return nil, false
}

func (t *Table) ForeignKey(name string) (*ForeignKey, bool) {
	for i := range t.ForeignKeys {
		if t.ForeignKeys[i].Name == name {
			return &t.ForeignKeys[i], true
		}
	}
	return nil, false
}

type Column struct {
	Name         string
	Type         string
	IsNullable   bool
	DefaultValue *string
	MaxLength    *int
	Precision    *int
	Scale        *int
}

type Index struct {
	Name      string
	Columns   []string
	IsUnique  bool
	IsPrimary bool
}

type ForeignKey struct {
	Name             string
	ColumnName       string
	ReferencedTable  string
	ReferencedColumn string
	OnDelete         string
	OnUpdate         string
}
