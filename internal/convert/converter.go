package convert

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/kayabey/schemasync/internal/fieldtype"
	"github.com/kayabey/schemasync/internal/metadata"
	"github.com/kayabey/schemasync/internal/schema"
)

// Converter turns entity metadata into a target schema snapshot. Given the
// same metadata it always produces the same snapshot, table by table and
// column by column: the comparator's diff stability depends on that.
type Converter struct {
	meta  *metadata.Metadata
	types *fieldtype.Registry
}

func New(meta *metadata.Metadata, types *fieldtype.Registry) *Converter {
	return &Converter{meta: meta, types: types}
}

// Convert builds the target snapshot for the given entity names, or for all
// entities when the filter is empty. Entities are emitted sorted by name;
// join tables synthesized for manyToMany links come last, sorted by name.
func (c *Converter) Convert(entityFilter []string) (*schema.Snapshot, error) {
	defs, err := c.meta.Entities(entityFilter)
	if err != nil {
		return nil, err
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })

	snapshot := &schema.Snapshot{}
	joinTables := map[string]schema.Table{}

	for _, def := range defs {
		table, err := c.buildTable(def, joinTables)
		if err != nil {
			return nil, err
		}
		snapshot.Tables = append(snapshot.Tables, table)
	}

	joinNames := make([]string, 0, len(joinTables))
	for name := range joinTables {
		joinNames = append(joinNames, name)
	}
	sort.Strings(joinNames)
	for _, name := range joinNames {
		snapshot.Tables = append(snapshot.Tables, joinTables[name])
	}

	return snapshot, nil
}

func (c *Converter) buildTable(def metadata.EntityDef, joinTables map[string]schema.Table) (schema.Table, error) {
	table := schema.Table{
		Name:        toSnake(def.Name),
		PrimaryKeys: []string{"id"},
	}

	idCol, err := c.idColumn()
	if err != nil {
		return schema.Table{}, err
	}
	table.Columns = append(table.Columns, idCol)

	for _, field := range def.Fields {
		col, err := c.buildColumn(field)
		if err != nil {
			return schema.Table{}, fmt.Errorf("entity %s: %w", def.Name, err)
		}
		table.Columns = append(table.Columns, col)
	}

	for _, link := range def.Links {
		if err := c.applyLink(&table, def, link, joinTables); err != nil {
			return schema.Table{}, fmt.Errorf("entity %s: %w", def.Name, err)
		}
	}

	return table, nil
}

func (c *Converter) buildColumn(field metadata.FieldDef) (schema.Column, error) {
	native, err := c.types.ResolveNativeName(field.Type)
	if err != nil {
		return schema.Column{}, fmt.Errorf("field %s: %w", field.Name, err)
	}
	def, _ := c.types.Definition(field.Type)

	col := schema.Column{
		Name:         toSnake(field.Name),
		Type:         native,
		IsNullable:   !field.Required,
		DefaultValue: field.Default,
		MaxLength:    coalesce(field.MaxLength, def.Length),
		Precision:    coalesce(field.Precision, def.Precision),
		Scale:        coalesce(field.Scale, def.Scale),
	}

	if def.Apply != nil {
		def.Apply(field, &col)
	}

	return col, nil
}

func (c *Converter) idColumn() (schema.Column, error) {
	col, err := c.buildColumn(metadata.FieldDef{Name: "id", Type: "id", Required: true})
	if err != nil {
		return schema.Column{}, err
	}
	return col, nil
}

func (c *Converter) applyLink(table *schema.Table, def metadata.EntityDef, link metadata.LinkDef, joinTables map[string]schema.Table) error {
	if _, ok := c.meta.Entity(link.Entity); !ok {
		return fmt.Errorf("link %s: unknown target entity %s", link.Name, link.Entity)
	}

	switch link.Type {
	case metadata.LinkBelongsTo:
		return c.applyBelongsTo(table, link)
	case metadata.LinkHasMany:
		// Owned by the opposite side, nothing to synthesize here.
		return nil
	case metadata.LinkManyToMany:
		c.applyManyToMany(def, link, joinTables)
		return nil
	default:
		return fmt.Errorf("link %s: unsupported link type %q", link.Name, link.Type)
	}
}

func (c *Converter) applyBelongsTo(table *schema.Table, link metadata.LinkDef) error {
	colName := toSnake(link.Name) + "_id"
	col, err := c.buildColumn(metadata.FieldDef{Name: colName, Type: "id"})
	if err != nil {
		return fmt.Errorf("link %s: %w", link.Name, err)
	}
	table.Columns = append(table.Columns, col)

	table.Indexes = append(table.Indexes, schema.Index{
		Name:    fmt.Sprintf("idx_%s_%s", table.Name, colName),
		Columns: []string{colName},
	})

	table.ForeignKeys = append(table.ForeignKeys, schema.ForeignKey{
		Name:             fmt.Sprintf("fk_%s_%s", table.Name, toSnake(link.Name)),
		ColumnName:       colName,
		ReferencedTable:  toSnake(link.Entity),
		ReferencedColumn: "id",
		OnDelete:         strings.ToUpper(link.OnDelete),
		OnUpdate:         strings.ToUpper(link.OnUpdate),
	})
	return nil
}

// applyManyToMany synthesizes the join table for a manyToMany link. Both
// sides of the relationship resolve to the same table name, so whichever
// entity is converted first wins and the other side is a no-op. A link
// whose target is the declaring entity itself prefixes the second column
// with "related_" so the join table keeps two distinct columns.
func (c *Converter) applyManyToMany(def metadata.EntityDef, link metadata.LinkDef, joinTables map[string]schema.Table) {
	sides := []string{toSnake(def.Name), toSnake(link.Entity)}
	sort.Strings(sides)
	name := sides[0] + "_" + sides[1]

	if _, exists := joinTables[name]; exists {
		return
	}

	leftCol := sides[0] + "_id"
	rightCol := sides[1] + "_id"
	leftFK := sides[0]
	rightFK := sides[1]
	if sides[0] == sides[1] {
		rightCol = "related_" + rightCol
		rightFK = "related_" + rightFK
	}

	join := schema.Table{
		Name:        name,
		PrimaryKeys: []string{leftCol, rightCol},
	}
	for _, colName := range []string{leftCol, rightCol} {
		col, err := c.buildColumn(metadata.FieldDef{Name: colName, Type: "id", Required: true})
		if err != nil {
			// The id type is built in; resolution cannot fail here.
			continue
		}
		join.Columns = append(join.Columns, col)
	}
	join.ForeignKeys = append(join.ForeignKeys,
		schema.ForeignKey{
			Name:             fmt.Sprintf("fk_%s_%s", name, leftFK),
			ColumnName:       leftCol,
			ReferencedTable:  sides[0],
			ReferencedColumn: "id",
			OnDelete:         "CASCADE",
		},
		schema.ForeignKey{
			Name:             fmt.Sprintf("fk_%s_%s", name, rightFK),
			ColumnName:       rightCol,
			ReferencedTable:  sides[1],
			ReferencedColumn: "id",
			OnDelete:         "CASCADE",
		},
	)

	joinTables[name] = join
}

func coalesce(field, typeDefault *int) *int {
	if field != nil {
		return field
	}
	return typeDefault
}

func toSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
