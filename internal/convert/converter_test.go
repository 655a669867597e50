package convert_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kayabey/schemasync/internal/convert"
	"github.com/kayabey/schemasync/internal/fieldtype"
	"github.com/kayabey/schemasync/internal/metadata"
	"github.com/kayabey/schemasync/internal/schema"
)

func intPtr(v int) *int { return &v }

func newRegistry() *fieldtype.Registry {
	r := fieldtype.NewRegistry(nil)
	fieldtype.RegisterBuiltins(r)
	return r
}

func newMeta(t *testing.T, entities ...metadata.EntityDef) *metadata.Metadata {
	t.Helper()
	meta, err := metadata.New(entities)
	require.NoError(t, err)
	return meta
}

func TestConvertSynthesizesTableWithIDAndFields(t *testing.T) {
	meta := newMeta(t, metadata.EntityDef{
		Name: "Account",
		Fields: []metadata.FieldDef{
			{Name: "name", Type: "varchar", MaxLength: intPtr(50), Required: true},
		},
	})

	snapshot, err := convert.New(meta, newRegistry()).Convert(nil)
	require.NoError(t, err)
	require.Len(t, snapshot.Tables, 1)

	table := snapshot.Tables[0]
	require.Equal(t, "account", table.Name)
	require.Equal(t, []string{"id"}, table.PrimaryKeys)
	require.Len(t, table.Columns, 2)

	require.Equal(t, "id", table.Columns[0].Name)
	require.Equal(t, "varchar", table.Columns[0].Type)
	require.Equal(t, 24, *table.Columns[0].MaxLength)
	require.False(t, table.Columns[0].IsNullable)

	require.Equal(t, "name", table.Columns[1].Name)
	require.Equal(t, "varchar", table.Columns[1].Type)
	require.Equal(t, 50, *table.Columns[1].MaxLength)
	require.False(t, table.Columns[1].IsNullable)
}

func TestConvertBelongsToSynthesizesColumnIndexAndForeignKey(t *testing.T) {
	meta := newMeta(t,
		metadata.EntityDef{
			Name: "Account",
			Links: []metadata.LinkDef{
				{Name: "owner", Type: metadata.LinkBelongsTo, Entity: "User", OnDelete: "SET NULL"},
			},
		},
		metadata.EntityDef{Name: "User"},
	)

	snapshot, err := convert.New(meta, newRegistry()).Convert(nil)
	require.NoError(t, err)

	account, ok := snapshot.Table("account")
	require.True(t, ok)

	col, ok := account.Column("owner_id")
	require.True(t, ok)
	require.Equal(t, "varchar", col.Type)
	require.True(t, col.IsNullable)

	idx, ok := account.Index("idx_account_owner_id")
	require.True(t, ok)
	require.Equal(t, []string{"owner_id"}, idx.Columns)

	fk, ok := account.ForeignKey("fk_account_owner")
	require.True(t, ok)
	require.Equal(t, "owner_id", fk.ColumnName)
	require.Equal(t, "user", fk.ReferencedTable)
	require.Equal(t, "id", fk.ReferencedColumn)
	require.Equal(t, "SET NULL", fk.OnDelete)
}

func TestConvertManyToManySynthesizesJoinTableOnce(t *testing.T) {
	meta := newMeta(t,
		metadata.EntityDef{
			Name:  "Account",
			Links: []metadata.LinkDef{{Name: "teams", Type: metadata.LinkManyToMany, Entity: "Team"}},
		},
		metadata.EntityDef{
			Name:  "Team",
			Links: []metadata.LinkDef{{Name: "accounts", Type: metadata.LinkManyToMany, Entity: "Account"}},
		},
	)

	snapshot, err := convert.New(meta, newRegistry()).Convert(nil)
	require.NoError(t, err)
	require.Len(t, snapshot.Tables, 3)

	join, ok := snapshot.Table("account_team")
	require.True(t, ok)
	require.Equal(t, []string{"account_id", "team_id"}, join.PrimaryKeys)
	require.Len(t, join.Columns, 2)
	require.Len(t, join.ForeignKeys, 2)
	require.Equal(t, "CASCADE", join.ForeignKeys[0].OnDelete)
	require.Equal(t, "account", join.ForeignKeys[0].ReferencedTable)
	require.Equal(t, "team", join.ForeignKeys[1].ReferencedTable)
}

func TestConvertManyToManySelfLinkDisambiguatesSides(t *testing.T) {
	meta := newMeta(t, metadata.EntityDef{
		Name:  "Contact",
		Links: []metadata.LinkDef{{Name: "related", Type: metadata.LinkManyToMany, Entity: "Contact"}},
	})

	snapshot, err := convert.New(meta, newRegistry()).Convert(nil)
	require.NoError(t, err)

	join, ok := snapshot.Table("contact_contact")
	require.True(t, ok)
	require.Equal(t, []string{"contact_id", "related_contact_id"}, join.PrimaryKeys)
	require.Len(t, join.Columns, 2)
	require.Equal(t, "contact_id", join.Columns[0].Name)
	require.Equal(t, "related_contact_id", join.Columns[1].Name)

	require.Len(t, join.ForeignKeys, 2)
	left, ok := join.ForeignKey("fk_contact_contact_contact")
	require.True(t, ok)
	require.Equal(t, "contact_id", left.ColumnName)
	require.Equal(t, "contact", left.ReferencedTable)
	right, ok := join.ForeignKey("fk_contact_contact_related_contact")
	require.True(t, ok)
	require.Equal(t, "related_contact_id", right.ColumnName)
	require.Equal(t, "contact", right.ReferencedTable)
}

func TestConvertIsDeterministic(t *testing.T) {
	meta := newMeta(t,
		metadata.EntityDef{
			Name: "Contact",
			Fields: []metadata.FieldDef{
				{Name: "firstName", Type: "varchar"},
				{Name: "lastName", Type: "varchar"},
			},
			Links: []metadata.LinkDef{{Name: "account", Type: metadata.LinkBelongsTo, Entity: "Account"}},
		},
		metadata.EntityDef{
			Name:   "Account",
			Fields: []metadata.FieldDef{{Name: "name", Type: "varchar"}},
		},
	)

	converter := convert.New(meta, newRegistry())

	first, err := converter.Convert(nil)
	require.NoError(t, err)
	second, err := converter.Convert(nil)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, []string{"account", "contact"}, first.TableNames(), "entities are emitted sorted by name")
	require.Equal(t, "first_name", first.Tables[1].Columns[1].Name)
}

func TestConvertFilterRestrictsEntities(t *testing.T) {
	meta := newMeta(t,
		metadata.EntityDef{Name: "Account"},
		metadata.EntityDef{Name: "Contact"},
	)
	converter := convert.New(meta, newRegistry())

	snapshot, err := converter.Convert([]string{"Contact"})
	require.NoError(t, err)
	require.Equal(t, []string{"contact"}, snapshot.TableNames())

	_, err = converter.Convert([]string{"Lead"})
	require.Error(t, err)
}

func TestConvertUnknownFieldTypeFails(t *testing.T) {
	meta := newMeta(t, metadata.EntityDef{
		Name:   "Account",
		Fields: []metadata.FieldDef{{Name: "shape", Type: "hologram"}},
	})

	_, err := convert.New(meta, newRegistry()).Convert(nil)
	require.ErrorIs(t, err, fieldtype.ErrResolution)
}

func TestConvertAppliesCustomMappingFunc(t *testing.T) {
	registry := newRegistry()
	registry.Register(fieldtype.Definition{
		Name:       "slug",
		NativeType: "varchar",
		Length:     intPtr(80),
		Apply: func(field metadata.FieldDef, col *schema.Column) {
			col.IsNullable = false
		},
	})

	meta := newMeta(t, metadata.EntityDef{
		Name:   "Page",
		Fields: []metadata.FieldDef{{Name: "slug", Type: "slug"}},
	})

	snapshot, err := convert.New(meta, registry).Convert(nil)
	require.NoError(t, err)

	page, ok := snapshot.Table("page")
	require.True(t, ok)
	col, ok := page.Column("slug")
	require.True(t, ok)
	require.Equal(t, 80, *col.MaxLength)
	require.False(t, col.IsNullable, "custom mapping func gets the last word")
}
