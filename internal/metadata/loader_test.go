package metadata_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kayabey/schemasync/internal/metadata"
)

func writeEntity(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadPreservesFieldDeclarationOrder(t *testing.T) {
	dir := t.TempDir()
	writeEntity(t, dir, "account.yaml", `
entity: Account
fields:
  name:    { type: varchar, maxLength: 50, required: true }
  website: { type: varchar }
  balance: { type: currency }
links:
  owner: { type: belongsTo, entity: User, onDelete: SET NULL }
`)
	writeEntity(t, dir, "user.yaml", `
entity: User
fields:
  name: { type: varchar }
`)

	meta, err := metadata.Load(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"Account", "User"}, meta.EntityNames())

	account, ok := meta.Entity("Account")
	require.True(t, ok)
	require.Len(t, account.Fields, 3)
	require.Equal(t, "name", account.Fields[0].Name)
	require.Equal(t, "website", account.Fields[1].Name)
	require.Equal(t, "balance", account.Fields[2].Name)

	require.True(t, account.Fields[0].Required)
	require.NotNil(t, account.Fields[0].MaxLength)
	require.Equal(t, 50, *account.Fields[0].MaxLength)

	require.Len(t, account.Links, 1)
	require.Equal(t, "owner", account.Links[0].Name)
	require.Equal(t, metadata.LinkBelongsTo, account.Links[0].Type)
	require.Equal(t, "User", account.Links[0].Entity)
	require.Equal(t, "SET NULL", account.Links[0].OnDelete)
}

func TestLoadIgnoresNonYAMLFiles(t *testing.T) {
	dir := t.TempDir()
	writeEntity(t, dir, "account.yaml", "entity: Account\n")
	writeEntity(t, dir, "notes.txt", "not metadata")

	meta, err := metadata.Load(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"Account"}, meta.EntityNames())
}

func TestLoadRejectsDuplicateEntities(t *testing.T) {
	dir := t.TempDir()
	writeEntity(t, dir, "a.yaml", "entity: Account\n")
	writeEntity(t, dir, "b.yaml", "entity: Account\n")

	_, err := metadata.Load(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate entity")
}

func TestLoadRejectsUnknownLinkType(t *testing.T) {
	dir := t.TempDir()
	writeEntity(t, dir, "account.yaml", `
entity: Account
links:
  owner: { type: ownedBy, entity: User }
`)

	_, err := metadata.Load(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported link type")
}

func TestEntitiesFilter(t *testing.T) {
	meta, err := metadata.New([]metadata.EntityDef{
		{Name: "Account"},
		{Name: "Contact"},
	})
	require.NoError(t, err)

	all, err := meta.Entities(nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	some, err := meta.Entities([]string{"Contact"})
	require.NoError(t, err)
	require.Len(t, some, 1)
	require.Equal(t, "Contact", some[0].Name)

	_, err = meta.Entities([]string{"Lead"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown entity")
}
