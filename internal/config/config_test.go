package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kayabey/schemasync/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPostgresConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  database: sampledb
  username: sample
  password: secret
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Type, "default database type should be postgres")
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode, "SSL should default to disable for postgres")
	assert.Equal(t, "./metadata", cfg.Metadata.Path)
	assert.Equal(t, "public", cfg.SchemaName())

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "port=5432")
	assert.Contains(t, dsn, "dbname=sampledb")
}

func TestLoadMySQLConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  type: mariadb
  host: db.internal
  database: crm
  username: app
  password: secret
metadata:
  path: ./defs
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Type)
	assert.Equal(t, 3306, cfg.Database.Port, "mysql port should default to 3306 when omitted")
	assert.Equal(t, "crm", cfg.SchemaName(), "mysql uses the database itself as the schema namespace")
	assert.Equal(t, "./defs", cfg.Metadata.Path)
	assert.Equal(t, "app:secret@tcp(db.internal:3306)/crm", cfg.DSN())
}

func TestLoadFieldTypesAndHooks(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  database: crm
fieldTypes:
  currency:
    native: decimal
    precision: 16
    scale: 2
hooks:
  - analyze
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	ft, ok := cfg.FieldTypes["currency"]
	require.True(t, ok)
	assert.Equal(t, "decimal", ft.Native)
	require.NotNil(t, ft.Precision)
	assert.Equal(t, 16, *ft.Precision)

	assert.Equal(t, []string{"analyze"}, cfg.Hooks)
}
