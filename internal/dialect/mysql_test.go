package dialect_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kayabey/schemasync/internal/dialect"
	"github.com/kayabey/schemasync/internal/schema"
)

func TestMySQLCreateTableSQL(t *testing.T) {
	d := dialect.NewMySQL()
	table := schema.Table{
		Name:        "account",
		PrimaryKeys: []string{"id"},
		Columns: []schema.Column{
			{Name: "id", Type: "varchar", MaxLength: intPtr(24)},
			{Name: "active", Type: "bool", IsNullable: true, DefaultValue: strPtr("true")},
		},
	}

	sql := d.CreateTableSQL(table)
	require.Equal(t,
		"CREATE TABLE IF NOT EXISTS `account` (`id` varchar(24) NOT NULL, `active` tinyint(1) DEFAULT true, PRIMARY KEY (`id`))",
		sql,
	)
}

func TestMySQLAlterColumnIsSingleModify(t *testing.T) {
	d := dialect.NewMySQL()
	col := schema.Column{Name: "name", Type: "varchar", MaxLength: intPtr(100), IsNullable: true}

	stmts := d.AlterColumnSQL("account", col)
	require.Equal(t, []string{"ALTER TABLE `account` MODIFY COLUMN `name` varchar(100)"}, stmts)
}

func TestMySQLNormalizeType(t *testing.T) {
	d := dialect.NewMySQL()

	require.Equal(t, "bool", d.NormalizeType("tinyint(1)"))
	require.Equal(t, "int", d.NormalizeType("INTEGER"))
	require.Equal(t, "decimal", d.NormalizeType("numeric"))
	require.Equal(t, "text", d.NormalizeType("longtext"))
}

func TestMySQLDropStatements(t *testing.T) {
	d := dialect.NewMySQL()

	require.Equal(t, "ALTER TABLE `account` DROP INDEX `idx_account_name`", d.DropIndexSQL("account", "idx_account_name"))
	require.Equal(t, "ALTER TABLE `account` DROP FOREIGN KEY `fk_account_owner`", d.DropForeignKeySQL("account", "fk_account_owner"))
	require.Equal(t, "DROP TABLE IF EXISTS `account`", d.DropTableSQL("account"))
}
