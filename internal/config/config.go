package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	Schema   string `yaml:"schema"`
}

type MetadataConfig struct {
	Path string `yaml:"path"`
}

// FieldTypeConfig declares or overrides a logical field type from the
// config file, without recompiling.
type FieldTypeConfig struct {
	Native    string `yaml:"native"`
	Length    *int   `yaml:"length"`
	Precision *int   `yaml:"precision"`
	Scale     *int   `yaml:"scale"`
}

type Config struct {
	Database   DatabaseConfig             `yaml:"database"`
	Metadata   MetadataConfig             `yaml:"metadata"`
	FieldTypes map[string]FieldTypeConfig `yaml:"fieldTypes"`
	Hooks      []string                   `yaml:"hooks"`
}

func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.Database.Type = normalizeDatabaseType(config.Database.Type)

	switch config.Database.Type {
	case "postgres":
		if config.Database.Port == 0 {
			config.Database.Port = 5432
		}
		if config.Database.SSLMode == "" {
			config.Database.SSLMode = "disable"
		}
	case "mysql":
		if config.Database.Port == 0 {
			config.Database.Port = 3306
		}
	}

	if config.Metadata.Path == "" {
		config.Metadata.Path = "./metadata"
	}

	return &config, nil
}

// DSN builds the driver connection string for the configured database type.
func (c *Config) DSN() string {
	switch c.Database.Type {
	case "mysql":
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s",
			c.Database.Username,
			c.Database.Password,
			c.Database.Host,
			c.Database.Port,
			c.Database.Database,
		)
	default:
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Database.Host,
			c.Database.Port,
			c.Database.Username,
			c.Database.Password,
			c.Database.Database,
			c.Database.SSLMode,
		)
	}
}

// SchemaName is the namespace introspection queries filter on: the schema
// for postgres, the database itself for mysql.
func (c *Config) SchemaName() string {
	if c.Database.Type == "mysql" {
		return c.Database.Database
	}
	if c.Database.Schema != "" {
		return c.Database.Schema
	}
	return "public"
}

func normalizeDatabaseType(dbType string) string {
	dbType = strings.ToLower(strings.TrimSpace(dbType))
	switch dbType {
	case "", "postgres", "postgresql":
		return "postgres"
	case "mysql", "mariadb":
		return "mysql"
	default:
		return dbType
	}
}
