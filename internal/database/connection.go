package database

import (
	"database/sql"
	"fmt"

	"github.com/kayabey/schemasync/internal/config"
	"github.com/kayabey/schemasync/internal/dialect"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

type Connection struct {
	DB      *sql.DB
	Config  *config.Config
	Dialect dialect.Dialect
}

func NewConnection(cfg *config.Config) (*Connection, error) {
	d, err := dialect.New(cfg.Database.Type)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.Driver(), cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}

	return &Connection{
		DB:      db,
		Config:  cfg,
		Dialect: d,
	}, nil
}

func (c *Connection) Close() error {
	return c.DB.Close()
}

func (c *Connection) SchemaName() string {
	return c.Config.SchemaName()
}
