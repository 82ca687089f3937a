package collector

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLConfig represents the MySQL configuration; an empty DSN disables the
// ConditionWriter
type MySQLConfig struct {
	DSN string `yaml:"dsn"`
}

// NewDbConnection opens a new connection using the configured DSN
func NewDbConnection(config MySQLConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %s", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database connection error: %s", err)
	}

	return db, nil
}
