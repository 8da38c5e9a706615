package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the sql handle so repositories share one connection pool.
type DB struct {
	*sql.DB
}

// NewConnection opens (creating if needed) the SQLite database at path with
// WAL journaling and foreign keys enforced.
func NewConnection(path string) (*DB, error) {
	if parent := filepath.Dir(path); parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// The pragmas ride in the DSN so the driver applies them to every pool
	// connection. A one-off Exec would reach only whichever connection ran
	// it, leaving the rest without a busy timeout under concurrent writes.
	dsn := "file:" + path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}
