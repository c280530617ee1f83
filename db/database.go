package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Database owns the history database: it creates the file, applies the
// embedded migrations on open and hands out a Repository.
//
// Usage:
//
//	database, err := Open(ctx, "data/history.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer database.Close()
//	repo := database.Repository()
type Database struct {
	mu   sync.RWMutex
	conn *sql.DB
	path string
}

// Open prepares the database at path and returns it ready for use.
// Parent directories are created as needed.
func Open(ctx context.Context, path string) (*Database, error) {
	return OpenWithConfig(ctx, DefaultConnectionConfig(path))
}

// OpenWithConfig is Open with explicit connection settings.
func OpenWithConfig(ctx context.Context, config ConnectionConfig) (*Database, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if dir := filepath.Dir(config.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// Migrations run on their own connection because the migrator closes it.
	migrationConn, err := NewSQLiteConnection(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to open database for migration: %w", err)
	}
	if err := MigrateUp(migrationConn); err != nil {
		return nil, err
	}

	conn, err := NewSQLiteConnection(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	return &Database{conn: conn, path: config.Path}, nil
}

// Path returns the database file path.
func (d *Database) Path() string {
	return d.path
}

// DB returns the underlying connection, or nil after Close.
func (d *Database) DB() *sql.DB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.conn
}

// Repository returns a Repository over this database.
func (d *Database) Repository() *Repository {
	return NewRepository(d)
}

// Close closes the connection. Calling Close twice is safe.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
