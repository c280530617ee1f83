// Package db stores the history of extraction runs in SQLite.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// SQLite driver (pure Go, no CGO required)
	_ "modernc.org/sqlite"
)

// ConnectionConfig holds configuration for SQLite connections.
type ConnectionConfig struct {
	// Path is the database file path, or ":memory:" style DSN
	Path string
	// BusyTimeout is how long to wait for locks
	BusyTimeout time.Duration
	// MaxOpenConns limits concurrent connections (one writer suits SQLite)
	MaxOpenConns int
	// RequireWAL fails the open when the journal mode cannot be switched to WAL
	RequireWAL bool
}

// DefaultConnectionConfig returns the settings used for the history database.
func DefaultConnectionConfig(path string) ConnectionConfig {
	return ConnectionConfig{
		Path:         path,
		BusyTimeout:  5 * time.Second,
		MaxOpenConns: 1,
		RequireWAL:   true,
	}
}

// NewSQLiteConnection opens path with WAL journaling, a busy timeout and
// foreign keys enabled, and verifies the connection.
//
// Example:
//
//	conn, err := NewSQLiteConnection(ctx, DefaultConnectionConfig("data/history.db"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
func NewSQLiteConnection(ctx context.Context, config ConnectionConfig) (*sql.DB, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	conn, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if config.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(config.MaxOpenConns)
		conn.SetMaxIdleConns(config.MaxOpenConns)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []struct {
		name  string
		query string
	}{
		{"journal_mode", "PRAGMA journal_mode=WAL"},
		{"busy_timeout", fmt.Sprintf("PRAGMA busy_timeout=%d", config.BusyTimeout.Milliseconds())},
		{"foreign_keys", "PRAGMA foreign_keys=ON"},
	}
	for _, p := range pragmas {
		if _, err := conn.ExecContext(ctx, p.query); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set %s pragma: %w", p.name, err)
		}
	}

	if config.RequireWAL {
		var mode string
		if err := conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to verify journal mode: %w", err)
		}
		if mode != "wal" {
			conn.Close()
			return nil, fmt.Errorf("WAL mode not enabled, got: %s", mode)
		}
	}

	return conn, nil
}
