package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Run statuses.
const (
	StatusSuccess  = "success"
	StatusRejected = "rejected"
	StatusFailed   = "failed"
)

// timestampLayout is how created_at is written, matching SQLite's datetime().
const timestampLayout = "2006-01-02 15:04:05"

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("extraction run not found")

// ExtractionRun is one row of the extraction_runs table: the outcome of
// parsing a single uploaded document.
type ExtractionRun struct {
	ID              string    `json:"id"`
	Filename        string    `json:"filename"`
	DocumentKind    string    `json:"documentKind"`
	FileSize        int64     `json:"fileSize"`
	TextLength      int       `json:"extractedTextLength"`
	FieldsExtracted int       `json:"fieldsExtracted"`
	FieldNames      []string  `json:"fieldNames"`
	DurationMS      int64     `json:"durationMs"`
	Status          string    `json:"status"`
	ErrorMessage    string    `json:"errorMessage,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Repository reads and writes extraction runs.
type Repository struct {
	db *Database
}

// NewRepository creates a Repository over database.
func NewRepository(database *Database) *Repository {
	return &Repository{db: database}
}

func (r *Repository) conn() (*sql.DB, error) {
	conn := r.db.DB()
	if conn == nil {
		return nil, fmt.Errorf("database connection is closed")
	}
	return conn, nil
}

// InsertRun stores a run. A zero CreatedAt is set to now.
func (r *Repository) InsertRun(ctx context.Context, run ExtractionRun) error {
	if run.ID == "" {
		return fmt.Errorf("run id is required")
	}
	if run.Status == "" {
		return fmt.Errorf("run status is required")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	conn, err := r.conn()
	if err != nil {
		return err
	}

	_, err = conn.ExecContext(ctx, `
		INSERT INTO extraction_runs (
			id, filename, document_kind, file_size, text_length,
			fields_extracted, field_names, duration_ms, status, error_message, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Filename, run.DocumentKind, run.FileSize, run.TextLength,
		run.FieldsExtracted, strings.Join(run.FieldNames, ","), run.DurationMS,
		run.Status, run.ErrorMessage, run.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert extraction run: %w", err)
	}
	return nil
}

const selectRunColumns = `
	SELECT id, filename, document_kind, file_size, text_length,
		fields_extracted, field_names, duration_ms, status, error_message, created_at
	FROM extraction_runs`

// RecentRuns returns up to limit runs, newest first.
func (r *Repository) RecentRuns(ctx context.Context, limit int) ([]ExtractionRun, error) {
	if limit <= 0 {
		limit = 50
	}
	conn, err := r.conn()
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, selectRunColumns+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query extraction runs: %w", err)
	}
	defer rows.Close()

	var runs []ExtractionRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate extraction runs: %w", err)
	}
	return runs, nil
}

// GetRun returns the run with the given ID or ErrRunNotFound.
func (r *Repository) GetRun(ctx context.Context, id string) (*ExtractionRun, error) {
	conn, err := r.conn()
	if err != nil {
		return nil, err
	}

	run, err := scanRun(conn.QueryRowContext(ctx, selectRunColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// CountByStatus returns the number of runs per status.
func (r *Repository) CountByStatus(ctx context.Context) (map[string]int, error) {
	conn, err := r.conn()
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, `SELECT status, COUNT(*) FROM extraction_runs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count extraction runs: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status counts: %w", err)
	}
	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (ExtractionRun, error) {
	var run ExtractionRun
	var fieldNames string
	var createdAt any
	err := row.Scan(
		&run.ID, &run.Filename, &run.DocumentKind, &run.FileSize, &run.TextLength,
		&run.FieldsExtracted, &fieldNames, &run.DurationMS, &run.Status, &run.ErrorMessage, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return run, err
	}
	if err != nil {
		return run, fmt.Errorf("failed to scan extraction run: %w", err)
	}
	if fieldNames != "" {
		run.FieldNames = strings.Split(fieldNames, ",")
	}
	run.CreatedAt = parseTimestamp(createdAt)
	return run, nil
}

// parseTimestamp accepts created_at as the driver returns it: a time.Time
// for DATETIME columns, or the raw text.
func parseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		return parseTimestampText(t)
	case []byte:
		return parseTimestampText(string(t))
	}
	return time.Time{}
}

func parseTimestampText(s string) time.Time {
	for _, layout := range []string{timestampLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
