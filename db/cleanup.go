package db

import (
	"context"
	"fmt"
)

// PruneRuns deletes runs older than retentionDays and returns how many rows
// were removed. A retention of zero keeps everything.
//
// Example:
//
//	removed, err := repo.PruneRuns(ctx, 90)
func (r *Repository) PruneRuns(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays < 0 {
		return 0, fmt.Errorf("retentionDays must be non-negative, got %d", retentionDays)
	}
	if retentionDays == 0 {
		return 0, nil
	}

	conn, err := r.conn()
	if err != nil {
		return 0, err
	}

	res, err := conn.ExecContext(ctx,
		`DELETE FROM extraction_runs WHERE created_at < datetime('now', ?)`,
		fmt.Sprintf("-%d days", retentionDays),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune extraction runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned runs: %w", err)
	}
	return n, nil
}
