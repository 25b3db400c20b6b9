package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CursorRepo implements orchestrator.CursorStore over a single-row
// ingestion_cursor table.
type CursorRepo struct {
	db *DB
}

// NewCursorRepo builds a CursorRepo.
func NewCursorRepo(db *DB) *CursorRepo { return &CursorRepo{db: db} }

func (r *CursorRepo) GetSince(ctx context.Context) (string, bool, error) {
	var since string
	err := r.db.GetContext(ctx, &since, `SELECT since FROM ingestion_cursor WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get cursor: %w", err)
	}
	return since, true, nil
}

func (r *CursorRepo) SetSince(ctx context.Context, since string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ingestion_cursor (id, since) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET since = EXCLUDED.since`, since)
	if err != nil {
		return fmt.Errorf("set cursor: %w", err)
	}
	return nil
}
