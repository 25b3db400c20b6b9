package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/daniyal-rahman/ncfd/internal/catalyst"
	"github.com/daniyal-rahman/ncfd/internal/gate"
)

// ResultRepo persists gate/posterior scores and catalyst windows (§6:
// score_results, catalyst_windows).
type ResultRepo struct {
	db *DB
}

// NewResultRepo builds a ResultRepo.
func NewResultRepo(db *DB) *ResultRepo { return &ResultRepo{db: db} }

// SaveScore appends a score_results row; scoring never overwrites a
// prior run's audit, matching the version store's append-only posture.
func (r *ResultRepo) SaveScore(ctx context.Context, trialID, runID string, audit gate.Audit, computedAt time.Time) error {
	raw, err := json.Marshal(audit)
	if err != nil {
		return fmt.Errorf("marshal audit for %s: %w", trialID, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO score_results (trial_id, run_id, p_fail, audit, computed_at)
		VALUES ($1,$2,$3,$4,$5)`,
		trialID, runID, audit.PFail, raw, computedAt,
	)
	if err != nil {
		return fmt.Errorf("insert score result for %s: %w", trialID, err)
	}
	return nil
}

// SaveCatalystWindow appends a catalyst_windows row for one trial.
func (r *ResultRepo) SaveCatalystWindow(ctx context.Context, trialID string, w catalyst.Window, computedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO catalyst_windows (trial_id, start_date, end_date, certainty, basis, computed_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		trialID, w.Start, w.End, w.Certainty, w.Basis, computedAt,
	)
	if err != nil {
		return fmt.Errorf("insert catalyst window for %s: %w", trialID, err)
	}
	return nil
}

// LatestScore returns the most recently computed score for a trial.
func (r *ResultRepo) LatestScore(ctx context.Context, trialID string) (gate.Audit, bool, error) {
	var raw []byte
	err := r.db.GetContext(ctx, &raw, `
		SELECT audit FROM score_results WHERE trial_id = $1 ORDER BY computed_at DESC LIMIT 1`, trialID)
	if errors.Is(err, sql.ErrNoRows) {
		return gate.Audit{}, false, nil
	}
	if err != nil {
		return gate.Audit{}, false, fmt.Errorf("latest score for %s: %w", trialID, err)
	}
	var a gate.Audit
	if err := json.Unmarshal(raw, &a); err != nil {
		return gate.Audit{}, false, fmt.Errorf("unmarshal audit for %s: %w", trialID, err)
	}
	return a, true, nil
}
