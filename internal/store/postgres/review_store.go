package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/daniyal-rahman/ncfd/internal/sponsor"
)

// ReviewRepo implements sponsor.ReviewQueue over the review-queue and
// label tables (§5.3, §6: resolver_review_queue, resolver_labels).
type ReviewRepo struct {
	db *DB
}

// NewReviewRepo builds a ReviewRepo.
func NewReviewRepo(db *DB) *ReviewRepo { return &ReviewRepo{db: db} }

// ListPending returns the oldest `limit` unresolved review items, each
// paired with its pending candidate company (§5.3).
//
// Per-candidate Features are not persisted alongside the decision in
// this schema pass (resolver_features exists for future use but nothing
// writes to it yet, see DESIGN.md); ListPending returns the zero Features
// value rather than recomputing them, since the review UI's job is
// confirming the candidate identity, not re-deriving the score.
func (r *ReviewRepo) ListPending(ctx context.Context, limit int) ([]sponsor.ReviewItem, error) {
	var rows []struct {
		DecisionID  int64         `db:"decision_id"`
		RunID       string        `db:"run_id"`
		TrialID     string        `db:"trial_id"`
		SponsorText string        `db:"sponsor_text"`
		Score       float64       `db:"score"`
		Top2Margin  float64       `db:"top2_margin"`
		Method      string        `db:"method"`
		DecidedBy   string        `db:"decided_by"`
		CompanyID   sql.NullInt64 `db:"company_id"`
		CompanyName sql.NullString `db:"company_name"`
		CompanyDomain sql.NullString `db:"company_domain"`
		CompanyTicker sql.NullString `db:"company_ticker"`
		QueuedAt    time.Time     `db:"queued_at"`
	}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT d.id AS decision_id, d.run_id, d.trial_id, d.sponsor_text, d.score, d.top2_margin,
			d.method, d.decided_by, d.company_id, c.name AS company_name, c.domain AS company_domain,
			c.ticker AS company_ticker, q.queued_at
		FROM resolver_decisions d
		JOIN resolver_review_queue q ON q.decision_id = d.id
		LEFT JOIN companies c ON c.id = d.company_id
		WHERE q.resolved_at IS NULL
		ORDER BY q.queued_at ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending review: %w", err)
	}

	out := make([]sponsor.ReviewItem, len(rows))
	for i, row := range rows {
		item := sponsor.ReviewItem{
			Decision: sponsor.ResolverDecision{
				ID: row.DecisionID, RunID: row.RunID, TrialID: row.TrialID, SponsorText: row.SponsorText,
				Decision: sponsor.DecisionReview, Score: row.Score, Top2Margin: row.Top2Margin,
				Method: row.Method, DecidedBy: row.DecidedBy,
			},
			QueuedAt: row.QueuedAt,
		}
		if row.CompanyID.Valid {
			item.Decision.CompanyID = &row.CompanyID.Int64
			item.Candidate = sponsor.Company{
				ID:     row.CompanyID.Int64,
				Name:   row.CompanyName.String,
				Domain: row.CompanyDomain.String,
				Ticker: row.CompanyTicker.String,
			}
		}
		out[i] = item
	}
	return out, nil
}

// SaveLabel inserts the human (or LLM-proposed-pending-confirmation)
// label and marks the queue entry resolved (§5.3, §5.4).
func (r *ReviewRepo) SaveLabel(ctx context.Context, label sponsor.Label) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin save label tx: %w", err)
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO resolver_labels (decision_id, company_id, labeler, labeled_at)
		VALUES ($1,$2,$3,$4) RETURNING id`,
		label.DecisionID, nullableInt64(label.CompanyID), label.Labeler, label.LabeledAt,
	).Scan(&id)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("insert label for decision %d: %w", label.DecisionID, err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE resolver_review_queue SET resolved_at = $2 WHERE decision_id = $1`,
		label.DecisionID, label.LabeledAt,
	); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("resolve review queue entry %d: %w", label.DecisionID, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit save label tx: %w", err)
	}
	return id, nil
}

// ApplyCompanyToTrial links the accepted company onto the trial record.
func (r *ReviewRepo) ApplyCompanyToTrial(ctx context.Context, trialID string, companyID int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE trials SET sponsor_company_id = $2 WHERE id = $1`, trialID, companyID)
	if err != nil {
		return fmt.Errorf("apply company %d to trial %s: %w", companyID, trialID, err)
	}
	return nil
}
