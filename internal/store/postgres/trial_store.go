package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/daniyal-rahman/ncfd/internal/store"
	"github.com/daniyal-rahman/ncfd/internal/trial"
)

// TrialRepo implements store.TrialStore + store.TxRunner over Postgres.
// Each WithTrialTx call opens its own *sql.Tx so one trial's constraint
// violation rolls back only that trial's writes (§4.3, §5, §7).
type TrialRepo struct {
	db *DB
}

// NewTrialRepo builds a TrialRepo.
func NewTrialRepo(db *DB) *TrialRepo { return &TrialRepo{db: db} }

// WithTrialTx opens a transaction scoped to one trial accession and
// runs fn against it, committing on success and rolling back on any
// error fn returns.
func (r *TrialRepo) WithTrialTx(ctx context.Context, _ string, fn func(ctx context.Context, s store.TrialStore) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin trial tx: %w", err)
	}

	if err := fn(ctx, &txTrialStore{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit trial tx: %w", err)
	}
	return nil
}

// txTrialStore implements store.TrialStore against one transaction.
type txTrialStore struct {
	tx *sqlx.Tx
}

type trialRow struct {
	ID               string         `db:"id"`
	BriefTitle       string         `db:"brief_title"`
	OfficialTitle    string         `db:"official_title"`
	SponsorText      string         `db:"sponsor_text"`
	SponsorCompanyID sql.NullInt64  `db:"sponsor_company_id"`
	Phase            string         `db:"phase"`
	Status           string         `db:"status"`
	LastSeenAt       time.Time      `db:"last_seen_at"`
}

func (row trialRow) toTrial() trial.Trial {
	t := trial.Trial{
		ID:            row.ID,
		BriefTitle:    row.BriefTitle,
		OfficialTitle: row.OfficialTitle,
		SponsorText:   row.SponsorText,
		Phase:         trial.Phase(row.Phase),
		Status:        trial.Status(row.Status),
		LastSeenAt:    row.LastSeenAt,
	}
	if row.SponsorCompanyID.Valid {
		id := row.SponsorCompanyID.Int64
		t.SponsorCompanyID = &id
	}
	return t
}

func (s *txTrialStore) GetTrial(ctx context.Context, trialID string) (trial.Trial, bool, error) {
	var row trialRow
	err := s.tx.GetContext(ctx, &row, `
		SELECT id, brief_title, official_title, sponsor_text, sponsor_company_id, phase, status, last_seen_at
		FROM trials WHERE id = $1`, trialID)
	if errors.Is(err, sql.ErrNoRows) {
		return trial.Trial{}, false, nil
	}
	if err != nil {
		return trial.Trial{}, false, fmt.Errorf("get trial %s: %w", trialID, err)
	}
	return row.toTrial(), true, nil
}

func (s *txTrialStore) LatestVersion(ctx context.Context, trialID string) (trial.Version, bool, error) {
	var row versionRow
	err := s.tx.GetContext(ctx, &row, `
		SELECT trial_id, captured_at, raw, content_hash, scalars, changes, warnings
		FROM trial_versions WHERE trial_id = $1 ORDER BY captured_at DESC LIMIT 1`, trialID)
	if errors.Is(err, sql.ErrNoRows) {
		return trial.Version{}, false, nil
	}
	if err != nil {
		return trial.Version{}, false, fmt.Errorf("latest version %s: %w", trialID, err)
	}
	v, err := row.toVersion()
	if err != nil {
		return trial.Version{}, false, err
	}
	return v, true, nil
}

func (s *txTrialStore) CreateTrialAndVersion(ctx context.Context, t trial.Trial, v trial.Version) error {
	if _, err := s.tx.ExecContext(ctx, `
		INSERT INTO trials (id, brief_title, official_title, sponsor_text, sponsor_company_id, phase, status, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.BriefTitle, t.OfficialTitle, t.SponsorText, nullableInt64(t.SponsorCompanyID), string(t.Phase), string(t.Status), t.LastSeenAt,
	); err != nil {
		return fmt.Errorf("insert trial %s: %w", t.ID, err)
	}
	return s.insertVersion(ctx, v)
}

func (s *txTrialStore) TouchLastSeen(ctx context.Context, trialID string, seenAt time.Time) error {
	_, err := s.tx.ExecContext(ctx, `UPDATE trials SET last_seen_at = $2 WHERE id = $1`, trialID, seenAt)
	if err != nil {
		return fmt.Errorf("touch last_seen_at %s: %w", trialID, err)
	}
	return nil
}

func (s *txTrialStore) AppendVersion(ctx context.Context, t trial.Trial, v trial.Version) error {
	if _, err := s.tx.ExecContext(ctx, `
		UPDATE trials SET brief_title=$2, official_title=$3, sponsor_text=$4, sponsor_company_id=$5,
			phase=$6, status=$7, last_seen_at=$8
		WHERE id=$1`,
		t.ID, t.BriefTitle, t.OfficialTitle, t.SponsorText, nullableInt64(t.SponsorCompanyID), string(t.Phase), string(t.Status), t.LastSeenAt,
	); err != nil {
		return fmt.Errorf("update trial %s: %w", t.ID, err)
	}
	return s.insertVersion(ctx, v)
}

func (s *txTrialStore) SetSponsorCompany(ctx context.Context, trialID string, companyID int64) error {
	_, err := s.tx.ExecContext(ctx, `UPDATE trials SET sponsor_company_id = $2 WHERE id = $1`, trialID, companyID)
	if err != nil {
		return fmt.Errorf("set sponsor company %s: %w", trialID, err)
	}
	return nil
}

func (s *txTrialStore) insertVersion(ctx context.Context, v trial.Version) error {
	raw, err := json.Marshal(v.Raw)
	if err != nil {
		return fmt.Errorf("marshal raw for %s: %w", v.TrialID, err)
	}
	scalars, err := json.Marshal(v.Scalars)
	if err != nil {
		return fmt.Errorf("marshal scalars for %s: %w", v.TrialID, err)
	}
	changes, err := json.Marshal(v.Changes)
	if err != nil {
		return fmt.Errorf("marshal changes for %s: %w", v.TrialID, err)
	}
	warnings, err := json.Marshal(v.Warnings)
	if err != nil {
		return fmt.Errorf("marshal warnings for %s: %w", v.TrialID, err)
	}

	_, err = s.tx.ExecContext(ctx, `
		INSERT INTO trial_versions (trial_id, captured_at, raw, content_hash, scalars, changes, warnings)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		v.TrialID, v.CapturedAt, raw, v.ContentHash, scalars, changes, warnings,
	)
	if err != nil {
		return fmt.Errorf("insert version for %s: %w", v.TrialID, err)
	}
	return nil
}

type versionRow struct {
	TrialID     string `db:"trial_id"`
	CapturedAt  time.Time `db:"captured_at"`
	Raw         []byte `db:"raw"`
	ContentHash string `db:"content_hash"`
	Scalars     []byte `db:"scalars"`
	Changes     []byte `db:"changes"`
	Warnings    []byte `db:"warnings"`
}

func (row versionRow) toVersion() (trial.Version, error) {
	v := trial.Version{
		TrialID:     row.TrialID,
		CapturedAt:  row.CapturedAt,
		ContentHash: row.ContentHash,
	}
	if err := json.Unmarshal(row.Raw, &v.Raw); err != nil {
		return trial.Version{}, fmt.Errorf("unmarshal raw for %s: %w", row.TrialID, err)
	}
	if err := json.Unmarshal(row.Scalars, &v.Scalars); err != nil {
		return trial.Version{}, fmt.Errorf("unmarshal scalars for %s: %w", row.TrialID, err)
	}
	if err := json.Unmarshal(row.Changes, &v.Changes); err != nil {
		return trial.Version{}, fmt.Errorf("unmarshal changes for %s: %w", row.TrialID, err)
	}
	if err := json.Unmarshal(row.Warnings, &v.Warnings); err != nil {
		return trial.Version{}, fmt.Errorf("unmarshal warnings for %s: %w", row.TrialID, err)
	}
	return v, nil
}

func nullableInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
