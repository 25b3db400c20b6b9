package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/daniyal-rahman/ncfd/internal/sponsor"
)

// SponsorRepo implements sponsor.CompanyStore and sponsor.DecisionStore
// over Postgres, using pg_trgm for the candidate-retrieval stage (§4.4
// stage 2 step 1).
type SponsorRepo struct {
	db        *DB
	topK      int
}

// NewSponsorRepo builds a SponsorRepo. topK bounds CandidateCompanies'
// trigram search, matching config.ResolverConfig.CandidateTopK.
func NewSponsorRepo(db *DB, topK int) *SponsorRepo {
	if topK <= 0 {
		topK = 25
	}
	return &SponsorRepo{db: db, topK: topK}
}

func (r *SponsorRepo) FindByExactAlias(ctx context.Context, normalizedSponsorText string) (sponsor.Company, bool, error) {
	var c companyRow
	err := r.db.GetContext(ctx, &c, `
		SELECT c.id, c.name, c.domain, c.ticker, c.is_academic, c.is_government
		FROM companies c
		LEFT JOIN company_aliases a ON a.company_id = c.id
		WHERE lower(c.name) = $1 OR lower(a.alias) = $1
		LIMIT 1`, normalizedSponsorText)
	if errors.Is(err, sql.ErrNoRows) {
		return sponsor.Company{}, false, nil
	}
	if err != nil {
		return sponsor.Company{}, false, fmt.Errorf("find by exact alias %q: %w", normalizedSponsorText, err)
	}
	return c.toCompany(), true, nil
}

func (r *SponsorRepo) CandidateCompanies(ctx context.Context, sponsorText string) ([]sponsor.Company, error) {
	var rows []companyRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, domain, ticker, is_academic, is_government
		FROM companies
		WHERE similarity(name, $1) > 0.15
		ORDER BY similarity(name, $1) DESC
		LIMIT $2`, sponsorText, r.topK)
	if err != nil {
		return nil, fmt.Errorf("candidate companies for %q: %w", sponsorText, err)
	}
	out := make([]sponsor.Company, len(rows))
	for i, row := range rows {
		out[i] = row.toCompany()
	}
	return out, nil
}

func (r *SponsorRepo) AliasesFor(ctx context.Context, companyIDs []int64) ([]sponsor.CompanyAlias, error) {
	if len(companyIDs) == 0 {
		return nil, nil
	}
	var rows []struct {
		ID        int64  `db:"id"`
		CompanyID int64  `db:"company_id"`
		Alias     string `db:"alias"`
	}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, company_id, alias FROM company_aliases WHERE company_id = ANY($1)`,
		pq.Array(companyIDs))
	if err != nil {
		return nil, fmt.Errorf("aliases for companies: %w", err)
	}
	out := make([]sponsor.CompanyAlias, len(rows))
	for i, row := range rows {
		out[i] = sponsor.CompanyAlias{ID: row.ID, CompanyID: row.CompanyID, Alias: row.Alias}
	}
	return out, nil
}

// SaveDecision inserts an append-only resolver decision row (§4.4 step
// 5, §6). A queued REVIEW decision is also inserted into the review
// queue within the same call, matching the teacher's pattern of a
// single repository method owning a multi-table write rather than
// requiring the caller to sequence it.
func (r *SponsorRepo) SaveDecision(ctx context.Context, d sponsor.ResolverDecision) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin save decision tx: %w", err)
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO resolver_decisions
			(run_id, trial_id, sponsor_text, company_id, decision, score, top2_margin, method, decided_by, notes, decided_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id`,
		d.RunID, d.TrialID, d.SponsorText, nullableInt64(d.CompanyID), string(d.Decision),
		d.Score, d.Top2Margin, d.Method, d.DecidedBy, d.Notes, d.DecidedAt,
	).Scan(&id)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("insert resolver decision for %s: %w", d.TrialID, err)
	}

	if d.Decision == sponsor.DecisionReview {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO resolver_review_queue (decision_id, queued_at) VALUES ($1, $2)`,
			id, d.DecidedAt,
		); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("queue review for decision %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit save decision tx: %w", err)
	}
	return id, nil
}

type companyRow struct {
	ID           int64  `db:"id"`
	Name         string `db:"name"`
	Domain       string `db:"domain"`
	Ticker       string `db:"ticker"`
	IsAcademic   bool   `db:"is_academic"`
	IsGovernment bool   `db:"is_government"`
}

func (row companyRow) toCompany() sponsor.Company {
	return sponsor.Company{
		ID: row.ID, Name: row.Name, Domain: row.Domain, Ticker: row.Ticker,
		IsAcademic: row.IsAcademic, IsGovernment: row.IsGovernment,
	}
}
