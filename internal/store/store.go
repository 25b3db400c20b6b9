// Package store defines the persistence interfaces the rest of the
// system programs against. Concrete implementations (internal/store/postgres)
// are swapped in at the composition root; every other package depends only
// on these interfaces so it can be exercised against an in-memory fake.
package store

import (
	"context"
	"time"

	"github.com/daniyal-rahman/ncfd/internal/trial"
)

// TrialStore persists Trial and Version records (§3, §4.3).
type TrialStore interface {
	// GetTrial returns the current Trial row, or ok=false if it has never
	// been ingested.
	GetTrial(ctx context.Context, trialID string) (t trial.Trial, ok bool, err error)

	// LatestVersion returns the most recent TrialVersion for a trial, or
	// ok=false if the trial has no versions yet.
	LatestVersion(ctx context.Context, trialID string) (v trial.Version, ok bool, err error)

	// CreateTrialAndVersion inserts a brand-new Trial row plus its initial
	// TrialVersion, within the caller's transactional scope.
	CreateTrialAndVersion(ctx context.Context, t trial.Trial, v trial.Version) error

	// TouchLastSeen updates only the Trial's LastSeenAt, used when an
	// ingested record's content hash matches the latest version unchanged
	// (§4.3 step 3).
	TouchLastSeen(ctx context.Context, trialID string, seenAt time.Time) error

	// AppendVersion writes a new TrialVersion for an existing trial and
	// updates the Trial's mutable scalar projection (phase, status,
	// sponsor text, last-seen), within the caller's transactional scope.
	AppendVersion(ctx context.Context, t trial.Trial, v trial.Version) error

	// SetSponsorCompany links a trial to its resolved sponsor company,
	// called by the orchestrator after the sponsor resolver accepts a
	// candidate (§4.4). A content-only version append never touches this
	// link; only an explicit resolver accept does.
	SetSponsorCompany(ctx context.Context, trialID string, companyID int64) error
}

// TxRunner encloses a unit of work in a nested transactional scope keyed
// by trial id, so a failure on one trial (e.g. a constraint violation)
// rolls back only that trial's writes and does not poison the enclosing
// batch (§4.3, §5, §7 IntegrityError).
type TxRunner interface {
	WithTrialTx(ctx context.Context, trialID string, fn func(ctx context.Context, s TrialStore) error) error
}
