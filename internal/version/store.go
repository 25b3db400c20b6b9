package version

import (
	"context"
	"time"

	"github.com/daniyal-rahman/ncfd/internal/errkind"
	"github.com/daniyal-rahman/ncfd/internal/logging"
	"github.com/daniyal-rahman/ncfd/internal/store"
	"github.com/daniyal-rahman/ncfd/internal/trial"
)

// Store is the Version Store (§3, §4.3): the only writer of Trial and
// TrialVersion rows. It composes a TxRunner so that each trial's writes
// land in their own nested transactional scope and a constraint violation
// on one trial never rolls back its siblings in the same batch.
type Store struct {
	Tx store.TxRunner
}

// NewStore constructs a Version Store over the given transactional runner.
func NewStore(tx store.TxRunner) *Store {
	return &Store{Tx: tx}
}

// UpsertTrialAndVersion implements §4.3's ingestion algorithm:
//  1. Canonicalize raw and compute its content hash.
//  2. If the trial has never been seen, create it along with an initial
//     version carrying that hash and no changes.
//  3. Otherwise compare the new hash against the latest version's. If
//     equal, only bump LastSeenAt. If different, classify the field-wise
//     changes and append a new version.
//
// now is passed in rather than taken from time.Now so callers can make the
// operation deterministic in tests.
func (s *Store) UpsertTrialAndVersion(ctx context.Context, accession string, raw trial.Raw, now time.Time) (trial.Version, error) {
	logger := logging.Trial(accession)
	hash := ContentHash(raw)

	var result trial.Version
	err := s.Tx.WithTrialTx(ctx, accession, func(ctx context.Context, ts store.TrialStore) error {
		normalized, scalars, warnings := trial.Normalize(accession, raw)
		normalized.LastSeenAt = now

		existing, ok, err := ts.GetTrial(ctx, accession)
		if err != nil {
			return errkind.New(errkind.IntegrityError, accession, "lookup trial", err)
		}

		if !ok {
			v := trial.Version{
				TrialID:     accession,
				CapturedAt:  now,
				Raw:         raw,
				ContentHash: hash,
				Scalars:     scalars,
				Warnings:    warnings,
			}
			if err := ts.CreateTrialAndVersion(ctx, normalized, v); err != nil {
				return errkind.New(errkind.IntegrityError, accession, "create trial and initial version", err)
			}
			logger.Info().Str("content_hash", hash).Msg("trial ingested for the first time")
			result = v
			return nil
		}

		latest, hasVersion, err := ts.LatestVersion(ctx, accession)
		if err != nil {
			return errkind.New(errkind.IntegrityError, accession, "lookup latest version", err)
		}

		if hasVersion && latest.ContentHash == hash {
			if err := ts.TouchLastSeen(ctx, accession, now); err != nil {
				return errkind.New(errkind.IntegrityError, accession, "touch last_seen_at", err)
			}
			logger.Debug().Msg("trial unchanged since last version")
			result = latest
			return nil
		}

		var changes []trial.Change
		if hasVersion {
			changes = Classify(latest.Raw, raw)
		}

		// Carry forward the existing sponsor resolution link; a content
		// change never clears it (re-resolution is the sponsor
		// resolver's job, not the version store's).
		normalized.SponsorCompanyID = existing.SponsorCompanyID

		v := trial.Version{
			TrialID:     accession,
			CapturedAt:  now,
			Raw:         raw,
			ContentHash: hash,
			Scalars:     scalars,
			Changes:     changes,
			Warnings:    warnings,
		}
		if err := ts.AppendVersion(ctx, normalized, v); err != nil {
			return errkind.New(errkind.IntegrityError, accession, "append new version", err)
		}
		logger.Info().Str("content_hash", hash).Int("changes", len(changes)).Msg("trial version appended")
		result = v
		return nil
	})
	if err != nil {
		return trial.Version{}, err
	}
	return result, nil
}

// LinkSponsorCompany records a sponsor-resolver accept against the
// trial's persisted record, in its own nested transactional scope.
func (s *Store) LinkSponsorCompany(ctx context.Context, trialID string, companyID int64) error {
	return s.Tx.WithTrialTx(ctx, trialID, func(ctx context.Context, ts store.TrialStore) error {
		if err := ts.SetSponsorCompany(ctx, trialID, companyID); err != nil {
			return errkind.New(errkind.IntegrityError, trialID, "link sponsor company", err)
		}
		return nil
	})
}
