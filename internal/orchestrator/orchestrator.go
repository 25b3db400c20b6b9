// Package orchestrator ties the registry client, trial normalizer,
// version store, and sponsor resolver into the batch ingestion job
// described in §5: independent per-trial tasks, no shared mutable state
// beyond the relational store, no ordering guarantee across trials.
package orchestrator

import (
	"context"
	"time"

	"github.com/daniyal-rahman/ncfd/internal/logging"
	"github.com/daniyal-rahman/ncfd/internal/registry"
	"github.com/daniyal-rahman/ncfd/internal/runid"
	"github.com/daniyal-rahman/ncfd/internal/sponsor"
	"github.com/daniyal-rahman/ncfd/internal/trial"
	"github.com/daniyal-rahman/ncfd/internal/version"
)

// StudySource is the per-page pull interface a registry iterator
// exposes; it lets tests drive the orchestrator without a live HTTP
// client (*registry.StudyIterator satisfies this by its method set).
type StudySource interface {
	Next(ctx context.Context) (trial.Raw, bool)
	Err() error
}

// Fetcher abstracts registry pagination so the orchestrator can be
// exercised against a fake (§4.1).
type Fetcher interface {
	IterateStudies(since string, pageSize int) StudySource
}

// registryFetcher adapts *registry.Client to Fetcher; the concrete
// client's IterateStudies returns *registry.StudyIterator, which
// satisfies StudySource structurally but not the Fetcher interface's
// exact return type without this thin wrapper.
type registryFetcher struct{ c *registry.Client }

func (f registryFetcher) IterateStudies(since string, pageSize int) StudySource {
	return f.c.IterateStudies(since, pageSize)
}

// Orchestrator runs one ingestion batch: page the registry, normalize
// and version each trial, then resolve its sponsor.
type Orchestrator struct {
	Registry Fetcher
	Versions *version.Store
	Resolver *sponsor.Resolver
	Clock    func() time.Time
}

// New wires the three collaborators together with the real wall clock.
func New(reg *registry.Client, versions *version.Store, resolver *sponsor.Resolver) *Orchestrator {
	return &Orchestrator{Registry: registryFetcher{reg}, Versions: versions, Resolver: resolver, Clock: time.Now}
}

// TrialError pairs a trial accession with the error encountered while
// processing it; a per-trial error never aborts the batch (§5, §7).
type TrialError struct {
	TrialID string
	Err     error
}

// RunSummary is the batch's run report: counts plus every per-trial
// error encountered (§3 "run summary with counts/errors/elapsed").
type RunSummary struct {
	RunID              string
	Since              string
	Started, Finished  time.Time
	TrialsSeen         int
	TrialsFiltered     int
	TrialsProcessed    int
	TrialsWithChanges  int
	SponsorAccepted    int
	SponsorReview      int
	SponsorRejected    int
	Errors             []TrialError
}

// Elapsed returns the batch's wall-clock duration.
func (s RunSummary) Elapsed() time.Duration { return s.Finished.Sub(s.Started) }

// RunBatch pages every study since the given cursor, ingests it into the
// version store, and resolves its sponsor, continuing past per-trial
// failures (§5: "one bad record aborts only itself").
func (o *Orchestrator) RunBatch(ctx context.Context, since string) RunSummary {
	now := o.Clock()
	runID := runid.New("ingest", now)
	o.Resolver.RunID = runID
	logger := logging.Run(runID)

	summary := RunSummary{RunID: runID, Since: since, Started: now}

	it := o.Registry.IterateStudies(since, 0)
	for {
		select {
		case <-ctx.Done():
			summary.Errors = append(summary.Errors, TrialError{Err: ctx.Err()})
			summary.Finished = o.Clock()
			return summary
		default:
		}

		raw, ok := it.Next(ctx)
		if !ok {
			break
		}
		summary.TrialsSeen++

		if !registry.PassesFilter(raw) {
			summary.TrialsFiltered++
			continue
		}

		accession := accessionOf(raw)
		if accession == "" {
			summary.Errors = append(summary.Errors, TrialError{Err: errNoAccession})
			continue
		}

		if err := o.processTrial(ctx, accession, raw, now, &summary); err != nil {
			logger.Error().Err(err).Str("trial_id", accession).Msg("trial processing failed")
			summary.Errors = append(summary.Errors, TrialError{TrialID: accession, Err: err})
		}
	}

	if err := it.Err(); err != nil {
		summary.Errors = append(summary.Errors, TrialError{Err: err})
	}

	summary.Finished = o.Clock()
	logger.Info().
		Int("trials_seen", summary.TrialsSeen).
		Int("trials_processed", summary.TrialsProcessed).
		Int("errors", len(summary.Errors)).
		Dur("elapsed", summary.Elapsed()).
		Msg("ingestion batch complete")
	return summary
}

func (o *Orchestrator) processTrial(ctx context.Context, accession string, raw trial.Raw, now time.Time, summary *RunSummary) error {
	v, err := o.Versions.UpsertTrialAndVersion(ctx, accession, raw, now)
	if err != nil {
		return err
	}
	summary.TrialsProcessed++
	if len(v.Changes) > 0 {
		summary.TrialsWithChanges++
	}

	normalized, _, _ := trial.Normalize(accession, raw)
	if normalized.SponsorText == "" {
		return nil
	}

	result, err := o.Resolver.Resolve(ctx, accession, normalized.SponsorText, now)
	if err != nil {
		return err
	}
	switch result.Decision.Decision {
	case sponsor.DecisionAccept:
		summary.SponsorAccepted++
		if result.CompanyID != nil {
			if err := o.Versions.LinkSponsorCompany(ctx, accession, *result.CompanyID); err != nil {
				return err
			}
		}
	case sponsor.DecisionReview:
		summary.SponsorReview++
	default:
		summary.SponsorRejected++
	}
	return nil
}

func accessionOf(raw trial.Raw) string {
	protocol, ok := trial.GetMap(raw, "protocolSection")
	if !ok {
		return ""
	}
	ident, ok := trial.GetMap(protocol, "identificationModule")
	if !ok {
		return ""
	}
	id, _ := trial.GetString(ident, "nctId")
	return id
}

var errNoAccession = errNoAccessionSentinel{}

type errNoAccessionSentinel struct{}

func (errNoAccessionSentinel) Error() string { return "registry record carries no nctId" }
