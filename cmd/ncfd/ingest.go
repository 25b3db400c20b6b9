package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/daniyal-rahman/ncfd/internal/orchestrator"
	"github.com/daniyal-rahman/ncfd/internal/registry"
	"github.com/daniyal-rahman/ncfd/internal/sponsor"
	"github.com/daniyal-rahman/ncfd/internal/store/postgres"
	"github.com/daniyal-rahman/ncfd/internal/version"
)

func newIngestCmd() *cobra.Command {
	var since string
	var useCursor bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Run one registry ingestion batch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := postgres.Open(root.DatabaseDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			trialRepo := postgres.NewTrialRepo(db)
			sponsorRepo := postgres.NewSponsorRepo(db, root.Resolver.CandidateTopK)
			cursorRepo := postgres.NewCursorRepo(db)

			ctx := cmd.Context()
			if useCursor && since == "" {
				if cur, ok, err := orchestrator.CurrentSince(ctx, cursorRepo); err != nil {
					return err
				} else if ok {
					since = cur
				}
			}

			reg := registry.New(root.Registry)
			versions := version.NewStore(trialRepo)
			resolver := sponsor.NewResolver(sponsorRepo, sponsorRepo)
			resolver.Config = sponsor.Config{
				AcceptThreshold: root.Resolver.TauAccept,
				ReviewLow:       root.Resolver.ReviewLow,
				MinTop2Margin:   root.Resolver.MinTop2Margin,
				Intercept:       root.Resolver.Intercept,
				Weights: sponsor.FeatureWeights{
					JWPrimary:              root.Resolver.Weights["jw_primary"],
					TokenSetRatio:          root.Resolver.Weights["token_set_ratio"],
					AcronymExact:           root.Resolver.Weights["acronym_exact"],
					DomainRootMatch:        root.Resolver.Weights["domain_root_match"],
					TickerStringHit:        root.Resolver.Weights["ticker_string_hit"],
					AcademicKeywordPenalty: root.Resolver.Weights["academic_keyword_penalty"],
					StrongTokenOverlap:     root.Resolver.Weights["strong_token_overlap"],
				},
			}

			orch := orchestrator.New(reg, versions, resolver)
			summary := orch.RunBatch(ctx, since)

			log.Info().
				Int("trials_seen", summary.TrialsSeen).
				Int("trials_processed", summary.TrialsProcessed).
				Int("trials_filtered", summary.TrialsFiltered).
				Int("errors", len(summary.Errors)).
				Dur("elapsed", summary.Elapsed()).
				Msg("ingest complete")

			if useCursor {
				if err := orchestrator.AdvanceCursor(ctx, cursorRepo, summary.Finished); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "only fetch studies last updated on or after this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&useCursor, "cursor", true, "resume from and advance the persisted ingestion cursor")
	return cmd
}
