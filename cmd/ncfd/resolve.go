package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/daniyal-rahman/ncfd/internal/sponsor"
	"github.com/daniyal-rahman/ncfd/internal/store"
	"github.com/daniyal-rahman/ncfd/internal/store/postgres"
)

func newResolveCmd() *cobra.Command {
	var trialID, sponsorTextOverride string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Re-run sponsor resolution for a single trial",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if trialID == "" {
				return fmt.Errorf("--trial is required")
			}
			db, err := postgres.Open(root.DatabaseDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			trialRepo := postgres.NewTrialRepo(db)
			sponsorRepo := postgres.NewSponsorRepo(db, root.Resolver.CandidateTopK)
			resolver := sponsor.NewResolver(sponsorRepo, sponsorRepo)
			resolver.RunID = "manual-resolve"

			ctx := cmd.Context()
			now := time.Now()

			return trialRepo.WithTrialTx(ctx, trialID, func(ctx context.Context, ts store.TrialStore) error {
				t, ok, err := ts.GetTrial(ctx, trialID)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("trial %s not found", trialID)
				}

				text := t.SponsorText
				if sponsorTextOverride != "" {
					text = sponsorTextOverride
				}

				res, err := resolver.Resolve(ctx, trialID, text, now)
				if err != nil {
					return err
				}

				log.Info().
					Str("trial_id", trialID).
					Str("decision", string(res.Decision.Decision)).
					Str("method", res.Decision.Method).
					Float64("score", res.Decision.Score).
					Msg("resolve complete")

				if res.Decision.Decision == sponsor.DecisionAccept && res.CompanyID != nil {
					return ts.SetSponsorCompany(ctx, trialID, *res.CompanyID)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&trialID, "trial", "", "trial accession to resolve")
	cmd.Flags().StringVar(&sponsorTextOverride, "sponsor-text", "", "override the stored sponsor text")
	return cmd
}
