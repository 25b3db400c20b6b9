package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/daniyal-rahman/ncfd/internal/sponsor"
	"github.com/daniyal-rahman/ncfd/internal/store/postgres"
)

func newReviewCmd() *cobra.Command {
	var accept int64
	var reject bool
	var decisionID int64
	var limit int

	cmd := &cobra.Command{
		Use:   "review",
		Short: "List or label sponsor resolutions queued for human review (§5.3)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := postgres.Open(root.DatabaseDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := sponsor.NewReviewService(postgres.NewReviewRepo(db))
			ctx := cmd.Context()

			if decisionID == 0 {
				pending, err := svc.ListPending(ctx, limit)
				if err != nil {
					return err
				}
				for _, item := range pending {
					fmt.Printf("%d\t%s\t%q\tcandidate=%s (id=%d)\tscore=%.3f\n",
						item.Decision.ID, item.Decision.TrialID, item.Decision.SponsorText,
						item.Candidate.Name, item.Candidate.ID, item.Decision.Score)
				}
				return nil
			}

			now := time.Now()
			if reject {
				return svc.RejectReview(ctx, decisionID, "", "human", now)
			}
			if accept == 0 {
				return fmt.Errorf("--decision requires either --accept <company_id> or --reject")
			}

			pending, err := svc.ListPending(ctx, 1000)
			if err != nil {
				return err
			}
			trialID := ""
			for _, item := range pending {
				if item.Decision.ID == decisionID {
					trialID = item.Decision.TrialID
					break
				}
			}
			if trialID == "" {
				return fmt.Errorf("decision %d is not a pending review item", decisionID)
			}
			return svc.AcceptReview(ctx, decisionID, trialID, accept, "human", now)
		},
	}

	cmd.Flags().Int64Var(&decisionID, "decision", 0, "resolver decision id to label (omit to list pending)")
	cmd.Flags().Int64Var(&accept, "accept", 0, "company id to accept for the given --decision")
	cmd.Flags().BoolVar(&reject, "reject", false, "reject the given --decision (no company assigned)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum pending items to list")
	return cmd
}
