package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/daniyal-rahman/ncfd/internal/gate"
	"github.com/daniyal-rahman/ncfd/internal/signal"
	"github.com/daniyal-rahman/ncfd/internal/store/postgres"
)

// scoreInput is the on-disk shape of a scoring request: the signal
// primitives already evaluated upstream (extraction and the signal
// package are out of this command's scope, §6 Non-goals), plus the
// trial metadata and stop-rule sub-flags the gate engine needs.
type scoreInput struct {
	TrialID  string                   `json:"trial_id"`
	Meta     gate.TrialMeta           `json:"meta"`
	SubFlags gate.SubFlags            `json:"sub_flags"`
	Signals  map[signal.ID]signal.Result `json:"signals"`
}

func newScoreCmd() *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Run the gate & posterior engine over a precomputed signal set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if inputPath == "" {
				return fmt.Errorf("--input is required")
			}
			raw, err := os.ReadFile(inputPath)
			if err != nil {
				return fmt.Errorf("reading %s: %w", inputPath, err)
			}
			var in scoreInput
			if err := json.Unmarshal(raw, &in); err != nil {
				return fmt.Errorf("parsing %s: %w", inputPath, err)
			}
			if in.TrialID == "" {
				return fmt.Errorf("input file must set trial_id")
			}

			cfg := gate.DefaultEngineConfig()
			audit := gate.Score(in.Meta, in.Signals, in.SubFlags, cfg)

			log.Info().
				Str("trial_id", in.TrialID).
				Float64("p_fail", audit.PFail).
				Int("gates_fired", countFired(audit.Gates)).
				Int("stop_rules_hit", len(audit.StopRuleHits)).
				Msg("score complete")

			db, err := postgres.Open(root.DatabaseDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			results := postgres.NewResultRepo(db)
			return results.SaveScore(cmd.Context(), in.TrialID, "manual-score", audit, time.Now())
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "path to a JSON scoring request (trial_id, meta, sub_flags, signals)")
	return cmd
}

func countFired(evals []gate.Eval) int {
	n := 0
	for _, e := range evals {
		if e.Fired {
			n++
		}
	}
	return n
}
