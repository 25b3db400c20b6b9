package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/daniyal-rahman/ncfd/internal/catalyst"
	"github.com/daniyal-rahman/ncfd/internal/store/postgres"
)

// catalystInput is the on-disk shape of a fusion request: the hints a
// study-card extraction run produced plus the sponsor's historical slip
// distribution and the trial's estimated primary completion date.
type catalystInput struct {
	TrialID            string               `json:"trial_id"`
	Hints              []catalyst.StudyHint `json:"hints"`
	Slip               catalyst.SlipStats   `json:"slip"`
	EPCD               time.Time            `json:"epcd"`
	EPCDVersionAgeDays float64              `json:"epcd_version_age_days"`
	Terminal           *catalyst.TerminalEvent `json:"terminal,omitempty"`
}

func newCatalystCmd() *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "catalyst",
		Short: "Fuse study-card date hints into a catalyst window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if inputPath == "" {
				return fmt.Errorf("--input is required")
			}
			raw, err := os.ReadFile(inputPath)
			if err != nil {
				return fmt.Errorf("reading %s: %w", inputPath, err)
			}
			var in catalystInput
			if err := json.Unmarshal(raw, &in); err != nil {
				return fmt.Errorf("parsing %s: %w", inputPath, err)
			}
			if in.TrialID == "" {
				return fmt.Errorf("input file must set trial_id")
			}

			now := time.Now()
			weights := catalyst.Weights{
				ExactDate:        root.Catalyst.ExactDateWeight,
				Quarter:          root.Catalyst.QuarterWeight,
				Half:             root.Catalyst.HalfWeight,
				Year:             root.Catalyst.YearWeight,
				Conference:       root.Catalyst.ConferenceWeight,
				BaseAnchor:       root.Catalyst.BaseAnchorWeight,
				RecencyHalfLife:  root.Catalyst.RecencyHalfLife,
				MaxSlipShiftDays: root.Catalyst.MaxSlipShiftDays,
				MinSlipShiftDays: root.Catalyst.MinSlipShiftDays,
				MaxWidenPadDays:  root.Catalyst.MaxWidenPadDays,
			}

			win := catalyst.Fuse(in.Hints, in.Slip, in.EPCD, in.EPCDVersionAgeDays, in.Terminal, now, weights)

			log.Info().
				Str("trial_id", in.TrialID).
				Time("start", win.Start).
				Time("end", win.End).
				Float64("certainty", win.Certainty).
				Str("basis", win.Basis).
				Msg("catalyst window computed")

			db, err := postgres.Open(root.DatabaseDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			results := postgres.NewResultRepo(db)
			return results.SaveCatalystWindow(cmd.Context(), in.TrialID, win, now)
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "path to a JSON fusion request (trial_id, hints, slip, epcd)")
	return cmd
}
