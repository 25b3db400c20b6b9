// Package catalyst implements the Catalyst Window Engine (§4.8): turns
// study-card date hints, sponsor slip history, and the estimated primary
// completion date into a single fused readout window with a certainty
// score.
package catalyst

import "time"

// HintKind names how a StudyHint's date range was derived from text
// (§4.8).
type HintKind string

const (
	HintExactDate  HintKind = "exact_date"
	HintQuarter    HintKind = "quarter"
	HintHalf       HintKind = "half"
	HintYear       HintKind = "year"
	HintConference HintKind = "conference"
)

// StudyHint is a single parsed date hint pulled from study-card text
// (§4.8, §6 `StudyHint{kind, start, end, weight, raw_text, study_id, url?}`).
type StudyHint struct {
	Kind    HintKind
	Start   time.Time
	End     time.Time
	Weight  float64
	RawText string
	StudyID string
	URL     string

	// PublishedAt is when the source document was published; used to
	// compute hint_age_days for recency weighting. Zero means "now" (no
	// decay applied).
	PublishedAt time.Time
}

// SlipStats is the per-sponsor historical slip distribution (§4.8).
type SlipStats struct {
	MeanSlipDays float64
	P10Days      float64
	P90Days      float64
	NEvents      int
}

// window is an internal candidate date range with a weight, used during
// fusion before certainty is computed.
type window struct {
	start, end time.Time
	weight     float64
	source     string
}

// TerminalEvent overrides all other logic when the trial has reached a
// terminal status with a known event date (§4.8 step 4).
type TerminalEvent struct {
	Status    string // "Completed" or "Terminated"
	EventDate time.Time
}

// Window is the fused output of the Catalyst Window Engine.
type Window struct {
	Start     time.Time
	End       time.Time
	Certainty float64
	Basis     string // describes which windows were fused, or "terminal_event"
}
