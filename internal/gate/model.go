// Package gate implements the Gate & Posterior Engine (§4.7): gates
// composing signal conjunctions, monotone stop rules, and the
// logit-space Bayesian combiner producing a final p_fail with a full
// audit trail.
package gate

import "github.com/daniyal-rahman/ncfd/internal/signal"

// ID names one of the four composed gates (§4.7).
type ID string

const (
	G1AlphaMeltdown  ID = "G1"
	G2AnalysisGaming ID = "G2"
	G3Plausibility   ID = "G3"
	G4PHacking       ID = "G4"
)

// Eval is a single gate's evaluation result (§9: "Collapse to one
// [gate-evaluation API]: evaluate gates from a present-signal set plus
// an evidence map, and return GateEval{...}").
type Eval struct {
	GateID            ID
	Fired             bool
	SupportingSignals []signal.ID
	SupportingEvidence []string
	LRUsed            float64
	Rationale         string
}

// StopRuleHit records one stop rule firing (§4.7, §7).
type StopRuleHit struct {
	RuleID        string
	Level         float64
	EvidenceCount int
}

// Audit is the full ScoreResult audit trail produced with every scoring
// run (§4.7).
type Audit struct {
	ConfigRevision string
	LRMin, LRMax   float64
	LogitMin, LogitMax float64
	PriorRaw, PriorClamped float64
	Gates          []Eval
	SumLogLR       float64
	LogitPost      float64
	PFail          float64
	StopRuleHits   []StopRuleHit
}
