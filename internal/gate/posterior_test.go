package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/daniyal-rahman/ncfd/internal/signal"
)

func TestScore_WorkedExampleG1HighSeverity(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Global.Prior.Default = 0.15
	cfg.Global.Prior.PriorFloor = 0.0
	cfg.Global.Prior.PriorCeil = 1.0

	meta := TrialMeta{} // no multiplicative adjustments -> prior stays 0.15

	present := map[signal.ID]signal.Result{
		signal.S1: {ID: signal.S1, Fired: true, Severity: signal.SeverityHigh},
		signal.S2: {ID: signal.S2, Fired: true, Severity: signal.SeverityHigh},
	}

	audit := Score(meta, present, SubFlags{}, cfg)

	assert.InDelta(t, 0.15, audit.PriorClamped, 1e-9)
	assert.InDelta(t, -1.7346, logit(audit.PriorClamped), 1e-3)
	assert.InDelta(t, 8.0, findGate(t, audit.Gates, G1AlphaMeltdown).LRUsed, 1e-9)
	assert.InDelta(t, 2.0794, audit.SumLogLR, 1e-3)
	assert.InDelta(t, 0.3448, audit.LogitPost, 1e-3)
	assert.InDelta(t, 0.585, audit.PFail, 1e-3)
}

func TestScore_NoGatesFiredKeepsPriorAsPosterior(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Global.Prior.Default = 0.15
	cfg.Global.Prior.PriorFloor = 0.0
	cfg.Global.Prior.PriorCeil = 1.0

	audit := Score(TrialMeta{}, map[signal.ID]signal.Result{}, SubFlags{}, cfg)
	assert.Equal(t, 0.0, audit.SumLogLR)
	assert.InDelta(t, 0.15, audit.PFail, 1e-6)
	assert.Empty(t, audit.StopRuleHits)
}

func TestScore_StopRuleRaisesPosteriorButNeverLowersIt(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Global.Prior.Default = 0.9999
	cfg.Global.Prior.PriorFloor = 0.0
	cfg.Global.Prior.PriorCeil = 1.0

	present := map[signal.ID]signal.Result{
		signal.S1: {ID: signal.S1, Fired: true, Severity: signal.SeverityHigh},
	}
	flags := SubFlags{PostLPR: true}

	audit := Score(TrialMeta{}, present, flags, cfg)
	assert.GreaterOrEqual(t, audit.PFail, cfg.StopRules[RuleEndpointSwitchedAfterLPR].Level)

	// a high prior that already exceeds the rule's level must not be pulled down
	assert.GreaterOrEqual(t, audit.PFail, 0.90)
}

func TestScore_StopRuleLiftsLowPosteriorToItsLevel(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Global.Prior.Default = 0.01
	cfg.Global.Prior.PriorFloor = 0.0
	cfg.Global.Prior.PriorCeil = 1.0

	flags := SubFlags{SubjectiveUnblinded: true}
	audit := Score(TrialMeta{}, map[signal.ID]signal.Result{}, flags, cfg)
	assert.Equal(t, cfg.StopRules[RuleUnblindedSubjectivePrimaryFeasible].Level, audit.PFail)
	assert.Len(t, audit.StopRuleHits, 1)
}

func TestBuildPrior_AppliesMultiplicativeAdjustmentsAndClamps(t *testing.T) {
	cfg := DefaultPriorConfig()
	raw, clamped := BuildPrior(TrialMeta{Pivotal: true, Oncology: true, Phase: "3"}, cfg)
	assert.InDelta(t, cfg.Default*1.2*1.1*1.1, raw, 1e-9)
	assert.LessOrEqual(t, clamped, cfg.PriorCeil)
	assert.GreaterOrEqual(t, clamped, cfg.PriorFloor)
}

func findGate(t *testing.T, evals []Eval, id ID) Eval {
	t.Helper()
	for _, e := range evals {
		if e.GateID == id {
			return e
		}
	}
	t.Fatalf("gate %s not found", id)
	return Eval{}
}
