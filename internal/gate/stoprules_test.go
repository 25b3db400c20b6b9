package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/daniyal-rahman/ncfd/internal/signal"
)

func TestEvaluateStopRules_EndpointSwitchedAfterLPRRequiresBothS1AndFlag(t *testing.T) {
	cfg := DefaultStopRuleConfigs()
	present := map[signal.ID]signal.Result{signal.S1: {ID: signal.S1, Fired: true}}

	hits := EvaluateStopRules(present, SubFlags{PostLPR: true}, cfg)
	assert.Len(t, hits, 1)
	assert.Equal(t, RuleEndpointSwitchedAfterLPR, hits[0].RuleID)

	noFlagHits := EvaluateStopRules(present, SubFlags{}, cfg)
	assert.Empty(t, noFlagHits)
}

func TestEvaluateStopRules_PPOnlySuccessRequiresS4AndFlag(t *testing.T) {
	cfg := DefaultStopRuleConfigs()
	present := map[signal.ID]signal.Result{signal.S4: {ID: signal.S4, Fired: true}}

	hits := EvaluateStopRules(present, SubFlags{ITTMissingOver20Pct: true}, cfg)
	assert.Len(t, hits, 1)
	assert.Equal(t, RulePPOnlySuccessMissingITTOver20, hits[0].RuleID)
}

func TestEvaluateStopRules_UnblindedSubjectiveIsStandalone(t *testing.T) {
	cfg := DefaultStopRuleConfigs()
	hits := EvaluateStopRules(map[signal.ID]signal.Result{}, SubFlags{SubjectiveUnblinded: true}, cfg)
	assert.Len(t, hits, 1)
	assert.Equal(t, RuleUnblindedSubjectivePrimaryFeasible, hits[0].RuleID)
}

func TestEvaluateStopRules_MultipleRulesCanHitTogether(t *testing.T) {
	cfg := DefaultStopRuleConfigs()
	present := map[signal.ID]signal.Result{
		signal.S1: {ID: signal.S1, Fired: true},
		signal.S4: {ID: signal.S4, Fired: true},
	}
	hits := EvaluateStopRules(present, SubFlags{PostLPR: true, ITTMissingOver20Pct: true, SubjectiveUnblinded: true}, cfg)
	assert.Len(t, hits, 3)
}
