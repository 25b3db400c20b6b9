package gate

import "github.com/daniyal-rahman/ncfd/internal/signal"

// SubFlags carries the opaque sub-signal keys the three reference stop
// rules consult (§7: "their producers are unclear; treat them as opaque
// additional keys in the present-signal set").
type SubFlags struct {
	PostLPR            bool // S1_post_LPR
	ITTMissingOver20Pct bool // S4_gt20_missing
	SubjectiveUnblinded bool // S8_subj_unblinded
}

// StopRuleConfig is one rule's forced probability level, loadable from
// YAML per §6 (`stop_rules: {id: {level}}`).
type StopRuleConfig struct {
	Level float64 `yaml:"level"`
}

// StopRuleConfigs maps every rule id to its configured level.
type StopRuleConfigs map[string]StopRuleConfig

const (
	RuleEndpointSwitchedAfterLPR           = "endpoint_switched_after_LPR"
	RulePPOnlySuccessMissingITTOver20       = "pp_only_success_with_missing_itt_gt20"
	RuleUnblindedSubjectivePrimaryFeasible  = "unblinded_subjective_primary_feasible_blinding"
)

// DefaultStopRuleConfigs returns the three reference rules at their
// conventional forced levels.
func DefaultStopRuleConfigs() StopRuleConfigs {
	return StopRuleConfigs{
		RuleEndpointSwitchedAfterLPR:          {Level: 0.90},
		RulePPOnlySuccessMissingITTOver20:     {Level: 0.85},
		RuleUnblindedSubjectivePrimaryFeasible: {Level: 0.80},
	}
}

// EvaluateStopRules applies the three reference rules (§4.7, §7) against
// the present-signal set and its opaque sub-flags, returning every rule
// that hit. Hits are monotone by construction (posterior.go only ever
// raises p toward max(rule.level)); this function itself does not touch
// the posterior.
func EvaluateStopRules(present map[signal.ID]signal.Result, flags SubFlags, cfg StopRuleConfigs) []StopRuleHit {
	var hits []StopRuleHit

	if fired(present, signal.S1) && flags.PostLPR {
		hits = append(hits, hit(RuleEndpointSwitchedAfterLPR, cfg, 1))
	}
	if fired(present, signal.S4) && flags.ITTMissingOver20Pct {
		hits = append(hits, hit(RulePPOnlySuccessMissingITTOver20, cfg, 1))
	}
	if flags.SubjectiveUnblinded {
		hits = append(hits, hit(RuleUnblindedSubjectivePrimaryFeasible, cfg, 1))
	}
	return hits
}

func fired(present map[signal.ID]signal.Result, id signal.ID) bool {
	r, ok := present[id]
	return ok && r.Fired
}

func hit(ruleID string, cfg StopRuleConfigs, evidenceCount int) StopRuleHit {
	return StopRuleHit{RuleID: ruleID, Level: cfg[ruleID].Level, EvidenceCount: evidenceCount}
}
