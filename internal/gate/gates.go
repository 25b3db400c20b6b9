package gate

import (
	"fmt"

	"github.com/daniyal-rahman/ncfd/internal/signal"
)

// Config is one gate's configured likelihood ratio, with optional
// severity-indexed overrides (§4.7, §6: "gates: {Gk: {lr, by_severity?}}").
type Config struct {
	LR          float64                     `yaml:"lr"`
	BySeverity  map[signal.Severity]float64 `yaml:"by_severity,omitempty"`
}

// Configs maps every gate id to its Config, the shape loaded from YAML.
type Configs map[ID]Config

// DefaultConfigs returns baseline LRs for all four gates, matching the
// scenario worked in §8 (G1 by_severity {H:8.0, M:3.0}).
func DefaultConfigs() Configs {
	return Configs{
		G1AlphaMeltdown:  {LR: 5.0, BySeverity: map[signal.Severity]float64{signal.SeverityHigh: 8.0, signal.SeverityMedium: 3.0}},
		G2AnalysisGaming: {LR: 4.0, BySeverity: map[signal.Severity]float64{signal.SeverityHigh: 6.0, signal.SeverityMedium: 2.5}},
		G3Plausibility:   {LR: 3.0, BySeverity: map[signal.Severity]float64{signal.SeverityHigh: 5.0, signal.SeverityMedium: 2.0}},
		G4PHacking:       {LR: 3.5, BySeverity: map[signal.Severity]float64{signal.SeverityHigh: 6.0, signal.SeverityMedium: 2.5}},
	}
}

// definition is a gate's supporting-signal conjunction, expressed as a
// required AND-set plus an optional OR-set (§4.7: "fires iff S5 present
// AND (S7 OR S6) present" generalizes to "AND" required, "OR" optional).
type definition struct {
	id       ID
	required []signal.ID
	optional []signal.ID // if non-empty, at least one must be present
}

var definitions = []definition{
	{id: G1AlphaMeltdown, required: []signal.ID{signal.S1, signal.S2}},
	{id: G2AnalysisGaming, required: []signal.ID{signal.S3, signal.S4}},
	{id: G3Plausibility, required: []signal.ID{signal.S5}, optional: []signal.ID{signal.S7, signal.S6}},
	{id: G4PHacking, required: []signal.ID{signal.S8}, optional: []signal.ID{signal.S1, signal.S3}},
}

// Evaluate runs every gate definition against a present-signal set
// (fired primitive results keyed by id) and the configured LRs,
// producing the GateEval list §9 calls for.
func Evaluate(present map[signal.ID]signal.Result, configs Configs, lrMin, lrMax float64) []Eval {
	out := make([]Eval, 0, len(definitions))
	for _, def := range definitions {
		out = append(out, evaluateOne(def, present, configs[def.id], lrMin, lrMax))
	}
	return out
}

func evaluateOne(def definition, present map[signal.ID]signal.Result, cfg Config, lrMin, lrMax float64) Eval {
	var supporting []signal.ID
	for _, id := range def.required {
		r, ok := present[id]
		if !ok || !r.Fired {
			return Eval{GateID: def.id, Fired: false, Rationale: fmt.Sprintf("required signal %s absent", id)}
		}
		supporting = append(supporting, id)
	}
	if len(def.optional) > 0 {
		matched := false
		for _, id := range def.optional {
			if r, ok := present[id]; ok && r.Fired {
				supporting = append(supporting, id)
				matched = true
			}
		}
		if !matched {
			return Eval{GateID: def.id, Fired: false, Rationale: "none of the optional supporting signals present"}
		}
	}

	lr := maxSeverityLR(supporting, present, cfg)
	if lr < lrMin {
		lr = lrMin
	}
	if lr > lrMax {
		lr = lrMax
	}

	evidence := make([]string, 0, len(supporting))
	for _, id := range supporting {
		if r, ok := present[id]; ok {
			evidence = append(evidence, r.EvidenceIDs...)
		}
	}

	return Eval{
		GateID: def.id, Fired: true, SupportingSignals: supporting, SupportingEvidence: evidence,
		LRUsed: lr, Rationale: fmt.Sprintf("%s fired via %v", def.id, supporting),
	}
}

// maxSeverityLR picks, across every supporting signal's severity, the
// highest severity-indexed LR configured (§4.7: "the maximum
// severity-indexed LR is used (precision-first / conservative)"),
// falling back to the gate's baseline LR when no override matches or no
// overrides are configured.
func maxSeverityLR(supporting []signal.ID, present map[signal.ID]signal.Result, cfg Config) float64 {
	best := cfg.LR
	for _, id := range supporting {
		r, ok := present[id]
		if !ok {
			continue
		}
		if lr, ok := cfg.BySeverity[r.Severity]; ok && lr > best {
			best = lr
		}
	}
	return best
}
