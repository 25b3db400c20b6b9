package gate

// TrialMeta is the slice of trial metadata the prior-construction table
// reacts to (§4.7: "Prior construction from trial metadata").
type TrialMeta struct {
	Pivotal     bool
	Oncology    bool
	RareDisease bool
	Phase       string // "1", "2", "3", "2/3", ...
}

// PriorConfig is the global default prior plus the floor/ceiling clamp
// bounds (§6 `global: {prior_floor, prior_ceil, ...}`).
type PriorConfig struct {
	Default   float64 `yaml:"default"`
	PriorFloor float64 `yaml:"prior_floor"`
	PriorCeil  float64 `yaml:"prior_ceil"`
}

// DefaultPriorConfig returns the conventional global prior and clamp
// bounds (§8 worked example uses π=0.15 as a representative prior).
func DefaultPriorConfig() PriorConfig {
	return PriorConfig{Default: 0.15, PriorFloor: 0.02, PriorCeil: 0.80}
}

// BuildPrior applies the multiplicative adjustment table (§4.7: "pivotal
// ×1.2, oncology ×1.1, rare-disease ×0.9, Phase 3 ×1.1, Phase 1 ×0.8")
// around the global default, returning both the raw and clamped values.
func BuildPrior(meta TrialMeta, cfg PriorConfig) (raw, clamped float64) {
	p := cfg.Default
	if meta.Pivotal {
		p *= 1.2
	}
	if meta.Oncology {
		p *= 1.1
	}
	if meta.RareDisease {
		p *= 0.9
	}
	switch meta.Phase {
	case "3", "2/3":
		p *= 1.1
	case "1":
		p *= 0.8
	}
	raw = p
	clamped = p
	if clamped < cfg.PriorFloor {
		clamped = cfg.PriorFloor
	}
	if clamped > cfg.PriorCeil {
		clamped = cfg.PriorCeil
	}
	return raw, clamped
}
