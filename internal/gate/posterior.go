package gate

import (
	"math"

	"github.com/daniyal-rahman/ncfd/internal/signal"
)

// Score runs the full §4.7 pipeline: prior construction, gate
// evaluation, logit-space combination, and the monotone stop-rule
// override, producing the audit trail persisted as a ScoreResult.
func Score(meta TrialMeta, present map[signal.ID]signal.Result, subFlags SubFlags, cfg EngineConfig) Audit {
	priorRaw, priorClamped := BuildPrior(meta, cfg.Global.Prior)
	logitPrior := logit(priorClamped)

	gates := Evaluate(present, cfg.Gates, cfg.Global.LRMin, cfg.Global.LRMax)

	sumLogLR := 0.0
	for _, g := range gates {
		if !g.Fired {
			continue
		}
		lr := clamp(g.LRUsed, cfg.Global.LRMin, cfg.Global.LRMax)
		sumLogLR += math.Log(lr)
	}

	logitPost := clamp(logitPrior+sumLogLR, cfg.Global.LogitMin, cfg.Global.LogitMax)
	p := sigmoid(logitPost)

	hits := EvaluateStopRules(present, subFlags, cfg.StopRules)
	for _, h := range hits {
		if h.Level > p {
			p = h.Level
		}
	}

	return Audit{
		ConfigRevision: cfg.Revision,
		LRMin:          cfg.Global.LRMin,
		LRMax:          cfg.Global.LRMax,
		LogitMin:       cfg.Global.LogitMin,
		LogitMax:       cfg.Global.LogitMax,
		PriorRaw:       priorRaw,
		PriorClamped:   priorClamped,
		Gates:          gates,
		SumLogLR:       sumLogLR,
		LogitPost:      logitPost,
		PFail:          p,
		StopRuleHits:   hits,
	}
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
