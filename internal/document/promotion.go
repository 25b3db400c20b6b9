package document

import (
	"context"
	"time"

	"github.com/daniyal-rahman/ncfd/internal/logging"
)

// PromotionConfig holds the auto-promotion gate's knobs (§4.5).
type PromotionConfig struct {
	Enabled            bool    `yaml:"enabled"` // global feature flag
	MinLabeledSample   int     `yaml:"min_labeled_sample"`
	PrecisionThreshold float64 `yaml:"precision_threshold"`
}

// DefaultPromotionConfig returns the spec's stated defaults (§4.5: "a
// minimum labeled set (default 50 links)... a configured threshold
// (default 0.95)").
func DefaultPromotionConfig() PromotionConfig {
	return PromotionConfig{Enabled: false, MinLabeledSample: 50, PrecisionThreshold: 0.95}
}

// LabelStats is the reviewed-label precision evidence for one heuristic,
// computed by whatever stores link-review labels.
type LabelStats struct {
	LinkType     LinkType
	LabeledCount int
	Precision    float64
}

// PromotionAudit is the logged decision for every promotion attempt
// (§4.5: "Every promotion decision is logged with the heuristic,
// precision seen, and labeled count").
type PromotionAudit struct {
	LinkType     LinkType
	Promoted     bool
	Precision    float64
	LabeledCount int
	Reason       string
	DecidedAt    time.Time
}

// PromotionAuditStore persists PromotionAudit rows.
type PromotionAuditStore interface {
	SavePromotionAudit(ctx context.Context, a PromotionAudit) error
}

// Promoter decides, per heuristic, whether its links may be promoted to
// the final cross-reference tables (§4.5's auto-promotion gate).
type Promoter struct {
	Config PromotionConfig
	Audit  PromotionAuditStore
}

// NewPromoter constructs a Promoter with DefaultPromotionConfig.
func NewPromoter(audit PromotionAuditStore) *Promoter {
	return &Promoter{Config: DefaultPromotionConfig(), Audit: audit}
}

// MayPromote reports whether links produced by linkType may be promoted,
// given the reviewed-label stats collected for it so far, and always
// logs the decision.
func (p *Promoter) MayPromote(ctx context.Context, linkType LinkType, stats LabelStats, now time.Time) (bool, error) {
	audit := PromotionAudit{LinkType: linkType, Precision: stats.Precision, LabeledCount: stats.LabeledCount, DecidedAt: now}

	switch {
	case !p.Config.Enabled:
		audit.Reason = "promotion feature flag disabled"
	case stats.LabeledCount < p.Config.MinLabeledSample:
		audit.Reason = "labeled sample below minimum"
	case stats.Precision < p.Config.PrecisionThreshold:
		audit.Reason = "precision below threshold"
	default:
		audit.Promoted = true
		audit.Reason = "precision and sample size meet threshold"
	}

	if err := p.Audit.SavePromotionAudit(ctx, audit); err != nil {
		return false, err
	}
	logging.Run("").Info().
		Str("link_type", string(linkType)).
		Bool("promoted", audit.Promoted).
		Float64("precision", stats.Precision).
		Int("labeled_count", stats.LabeledCount).
		Str("reason", audit.Reason).
		Msg("link promotion decision")
	return audit.Promoted, nil
}

// PromoteLinks filters links down to those whose LinkType passed
// MayPromote, setting Promoted=true on the survivors. Links for a
// LinkType that did not pass are dropped, not merely left unpromoted —
// the pipeline never writes them to the final cross-reference tables
// (§4.5).
func PromoteLinks(links []DocumentLink, eligible map[LinkType]bool) []DocumentLink {
	var out []DocumentLink
	for _, l := range links {
		if eligible[l.LinkType] {
			l.Promoted = true
			out = append(out, l)
		}
	}
	return out
}
