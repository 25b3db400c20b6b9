package sponsor

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"
)

// Config holds the resolver's tunable thresholds and logistic-regression
// weights, following the teacher's Default...Config() constructor idiom
// so every subsystem's knobs are visible in one place and loadable from
// YAML (§4.4, §6).
type Config struct {
	AcceptThreshold float64 `yaml:"accept_threshold"` // τ_accept
	ReviewLow       float64 `yaml:"review_low"`
	MinTop2Margin   float64 `yaml:"min_top2_margin"`

	// Weights is the logistic-regression coefficient for each Features
	// field (§4.4 step 2).
	Weights   FeatureWeights `yaml:"weights"`
	Intercept float64        `yaml:"intercept"`
}

// FeatureWeights names each logistic-regression coefficient explicitly so
// config files are self-documenting rather than a bare positional array.
type FeatureWeights struct {
	JWPrimary              float64 `yaml:"jw_primary"`
	TokenSetRatio          float64 `yaml:"token_set_ratio"`
	AcronymExact           float64 `yaml:"acronym_exact"`
	DomainRootMatch        float64 `yaml:"domain_root_match"`
	TickerStringHit        float64 `yaml:"ticker_string_hit"`
	AcademicKeywordPenalty float64 `yaml:"academic_keyword_penalty"`
	StrongTokenOverlap     float64 `yaml:"strong_token_overlap"`
}

// DefaultConfig returns coefficients hand-tuned against a labeled sample
// (§4.4): the academic/government penalty dominates, acronym and domain
// matches are near-deterministic, and the continuous similarity features
// carry the rest of the weight.
func DefaultConfig() Config {
	return Config{
		AcceptThreshold: 0.90,
		ReviewLow:       0.60,
		MinTop2Margin:   0.15,
		Intercept:       -2.5,
		Weights: FeatureWeights{
			JWPrimary:              4.0,
			TokenSetRatio:          2.5,
			AcronymExact:           3.5,
			DomainRootMatch:        3.0,
			TickerStringHit:        3.0,
			AcademicKeywordPenalty: -6.0,
			StrongTokenOverlap:     1.5,
		},
	}
}

// Score runs the logistic function over the weighted feature sum,
// producing a probability in (0,1) (§4.4 step 3).
func (c Config) Score(f Features) float64 {
	z := c.Intercept +
		c.Weights.JWPrimary*f.JWPrimary +
		c.Weights.TokenSetRatio*f.TokenSetRatio +
		c.Weights.AcronymExact*f.AcronymExact +
		c.Weights.DomainRootMatch*f.DomainRootMatch +
		c.Weights.TickerStringHit*f.TickerStringHit +
		c.Weights.AcademicKeywordPenalty*f.AcademicKeywordPenalty +
		c.Weights.StrongTokenOverlap*f.StrongTokenOverlap
	return 1 / (1 + math.Exp(-z))
}

// CompanyStore is the read surface the resolver needs over the canonical
// company/alias tables (§4.4 stage 1, candidate retrieval).
type CompanyStore interface {
	// FindByExactAlias looks up a normalized sponsor string against
	// canonical company names and aliases (case-folded,
	// punctuation-stripped, corporate-suffix-normalized).
	FindByExactAlias(ctx context.Context, normalizedSponsorText string) (Company, bool, error)

	// CandidateCompanies returns the top-K trigram-similar companies for
	// sponsorText (§4.4 stage 2 step 1); K is the store implementation's
	// concern, not the resolver's.
	CandidateCompanies(ctx context.Context, sponsorText string) ([]Company, error)

	AliasesFor(ctx context.Context, companyIDs []int64) ([]CompanyAlias, error)
}

// DecisionStore persists resolver decisions (§4.4 step 5, §6).
type DecisionStore interface {
	SaveDecision(ctx context.Context, d ResolverDecision) (int64, error)
}

// Resolver runs the two-stage pipeline: deterministic exact/alias match,
// falling back to the probabilistic scorer over candidate companies
// (§4.4).
type Resolver struct {
	Companies CompanyStore
	Decisions DecisionStore
	Config    Config
	RunID     string
}

// NewResolver constructs a Resolver with DefaultConfig.
func NewResolver(companies CompanyStore, decisions DecisionStore) *Resolver {
	return &Resolver{Companies: companies, Decisions: decisions, Config: DefaultConfig()}
}

// Result is what Resolve returns to the caller: the decision plus,
// for ACCEPT, the resolved company id.
type Result struct {
	Decision  ResolverDecision
	CompanyID *int64
}

type scoredCandidate struct {
	company Company
	score   float64
}

// Resolve implements §4.4's full pipeline for one trial's sponsor text:
//  1. Deterministic: exact match on company name or a known alias. If hit,
//     accept immediately with p=1.0, top2_margin=1.0 (method "det:alias").
//  2. Probabilistic: reject outright, without scoring, if sponsorText
//     names an academic/government entity (§4.4's ignore-list policy).
//     Otherwise score every candidate company and rank by p:
//     - p_top >= accept_threshold AND (p_top - p_second) >= min_top2_margin
//       => accept with the top candidate.
//     - else if p_top >= review_low => review, candidate list frozen.
//     - else => reject (not persisted as a ResolverDecision, §4.4 step 5;
//       a zero-value Decision with method "probabilistic" is still
//       returned to the caller for logging, but SaveDecision is skipped).
func (r *Resolver) Resolve(ctx context.Context, trialID, sponsorText string, now time.Time) (Result, error) {
	if strings.TrimSpace(sponsorText) == "" {
		return Result{Decision: ResolverDecision{RunID: r.RunID, TrialID: trialID, SponsorText: sponsorText, Decision: DecisionReject, Method: "det:alias", DecidedBy: "system", DecidedAt: now}}, nil
	}

	if company, ok, err := r.Companies.FindByExactAlias(ctx, normalizeName(sponsorText)); err != nil {
		return Result{}, err
	} else if ok {
		d := ResolverDecision{
			RunID: r.RunID, TrialID: trialID, SponsorText: sponsorText,
			CompanyID: &company.ID, Decision: DecisionAccept,
			Score: 1.0, Top2Margin: 1.0, Method: "det:alias", DecidedBy: "system", DecidedAt: now,
		}
		id, err := r.Decisions.SaveDecision(ctx, d)
		if err != nil {
			return Result{}, err
		}
		d.ID = id
		return Result{Decision: d, CompanyID: &company.ID}, nil
	}

	if IsAcademicOrGovernment(sponsorText) {
		return Result{Decision: ResolverDecision{
			RunID: r.RunID, TrialID: trialID, SponsorText: sponsorText, Decision: DecisionReject,
			Method: "probabilistic", DecidedBy: "system", Notes: "academic/government ignore-list match", DecidedAt: now,
		}}, nil
	}

	candidates, err := r.Companies.CandidateCompanies(ctx, sponsorText)
	if err != nil {
		return Result{}, err
	}
	if len(candidates) == 0 {
		return Result{Decision: ResolverDecision{RunID: r.RunID, TrialID: trialID, SponsorText: sponsorText, Decision: DecisionReject, Method: "probabilistic", DecidedBy: "system", DecidedAt: now}}, nil
	}

	ids := make([]int64, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	aliases, err := r.Companies.AliasesFor(ctx, ids)
	if err != nil {
		return Result{}, err
	}

	ranked := make([]scoredCandidate, len(candidates))
	for i, c := range candidates {
		ranked[i] = scoredCandidate{company: c, score: r.Config.Score(ExtractFeatures(sponsorText, c, aliases))}
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	top := ranked[0]
	margin := 1.0
	if len(ranked) > 1 {
		margin = top.score - ranked[1].score
	}

	decision := DecisionReject
	switch {
	case top.score >= r.Config.AcceptThreshold && margin >= r.Config.MinTop2Margin:
		decision = DecisionAccept
	case top.score >= r.Config.ReviewLow:
		decision = DecisionReview
	}

	if decision == DecisionReject {
		// §4.4 step 5: reject is, by design, not persisted as a decision.
		return Result{Decision: ResolverDecision{
			RunID: r.RunID, TrialID: trialID, SponsorText: sponsorText, Decision: DecisionReject,
			Score: top.score, Top2Margin: margin, Method: "probabilistic", DecidedBy: "system", DecidedAt: now,
		}}, nil
	}

	// The top-ranked candidate is recorded even for REVIEW: it's the
	// pending suggestion a human confirms or rejects, not yet applied
	// to the trial.
	d := ResolverDecision{
		RunID: r.RunID, TrialID: trialID, SponsorText: sponsorText,
		Decision: decision, Score: top.score, Top2Margin: margin,
		CompanyID: &top.company.ID,
		Method:    "probabilistic", DecidedBy: "system", DecidedAt: now,
	}
	id, err := r.Decisions.SaveDecision(ctx, d)
	if err != nil {
		return Result{}, err
	}
	d.ID = id

	res := Result{Decision: d}
	if decision == DecisionAccept {
		res.CompanyID = &top.company.ID
	}
	return res, nil
}
