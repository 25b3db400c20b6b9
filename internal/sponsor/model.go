// Package sponsor resolves a trial's free-text sponsor string to a
// canonical Company/Asset entity, via a deterministic pass followed by a
// probabilistic scorer, with a human-review queue for the uncertain band.
package sponsor

import "time"

// Company is a canonical sponsor entity (§5.1).
type Company struct {
	ID         int64
	Name       string
	Domain     string // registered web domain, used by the domain_root_match feature
	Ticker     string // empty when not publicly traded
	IsAcademic bool
	IsGovernment bool
}

// CompanyAlias is a known alternate spelling/acronym for a Company,
// matched exactly in the deterministic pass (§5.1).
type CompanyAlias struct {
	ID        int64
	CompanyID int64
	Alias     string
}

// Asset links a Company to a named drug/biologic program (§5.1). Assets
// exist so catalyst windows and document links can be scoped tighter than
// "this sponsor" when a sponsor runs more than one pivotal program.
type Asset struct {
	ID        int64
	CompanyID int64
	Name      string
}

// AssetAlias is a known alternate spelling for an Asset.
type AssetAlias struct {
	ID      int64
	AssetID int64
	Alias   string
}

// Decision records the outcome of resolving one sponsor string on one
// trial (§5.2, §5.3).
type Decision string

const (
	DecisionAccept Decision = "ACCEPT" // score >= accept threshold, auto-applied
	DecisionReview Decision = "REVIEW" // in the uncertain band, queued for a human
	DecisionReject Decision = "REJECT" // score < review_low (or no candidate), no company assigned
)

// ResolverDecision is the audit row written for every resolution attempt,
// whether deterministic or probabilistic (§4.4, §6). Append-only.
type ResolverDecision struct {
	ID          int64
	RunID       string
	TrialID     string
	SponsorText string
	CompanyID   *int64
	Decision    Decision
	Score       float64  // p_top
	Top2Margin  float64  // p_top - p_second; 1.0 for deterministic matches
	Method      string   // "det:exact" | "det:alias" | "probabilistic"
	DecidedBy   string   // "system" | "human" | "llm"
	Notes       string
	DecidedAt   time.Time
}

// Features is the fixed feature vector the probabilistic scorer consumes
// (§5.2). Every field is pre-normalized to [0,1] except AcronymExact and
// TickerStringHit, which are boolean signals encoded as 0/1.
type Features struct {
	JWPrimary            float64 // Jaro-Winkler similarity on the primary normalized name
	TokenSetRatio         float64 // token-set overlap ratio
	AcronymExact          float64 // 1 if sponsor text matches a company acronym exactly
	DomainRootMatch       float64 // 1 if sponsor text's implied domain root matches Company.Domain
	TickerStringHit       float64 // 1 if sponsor text contains Company.Ticker as a distinct token
	AcademicKeywordPenalty float64 // 1 if sponsor text hits an academic/government keyword
	StrongTokenOverlap    float64 // 1 if every significant token in the shorter name appears in the longer
}

// ReviewItem is a queued pending decision awaiting a human label (§5.3).
type ReviewItem struct {
	Decision  ResolverDecision
	Candidate Company
	Features  Features
	QueuedAt  time.Time
}

// Label is a human (or LLM-collaborator, pending human confirmation)
// verdict recorded against a ResolverDecision (§5.3, §5.4).
type Label struct {
	ID         int64
	DecisionID int64
	CompanyID  *int64 // nil means "none of the candidates, reject"
	Labeler    string
	LabeledAt  time.Time
}
