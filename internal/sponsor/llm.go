package sponsor

import (
	"context"
	"time"
)

// Collaborator is the external LLM-assisted disambiguation interface
// (§5.4): given a sponsor string and its candidate companies, it proposes
// which candidate (if any) is correct, with a rationale for the audit
// trail. A concrete implementation (a specific model/provider) is outside
// this system's scope — only the seam and its audit logging live here.
type Collaborator interface {
	Propose(ctx context.Context, sponsorText string, candidates []Company) (Proposal, error)
}

// Proposal is the Collaborator's suggested resolution. CompanyID is nil
// when it proposes none of the candidates apply.
type Proposal struct {
	CompanyID *int64
	Rationale string
	Model     string
}

// LLMLog is the audit row written for every Collaborator call, so every
// proposal that ever influenced a review decision is reconstructable
// (§5.4, §6: resolver_llm_logs).
type LLMLog struct {
	ID          int64
	DecisionID  int64
	Model       string
	ProposedID  *int64
	Rationale   string
	AcceptedByHuman bool
	LoggedAt    time.Time
}

// LLMLogStore persists LLMLog rows.
type LLMLogStore interface {
	SaveLLMLog(ctx context.Context, log LLMLog) (int64, error)
}

// ConsultCollaborator calls the collaborator and records the proposal
// unconditionally, before any human acts on it (§5.4: every LLM proposal
// is logged regardless of outcome). AcceptedByHuman is written as false;
// no review action updates it. A failed Propose call is not logged.
func ConsultCollaborator(ctx context.Context, c Collaborator, logs LLMLogStore, decisionID int64, sponsorText string, candidates []Company, now time.Time) (Proposal, error) {
	proposal, err := c.Propose(ctx, sponsorText, candidates)
	if err != nil {
		return Proposal{}, err
	}
	_, logErr := logs.SaveLLMLog(ctx, LLMLog{
		DecisionID: decisionID,
		Model:      proposal.Model,
		ProposedID: proposal.CompanyID,
		Rationale:  proposal.Rationale,
		LoggedAt:   now,
	})
	if logErr != nil {
		return proposal, logErr
	}
	return proposal, nil
}
