package sponsor

import (
	"context"
	"time"

	"github.com/daniyal-rahman/ncfd/internal/errkind"
)

// ReviewQueue is the persistence surface for the human-review workflow
// (§5.3): decisions landing in the REVIEW band are queued here until a
// human (or an LLM collaborator awaiting human confirmation, §5.4)
// labels them.
type ReviewQueue interface {
	ListPending(ctx context.Context, limit int) ([]ReviewItem, error)
	SaveLabel(ctx context.Context, label Label) (int64, error)
	ApplyCompanyToTrial(ctx context.Context, trialID string, companyID int64) error
}

// ReviewService exposes the operator-facing review actions (§5.3).
type ReviewService struct {
	Queue ReviewQueue
}

// NewReviewService constructs a ReviewService.
func NewReviewService(q ReviewQueue) *ReviewService {
	return &ReviewService{Queue: q}
}

// ListPending returns the next batch of queued review items, oldest
// first, for an operator or review UI to work through.
func (s *ReviewService) ListPending(ctx context.Context, limit int) ([]ReviewItem, error) {
	return s.Queue.ListPending(ctx, limit)
}

// AcceptReview labels a pending decision as resolved to companyID,
// applies the resolution to the trial, and records the label for the
// feedback loop that eventually retrains the scorer's weights (§5.3,
// §5.4).
func (s *ReviewService) AcceptReview(ctx context.Context, decisionID int64, trialID string, companyID int64, labeler string, now time.Time) error {
	if _, err := s.Queue.SaveLabel(ctx, Label{DecisionID: decisionID, CompanyID: &companyID, Labeler: labeler, LabeledAt: now}); err != nil {
		return errkind.New(errkind.IntegrityError, trialID, "save review label", err)
	}
	return s.Queue.ApplyCompanyToTrial(ctx, trialID, companyID)
}

// RejectReview labels a pending decision as "none of the candidates" —
// no company is applied to the trial, but the label is still recorded
// (§5.3). The resolver does not read labels, so a later run can propose
// the same candidate again.
func (s *ReviewService) RejectReview(ctx context.Context, decisionID int64, trialID, labeler string, now time.Time) error {
	_, err := s.Queue.SaveLabel(ctx, Label{DecisionID: decisionID, CompanyID: nil, Labeler: labeler, LabeledAt: now})
	if err != nil {
		return errkind.New(errkind.IntegrityError, trialID, "save review rejection label", err)
	}
	return nil
}
