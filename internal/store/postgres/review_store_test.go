package postgres

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniyal-rahman/ncfd/internal/sponsor"
)

func newMockReviewRepo(t *testing.T) (*ReviewRepo, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return NewReviewRepo(&DB{sqlx.NewDb(mockDB, "postgres")}), mock
}

func TestListPending_JoinsCandidateCompany(t *testing.T) {
	repo, mock := newMockReviewRepo(t)
	cols := []string{"decision_id", "run_id", "trial_id", "sponsor_text", "score", "top2_margin",
		"method", "decided_by", "company_id", "company_name", "company_domain", "company_ticker", "queued_at"}
	rows := sqlmock.NewRows(cols).AddRow(
		int64(1), "run1", "NCT1", "Somewhat Similar Bio Corp", 0.7, 0.1,
		"probabilistic", "system", int64(5), "Similar Bio Corp", "similarbio.com", "SIMB", time.Now())
	mock.ExpectQuery("SELECT d.id AS decision_id").WillReturnRows(rows)

	items, err := repo.ListPending(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(5), items[0].Candidate.ID)
	assert.Equal(t, "Similar Bio Corp", items[0].Candidate.Name)
}

func TestSaveLabel_ResolvesQueueEntry(t *testing.T) {
	repo, mock := newMockReviewRepo(t)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO resolver_labels").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectExec("UPDATE resolver_review_queue").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	companyID := int64(5)
	id, err := repo.SaveLabel(context.Background(), sponsor.Label{DecisionID: 1, CompanyID: &companyID, Labeler: "human", LabeledAt: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
	require.NoError(t, mock.ExpectationsWereMet())
}
