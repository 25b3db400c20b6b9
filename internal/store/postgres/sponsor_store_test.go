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

func newMockSponsorRepo(t *testing.T) (*SponsorRepo, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return NewSponsorRepo(&DB{sqlx.NewDb(mockDB, "postgres")}, 25), mock
}

func TestFindByExactAlias_Found(t *testing.T) {
	repo, mock := newMockSponsorRepo(t)
	rows := sqlmock.NewRows([]string{"id", "name", "domain", "ticker", "is_academic", "is_government"}).
		AddRow(int64(7), "Acme Therapeutics, Inc.", "acme.com", "ACME", false, false)
	mock.ExpectQuery("SELECT c.id, c.name").WithArgs("acme therapeutics").WillReturnRows(rows)

	c, ok, err := repo.FindByExactAlias(context.Background(), "acme therapeutics")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(7), c.ID)
}

func TestSaveDecision_AcceptDoesNotQueueReview(t *testing.T) {
	repo, mock := newMockSponsorRepo(t)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO resolver_decisions").WillReturnRows(
		sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectCommit()

	id, err := repo.SaveDecision(context.Background(), sponsor.ResolverDecision{
		TrialID: "NCT1", Decision: sponsor.DecisionAccept, DecidedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveDecision_ReviewQueuesItem(t *testing.T) {
	repo, mock := newMockSponsorRepo(t)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO resolver_decisions").WillReturnRows(
		sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mock.ExpectExec("INSERT INTO resolver_review_queue").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := repo.SaveDecision(context.Background(), sponsor.ResolverDecision{
		TrialID: "NCT2", Decision: sponsor.DecisionReview, DecidedAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
