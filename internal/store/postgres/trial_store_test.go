package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/daniyal-rahman/ncfd/internal/store"
	"github.com/daniyal-rahman/ncfd/internal/trial"
)

var errBoom = errors.New("boom")

func newMockRepo(t *testing.T) (*TrialRepo, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	sqlxDB := sqlx.NewDb(mockDB, "postgres")
	return NewTrialRepo(&DB{sqlxDB}), mock
}

func TestWithTrialTx_CommitsOnSuccess(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO trials").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO trial_versions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	err := repo.WithTrialTx(context.Background(), "NCT001", func(ctx context.Context, s store.TrialStore) error {
		return s.CreateTrialAndVersion(ctx, trial.Trial{ID: "NCT001", LastSeenAt: now}, trial.Version{
			TrialID: "NCT001", CapturedAt: now, Raw: trial.Raw{"a": 1}, ContentHash: "h1",
		})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTrialTx_RollsBackOnError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := repo.WithTrialTx(context.Background(), "NCT002", func(ctx context.Context, s store.TrialStore) error {
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTrial_NotFoundReturnsFalse(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, brief_title").WillReturnRows(sqlmock.NewRows(nil))
	mock.ExpectRollback()

	err := repo.WithTrialTx(context.Background(), "NCT003", func(ctx context.Context, s store.TrialStore) error {
		_, ok, err := s.GetTrial(ctx, "NCT003")
		require.NoError(t, err)
		require.False(t, ok)
		return errBoom
	})
	require.Error(t, err)
}
