package insights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCorrelation() *EngagementCorrelation {
	return &EngagementCorrelation{
		Model: &RegressionResult{A: 0.1, B: 3.5, R: 0.4, R2: 0.16, Points: 10},
		Estimates: []RatingEstimate{
			{Reviews: 100, Rating: 3.7, CILower: 3.1, CIUpper: 4.3},
			{Reviews: 1000, Rating: 3.8, CILower: 3.2, CIUpper: 4.4},
		},
	}
}

func TestSQLEngagementRepository_SaveEstimates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO engagement_estimates")
	prep.ExpectExec().
		WithArgs("run-1", now, 0.1, 3.5, 0.4, 0.16, int64(100), 3.7, 3.1, 4.3).
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().
		WithArgs("run-1", now, 0.1, 3.5, 0.4, 0.16, int64(1000), 3.8, 3.2, 4.4).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	repo := NewSQLEngagementRepository(db)
	require.NoError(t, repo.SaveEstimates(context.Background(), "run-1", now, sampleCorrelation()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLEngagementRepository_SaveEstimatesRollback(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO engagement_estimates").
		ExpectExec().
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	repo := NewSQLEngagementRepository(db)
	err = repo.SaveEstimates(context.Background(), "run-1", time.Now(), sampleCorrelation())
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLEngagementRepository_GetLastModel(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSQLEngagementRepository(db)

	mock.ExpectQuery("SELECT slope, intercept, r, r2").
		WillReturnRows(sqlmock.NewRows([]string{"slope", "intercept", "r", "r2"}).AddRow(0.1, 3.5, 0.4, 0.16))
	model, err := repo.GetLastModel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3.5, model.B)

	mock.ExpectQuery("SELECT slope, intercept, r, r2").
		WillReturnRows(sqlmock.NewRows([]string{"slope", "intercept", "r", "r2"}))
	model, err = repo.GetLastModel(context.Background())
	require.NoError(t, err)
	assert.Nil(t, model)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLEngagementRepository_EnsureTableAndCleanup(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS engagement_estimates").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM engagement_estimates").WithArgs(cutoff).WillReturnResult(sqlmock.NewResult(0, 3))

	repo := NewSQLEngagementRepository(db)
	require.NoError(t, repo.EnsureTableExists(context.Background()))
	require.NoError(t, repo.DeleteOlderThan(context.Background(), cutoff))
	assert.NoError(t, mock.ExpectationsWereMet())
}
