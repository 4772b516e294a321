package load

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
	"github.com/LilVoxy/appmarket_intel/ETL/utils"
)

func TestSQLLoader_LoadUnified(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	records := sampleUnified()
	loader := NewSQLLoader(db, utils.NewNopLogger())

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM unified_apps").WillReturnResult(sqlmock.NewResult(0, 5))
	prep := mock.ExpectPrepare("INSERT INTO unified_apps")
	prep.ExpectExec().
		WithArgs("gp_123", records[0].AppName, "Android", "Games", "GAME", 4.3,
			int64(2_300_000), int64(100_000_000), nil, "Free", 0.0, "Everyone",
			"2018-08-01", "Puzzle", models.SourceGooglePlay, "", "1.0", "4.1 and up").
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs("ios_1001", "Chess", "iOS", "Games", "Games", 4.5,
			int64(12000), int64(0), 100.0, "Paid", 2.99, "4+",
			nil, "Games", models.SourceITunes, "Chess Inc", "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, loader.LoadUnified(context.Background(), records))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLLoader_RollsBackOnInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM unified_apps").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare("INSERT INTO unified_apps").
		ExpectExec().
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = NewSQLLoader(db, utils.NewNopLogger()).LoadUnified(context.Background(), sampleUnified()[:1])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gp_123")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLLoader_CreateUnifiedTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS unified_apps").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewSQLLoader(db, utils.NewNopLogger()).CreateUnifiedTable(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

type failingLoader struct{ calls int }

func (f *failingLoader) Name() string { return "failing" }

func (f *failingLoader) LoadUnified(context.Context, []models.UnifiedRecord) error {
	f.calls++
	return errors.New("boom")
}

func TestLoadManager_StopsOnFirstError(t *testing.T) {
	first, second := &failingLoader{}, &failingLoader{}
	m := NewLoadManager(utils.NewNopLogger(), first, second)

	err := m.Load(context.Background(), &models.TransformedData{Unified: sampleUnified()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing")
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
}

func TestLoadManager_WritesFiles(t *testing.T) {
	dir := t.TempDir()
	m := NewLoadManager(utils.NewNopLogger(), NewFileLoader(dir, false, utils.NewNopLogger()))

	require.NoError(t, m.Load(context.Background(), &models.TransformedData{Unified: sampleUnified()}))
	records, err := ReadUnified(dir)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
