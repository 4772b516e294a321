package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/appmarket_intel/ETL/config"
	"github.com/LilVoxy/appmarket_intel/ETL/extractors"
	"github.com/LilVoxy/appmarket_intel/ETL/insights"
	"github.com/LilVoxy/appmarket_intel/ETL/load"
	"github.com/LilVoxy/appmarket_intel/ETL/models"
	"github.com/LilVoxy/appmarket_intel/ETL/utils"
)

const playStoreCSV = `App,Category,Rating,Reviews,Size,Installs,Type,Price,Content Rating,Genres,Last Updated,Current Ver,Android Ver
Photo Editor & Candy Camera,ART_AND_DESIGN,4.1,159,19M,"10,000+",Free,0,Everyone,Art & Design,"January 7, 2018",1.0.0,4.0.3 and up
"Sketch - Draw & Paint",ART_AND_DESIGN,4.5,215644,25M,"50,000,000+",Free,0,Teen,Art & Design,"June 8, 2018",Varies with device,4.2 and up
Sketch - Draw & Paint,ART_AND_DESIGN,4.5,215644,25M,"50,000,000+",Free,0,Teen,Art & Design,"June 8, 2018",Varies with device,4.2 and up
Pixel Dungeon,GAME,4.7,12000,8.5M,"1,000,000+",Paid,$2.99,Everyone 10+,Action,"March 3, 2018",2.1,4.1 and up
Budget Planner,FINANCE,,20,3M,"1,000+",Free,0,Everyone,Finance,"May 1, 2018",1.2,5.0 and up
`

type fakeRunLog struct {
	created  int
	success  []models.RunCounts
	failures []string
}

func (f *fakeRunLog) CreateLogEntry(context.Context, string, time.Time) (string, error) {
	f.created++
	return "run-fake", nil
}

func (f *fakeRunLog) UpdateLogEntrySuccess(_ context.Context, _ string, _ time.Time, counts models.RunCounts) error {
	f.success = append(f.success, counts)
	return nil
}

func (f *fakeRunLog) UpdateLogEntryFailure(_ context.Context, _ string, _ time.Time, msg string) error {
	f.failures = append(f.failures, msg)
	return nil
}

func (f *fakeRunLog) GetLastSuccessfulRun(context.Context) (*models.ETLRunLog, error) {
	return nil, nil
}

func (f *fakeRunLog) GetETLRunStats(context.Context, int) ([]models.ETLRunLog, error) {
	return nil, nil
}

func testRunner(t *testing.T) *ETLRunner {
	t.Helper()

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "googleplaystore.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(playStoreCSV), 0o600))

	cfg := config.GetConfig()
	cfg.Sources.PlayStoreCSV = csvPath
	cfg.ITunes.Enabled = false
	cfg.ITunes.UseCache = false
	cfg.Output.DataDir = filepath.Join(dir, "processed")
	cfg.Output.ReportsDir = filepath.Join(dir, "reports")
	cfg.Output.D2CDir = filepath.Join(dir, "d2c_analysis")
	cfg.Database.Enabled = false

	runner := newETLRunner(cfg, nil, utils.NewNopLogger())
	runner.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return runner
}

func TestExecuteETL_WritesOutputs(t *testing.T) {
	runner := testRunner(t)
	runLog := &fakeRunLog{}
	runner.etlLogRepo = runLog

	require.NoError(t, runner.ExecuteETL(context.Background(), "once"))

	for _, path := range []string{
		filepath.Join(runner.config.Output.DataDir, load.UnifiedCSVFile),
		filepath.Join(runner.config.Output.DataDir, load.UnifiedJSONFile),
		runner.reportPath(ValidationReportFile),
		runner.reportPath(IntegrationReportFile),
		runner.reportPath(InsightsReportFile),
		runner.reportPath(ExecutiveReportFile),
		runner.reportPath(MetricsFile),
	} {
		assert.FileExists(t, path)
	}

	require.Len(t, runLog.success, 1)
	assert.Equal(t, models.RunCounts{AndroidApps: 4, IOSApps: 0, DuplicatesRemoved: 1}, runLog.success[0])

	records, err := load.ReadUnified(runner.config.Output.DataDir)
	require.NoError(t, err)
	assert.Len(t, records, 4)

	report, err := insights.ReadLLMInsightsReport(runner.reportPath(InsightsReportFile))
	require.NoError(t, err)
	assert.Len(t, report.Insights, len(insights.NarrativeKinds))
}

func TestExecuteETL_MissingSourceFails(t *testing.T) {
	runner := testRunner(t)
	runLog := &fakeRunLog{}
	runner.etlLogRepo = runLog
	runner.config.Sources.PlayStoreCSV = filepath.Join(t.TempDir(), "absent.csv")
	runner.extractor = extractors.NewExtractor(runner.config, runner.logger)

	err := runner.ExecuteETL(context.Background(), "once")
	require.Error(t, err)
	assert.True(t, errors.Is(err, extractors.ErrSourceNotFound))

	require.Len(t, runLog.failures, 1)
	assert.Contains(t, runLog.failures[0], "Extract")
	assert.NoFileExists(t, filepath.Join(runner.config.Output.DataDir, load.UnifiedCSVFile))
	assert.FileExists(t, runner.reportPath(MetricsFile))
}

func TestRunDashboardAndQueries(t *testing.T) {
	runner := testRunner(t)
	require.NoError(t, runner.ExecuteETL(context.Background(), "once"))

	var buf bytes.Buffer
	require.NoError(t, runner.RunDashboard(&buf))
	assert.Contains(t, buf.String(), "EXECUTIVE DASHBOARD")

	for _, query := range []string{QueryCategories, QueryPlatforms, QueryPricing, QueryOpportunities, QuerySummary, QueryInsights} {
		buf.Reset()
		require.NoError(t, runner.RunQuery(&buf, query, "", 5), query)
		assert.NotEmpty(t, buf.String(), query)
	}

	buf.Reset()
	require.NoError(t, runner.RunQuery(&buf, QueryCategory, "games", 0))
	assert.Contains(t, buf.String(), "GAMES")

	err := runner.RunQuery(&buf, QueryCategory, "Nope", 0)
	assert.ErrorIs(t, err, insights.ErrCategoryNotFound)

	err = runner.RunQuery(&buf, "weather", "", 0)
	assert.ErrorIs(t, err, ErrUnknownQuery)
}

func TestLoadQueryEngine_NoData(t *testing.T) {
	runner := testRunner(t)
	_, err := runner.LoadQueryEngine()
	assert.Error(t, err)
}

func TestStorageLoaders_SQLBeforeFiles(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cfg := config.GetConfig()
	loaders := storageLoaders(cfg, db, utils.NewNopLogger())
	require.Len(t, loaders, 2)
	assert.Equal(t, "sql", loaders[0].Name())
	assert.Equal(t, "files", loaders[1].Name())

	loaders = storageLoaders(cfg, nil, utils.NewNopLogger())
	require.Len(t, loaders, 1)
	assert.Equal(t, "files", loaders[0].Name())
}

func TestExecuteETL_SQLFailureKeepsFilesUntouched(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM unified_apps").WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	runner := testRunner(t)
	runLog := &fakeRunLog{}
	runner.etlLogRepo = runLog
	runner.loadManager = load.NewLoadManager(runner.logger, storageLoaders(runner.config, db, runner.logger)...)

	err = runner.ExecuteETL(context.Background(), "once")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Load")

	require.Len(t, runLog.failures, 1)
	assert.NoFileExists(t, filepath.Join(runner.config.Output.DataDir, load.UnifiedCSVFile))
	assert.NoFileExists(t, filepath.Join(runner.config.Output.DataDir, load.UnifiedJSONFile))
	assert.NoFileExists(t, runner.reportPath(ValidationReportFile))
	assert.NoError(t, mock.ExpectationsWereMet())
}
