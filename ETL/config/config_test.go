package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfig_Defaults(t *testing.T) {
	cfg := GetConfig()

	assert.Len(t, cfg.ITunes.SearchTerms, 48)
	assert.Equal(t, 500*time.Millisecond, cfg.ITunes.RequestDelay)
	assert.Equal(t, 20, cfg.ITunes.Limit)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	require.NoError(t, cfg.Validate())

	// копия списка не должна разделять память с DefaultSearchTerms
	cfg.ITunes.SearchTerms[0] = "changed"
	assert.Equal(t, "instagram", DefaultSearchTerms[0])
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	yml := `
sources:
  playstore_csv: /data/gp.csv
itunes:
  request_delay: 1s
  search_terms: [chess, go]
database:
  driver: mysql
run_interval: 2h
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("MI_DB_HOST", "db.internal")
	t.Setenv("MI_ITUNES_TERMS", "maps, notes")
	t.Setenv("MI_VERBOSE", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/gp.csv", cfg.Sources.PlayStoreCSV)
	assert.Equal(t, time.Second, cfg.ITunes.RequestDelay)
	assert.Equal(t, []string{"maps", "notes"}, cfg.ITunes.SearchTerms)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 2*time.Hour, cfg.RunInterval)
	assert.True(t, cfg.EnableDetailedLogging)
	assert.Equal(t, "root:@tcp(db.internal:3306)/appmarket_intel?parseTime=true", cfg.Database.DSN())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, GetConfig().Sources, cfg.Sources)
}

func TestValidate_RejectsUnknownDriver(t *testing.T) {
	cfg := GetConfig()
	cfg.Database.Driver = "postgres"
	assert.Error(t, cfg.Validate())

	cfg.Database.Enabled = false
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RejectsZeroReloadInterval(t *testing.T) {
	cfg := GetConfig()
	cfg.Server.ReloadInterval = 0
	assert.Error(t, cfg.Validate())
}

func TestConnectDatabase_SQLite(t *testing.T) {
	db, err := ConnectDatabase(DatabaseConfig{
		Driver: DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "nested", "test.db"),
	})
	require.NoError(t, err)
	assert.NoError(t, CloseDatabase(db))
}
