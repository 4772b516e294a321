package extractors

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/LilVoxy/appmarket_intel/ETL/utils"
)

// createTestWorkbook создает книгу Excel в памяти
func createTestWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestReadWorkbookRecords(t *testing.T) {
	data := createTestWorkbook(t, [][]any{
		{"campaign_id", "channel", "spend_usd", "installs"},
		{"C1", "Google Ads", 1000.5, 120},
		{},
		{"C2", "Meta", 500, 0},
	})

	rows, err := ReadWorkbookRecords(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "C1", rows[0]["campaign_id"])
	assert.Equal(t, "Google Ads", rows[0]["channel"])
	assert.Equal(t, "1000.5", rows[0]["spend_usd"])
	assert.Equal(t, "Meta", rows[1]["channel"])
}

func TestReadWorkbookRecords_HeaderOnly(t *testing.T) {
	data := createTestWorkbook(t, [][]any{{"campaign_id", "channel"}})

	_, err := ReadWorkbookRecords(bytes.NewReader(data))
	assert.True(t, errors.Is(err, ErrEmptySource))
}

func TestD2CExtractor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "d2c.xlsx")
	data := createTestWorkbook(t, [][]any{
		{"campaign_id", "channel"},
		{"C1", "TikTok"},
	})
	require.NoError(t, os.WriteFile(path, data, 0o600))

	rows, err := NewD2CExtractor(path, utils.NewNopLogger()).ExtractCampaignRows()
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = NewD2CExtractor(filepath.Join(dir, "none.xlsx"), utils.NewNopLogger()).ExtractCampaignRows()
	assert.ErrorIs(t, err, ErrSourceNotFound)
}
