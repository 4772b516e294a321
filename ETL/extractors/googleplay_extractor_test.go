package extractors

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/appmarket_intel/ETL/utils"
)

const sampleCSV = `App,Category,Rating,Reviews,Size,Installs,Type,Price,Content Rating,Genres,Last Updated,Current Ver,Android Ver
Photo Editor & Candy Camera,ART_AND_DESIGN,4.1,159,19M,"10,000+",Free,0,Everyone,Art & Design,"January 7, 2018",1.0.0,4.0.3 and up
"Sketch - Draw & Paint",ART_AND_DESIGN,4.5,215644,25M,"50,000,000+",Free,0,Teen,Art & Design,"June 8, 2018",Varies with device,4.2 and up
Short Row,GAME
`

func TestReadCSVRecords(t *testing.T) {
	rows, columns, err := ReadCSVRecords(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 13, columns)
	require.Len(t, rows, 3)
	assert.Equal(t, "Photo Editor & Candy Camera", rows[0]["App"])
	assert.Equal(t, "10,000+", rows[0]["Installs"])
	assert.Equal(t, "Sketch - Draw & Paint", rows[1]["App"])
	assert.Equal(t, "GAME", rows[2]["Category"])
	_, hasRating := rows[2]["Rating"]
	assert.False(t, hasRating)
}

func TestReadCSVRecords_Errors(t *testing.T) {
	_, _, err := ReadCSVRecords(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrEmptySource))

	_, _, err = ReadCSVRecords(strings.NewReader("App,Category\n"))
	assert.True(t, errors.Is(err, ErrEmptySource))

	_, _, err = ReadCSVRecords(strings.NewReader("Name,Category\nx,y\n"))
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestPlayStoreExtractor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "googleplaystore.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeff"+sampleCSV), 0o600))

	rows, _, err := NewPlayStoreExtractor(path, utils.NewNopLogger()).ExtractPlayStore()
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, "Photo Editor & Candy Camera", rows[0]["App"])

	_, _, err = NewPlayStoreExtractor(filepath.Join(dir, "missing.csv"), utils.NewNopLogger()).ExtractPlayStore()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceNotFound))
}
