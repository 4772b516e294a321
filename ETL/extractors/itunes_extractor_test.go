package extractors

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/appmarket_intel/ETL/config"
	"github.com/LilVoxy/appmarket_intel/ETL/models"
	"github.com/LilVoxy/appmarket_intel/ETL/utils"
)

func newTestITunes(t *testing.T, handler http.HandlerFunc, terms ...string) *ITunesExtractor {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewITunesExtractor(config.ITunesConfig{
		BaseURL:      server.URL,
		Country:      "us",
		Limit:        20,
		RequestDelay: time.Millisecond,
		Timeout:      5 * time.Second,
		SearchTerms:  terms,
	}, utils.NewNopLogger())
}

func TestITunesExtractor_ExtractApps(t *testing.T) {
	var calls int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "software", r.URL.Query().Get("media"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		switch r.URL.Query().Get("term") {
		case "chess":
			fmt.Fprint(w, `{"resultCount":2,"results":[
				{"trackId":1001,"trackName":"Chess","averageUserRating":4.5,"price":0,"description":"`+strings.Repeat("x", 600)+`","kind":"software"},
				{"trackName":"No Id"}]}`)
		case "broken":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "puzzle":
			fmt.Fprint(w, `{"resultCount":2,"results":[
				{"trackId":2002,"trackName":"Puzzle"},
				{"trackId":1001,"trackName":"Chess Updated","averageUserRating":4.6}]}`)
		}
	}

	ext := newTestITunes(t, handler, "chess", "broken", "puzzle")
	apps, stats, err := ext.ExtractApps(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, 3, stats.APICallsMade)
	assert.Equal(t, 1, stats.FailedCalls)
	assert.Equal(t, 3, stats.SearchTermsUsed)
	assert.Equal(t, 2, stats.AppsFetched)

	require.Len(t, apps, 2)
	assert.Equal(t, "Chess Updated", apps[0]["trackName"], "last occurrence wins, first position kept")
	assert.Equal(t, "Puzzle", apps[1]["trackName"])

	_, hasKind := apps[0]["kind"]
	assert.False(t, hasKind)
}

func TestITunesExtractor_TruncatesDescription(t *testing.T) {
	rec := selectFields(map[string]any{"trackId": 1, "description": strings.Repeat("é", 700)})
	assert.Len(t, []rune(rec["description"].(string)), 500)
}

func TestITunesExtractor_Cancelled(t *testing.T) {
	ext := newTestITunes(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"resultCount":0,"results":[]}`)
	}, "a", "b")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := ext.ExtractApps(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestITunesCache_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw", "itunes.json")
	records := []models.RawRecord{{"trackId": 1001, "trackName": "Chess"}}

	require.NoError(t, SaveITunesCache(path, records))

	loaded, err := LoadITunesCache(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	id, _ := loaded[0].Text("trackId")
	assert.Equal(t, "1001", id)

	_, err = LoadITunesCache(filepath.Join(t.TempDir(), "none.json"))
	assert.ErrorIs(t, err, ErrSourceNotFound)
}
