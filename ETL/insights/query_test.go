package insights

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
)

// app создает полностью заполненную строку единой таблицы
func app(platform models.Platform, name, category string, rating float64, reviews int64, price, size float64) models.UnifiedRecord {
	appType := models.AppTypeFree
	if price > 0 {
		appType = models.AppTypePaid
	}
	source := models.SourceGooglePlay
	if platform == models.PlatformIOS {
		source = models.SourceITunes
	}
	return models.UnifiedRecord{
		AppID:            "id_" + name,
		AppName:          name,
		Platform:         platform,
		UnifiedCategory:  category,
		OriginalCategory: strings.ToUpper(category),
		Rating:           rating,
		ReviewCount:      reviews,
		Installs:         reviews * 10,
		SizeMB:           models.FloatOf(size),
		AppType:          appType,
		PriceUSD:         price,
		ContentRating:    "Everyone",
		LastUpdated:      models.DateOf(time.Date(2018, 8, 1, 0, 0, 0, 0, time.UTC)),
		Genres:           category,
		DataSource:       source,
		Developer:        "Dev " + name,
		Version:          "1.0",
		MinOSVersion:     "4.0",
	}
}

func sampleDataset() *Dataset {
	return NewDataset([]models.UnifiedRecord{
		app(models.PlatformAndroid, "a1", "Games", 4.5, 20000, 0, 10),
		app(models.PlatformAndroid, "a2", "Games", 3.0, 100, 0.99, 20),
		app(models.PlatformAndroid, "a3", "Tools", 4.2, 5000, 5, 5),
		app(models.PlatformIOS, "i1", "Games", 4.8, 50000, 0, 30),
		app(models.PlatformIOS, "i2", "Productivity", 3.5, 10, 12, 40),
		app(models.PlatformIOS, "i3", "Tools", 0, 0, 10, 50),
	})
}

func TestQueryEngine_TopCategories(t *testing.T) {
	q := NewQueryEngine(sampleDataset(), nil)

	top := q.TopCategories(2)
	require.Len(t, top, 2)

	assert.Equal(t, "Games", top[0].Category)
	assert.Equal(t, 3, top[0].AppCount)
	assert.InDelta(t, 4.1, top[0].AvgRating, 1e-9)
	assert.Equal(t, 23367.0, top[0].AvgReviews)
	assert.InDelta(t, 66.7, top[0].FreePercent, 1e-9)

	assert.Equal(t, "Tools", top[1].Category)
	assert.Len(t, q.TopCategories(10), 3)
}

func TestQueryEngine_ComparePlatforms(t *testing.T) {
	pc := NewQueryEngine(sampleDataset(), nil).ComparePlatforms()

	assert.Equal(t, 3, pc.Android.TotalApps)
	assert.Equal(t, 3, pc.IOS.TotalApps)
	assert.InDelta(t, 3.9, pc.Android.AvgRating, 1e-9)
	assert.InDelta(t, 2.77, pc.IOS.AvgRating, 1e-9)
	assert.InDelta(t, 2.77-3.9, pc.RatingDiff, 1e-9)
	assert.InDelta(t, 11.7, pc.Android.AvgSizeMB, 1e-9)
	assert.Equal(t, "Games", pc.Android.TopCategories[0].Category)
}

func TestQueryEngine_CategoryDeepDive(t *testing.T) {
	q := NewQueryEngine(sampleDataset(), nil)

	dd, err := q.CategoryDeepDive("games")
	require.NoError(t, err)

	assert.Equal(t, "Games", dd.Category)
	assert.Equal(t, 3, dd.TotalApps)
	assert.Equal(t, 2, dd.AndroidApps)
	assert.Equal(t, 1, dd.IOSApps)
	assert.Equal(t, 2, dd.HighRatedApps)
	assert.Equal(t, 2, dd.PopularApps)
	assert.Equal(t, 2, dd.FreeApps)
	assert.Equal(t, 1, dd.PaidApps)
	assert.InDelta(t, 0.99, dd.AvgPaidPrice, 1e-9)

	require.NotNil(t, dd.Size)
	assert.Equal(t, SizeStats{Min: 10, Max: 30, Avg: 20}, *dd.Size)

	require.Len(t, dd.TopApps, 3)
	assert.Equal(t, "i1", dd.TopApps[0].AppName)
	assert.Equal(t, "a1", dd.TopApps[1].AppName)
	assert.Equal(t, "a2", dd.TopApps[2].AppName)
}

func TestQueryEngine_CategoryDeepDiveUnknown(t *testing.T) {
	dd, err := NewQueryEngine(sampleDataset(), nil).CategoryDeepDive("Weather")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.Nil(t, dd)
}

func TestQueryEngine_Pricing(t *testing.T) {
	pi := NewQueryEngine(sampleDataset(), nil).Pricing()

	assert.Equal(t, 2, pi.FreeApps)
	assert.Equal(t, 4, pi.PaidApps)
	assert.Equal(t, PriceRanges{Under1: 1, Range1To5: 1, Range5To10: 1, Over10: 1}, pi.PriceDistribution)
	assert.InDelta(t, 3.0, pi.AndroidAvgPaidPrice, 0.011)
	assert.InDelta(t, 11.0, pi.IOSAvgPaidPrice, 1e-9)

	require.Len(t, pi.PremiumCategories, 3)
	assert.Equal(t, "Productivity", pi.PremiumCategories[0].Category)
	assert.Equal(t, "Tools", pi.PremiumCategories[1].Category)
	assert.InDelta(t, 7.5, pi.PremiumCategories[1].AvgPrice, 1e-9)
	assert.InDelta(t, 100.0, pi.PremiumCategories[1].PaidPercent, 1e-9)
}

func TestQueryEngine_PriceBandBoundaries(t *testing.T) {
	ds := NewDataset([]models.UnifiedRecord{
		app(models.PlatformAndroid, "p1", "Tools", 4, 1, 1.0, 1),
		app(models.PlatformAndroid, "p2", "Tools", 4, 1, 5.0, 1),
		app(models.PlatformAndroid, "p3", "Tools", 4, 1, 5.01, 1),
		app(models.PlatformAndroid, "p4", "Tools", 4, 1, 10.0, 1),
		app(models.PlatformAndroid, "p5", "Tools", 4, 1, 10.01, 1),
	})

	pi := NewQueryEngine(ds, nil).Pricing()
	assert.Equal(t, PriceRanges{Under1: 0, Range1To5: 2, Range5To10: 2, Over10: 1}, pi.PriceDistribution)
}

func TestQueryEngine_Opportunities(t *testing.T) {
	o := NewQueryEngine(sampleDataset(), nil).Opportunities()

	names := func(stats []CategoryStat) []string {
		var out []string
		for _, s := range stats {
			out = append(out, s.Category)
		}
		return out
	}

	assert.Equal(t, []string{"Games", "Productivity", "Tools"}, names(o.LowCompetition))
	assert.Equal(t, []string{"Tools", "Productivity"}, names(o.QualityGaps))
	assert.Equal(t, []string{"Productivity", "Tools"}, names(o.PremiumPotential))
	assert.Len(t, o.Recommendations, 4)
}

func TestQueryEngine_Summary(t *testing.T) {
	s := NewQueryEngine(sampleDataset(), nil).Summary()

	assert.Equal(t, QuickSummary{
		TotalApps:     6,
		AndroidApps:   3,
		IOSApps:       3,
		Categories:    3,
		AvgRating:     3.33,
		HighRatedApps: 3,
	}, s)
}

func TestQueryEngine_InsightsSummary(t *testing.T) {
	_, err := NewQueryEngine(sampleDataset(), nil).InsightsSummary()
	assert.ErrorIs(t, err, ErrNoInsights)

	report := &LLMInsightsReport{
		ConfidenceScores: ConfidenceScores{MarketTrends: 90},
		Insights: map[string]string{
			KindMarketTrends:    strings.Repeat("а", 400),
			KindPricingStrategy: "short",
		},
	}
	s, err := NewQueryEngine(sampleDataset(), report).InsightsSummary()
	require.NoError(t, err)

	assert.Equal(t, 90.0, s.ConfidenceScores.MarketTrends)
	assert.Equal(t, strings.Repeat("а", 300)+"...", s.Previews[KindMarketTrends])
	assert.Equal(t, "short", s.Previews[KindPricingStrategy])
}

func TestQueryEngine_EmptyDataset(t *testing.T) {
	q := NewQueryEngine(NewDataset(nil), nil)

	assert.Empty(t, q.TopCategories(10))
	assert.Equal(t, QuickSummary{}, q.Summary())
	assert.Empty(t, q.Opportunities().LowCompetition)

	pc := q.ComparePlatforms()
	assert.Zero(t, pc.Android.AvgRating)
	assert.Zero(t, pc.IOS.FreePercent)
}
