package insights

import (
	"time"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
)

// Пороги рыночных возможностей в сводке рынка
const (
	underratedCategoryRating = 3.5
	highCompetitionApps      = 100
	expensiveAppPrice        = 10.0
)

// DatasetOverview - объем данных по платформам и источникам
type DatasetOverview struct {
	TotalApps   int            `json:"total_apps"`
	AndroidApps int            `json:"android_apps"`
	IOSApps     int            `json:"ios_apps"`
	DataSources map[string]int `json:"data_sources"`
}

// PlatformAverages - средние показатели платформ
type PlatformAverages struct {
	AvgRatingAndroid  float64 `json:"avg_rating_android"`
	AvgRatingIOS      float64 `json:"avg_rating_ios"`
	AvgReviewsAndroid float64 `json:"avg_reviews_android"`
	AvgReviewsIOS     float64 `json:"avg_reviews_ios"`
	AvgSizeAndroidMB  float64 `json:"avg_size_android_mb"`
	AvgSizeIOSMB      float64 `json:"avg_size_ios_mb"`
}

// CategoryAnalysis - распределение приложений по категориям
type CategoryAnalysis struct {
	TopCategories   []CategoryCount    `json:"top_categories"`
	CategoryRatings map[string]float64 `json:"category_ratings"`
	TopAndroid      []CategoryCount    `json:"category_distribution_android"`
	TopIOS          []CategoryCount    `json:"category_distribution_ios"`
}

// PricingAnalysis - бесплатные и платные приложения
type PricingAnalysis struct {
	FreeVsPaidTotal   map[string]int `json:"free_vs_paid_total"`
	FreeVsPaidAndroid map[string]int `json:"free_vs_paid_android"`
	FreeVsPaidIOS     map[string]int `json:"free_vs_paid_ios"`
	AvgPriceAndroid   float64        `json:"avg_price_android"`
	AvgPriceIOS       float64        `json:"avg_price_ios"`
	ExpensiveApps     int            `json:"expensive_apps"`
}

// QualityInsights - счетчики качества
type QualityInsights struct {
	HighRated4Plus  int `json:"high_rated_apps_4plus"`
	HighRated45Plus int `json:"high_rated_apps_45plus"`
	ManyReviews     int `json:"apps_with_many_reviews"`
	ZeroRatingApps  int `json:"zero_rating_apps"`
}

// MarketOpportunities - категории с низким рейтингом и с высокой конкуренцией
type MarketOpportunities struct {
	UnderratedCategories      []string `json:"underrated_categories"`
	HighCompetitionCategories []string `json:"high_competition_categories"`
}

// MarketInsights - сводка рынка по единой таблице
type MarketInsights struct {
	DatasetOverview     DatasetOverview     `json:"dataset_overview"`
	PlatformComparison  PlatformAverages    `json:"platform_comparison"`
	CategoryAnalysis    CategoryAnalysis    `json:"category_analysis"`
	PricingAnalysis     PricingAnalysis     `json:"pricing_analysis"`
	QualityInsights     QualityInsights     `json:"quality_insights"`
	MarketOpportunities MarketOpportunities `json:"market_opportunities"`
}

// DataQuality - полнота единой таблицы
type DataQuality struct {
	MissingRatings          int     `json:"missing_ratings"`
	DataCompletenessPercent float64 `json:"data_completeness_percent"`
	UniqueApps              int     `json:"unique_apps"`
	UniqueCategories        int     `json:"unique_categories"`
}

// IntegrationRun - сведения о запуске объединения
type IntegrationRun struct {
	Timestamp        time.Time `json:"timestamp"`
	GooglePlayApps   int       `json:"google_play_apps"`
	IOSApps          int       `json:"ios_apps"`
	TotalUnifiedApps int       `json:"total_unified_apps"`
	Sources          []string  `json:"sources"`
}

// IntegrationReport - отчет reports/integration_report.json
type IntegrationReport struct {
	Execution      IntegrationRun  `json:"execution"`
	APIStats       models.APIStats `json:"api_integration_stats"`
	Columns        []string        `json:"columns"`
	MarketInsights MarketInsights  `json:"market_insights"`
	DataQuality    DataQuality     `json:"data_quality"`
}

// BuildMarketInsights рассчитывает сводку рынка
func BuildMarketInsights(ds *Dataset) MarketInsights {
	android := ds.Platform(models.PlatformAndroid)
	ios := ds.Platform(models.PlatformIOS)

	mi := MarketInsights{
		DatasetOverview: DatasetOverview{
			TotalApps:   ds.Len(),
			AndroidApps: len(android),
			IOSApps:     len(ios),
			DataSources: map[string]int{
				"google_play": ds.CountWhere(func(r models.UnifiedRecord) bool { return r.DataSource == models.SourceGooglePlay }),
				"itunes":      ds.CountWhere(func(r models.UnifiedRecord) bool { return r.DataSource == models.SourceITunes }),
			},
		},
		PlatformComparison: PlatformAverages{
			AvgRatingAndroid:  meanOf(android, rating),
			AvgRatingIOS:      meanOf(ios, rating),
			AvgReviewsAndroid: meanOf(android, reviews),
			AvgReviewsIOS:     meanOf(ios, reviews),
			AvgSizeAndroidMB:  meanSize(android),
			AvgSizeIOSMB:      meanSize(ios),
		},
		CategoryAnalysis: CategoryAnalysis{
			TopCategories:   ds.TopCategories(10),
			CategoryRatings: make(map[string]float64, len(ds.groups)),
			TopAndroid:      topCategories(android, 10),
			TopIOS:          topCategories(ios, 10),
		},
		PricingAnalysis: PricingAnalysis{
			FreeVsPaidTotal:   appTypeCounts(ds.Records()),
			FreeVsPaidAndroid: appTypeCounts(android),
			FreeVsPaidIOS:     appTypeCounts(ios),
			AvgPriceAndroid:   meanOf(android, price),
			AvgPriceIOS:       meanOf(ios, price),
			ExpensiveApps:     ds.CountWhere(func(r models.UnifiedRecord) bool { return r.PriceUSD > expensiveAppPrice }),
		},
		QualityInsights: QualityInsights{
			HighRated4Plus:  ds.CountWhere(func(r models.UnifiedRecord) bool { return r.Rating >= HighRatingThreshold }),
			HighRated45Plus: ds.CountWhere(func(r models.UnifiedRecord) bool { return r.Rating >= ExcellentRatingThreshold }),
			ManyReviews:     ds.CountWhere(func(r models.UnifiedRecord) bool { return r.ReviewCount >= PopularReviewsThreshold }),
			ZeroRatingApps:  ds.CountWhere(func(r models.UnifiedRecord) bool { return r.Rating == 0 }),
		},
		MarketOpportunities: MarketOpportunities{
			UnderratedCategories:      []string{},
			HighCompetitionCategories: []string{},
		},
	}

	for _, name := range ds.CategoryNames() {
		g := ds.groups[name]
		mean := round(g.meanRating(), 2)
		mi.CategoryAnalysis.CategoryRatings[name] = mean
		if mean < underratedCategoryRating {
			mi.MarketOpportunities.UnderratedCategories = append(mi.MarketOpportunities.UnderratedCategories, name)
		}
		if g.count > highCompetitionApps {
			mi.MarketOpportunities.HighCompetitionCategories = append(mi.MarketOpportunities.HighCompetitionCategories, name)
		}
	}

	return mi
}

// BuildIntegrationReport собирает отчет об объединении платформ
func BuildIntegrationReport(ds *Dataset, stats models.APIStats, now time.Time) IntegrationReport {
	mi := BuildMarketInsights(ds)
	return IntegrationReport{
		Execution: IntegrationRun{
			Timestamp:        now,
			GooglePlayApps:   mi.DatasetOverview.AndroidApps,
			IOSApps:          mi.DatasetOverview.IOSApps,
			TotalUnifiedApps: ds.Len(),
			Sources:          []string{models.SourceGooglePlay, models.SourceITunes},
		},
		APIStats:       stats,
		Columns:        models.UnifiedColumns,
		MarketInsights: mi,
		DataQuality: DataQuality{
			MissingRatings:          mi.QualityInsights.ZeroRatingApps,
			DataCompletenessPercent: round(ds.Completeness()*100, 2),
			UniqueApps:              ds.Len(),
			UniqueCategories:        len(ds.groups),
		},
	}
}

func appTypeCounts(records []models.UnifiedRecord) map[string]int {
	out := make(map[string]int)
	for _, r := range records {
		out[r.AppType]++
	}
	return out
}
