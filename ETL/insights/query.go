package insights

import (
	"errors"
	"sort"
	"strings"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
)

var (
	// ErrCategoryNotFound возвращается для категории, которой нет в таблице
	ErrCategoryNotFound = errors.New("категория не найдена")
	// ErrNoInsights возвращается, когда отчет с текстовыми выводами не загружен
	ErrNoInsights = errors.New("текстовые выводы недоступны")
)

// Пороги поиска рыночных возможностей
const (
	lowCompetitionApps    = 200
	qualityGapRating      = 4.0
	premiumCategoryPrice  = 2.0
	opportunityListLength = 5
	insightPreviewRunes   = 300
)

// StrategicRecommendations - рекомендации, сопровождающие анализ возможностей
var StrategicRecommendations = []string{
	"Target low-competition categories with quality-first approach",
	"Improve UX/quality in saturated categories with rating gaps",
	"Consider premium positioning in categories with price tolerance",
	"Cross-platform strategy for maximum market penetration",
}

// CategoryOverview - строка отчета о самых многочисленных категориях
type CategoryOverview struct {
	Category    string  `json:"category"`
	AppCount    int     `json:"app_count"`
	AvgRating   float64 `json:"avg_rating"`
	AvgReviews  float64 `json:"avg_reviews"`
	FreePercent float64 `json:"free_percent"`
}

// PlatformStats - показатели одной платформы
type PlatformStats struct {
	TotalApps     int             `json:"total_apps"`
	AvgRating     float64         `json:"avg_rating"`
	AvgReviews    float64         `json:"avg_reviews"`
	AvgPrice      float64         `json:"avg_price"`
	AvgSizeMB     float64         `json:"avg_size_mb"`
	FreePercent   float64         `json:"free_percent"`
	TopCategories []CategoryCount `json:"top_categories"`
}

// PlatformComparison - сравнение Android и iOS
type PlatformComparison struct {
	Android PlatformStats `json:"android"`
	IOS     PlatformStats `json:"ios"`
	// Разница iOS минус Android
	RatingDiff  float64 `json:"rating_diff"`
	ReviewsDiff float64 `json:"reviews_diff"`
	PriceDiff   float64 `json:"price_diff"`
}

// SizeStats - размеры приложений категории в МБ
type SizeStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// TopApp - приложение из топа категории
type TopApp struct {
	AppName     string          `json:"app_name"`
	Platform    models.Platform `json:"platform"`
	Rating      float64         `json:"rating"`
	ReviewCount int64           `json:"review_count"`
	PriceUSD    float64         `json:"price_usd"`
}

// CategoryDeepDive - подробный анализ одной категории
type CategoryDeepDive struct {
	Category      string     `json:"category"`
	TotalApps     int        `json:"total_apps"`
	AndroidApps   int        `json:"android_apps"`
	IOSApps       int        `json:"ios_apps"`
	AvgRating     float64    `json:"avg_rating"`
	HighRatedApps int        `json:"high_rated_apps"`
	PopularApps   int        `json:"popular_apps"`
	FreeApps      int        `json:"free_apps"`
	PaidApps      int        `json:"paid_apps"`
	AvgPaidPrice  float64    `json:"avg_paid_price"`
	Size          *SizeStats `json:"size,omitempty"`
	TopApps       []TopApp   `json:"top_apps"`
}

// PriceRanges - распределение платных приложений по ценовым диапазонам
type PriceRanges struct {
	Under1     int `json:"under_1"`
	Range1To5  int `json:"range_1_5"`
	Range5To10 int `json:"range_5_10"`
	Over10     int `json:"over_10"`
}

// PremiumCategory - категория с высокой средней ценой
type PremiumCategory struct {
	Category    string  `json:"category"`
	AvgPrice    float64 `json:"avg_price"`
	AppCount    int     `json:"app_count"`
	PaidPercent float64 `json:"paid_percent"`
}

// PricingInsights - анализ цен
type PricingInsights struct {
	FreeApps            int               `json:"free_apps"`
	PaidApps            int               `json:"paid_apps"`
	PriceDistribution   PriceRanges       `json:"price_distribution"`
	AndroidAvgPaidPrice float64           `json:"android_avg_paid_price"`
	IOSAvgPaidPrice     float64           `json:"ios_avg_paid_price"`
	PremiumCategories   []PremiumCategory `json:"premium_categories"`
}

// CategoryStat - агрегаты категории, округленные до сотых
type CategoryStat struct {
	Category   string  `json:"category"`
	AppCount   int     `json:"app_count"`
	AvgRating  float64 `json:"avg_rating"`
	AvgReviews float64 `json:"avg_reviews"`
	AvgPrice   float64 `json:"avg_price"`
}

// Opportunities - рыночные возможности по категориям
type Opportunities struct {
	LowCompetition   []CategoryStat `json:"low_competition"`
	QualityGaps      []CategoryStat `json:"quality_gaps"`
	PremiumPotential []CategoryStat `json:"premium_potential"`
	Recommendations  []string       `json:"recommendations"`
}

// QuickSummary - краткая сводка по таблице
type QuickSummary struct {
	TotalApps     int     `json:"total_apps"`
	AndroidApps   int     `json:"android_apps"`
	IOSApps       int     `json:"ios_apps"`
	Categories    int     `json:"categories"`
	AvgRating     float64 `json:"avg_rating"`
	HighRatedApps int     `json:"high_rated_apps"`
}

// InsightsSummary - уверенность и начало каждого текстового вывода
type InsightsSummary struct {
	ConfidenceScores ConfidenceScores  `json:"confidence_scores"`
	Previews         map[string]string `json:"previews"`
}

// QueryEngine отвечает на аналитические запросы к снимку таблицы
type QueryEngine struct {
	ds       *Dataset
	insights *LLMInsightsReport
}

// NewQueryEngine создает движок запросов. Отчет с текстовыми выводами может быть nil.
func NewQueryEngine(ds *Dataset, report *LLMInsightsReport) *QueryEngine {
	return &QueryEngine{ds: ds, insights: report}
}

// Dataset возвращает снимок, по которому работает движок
func (q *QueryEngine) Dataset() *Dataset {
	return q.ds
}

// TopCategories возвращает limit самых многочисленных категорий
func (q *QueryEngine) TopCategories(limit int) []CategoryOverview {
	top := q.ds.TopCategories(limit)
	out := make([]CategoryOverview, 0, len(top))
	for _, c := range top {
		g := q.ds.groups[c.Category]
		out = append(out, CategoryOverview{
			Category:    c.Category,
			AppCount:    g.count,
			AvgRating:   round(g.meanRating(), 2),
			AvgReviews:  round(g.meanReviews(), 0),
			FreePercent: round(percent(g.free, g.count), 1),
		})
	}
	return out
}

// ComparePlatforms сравнивает показатели платформ
func (q *QueryEngine) ComparePlatforms() PlatformComparison {
	android := platformStats(q.ds.Platform(models.PlatformAndroid))
	ios := platformStats(q.ds.Platform(models.PlatformIOS))
	return PlatformComparison{
		Android:     android,
		IOS:         ios,
		RatingDiff:  round(ios.AvgRating-android.AvgRating, 2),
		ReviewsDiff: round(ios.AvgReviews-android.AvgReviews, 0),
		PriceDiff:   round(ios.AvgPrice-android.AvgPrice, 2),
	}
}

func platformStats(records []models.UnifiedRecord) PlatformStats {
	return PlatformStats{
		TotalApps:     len(records),
		AvgRating:     round(meanOf(records, rating), 2),
		AvgReviews:    round(meanOf(records, reviews), 0),
		AvgPrice:      round(meanOf(records, price), 2),
		AvgSizeMB:     round(meanSize(records), 1),
		FreePercent:   round(percent(countWhere(records, isFree), len(records)), 1),
		TopCategories: topCategories(records, 5),
	}
}

// CategoryDeepDive анализирует одну категорию. Имя сравнивается без учета регистра.
func (q *QueryEngine) CategoryDeepDive(name string) (*CategoryDeepDive, error) {
	g := q.lookupCategory(name)
	if g == nil {
		return nil, ErrCategoryNotFound
	}

	apps := g.apps
	paid := filter(apps, func(r models.UnifiedRecord) bool { return r.PriceUSD > 0 })

	dd := &CategoryDeepDive{
		Category:      g.name,
		TotalApps:     g.count,
		AndroidApps:   countWhere(apps, func(r models.UnifiedRecord) bool { return r.Platform == models.PlatformAndroid }),
		IOSApps:       countWhere(apps, func(r models.UnifiedRecord) bool { return r.Platform == models.PlatformIOS }),
		AvgRating:     round(g.meanRating(), 2),
		HighRatedApps: countWhere(apps, func(r models.UnifiedRecord) bool { return r.Rating >= HighRatingThreshold }),
		PopularApps:   countWhere(apps, func(r models.UnifiedRecord) bool { return r.ReviewCount >= PopularReviewsThreshold }),
		FreeApps:      countWhere(apps, isFree),
		PaidApps:      countWhere(apps, isPaid),
		AvgPaidPrice:  round(meanOf(paid, price), 2),
		Size:          sizeStats(apps),
	}

	sorted := make([]models.UnifiedRecord, len(apps))
	copy(sorted, apps)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ReviewCount > sorted[j].ReviewCount })
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}
	for _, r := range sorted {
		dd.TopApps = append(dd.TopApps, TopApp{
			AppName:     r.AppName,
			Platform:    r.Platform,
			Rating:      r.Rating,
			ReviewCount: r.ReviewCount,
			PriceUSD:    r.PriceUSD,
		})
	}
	return dd, nil
}

func (q *QueryEngine) lookupCategory(name string) *categoryGroup {
	if g, ok := q.ds.groups[name]; ok {
		return g
	}
	for key, g := range q.ds.groups {
		if strings.EqualFold(key, name) {
			return g
		}
	}
	return nil
}

func sizeStats(records []models.UnifiedRecord) *SizeStats {
	var s *SizeStats
	sum, n := 0.0, 0
	for _, r := range records {
		if !r.SizeMB.Valid || r.SizeMB.Float64 <= 0 {
			continue
		}
		v := r.SizeMB.Float64
		if s == nil {
			s = &SizeStats{Min: v, Max: v}
		}
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		sum += v
		n++
	}
	if s != nil {
		s.Avg = round(sum/float64(n), 1)
	}
	return s
}

// Pricing анализирует цены и ценовые диапазоны
func (q *QueryEngine) Pricing() PricingInsights {
	pi := PricingInsights{
		FreeApps: q.ds.CountWhere(isFree),
		PaidApps: q.ds.CountWhere(isPaid),
	}

	for _, r := range q.ds.Records() {
		switch p := r.PriceUSD; {
		case p <= 0:
		case p < 1:
			pi.PriceDistribution.Under1++
		case p <= 5:
			pi.PriceDistribution.Range1To5++
		case p <= 10:
			pi.PriceDistribution.Range5To10++
		default:
			pi.PriceDistribution.Over10++
		}
	}

	paidOn := func(p models.Platform) []models.UnifiedRecord {
		return q.ds.Filter(func(r models.UnifiedRecord) bool { return r.Platform == p && r.PriceUSD > 0 })
	}
	pi.AndroidAvgPaidPrice = round(meanOf(paidOn(models.PlatformAndroid), price), 2)
	pi.IOSAvgPaidPrice = round(meanOf(paidOn(models.PlatformIOS), price), 2)

	premium := make([]PremiumCategory, 0, len(q.ds.groups))
	for _, name := range q.ds.CategoryNames() {
		g := q.ds.groups[name]
		premium = append(premium, PremiumCategory{
			Category:    name,
			AvgPrice:    round(g.meanPrice(), 2),
			AppCount:    g.count,
			PaidPercent: round(percent(countWhere(g.apps, isPaid), g.count), 2),
		})
	}
	sort.SliceStable(premium, func(i, j int) bool { return premium[i].AvgPrice > premium[j].AvgPrice })
	if len(premium) > opportunityListLength {
		premium = premium[:opportunityListLength]
	}
	pi.PremiumCategories = premium
	return pi
}

// CategoryStats возвращает округленные агрегаты всех категорий по алфавиту
func (q *QueryEngine) CategoryStats() []CategoryStat {
	out := make([]CategoryStat, 0, len(q.ds.groups))
	for _, name := range q.ds.CategoryNames() {
		g := q.ds.groups[name]
		out = append(out, CategoryStat{
			Category:   name,
			AppCount:   g.count,
			AvgRating:  round(g.meanRating(), 2),
			AvgReviews: round(g.meanReviews(), 2),
			AvgPrice:   round(g.meanPrice(), 2),
		})
	}
	return out
}

// Opportunities ищет категории с низкой конкуренцией, провалами качества и премиальными ценами
func (q *QueryEngine) Opportunities() Opportunities {
	stats := q.CategoryStats()

	low := selectStats(stats, func(s CategoryStat) bool { return s.AppCount < lowCompetitionApps },
		func(a, b CategoryStat) bool { return a.AvgRating > b.AvgRating })
	gaps := selectStats(stats, func(s CategoryStat) bool { return s.AvgRating < qualityGapRating },
		func(a, b CategoryStat) bool { return a.AppCount > b.AppCount })
	premium := selectStats(stats, func(s CategoryStat) bool { return s.AvgPrice > premiumCategoryPrice },
		func(a, b CategoryStat) bool { return a.AvgPrice > b.AvgPrice })

	recs := make([]string, len(StrategicRecommendations))
	copy(recs, StrategicRecommendations)

	return Opportunities{
		LowCompetition:   low,
		QualityGaps:      gaps,
		PremiumPotential: premium,
		Recommendations:  recs,
	}
}

func selectStats(stats []CategoryStat, keep func(CategoryStat) bool, less func(a, b CategoryStat) bool) []CategoryStat {
	out := []CategoryStat{}
	for _, s := range stats {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if len(out) > opportunityListLength {
		out = out[:opportunityListLength]
	}
	return out
}

// Summary возвращает краткую сводку
func (q *QueryEngine) Summary() QuickSummary {
	return QuickSummary{
		TotalApps:     q.ds.Len(),
		AndroidApps:   len(q.ds.Platform(models.PlatformAndroid)),
		IOSApps:       len(q.ds.Platform(models.PlatformIOS)),
		Categories:    len(q.ds.groups),
		AvgRating:     round(meanOf(q.ds.Records(), rating), 2),
		HighRatedApps: q.ds.CountWhere(func(r models.UnifiedRecord) bool { return r.Rating >= HighRatingThreshold }),
	}
}

// InsightsSummary возвращает оценки уверенности и начало каждого вывода
func (q *QueryEngine) InsightsSummary() (*InsightsSummary, error) {
	if q.insights == nil {
		return nil, ErrNoInsights
	}
	previews := make(map[string]string, len(q.insights.Insights))
	for kind, text := range q.insights.Insights {
		previews[kind] = Preview(text, insightPreviewRunes)
	}
	return &InsightsSummary{
		ConfidenceScores: q.insights.ConfidenceScores,
		Previews:         previews,
	}, nil
}

// Preview обрезает текст до limit символов, добавляя многоточие
func Preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

func filter(records []models.UnifiedRecord, keep func(models.UnifiedRecord) bool) []models.UnifiedRecord {
	var out []models.UnifiedRecord
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
