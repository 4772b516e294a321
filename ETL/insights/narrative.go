package insights

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
)

// Виды текстовых выводов
const (
	KindMarketTrends        = "market_trends"
	KindCompetitiveAnalysis = "competitive_analysis"
	KindPricingStrategy     = "pricing_strategy"
	KindExecutiveSummary    = "executive_summary"
)

// NarrativeKinds - порядок вывода текстов в отчетах
var NarrativeKinds = []string{
	KindMarketTrends,
	KindCompetitiveAnalysis,
	KindPricingStrategy,
	KindExecutiveSummary,
}

// AnalysisEngine - название движка, указываемое в отчетах
const AnalysisEngine = "Data-Driven Analysis Engine"

// ConfidenceScores - оценка уверенности (0..100) для каждого вида выводов
type ConfidenceScores struct {
	MarketTrends        float64 `json:"market_trends"`
	CompetitiveAnalysis float64 `json:"competitive_analysis"`
	PricingStrategy     float64 `json:"pricing_strategy"`
	ExecutiveSummary    float64 `json:"executive_summary"`
}

// ByKind возвращает оценку по виду вывода
func (c ConfidenceScores) ByKind(kind string) float64 {
	switch kind {
	case KindMarketTrends:
		return c.MarketTrends
	case KindCompetitiveAnalysis:
		return c.CompetitiveAnalysis
	case KindPricingStrategy:
		return c.PricingStrategy
	case KindExecutiveSummary:
		return c.ExecutiveSummary
	}
	return 0
}

// DataQualityScore считает базовую оценку качества данных:
// полнота (до 30), объем выборки (15..25), покрытие платформ (до 20), разнообразие категорий (до 25)
func DataQualityScore(ds *Dataset) float64 {
	score := ds.Completeness() * 30

	switch n := ds.Len(); {
	case n > 10000:
		score += 25
	case n > 5000:
		score += 20
	default:
		score += 15
	}

	score += math.Min(float64(len(ds.PlatformCounts()))*10, 20)
	score += math.Min(float64(len(ds.groups))*1.5, 25)
	return score
}

// CalculateConfidence рассчитывает уверенность по каждому виду выводов
func CalculateConfidence(ds *Dataset) ConfidenceScores {
	s := DataQualityScore(ds)
	return ConfidenceScores{
		MarketTrends:        round(math.Min(s+5, 94), 2),
		CompetitiveAnalysis: round(math.Min(s, 92), 2),
		PricingStrategy:     round(math.Min(s-2, 90), 2),
		ExecutiveSummary:    round(math.Min(s+3, 93), 2),
	}
}

// narrativeFacts - показатели, подставляемые в тексты
type narrativeFacts struct {
	total          int
	androidRating  float64
	iosRating      float64
	androidReviews float64
	iosReviews     float64
	androidPrice   float64
	iosPrice       float64
	freePct        float64
	highRatedPct   float64
	largest        CategoryCount
	largestRating  float64
	bestRated      string
	bestRating     float64
	top5Apps       int
}

// minAppsForBestRated - минимальный размер категории, чтобы считаться эталоном качества
const minAppsForBestRated = 10

func collectFacts(ds *Dataset) narrativeFacts {
	android := ds.Platform(models.PlatformAndroid)
	ios := ds.Platform(models.PlatformIOS)

	f := narrativeFacts{
		total:          ds.Len(),
		androidRating:  meanOf(android, rating),
		iosRating:      meanOf(ios, rating),
		androidReviews: meanOf(android, reviews),
		iosReviews:     meanOf(ios, reviews),
		androidPrice:   meanOf(android, price),
		iosPrice:       meanOf(ios, price),
		freePct:        percent(ds.CountWhere(isFree), ds.Len()),
		highRatedPct: percent(ds.CountWhere(func(r models.UnifiedRecord) bool {
			return r.Rating >= HighRatingThreshold
		}), ds.Len()),
	}

	for i, c := range ds.TopCategories(5) {
		if i == 0 {
			f.largest = c
			f.largestRating = ds.groups[c.Category].meanRating()
		}
		f.top5Apps += c.Count
	}

	for _, name := range ds.CategoryNames() {
		g := ds.groups[name]
		if g.count < minAppsForBestRated {
			continue
		}
		if f.bestRated == "" || g.meanRating() > f.bestRating {
			f.bestRated, f.bestRating = name, g.meanRating()
		}
	}
	if f.bestRated == "" {
		f.bestRated = "N/A"
	}
	return f
}

// GenerateNarratives строит тексты всех видов по данным снимка
func GenerateNarratives(ds *Dataset) map[string]string {
	f := collectFacts(ds)
	return map[string]string{
		KindMarketTrends:        marketTrends(f),
		KindCompetitiveAnalysis: competitiveAnalysis(f),
		KindPricingStrategy:     pricingStrategy(f),
		KindExecutiveSummary:    executiveSummary(f),
	}
}

func marketTrends(f narrativeFacts) string {
	return fmt.Sprintf(`**AI-Powered Market Trends Analysis**
*Based on comprehensive analysis of %s apps*

**Key Market Trends Identified:**

Platform Quality Differential: iOS shows %.2f average rating vs Android's %.2f.

Engagement Disparity: iOS apps show %.1fx the review engagement of Android (%s vs %s).

Category Leadership: %s dominates volume (%s apps) while %s leads on quality (%.2f average rating).

Monetization Patterns: %.1f%% of the market is free, with platform-specific pricing strategies (iOS average $%.2f, Android average $%.2f).

**Strategic Implications:**
- Cross-platform development requires differentiated quality approaches
- iOS-first strategy viable for premium positioning
- Android volume strategy needs freemium optimization
- Category-specific quality gaps present market entry opportunities`,
		humanize.Comma(int64(f.total)),
		f.iosRating, f.androidRating,
		safeDiv(f.iosReviews, f.androidReviews),
		humanize.Comma(int64(math.Round(f.iosReviews))), humanize.Comma(int64(math.Round(f.androidReviews))),
		f.largest.Category, humanize.Comma(int64(f.largest.Count)), f.bestRated, f.bestRating,
		f.freePct, f.iosPrice, f.androidPrice,
	)
}

func competitiveAnalysis(f narrativeFacts) string {
	return fmt.Sprintf(`**Competitive Landscape Intelligence**
*Strategic analysis of market concentration and competitive dynamics*

**Market Concentration Analysis:**

High-Competition Segments:
- Top 5 categories control %s apps (%.1f%% market share)
- %s: highest volume with quality differentiation opportunity (average rating %.2f)
- %s: quality benchmark (average rating %.2f)

Market Entry Barriers:
- Quality threshold: 4.0+ rating required for competitive positioning (%.1f%% of apps achieve this)
- Platform-specific barriers: iOS higher quality expectations, Android volume competition
- Category maturity: established categories require significant differentiation investment

**Competitive Positioning Strategies:**
- Niche specialization within broader categories
- Platform-native optimization for competitive advantage
- Quality-first approach in saturated markets
- Cross-platform synergy for distribution leverage`,
		humanize.Comma(int64(f.top5Apps)), percent(f.top5Apps, f.total),
		f.largest.Category, f.largestRating,
		f.bestRated, f.bestRating,
		f.highRatedPct,
	)
}

func pricingStrategy(f narrativeFacts) string {
	return fmt.Sprintf(`**Data-Driven Pricing Strategy Recommendations**
*Revenue optimization insights from cross-platform market analysis*

**Platform-Specific Monetization:**

iOS Premium Positioning:
- Average pricing: $%.2f
- Higher willingness to pay demonstrated through engagement metrics

Android Volume Strategy:
- Average pricing: $%.2f
- Ad-supported models drive user acquisition

**Market Baseline:** %.1f%% of apps are free.

**Revenue Optimization Tactics:**
1. Regional Pricing: adjust for market purchasing power
2. A/B Testing: price sensitivity analysis by segment
3. Freemium Funnel: optimize conversion points
4. Platform-Native: leverage platform-specific monetization features`,
		f.iosPrice, f.androidPrice, f.freePct,
	)
}

func executiveSummary(f narrativeFacts) string {
	return fmt.Sprintf(`**Executive Market Intelligence Summary**
*Strategic overview for C-level decision making*

**Market Opportunity Assessment:**

Market Size: Analysis of %s apps across Android and iOS platforms.

Key Strategic Findings:

1. Quality Differentiation Critical: %.1f%% of apps achieve 4.0+ ratings

2. Platform Strategy Required: iOS (%.2f avg rating) and Android (%.2f avg rating) require distinct approaches

3. Market Concentration: %s is the largest category with %s apps

**Investment Priorities:**
- iOS premium app development (higher engagement, willingness to pay)
- Quality-focused Android apps in underserved categories
- Cross-platform Business/Productivity tools

**Success Metrics**: Target 4.5+ rating, 10K+ downloads within 6 months, positive unit economics by month 9.`,
		humanize.Comma(int64(f.total)),
		f.highRatedPct,
		f.iosRating, f.androidRating,
		f.largest.Category, humanize.Comma(int64(f.largest.Count)),
	)
}

// InsightsExecution - сведения о генерации выводов
type InsightsExecution struct {
	Timestamp         time.Time `json:"timestamp"`
	Engine            string    `json:"engine"`
	TotalAppsAnalyzed int       `json:"total_apps_analyzed"`
	InsightsGenerated int       `json:"insights_generated"`
}

// QualitySummary - сводка качества для отчета с выводами
type QualitySummary struct {
	AvgRating     float64 `json:"avg_rating"`
	HighRatedApps int     `json:"high_rated_apps"`
	PopularApps   int     `json:"popular_apps"`
}

// PricingSummary - сводка цен для отчета с выводами
type PricingSummary struct {
	FreeApps int     `json:"free_apps"`
	PaidApps int     `json:"paid_apps"`
	AvgPrice float64 `json:"avg_price"`
}

// DataSummary - показатели, на которых построены выводы
type DataSummary struct {
	Platforms     map[string]int  `json:"platforms"`
	TopCategories []CategoryCount `json:"top_categories"`
	Quality       QualitySummary  `json:"quality_metrics"`
	Pricing       PricingSummary  `json:"pricing_metrics"`
}

// LLMInsightsReport - отчет reports/llm_insights_report.json
type LLMInsightsReport struct {
	Execution        InsightsExecution      `json:"execution"`
	ConfidenceScores ConfidenceScores       `json:"confidence_scores"`
	Insights         map[string]string      `json:"ai_insights"`
	DataSummary      DataSummary            `json:"data_summary"`
	Engagement       *EngagementCorrelation `json:"engagement_correlation,omitempty"`
}

// BuildLLMInsightsReport собирает тексты, уверенность и сводку данных в один отчет
func BuildLLMInsightsReport(ds *Dataset, engagement *EngagementCorrelation, now time.Time) *LLMInsightsReport {
	narratives := GenerateNarratives(ds)
	return &LLMInsightsReport{
		Execution: InsightsExecution{
			Timestamp:         now,
			Engine:            AnalysisEngine,
			TotalAppsAnalyzed: ds.Len(),
			InsightsGenerated: len(narratives),
		},
		ConfidenceScores: CalculateConfidence(ds),
		Insights:         narratives,
		DataSummary: DataSummary{
			Platforms:     ds.PlatformCounts(),
			TopCategories: ds.TopCategories(10),
			Quality: QualitySummary{
				AvgRating:     round(meanOf(ds.Records(), rating), 4),
				HighRatedApps: ds.CountWhere(func(r models.UnifiedRecord) bool { return r.Rating >= HighRatingThreshold }),
				PopularApps:   ds.CountWhere(func(r models.UnifiedRecord) bool { return r.ReviewCount >= PopularReviewsThreshold }),
			},
			Pricing: PricingSummary{
				FreeApps: ds.CountWhere(isFree),
				PaidApps: ds.CountWhere(isPaid),
				AvgPrice: round(meanOf(ds.Records(), price), 4),
			},
		},
		Engagement: engagement,
	}
}

// InsightsReportFile - имя файла отчета с выводами в каталоге отчетов
const InsightsReportFile = "llm_insights_report.json"

// ReadLLMInsightsReport читает сохраненный отчет с выводами
func ReadLLMInsightsReport(path string) (*LLMInsightsReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения отчета с выводами %s: %w", path, err)
	}
	var report LLMInsightsReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("ошибка разбора отчета с выводами %s: %w", path, err)
	}
	return &report, nil
}
