package insights

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
)

// ReportTimeLayout - формат даты в заголовках отчетов
const ReportTimeLayout = "January 02, 2006 at 03:04 PM"

var sectionTitles = map[string]string{
	KindExecutiveSummary:    "Executive Summary",
	KindMarketTrends:        "Market Trends Analysis",
	KindCompetitiveAnalysis: "Competitive Landscape Analysis",
	KindPricingStrategy:     "Pricing Strategy Insights",
}

// RenderExecutiveReport формирует Markdown-отчет для руководства
func RenderExecutiveReport(ds *Dataset, report *LLMInsightsReport, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# AI-Powered Market Intelligence Report\n")
	fmt.Fprintf(&b, "**Generated on:** %s  \n", now.Format(ReportTimeLayout))
	fmt.Fprintf(&b, "**Analysis Period:** Current Market Snapshot  \n")
	fmt.Fprintf(&b, "**Data Sources:** %s + %s  \n", models.SourceGooglePlay, models.SourceITunes)
	fmt.Fprintf(&b, "**Analysis Engine:** %s\n\n---\n", AnalysisEngine)

	for _, kind := range []string{KindExecutiveSummary, KindMarketTrends, KindCompetitiveAnalysis, KindPricingStrategy} {
		text, ok := report.Insights[kind]
		if !ok {
			text = sectionTitles[kind] + " not available."
		}
		fmt.Fprintf(&b, "\n## %s\n", sectionTitles[kind])
		fmt.Fprintf(&b, "**Confidence Score: %.0f%%**\n\n%s\n\n---\n", report.ConfidenceScores.ByKind(kind), text)
	}

	total := ds.Len()
	android := ds.Platform(models.PlatformAndroid)
	ios := ds.Platform(models.PlatformIOS)
	high := ds.CountWhere(func(r models.UnifiedRecord) bool { return r.Rating >= HighRatingThreshold })
	excellent := ds.CountWhere(func(r models.UnifiedRecord) bool { return r.Rating >= ExcellentRatingThreshold })
	popular := ds.CountWhere(func(r models.UnifiedRecord) bool { return r.ReviewCount >= PopularReviewsThreshold })
	free := ds.CountWhere(isFree)
	paid := ds.CountWhere(isPaid)

	b.WriteString("\n## Key Market Metrics\n\n### Dataset Overview\n")
	fmt.Fprintf(&b, "- **Total Apps Analyzed:** %s\n", humanize.Comma(int64(total)))
	fmt.Fprintf(&b, "- **Android Apps:** %s\n", humanize.Comma(int64(len(android))))
	fmt.Fprintf(&b, "- **iOS Apps:** %s\n", humanize.Comma(int64(len(ios))))
	fmt.Fprintf(&b, "- **Categories Covered:** %d\n", len(ds.groups))

	b.WriteString("\n### Quality Metrics\n")
	fmt.Fprintf(&b, "- **Average App Rating:** %.2f/5.0\n", meanOf(ds.Records(), rating))
	fmt.Fprintf(&b, "- **High-Quality Apps (4.0+):** %s (%.1f%%)\n", humanize.Comma(int64(high)), percent(high, total))
	fmt.Fprintf(&b, "- **Excellent Apps (4.5+):** %s (%.1f%%)\n", humanize.Comma(int64(excellent)), percent(excellent, total))
	fmt.Fprintf(&b, "- **Popular Apps (10K+ reviews):** %s\n", humanize.Comma(int64(popular)))

	b.WriteString("\n### Market Distribution\n")
	fmt.Fprintf(&b, "- **Free Apps:** %s (%.1f%%)\n", humanize.Comma(int64(free)), percent(free, total))
	fmt.Fprintf(&b, "- **Paid Apps:** %s (%.1f%%)\n", humanize.Comma(int64(paid)), percent(paid, total))
	fmt.Fprintf(&b, "- **Average Price:** $%.2f\n", meanOf(ds.Records(), price))

	b.WriteString("\n### Platform Comparison\n")
	fmt.Fprintf(&b, "- **Android Avg Rating:** %.2f/5.0\n", meanOf(android, rating))
	fmt.Fprintf(&b, "- **iOS Avg Rating:** %.2f/5.0\n", meanOf(ios, rating))
	fmt.Fprintf(&b, "- **Android Avg Reviews:** %s\n", humanize.Comma(int64(meanOf(android, reviews)+0.5)))
	fmt.Fprintf(&b, "- **iOS Avg Reviews:** %s\n", humanize.Comma(int64(meanOf(ios, reviews)+0.5)))

	b.WriteString("\n### Top Categories\n")
	for i, c := range ds.TopCategories(10) {
		fmt.Fprintf(&b, "%d. **%s:** %s apps (avg rating: %.2f)\n",
			i+1, c.Category, humanize.Comma(int64(c.Count)), ds.groups[c.Category].meanRating())
	}

	if report.Engagement != nil && report.Engagement.Model != nil {
		m := report.Engagement.Model
		b.WriteString("\n### Engagement Correlation\n")
		fmt.Fprintf(&b, "- **Model:** rating = %.3f × log10(reviews + 1) + %.3f\n", m.A, m.B)
		fmt.Fprintf(&b, "- **Correlation:** r = %.3f, r² = %.3f (%d rated apps)\n", m.R, m.R2, m.Points)
		for _, e := range report.Engagement.Estimates {
			fmt.Fprintf(&b, "- %s reviews: expected rating %.3f (%.3f..%.3f)\n",
				humanize.Comma(e.Reviews), e.Rating, e.CILower, e.CIUpper)
		}
	}

	below := ds.CountWhere(func(r models.UnifiedRecord) bool { return r.Rating < HighRatingThreshold })
	b.WriteString("\n---\n\n## Strategic Insights Summary\n\n### Market Opportunities\n")
	fmt.Fprintf(&b, "Based on comprehensive analysis of %s apps:\n\n", humanize.Comma(int64(total)))
	fmt.Fprintf(&b, "1. **Quality Gap Exploitation**: %.1f%% of apps below 4.0 rating threshold\n", percent(below, total))
	b.WriteString("2. **Platform Specialization**: Distinct iOS premium vs Android volume strategies\n")
	b.WriteString("3. **Category Disruption**: Underserved segments in Business, Health, Education\n")
	b.WriteString("4. **Cross-Platform Synergy**: Leverage platform strengths for maximum market penetration\n")

	b.WriteString("\n---\n\n## Methodology & Data Sources\n\n")
	fmt.Fprintf(&b, "- **Google Play Store:** %s apps from the cleaned dataset\n", humanize.Comma(int64(len(android))))
	fmt.Fprintf(&b, "- **iTunes Search API:** %s iOS apps\n", humanize.Comma(int64(len(ios))))
	fmt.Fprintf(&b, "- **Data Completeness:** %.1f%%\n", ds.Completeness()*100)
	fmt.Fprintf(&b, "- **Category Diversity:** %d categories analyzed\n", len(ds.groups))

	return b.String()
}
