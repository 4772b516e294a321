package insights

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
)

// premiumAppPrice - цена, начиная с которой приложение считается премиальным
const premiumAppPrice = 5.0

// DashboardSnapshot - показатели исполнительной панели
type DashboardSnapshot struct {
	GeneratedAt         time.Time          `json:"generated_at"`
	TotalApps           int                `json:"total_apps"`
	AndroidApps         int                `json:"android_apps"`
	IOSApps             int                `json:"ios_apps"`
	Categories          int                `json:"categories"`
	CompletenessPercent float64            `json:"completeness_percent"`
	AvgRating           float64            `json:"avg_rating"`
	HighRatedApps       int                `json:"high_rated_apps"`
	ExcellentApps       int                `json:"excellent_apps"`
	PopularApps         int                `json:"popular_apps"`
	AndroidAvgRating    float64            `json:"android_avg_rating"`
	IOSAvgRating        float64            `json:"ios_avg_rating"`
	EngagementRatio     float64            `json:"engagement_ratio"`
	FreePercent         float64            `json:"free_percent"`
	PaidPercent         float64            `json:"paid_percent"`
	AvgPrice            float64            `json:"avg_price"`
	PremiumApps         int                `json:"premium_apps"`
	TopCategories       []CategoryOverview `json:"top_categories"`
	Confidence          *ConfidenceScores  `json:"confidence,omitempty"`
}

// BuildDashboard рассчитывает показатели панели. scores может быть nil.
func BuildDashboard(q *QueryEngine, scores *ConfidenceScores, now time.Time) DashboardSnapshot {
	ds := q.Dataset()
	android := ds.Platform(models.PlatformAndroid)
	ios := ds.Platform(models.PlatformIOS)
	total := ds.Len()

	return DashboardSnapshot{
		GeneratedAt:         now,
		TotalApps:           total,
		AndroidApps:         len(android),
		IOSApps:             len(ios),
		Categories:          len(ds.groups),
		CompletenessPercent: round(ds.Completeness()*100, 1),
		AvgRating:           round(meanOf(ds.Records(), rating), 2),
		HighRatedApps:       ds.CountWhere(func(r models.UnifiedRecord) bool { return r.Rating >= HighRatingThreshold }),
		ExcellentApps:       ds.CountWhere(func(r models.UnifiedRecord) bool { return r.Rating >= ExcellentRatingThreshold }),
		PopularApps:         ds.CountWhere(func(r models.UnifiedRecord) bool { return r.ReviewCount >= PopularReviewsThreshold }),
		AndroidAvgRating:    round(meanOf(android, rating), 2),
		IOSAvgRating:        round(meanOf(ios, rating), 2),
		EngagementRatio:     round(safeDiv(meanOf(ios, reviews), meanOf(android, reviews)), 1),
		FreePercent:         round(percent(ds.CountWhere(isFree), total), 1),
		PaidPercent:         round(percent(ds.CountWhere(isPaid), total), 1),
		AvgPrice:            round(meanOf(ds.Records(), price), 2),
		PremiumApps:         ds.CountWhere(func(r models.UnifiedRecord) bool { return r.PriceUSD > premiumAppPrice }),
		TopCategories:       q.TopCategories(5),
		Confidence:          scores,
	}
}

// RenderDashboard выводит исполнительную панель в виде таблиц
func RenderDashboard(w io.Writer, d DashboardSnapshot) {
	fmt.Fprintln(w, "🚀 AI-POWERED MARKET INTELLIGENCE - EXECUTIVE DASHBOARD")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "Generated: %s\n\n", d.GeneratedAt.Format(ReportTimeLayout))

	renderKeyValues(w, "📊 MARKET OVERVIEW", [][2]string{
		{"Total Apps Analyzed", humanize.Comma(int64(d.TotalApps))},
		{"Android Apps", humanize.Comma(int64(d.AndroidApps))},
		{"iOS Apps", humanize.Comma(int64(d.IOSApps))},
		{"Categories Covered", fmt.Sprint(d.Categories)},
		{"Data Completeness", fmt.Sprintf("%.1f%%", d.CompletenessPercent)},
	})

	renderKeyValues(w, "⭐ QUALITY METRICS", [][2]string{
		{"Average Rating", fmt.Sprintf("%.2f/5.0", d.AvgRating)},
		{"High-Quality Apps (4.0+)", fmt.Sprintf("%s (%.1f%%)", humanize.Comma(int64(d.HighRatedApps)), percent(d.HighRatedApps, d.TotalApps))},
		{"Excellent Apps (4.5+)", fmt.Sprintf("%s (%.1f%%)", humanize.Comma(int64(d.ExcellentApps)), percent(d.ExcellentApps, d.TotalApps))},
		{"Popular Apps (10K+ reviews)", humanize.Comma(int64(d.PopularApps))},
	})

	renderKeyValues(w, "🏪 PLATFORM COMPARISON", [][2]string{
		{"Android Avg Rating", fmt.Sprintf("%.2f/5.0", d.AndroidAvgRating)},
		{"iOS Avg Rating", fmt.Sprintf("%.2f/5.0", d.IOSAvgRating)},
		{"Quality Gap", fmt.Sprintf("iOS %+.2f stars", d.IOSAvgRating-d.AndroidAvgRating)},
		{"Engagement Ratio", fmt.Sprintf("iOS %.1fx reviews", d.EngagementRatio)},
	})

	renderKeyValues(w, "💰 MONETIZATION INSIGHTS", [][2]string{
		{"Free Apps", fmt.Sprintf("%.1f%%", d.FreePercent)},
		{"Paid Apps", fmt.Sprintf("%.1f%%", d.PaidPercent)},
		{"Average Price", fmt.Sprintf("$%.2f", d.AvgPrice)},
		{"Premium Apps (>$5)", humanize.Comma(int64(d.PremiumApps))},
	})

	fmt.Fprintln(w, "📱 TOP CATEGORIES")
	RenderTopCategories(w, d.TopCategories)

	if d.Confidence != nil {
		rows := make([][2]string, 0, len(NarrativeKinds))
		for _, kind := range NarrativeKinds {
			rows = append(rows, [2]string{titleCase(kind), fmt.Sprintf("%.0f%%", d.Confidence.ByKind(kind))})
		}
		renderKeyValues(w, "🎯 AI INSIGHTS CONFIDENCE", rows)
	}
}

// RenderTopCategories выводит таблицу категорий
func RenderTopCategories(w io.Writer, cats []CategoryOverview) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Category", "Apps", "Avg Rating", "Avg Reviews", "Free %"})
	for i, c := range cats {
		t.AppendRow(table.Row{
			i + 1,
			c.Category,
			humanize.Comma(int64(c.AppCount)),
			fmt.Sprintf("%.2f", c.AvgRating),
			humanize.Comma(int64(c.AvgReviews)),
			fmt.Sprintf("%.1f%%", c.FreePercent),
		})
	}
	t.Render()
	fmt.Fprintln(w)
}

// RenderPlatformComparison выводит сравнение платформ
func RenderPlatformComparison(w io.Writer, pc PlatformComparison) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Metric", "Android", "iOS"})
	t.AppendRows([]table.Row{
		{"Total Apps", humanize.Comma(int64(pc.Android.TotalApps)), humanize.Comma(int64(pc.IOS.TotalApps))},
		{"Avg Rating", fmt.Sprintf("%.2f", pc.Android.AvgRating), fmt.Sprintf("%.2f", pc.IOS.AvgRating)},
		{"Avg Reviews", humanize.Comma(int64(pc.Android.AvgReviews)), humanize.Comma(int64(pc.IOS.AvgReviews))},
		{"Avg Price", fmt.Sprintf("$%.2f", pc.Android.AvgPrice), fmt.Sprintf("$%.2f", pc.IOS.AvgPrice)},
		{"Avg Size (MB)", fmt.Sprintf("%.1f", pc.Android.AvgSizeMB), fmt.Sprintf("%.1f", pc.IOS.AvgSizeMB)},
		{"Free %", fmt.Sprintf("%.1f%%", pc.Android.FreePercent), fmt.Sprintf("%.1f%%", pc.IOS.FreePercent)},
	})
	t.AppendFooter(table.Row{"iOS - Android", fmt.Sprintf("rating %+.2f", pc.RatingDiff), fmt.Sprintf("price %+.2f", pc.PriceDiff)})
	t.Render()
	fmt.Fprintln(w)
}

// RenderCategoryDeepDive выводит анализ одной категории
func RenderCategoryDeepDive(w io.Writer, dd *CategoryDeepDive) {
	rows := [][2]string{
		{"Total Apps", humanize.Comma(int64(dd.TotalApps))},
		{"Android / iOS", fmt.Sprintf("%d / %d", dd.AndroidApps, dd.IOSApps)},
		{"Avg Rating", fmt.Sprintf("%.2f", dd.AvgRating)},
		{"High-Rated (4.0+)", fmt.Sprintf("%d (%.1f%%)", dd.HighRatedApps, percent(dd.HighRatedApps, dd.TotalApps))},
		{"Popular (10K+ reviews)", fmt.Sprint(dd.PopularApps)},
		{"Free / Paid", fmt.Sprintf("%d / %d", dd.FreeApps, dd.PaidApps)},
		{"Avg Paid Price", fmt.Sprintf("$%.2f", dd.AvgPaidPrice)},
	}
	if dd.Size != nil {
		rows = append(rows, [2]string{"Size (MB)", fmt.Sprintf("%.1f..%.1f (avg %.1f)", dd.Size.Min, dd.Size.Max, dd.Size.Avg)})
	}
	renderKeyValues(w, "🔍 "+strings.ToUpper(dd.Category), rows)

	t := newTable(w)
	t.AppendHeader(table.Row{"App", "Platform", "Rating", "Reviews", "Price"})
	for _, a := range dd.TopApps {
		t.AppendRow(table.Row{a.AppName, a.Platform, fmt.Sprintf("%.1f", a.Rating), humanize.Comma(a.ReviewCount), fmt.Sprintf("$%.2f", a.PriceUSD)})
	}
	t.Render()
	fmt.Fprintln(w)
}

// RenderPricing выводит анализ цен
func RenderPricing(w io.Writer, pi PricingInsights) {
	renderKeyValues(w, "💰 PRICING ANALYSIS", [][2]string{
		{"Free Apps", humanize.Comma(int64(pi.FreeApps))},
		{"Paid Apps", humanize.Comma(int64(pi.PaidApps))},
		{"Under $1", fmt.Sprint(pi.PriceDistribution.Under1)},
		{"$1 - $5", fmt.Sprint(pi.PriceDistribution.Range1To5)},
		{"$5 - $10", fmt.Sprint(pi.PriceDistribution.Range5To10)},
		{"Over $10", fmt.Sprint(pi.PriceDistribution.Over10)},
		{"Android Avg Paid", fmt.Sprintf("$%.2f", pi.AndroidAvgPaidPrice)},
		{"iOS Avg Paid", fmt.Sprintf("$%.2f", pi.IOSAvgPaidPrice)},
	})

	t := newTable(w)
	t.AppendHeader(table.Row{"Premium Category", "Avg Price", "Apps", "Paid %"})
	for _, c := range pi.PremiumCategories {
		t.AppendRow(table.Row{c.Category, fmt.Sprintf("$%.2f", c.AvgPrice), c.AppCount, fmt.Sprintf("%.1f%%", c.PaidPercent)})
	}
	t.Render()
	fmt.Fprintln(w)
}

// RenderOpportunities выводит рыночные возможности
func RenderOpportunities(w io.Writer, o Opportunities) {
	sections := []struct {
		title string
		stats []CategoryStat
	}{
		{"🔹 LOW COMPETITION CATEGORIES (<200 apps)", o.LowCompetition},
		{"🔸 QUALITY GAP OPPORTUNITIES (<4.0 avg rating)", o.QualityGaps},
		{"💎 PREMIUM PRICING OPPORTUNITIES (>$2.0 avg)", o.PremiumPotential},
	}
	for _, s := range sections {
		fmt.Fprintln(w, s.title)
		t := newTable(w)
		t.AppendHeader(table.Row{"Category", "Apps", "Avg Rating", "Avg Price"})
		for _, c := range s.stats {
			t.AppendRow(table.Row{c.Category, c.AppCount, fmt.Sprintf("%.2f", c.AvgRating), fmt.Sprintf("$%.2f", c.AvgPrice)})
		}
		t.Render()
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "🚀 STRATEGIC RECOMMENDATIONS")
	for i, r := range o.Recommendations {
		fmt.Fprintf(w, "   %d. %s\n", i+1, r)
	}
	fmt.Fprintln(w)
}

// RenderSummary выводит краткую сводку
func RenderSummary(w io.Writer, s QuickSummary) {
	renderKeyValues(w, "📋 QUICK SUMMARY", [][2]string{
		{"Total Apps", humanize.Comma(int64(s.TotalApps))},
		{"Android / iOS", fmt.Sprintf("%s / %s", humanize.Comma(int64(s.AndroidApps)), humanize.Comma(int64(s.IOSApps)))},
		{"Categories", fmt.Sprint(s.Categories)},
		{"Avg Rating", fmt.Sprintf("%.2f", s.AvgRating)},
		{"High-Quality Apps (4.0+)", humanize.Comma(int64(s.HighRatedApps))},
	})
}

// RenderInsightsSummary выводит уверенность и начало каждого текстового вывода
func RenderInsightsSummary(w io.Writer, s *InsightsSummary) {
	fmt.Fprintln(w, "🧠 AI-GENERATED MARKET INSIGHTS SUMMARY")
	for _, kind := range NarrativeKinds {
		text, ok := s.Previews[kind]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "\n%s (confidence %.0f%%)\n   %s\n", strings.ToUpper(titleCase(kind)), s.ConfidenceScores.ByKind(kind), text)
	}
	fmt.Fprintln(w)
}

func renderKeyValues(w io.Writer, title string, rows [][2]string) {
	fmt.Fprintln(w, title)
	t := newTable(w)
	for _, r := range rows {
		t.AppendRow(table.Row{r[0], r[1]})
	}
	t.Render()
	fmt.Fprintln(w)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// titleCase превращает market_trends в Market Trends
func titleCase(kind string) string {
	words := strings.Split(kind, "_")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}
