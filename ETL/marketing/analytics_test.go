package marketing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
)

func sampleCampaigns() []models.Campaign {
	return []models.Campaign{
		{CampaignID: "C1", Channel: "Google Ads", SEOCategory: "Fitness", SpendUSD: 100, Impressions: 1000, Clicks: 100,
			Installs: 50, Signups: 20, FirstPurchase: 10, RepeatPurchase: 5, RevenueUSD: 400, ConversionRate: 5,
			MonthlySearchVolume: 1000, AvgPosition: 3},
		{CampaignID: "C2", Channel: "Google Ads", SEOCategory: "Games", SpendUSD: 200, Impressions: 4000, Clicks: 200,
			Installs: 100, Signups: 40, FirstPurchase: 20, RepeatPurchase: 4, RevenueUSD: 300, ConversionRate: 3,
			MonthlySearchVolume: 3000, AvgPosition: 7},
		// кампания без показов и расходов
		{CampaignID: "C3", Channel: "Meta", SEOCategory: "Fitness"},
		{CampaignID: "C4", Channel: "Meta", SEOCategory: "Games", SpendUSD: 100, Impressions: 2000, Clicks: 50,
			Installs: 10, Signups: 5, FirstPurchase: 2, RevenueUSD: 200, ConversionRate: 2,
			MonthlySearchVolume: 2000, AvgPosition: 5},
	}
}

func TestAnalyzeChannels(t *testing.T) {
	channels := AnalyzeChannels(sampleCampaigns())
	require.Len(t, channels, 2)

	google := channels[0]
	assert.Equal(t, "Google Ads", google.Channel)
	assert.Equal(t, 2, google.Campaigns)
	assert.InDelta(t, 700.0/300.0, google.ROAS, 1e-9)
	assert.InDelta(t, 6.0, google.CTR, 1e-9)
	assert.InDelta(t, 2.0, google.CPA, 1e-9)
	assert.InDelta(t, 1.0, google.CPC, 1e-9)
	assert.Equal(t, int64(150), google.TotalInstalls)
	assert.InDelta(t, 26.0, google.PurchaseRate, 1e-9)
	assert.InDelta(t, 4.0, google.AvgConversionRate, 1e-9)

	meta := channels[1]
	assert.Equal(t, "Meta", meta.Channel)
	assert.InDelta(t, 2.0, meta.ROAS, 1e-9)
	assert.InDelta(t, 2.5, meta.CTR, 1e-9)
	assert.InDelta(t, 10.0, meta.CPA, 1e-9)
	assert.InDelta(t, 20.0, meta.PurchaseRate, 1e-9)
	assert.InDelta(t, 1.0, meta.AvgConversionRate, 1e-9)
}

func TestAnalyzeCategories(t *testing.T) {
	categories := AnalyzeCategories(sampleCampaigns())
	require.Len(t, categories, 2)

	assert.Equal(t, "Fitness", categories[0].Category)
	assert.InDelta(t, 4.0, categories[0].ROAS, 1e-9)
	assert.InDelta(t, 500.0, categories[0].AvgSearchVolume, 1e-9)
	assert.InDelta(t, 1.5, categories[0].AvgSEOPosition, 1e-9)
	assert.InDelta(t, 2.5, categories[0].ConversionRate, 1e-9)

	assert.Equal(t, "Games", categories[1].Category)
	assert.InDelta(t, 500.0/300.0, categories[1].ROAS, 1e-9)
	assert.Equal(t, int64(110), categories[1].TotalInstalls)
}

func TestAnalyzeFunnel(t *testing.T) {
	funnel := AnalyzeFunnel(sampleCampaigns())

	assert.Equal(t, int64(7000), funnel.Totals.Impressions)
	assert.Equal(t, int64(9), funnel.Totals.RepeatPurchases)
	assert.InDelta(t, 5.0, funnel.Overall.ImpressionToClick, 1e-9)
	assert.InDelta(t, 160.0/350.0*100, funnel.Overall.ClickToInstall, 1e-9)
	assert.InDelta(t, 40.625, funnel.Overall.InstallToSignup, 1e-9)
	assert.InDelta(t, 28.125, funnel.Overall.PurchaseToRepeat, 1e-9)

	require.Contains(t, funnel.ByChannel, "Meta")
	meta := funnel.ByChannel["Meta"]
	assert.InDelta(t, 2.5, meta.ImpressionToClick, 1e-9)
	assert.InDelta(t, 20.0, meta.ClickToInstall, 1e-9)
	assert.InDelta(t, 50.0, meta.InstallToSignup, 1e-9)
	assert.InDelta(t, 40.0, meta.SignupToPurchase, 1e-9)
	assert.Equal(t, 0.0, meta.PurchaseToRepeat)
}

func TestAnalyzeEfficiency(t *testing.T) {
	eff := AnalyzeEfficiency(sampleCampaigns())

	assert.InDelta(t, 1.875, eff.AvgROAS, 1e-9)
	assert.InDelta(t, 4.375, eff.AvgCTR, 1e-9)
	assert.InDelta(t, 3.5, eff.AvgCPA, 1e-9)

	ids := func(ms []CampaignMetrics) []string {
		var out []string
		for _, m := range ms {
			out = append(out, m.CampaignID)
		}
		return out
	}
	assert.Equal(t, []string{"C1", "C4", "C2", "C3"}, ids(eff.TopByROAS))
	assert.Equal(t, []string{"C1", "C2", "C4", "C3"}, ids(eff.TopByCTR))
}

func TestAnalyzeEfficiency_TopLimit(t *testing.T) {
	var campaigns []models.Campaign
	for i := 0; i < 8; i++ {
		campaigns = append(campaigns, models.Campaign{CampaignID: string(rune('A' + i)), SpendUSD: 1, RevenueUSD: float64(i)})
	}
	eff := AnalyzeEfficiency(campaigns)
	require.Len(t, eff.TopByROAS, 5)
	assert.Equal(t, "H", eff.TopByROAS[0].CampaignID)
}

func TestZeroDenominators(t *testing.T) {
	m := CampaignMetricsFor(models.Campaign{CampaignID: "Z", RevenueUSD: 50, Clicks: 3})
	assert.Equal(t, 0.0, m.ROAS)
	assert.Equal(t, 0.0, m.CTR)
	assert.Equal(t, 0.0, m.CPA)

	assert.Equal(t, OverallMetrics{}, Overall(nil))
	assert.Empty(t, AnalyzeChannels(nil))
	assert.Equal(t, CampaignEfficiency{TopByROAS: []CampaignMetrics{}, TopByCTR: []CampaignMetrics{}}, AnalyzeEfficiency(nil))
}

func TestDistributeROAS(t *testing.T) {
	assert.Equal(t, ROASDistribution{High: 1, Medium: 2, Low: 1}, DistributeROAS(sampleCampaigns()))

	// границы: ровно 3 и ровно 1.5 относятся к medium
	edges := []models.Campaign{
		{SpendUSD: 1, RevenueUSD: 3},
		{SpendUSD: 2, RevenueUSD: 3},
		{SpendUSD: 1, RevenueUSD: 3.01},
		{SpendUSD: 1, RevenueUSD: 1.49},
	}
	assert.Equal(t, ROASDistribution{High: 1, Medium: 2, Low: 1}, DistributeROAS(edges))
}

func TestAnalyze(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	report := Analyze(sampleCampaigns(), ParseStats{Rows: 4, Campaigns: 4}, now)

	assert.Equal(t, Execution{
		Timestamp:          now,
		AnalysisType:       AnalysisType,
		CampaignsAnalyzed:  4,
		ChannelsAnalyzed:   2,
		CategoriesAnalyzed: 2,
	}, report.Execution)

	assert.InDelta(t, 400.0, report.OverallMetrics.TotalSpend, 1e-9)
	assert.InDelta(t, 900.0, report.OverallMetrics.TotalRevenue, 1e-9)
	assert.InDelta(t, 2.25, report.OverallMetrics.OverallROAS, 1e-9)
	assert.InDelta(t, 2.5, report.OverallMetrics.AvgConversionRate, 1e-9)
	assert.Equal(t, map[string]int{"Google Ads": 2, "Meta": 2}, report.DataSummary.Channels)
	assert.Equal(t, "Google Ads", report.BestChannel())

	text := report.AnalyticsInsights.StrategicInsights
	assert.Contains(t, text, "*Based on analysis of 4 campaigns across 2 channels*")
	assert.Contains(t, text, "- Total Marketing Spend: $400.00")
	assert.Contains(t, text, "- Total Revenue Generated: $900.00")
	assert.Contains(t, text, "- Overall ROAS: 2.25x")
	assert.Contains(t, text, "- Average Conversion Rate: 2.50%")
	assert.Contains(t, text, "- Best Channel: Google Ads (highest ROAS)")
	assert.Contains(t, text, "- Best Category: Fitness (highest revenue efficiency)")
}

func TestStrategicInsights_NoCampaigns(t *testing.T) {
	report := Analyze(nil, ParseStats{}, time.Now())
	assert.Equal(t, "N/A", report.BestChannel())
	assert.Contains(t, report.AnalyticsInsights.StrategicInsights, "- Best Channel: N/A")
	assert.Contains(t, report.AnalyticsInsights.StrategicInsights, "- Overall ROAS: 0.00x")
}
