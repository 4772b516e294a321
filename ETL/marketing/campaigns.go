// Package marketing анализирует эффективность D2C-кампаний:
// каналы, категории, воронку и отдельные кампании.
package marketing

import (
	"strings"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
	"github.com/LilVoxy/appmarket_intel/ETL/transform"
)

// Колонки листа D2C-кампаний
const (
	ColCampaignID          = "campaign_id"
	ColChannel             = "channel"
	ColSEOCategory         = "seo_category"
	ColSpendUSD            = "spend_usd"
	ColImpressions         = "impressions"
	ColClicks              = "clicks"
	ColInstalls            = "installs"
	ColSignups             = "signups"
	ColFirstPurchase       = "first_purchase"
	ColRepeatPurchase      = "repeat_purchase"
	ColRevenueUSD          = "revenue_usd"
	ColConversionRate      = "conversion_rate"
	ColMonthlySearchVolume = "monthly_search_volume"
	ColAvgPosition         = "avg_position"
)

// ParseStats - итоги разбора строк книги
type ParseStats struct {
	Rows            int `json:"rows"`
	Campaigns       int `json:"campaigns"`
	SkippedNoID     int `json:"skipped_without_id"`
	NumberFallbacks int `json:"number_fallbacks"`
}

// ParseCampaigns приводит строки книги к кампаниям.
// Нечисловые значения заменяются нулем и учитываются в NumberFallbacks,
// строки без campaign_id пропускаются.
func ParseCampaigns(rows []models.RawRecord) ([]models.Campaign, ParseStats) {
	stats := ParseStats{Rows: len(rows)}
	campaigns := make([]models.Campaign, 0, len(rows))

	for _, row := range rows {
		id := strings.TrimSpace(row.TextOr(ColCampaignID, ""))
		if id == "" {
			stats.SkippedNoID++
			continue
		}

		num := func(col string) float64 {
			f, ok := transform.CoerceFloat(row[col])
			if !ok {
				stats.NumberFallbacks++
			}
			return f
		}
		count := func(col string) int64 {
			return int64(num(col))
		}

		campaigns = append(campaigns, models.Campaign{
			CampaignID:          id,
			Channel:             strings.TrimSpace(row.TextOr(ColChannel, "")),
			SEOCategory:         strings.TrimSpace(row.TextOr(ColSEOCategory, "")),
			SpendUSD:            num(ColSpendUSD),
			Impressions:         count(ColImpressions),
			Clicks:              count(ColClicks),
			Installs:            count(ColInstalls),
			Signups:             count(ColSignups),
			FirstPurchase:       count(ColFirstPurchase),
			RepeatPurchase:      count(ColRepeatPurchase),
			RevenueUSD:          num(ColRevenueUSD),
			ConversionRate:      num(ColConversionRate),
			MonthlySearchVolume: num(ColMonthlySearchVolume),
			AvgPosition:         num(ColAvgPosition),
		})
	}

	stats.Campaigns = len(campaigns)
	return campaigns, stats
}
