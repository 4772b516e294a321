package marketing

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
)

// AnalyzedColumns - заголовок CSV проанализированных кампаний
var AnalyzedColumns = []string{
	ColCampaignID, ColChannel, ColSEOCategory, ColSpendUSD, ColImpressions,
	ColClicks, ColInstalls, ColSignups, ColFirstPurchase, ColRepeatPurchase,
	ColRevenueUSD, ColConversionRate, ColMonthlySearchVolume, ColAvgPosition,
	"roas", "ctr", "cpa",
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// WriteAnalyzedCSV пишет кампании вместе с рассчитанными ROAS, CTR и CPA
func WriteAnalyzedCSV(w io.Writer, campaigns []models.Campaign) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(AnalyzedColumns); err != nil {
		return err
	}

	for _, c := range campaigns {
		m := CampaignMetricsFor(c)
		if err := writer.Write([]string{
			c.CampaignID,
			c.Channel,
			c.SEOCategory,
			formatFloat(c.SpendUSD),
			formatInt(c.Impressions),
			formatInt(c.Clicks),
			formatInt(c.Installs),
			formatInt(c.Signups),
			formatInt(c.FirstPurchase),
			formatInt(c.RepeatPurchase),
			formatFloat(c.RevenueUSD),
			formatFloat(c.ConversionRate),
			formatFloat(c.MonthlySearchVolume),
			formatFloat(c.AvgPosition),
			formatFloat(m.ROAS),
			formatFloat(m.CTR),
			formatFloat(m.CPA),
		}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
