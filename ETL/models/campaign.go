package models

// Campaign - одна маркетинговая кампания D2C-датасета
type Campaign struct {
	CampaignID          string  `json:"campaign_id"`
	Channel             string  `json:"channel"`
	SEOCategory         string  `json:"seo_category"`
	SpendUSD            float64 `json:"spend_usd"`
	Impressions         int64   `json:"impressions"`
	Clicks              int64   `json:"clicks"`
	Installs            int64   `json:"installs"`
	Signups             int64   `json:"signups"`
	FirstPurchase       int64   `json:"first_purchase"`
	RepeatPurchase      int64   `json:"repeat_purchase"`
	RevenueUSD          float64 `json:"revenue_usd"`
	ConversionRate      float64 `json:"conversion_rate"`
	MonthlySearchVolume float64 `json:"monthly_search_volume"`
	AvgPosition         float64 `json:"avg_position"`
}
