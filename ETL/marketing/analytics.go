package marketing

import (
	"math"
	"sort"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
)

// Границы распределения кампаний по ROAS
const (
	HighROASThreshold = 3.0
	LowROASThreshold  = 1.5
	topCampaignsLimit = 5
)

// totals - суммы показателей группы кампаний
type totals struct {
	campaigns      int
	spend          float64
	revenue        float64
	impressions    int64
	clicks         int64
	installs       int64
	signups        int64
	firstPurchase  int64
	repeatPurchase int64
	conversionSum  float64
	searchVolume   float64
	positionSum    float64
}

func (t *totals) add(c models.Campaign) {
	t.campaigns++
	t.spend += c.SpendUSD
	t.revenue += c.RevenueUSD
	t.impressions += c.Impressions
	t.clicks += c.Clicks
	t.installs += c.Installs
	t.signups += c.Signups
	t.firstPurchase += c.FirstPurchase
	t.repeatPurchase += c.RepeatPurchase
	t.conversionSum += c.ConversionRate
	t.searchVolume += c.MonthlySearchVolume
	t.positionSum += c.AvgPosition
}

func (t *totals) roas() float64 { return ratio(t.revenue, t.spend) }
func (t *totals) ctr() float64  { return ratio(float64(t.clicks), float64(t.impressions)) * 100 }
func (t *totals) cpa() float64  { return ratio(t.spend, float64(t.installs)) }
func (t *totals) cpc() float64  { return ratio(t.spend, float64(t.clicks)) }

func (t *totals) purchaseRate() float64 {
	return ratio(float64(t.firstPurchase+t.repeatPurchase), float64(t.installs)) * 100
}

func (t *totals) mean(sum float64) float64 { return ratio(sum, float64(t.campaigns)) }

// ratio делит с защитой от нулевого и нечислового знаменателя
func ratio(a, b float64) float64 {
	if b <= 0 || math.IsNaN(b) {
		return 0
	}
	return a / b
}

// ChannelPerformance - показатели одного канала
type ChannelPerformance struct {
	Channel           string  `json:"channel"`
	Campaigns         int     `json:"campaigns"`
	TotalSpend        float64 `json:"total_spend"`
	TotalRevenue      float64 `json:"total_revenue"`
	ROAS              float64 `json:"roas"`
	CTR               float64 `json:"ctr"`
	CPA               float64 `json:"cpa"`
	CPC               float64 `json:"cpc"`
	TotalInstalls     int64   `json:"total_installs"`
	PurchaseRate      float64 `json:"purchase_rate"`
	AvgConversionRate float64 `json:"avg_conversion_rate"`
}

// CategoryPerformance - показатели одной SEO-категории
type CategoryPerformance struct {
	Category        string  `json:"category"`
	Campaigns       int     `json:"campaigns"`
	TotalSpend      float64 `json:"total_spend"`
	TotalRevenue    float64 `json:"total_revenue"`
	ROAS            float64 `json:"roas"`
	CTR             float64 `json:"ctr"`
	CPA             float64 `json:"cpa"`
	CPC             float64 `json:"cpc"`
	PurchaseRate    float64 `json:"purchase_rate"`
	ConversionRate  float64 `json:"conversion_rate"`
	AvgSearchVolume float64 `json:"avg_search_volume"`
	AvgSEOPosition  float64 `json:"avg_seo_position"`
	TotalInstalls   int64   `json:"total_installs"`
}

// FunnelRates - конверсии между этапами воронки, в процентах
type FunnelRates struct {
	ImpressionToClick float64 `json:"impression_to_click"`
	ClickToInstall    float64 `json:"click_to_install"`
	InstallToSignup   float64 `json:"install_to_signup"`
	SignupToPurchase  float64 `json:"signup_to_purchase"`
	PurchaseToRepeat  float64 `json:"purchase_to_repeat"`
}

// FunnelStage - этап воронки с абсолютным значением
type FunnelStage struct {
	Impressions     int64 `json:"impressions"`
	Clicks          int64 `json:"clicks"`
	Installs        int64 `json:"installs"`
	Signups         int64 `json:"signups"`
	FirstPurchases  int64 `json:"first_purchases"`
	RepeatPurchases int64 `json:"repeat_purchases"`
}

// FunnelAnalysis - воронка в целом и по каналам
type FunnelAnalysis struct {
	Totals    FunnelStage            `json:"totals"`
	Overall   FunnelRates            `json:"overall"`
	ByChannel map[string]FunnelRates `json:"by_channel"`
}

// CampaignMetrics - кампания с рассчитанными показателями
type CampaignMetrics struct {
	models.Campaign
	ROAS float64 `json:"roas"`
	CTR  float64 `json:"ctr"`
	CPA  float64 `json:"cpa"`
}

// CampaignEfficiency - средние показатели и лучшие кампании
type CampaignEfficiency struct {
	AvgROAS   float64           `json:"avg_roas"`
	AvgCTR    float64           `json:"avg_ctr"`
	AvgCPA    float64           `json:"avg_cpa"`
	TopByROAS []CampaignMetrics `json:"top_performing_campaigns"`
	TopByCTR  []CampaignMetrics `json:"highest_ctr_campaigns"`
}

// ROASDistribution - число кампаний по уровням ROAS
type ROASDistribution struct {
	High   int `json:"high_roas_campaigns"`
	Medium int `json:"medium_roas_campaigns"`
	Low    int `json:"low_roas_campaigns"`
}

// OverallMetrics - итоги по всем кампаниям
type OverallMetrics struct {
	TotalSpend        float64 `json:"total_spend"`
	TotalRevenue      float64 `json:"total_revenue"`
	OverallROAS       float64 `json:"overall_roas"`
	TotalImpressions  int64   `json:"total_impressions"`
	TotalClicks       int64   `json:"total_clicks"`
	TotalInstalls     int64   `json:"total_installs"`
	AvgConversionRate float64 `json:"avg_conversion_rate"`
}

// CampaignMetricsFor рассчитывает ROAS, CTR и CPA одной кампании
func CampaignMetricsFor(c models.Campaign) CampaignMetrics {
	return CampaignMetrics{
		Campaign: c,
		ROAS:     ratio(c.RevenueUSD, c.SpendUSD),
		CTR:      ratio(float64(c.Clicks), float64(c.Impressions)) * 100,
		CPA:      ratio(c.SpendUSD, float64(c.Installs)),
	}
}

// groupBy собирает суммы по ключу, сохраняя порядок первого появления
func groupBy(campaigns []models.Campaign, key func(models.Campaign) string) ([]string, map[string]*totals) {
	var order []string
	groups := make(map[string]*totals)
	for _, c := range campaigns {
		k := key(c)
		g, ok := groups[k]
		if !ok {
			g = &totals{}
			groups[k] = g
			order = append(order, k)
		}
		g.add(c)
	}
	return order, groups
}

// AnalyzeChannels считает показатели каналов, отсортированные по ROAS по убыванию
func AnalyzeChannels(campaigns []models.Campaign) []ChannelPerformance {
	order, groups := groupBy(campaigns, func(c models.Campaign) string { return c.Channel })

	out := make([]ChannelPerformance, 0, len(order))
	for _, name := range order {
		g := groups[name]
		out = append(out, ChannelPerformance{
			Channel:           name,
			Campaigns:         g.campaigns,
			TotalSpend:        g.spend,
			TotalRevenue:      g.revenue,
			ROAS:              g.roas(),
			CTR:               g.ctr(),
			CPA:               g.cpa(),
			CPC:               g.cpc(),
			TotalInstalls:     g.installs,
			PurchaseRate:      g.purchaseRate(),
			AvgConversionRate: g.mean(g.conversionSum),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ROAS > out[j].ROAS })
	return out
}

// AnalyzeCategories считает показатели SEO-категорий, отсортированные по ROAS по убыванию
func AnalyzeCategories(campaigns []models.Campaign) []CategoryPerformance {
	order, groups := groupBy(campaigns, func(c models.Campaign) string { return c.SEOCategory })

	out := make([]CategoryPerformance, 0, len(order))
	for _, name := range order {
		g := groups[name]
		out = append(out, CategoryPerformance{
			Category:        name,
			Campaigns:       g.campaigns,
			TotalSpend:      g.spend,
			TotalRevenue:    g.revenue,
			ROAS:            g.roas(),
			CTR:             g.ctr(),
			CPA:             g.cpa(),
			CPC:             g.cpc(),
			PurchaseRate:    g.purchaseRate(),
			ConversionRate:  g.mean(g.conversionSum),
			AvgSearchVolume: g.mean(g.searchVolume),
			AvgSEOPosition:  g.mean(g.positionSum),
			TotalInstalls:   g.installs,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ROAS > out[j].ROAS })
	return out
}

func funnelRates(t *totals) FunnelRates {
	return FunnelRates{
		ImpressionToClick: ratio(float64(t.clicks), float64(t.impressions)) * 100,
		ClickToInstall:    ratio(float64(t.installs), float64(t.clicks)) * 100,
		InstallToSignup:   ratio(float64(t.signups), float64(t.installs)) * 100,
		SignupToPurchase:  ratio(float64(t.firstPurchase), float64(t.signups)) * 100,
		PurchaseToRepeat:  ratio(float64(t.repeatPurchase), float64(t.firstPurchase)) * 100,
	}
}

// AnalyzeFunnel считает конверсии воронки в целом и по каналам
func AnalyzeFunnel(campaigns []models.Campaign) FunnelAnalysis {
	var all totals
	for _, c := range campaigns {
		all.add(c)
	}

	order, groups := groupBy(campaigns, func(c models.Campaign) string { return c.Channel })
	byChannel := make(map[string]FunnelRates, len(order))
	for _, name := range order {
		byChannel[name] = funnelRates(groups[name])
	}

	return FunnelAnalysis{
		Totals: FunnelStage{
			Impressions:     all.impressions,
			Clicks:          all.clicks,
			Installs:        all.installs,
			Signups:         all.signups,
			FirstPurchases:  all.firstPurchase,
			RepeatPurchases: all.repeatPurchase,
		},
		Overall:   funnelRates(&all),
		ByChannel: byChannel,
	}
}

// AnalyzeEfficiency считает показатели кампаний и выбирает лучшие по ROAS и CTR
func AnalyzeEfficiency(campaigns []models.Campaign) CampaignEfficiency {
	metrics := make([]CampaignMetrics, 0, len(campaigns))
	var roasSum, ctrSum, cpaSum float64
	for _, c := range campaigns {
		m := CampaignMetricsFor(c)
		metrics = append(metrics, m)
		roasSum += m.ROAS
		ctrSum += m.CTR
		cpaSum += m.CPA
	}

	n := float64(len(metrics))
	return CampaignEfficiency{
		AvgROAS:   ratio(roasSum, n),
		AvgCTR:    ratio(ctrSum, n),
		AvgCPA:    ratio(cpaSum, n),
		TopByROAS: topCampaigns(metrics, func(m CampaignMetrics) float64 { return m.ROAS }),
		TopByCTR:  topCampaigns(metrics, func(m CampaignMetrics) float64 { return m.CTR }),
	}
}

func topCampaigns(metrics []CampaignMetrics, by func(CampaignMetrics) float64) []CampaignMetrics {
	sorted := make([]CampaignMetrics, len(metrics))
	copy(sorted, metrics)
	sort.SliceStable(sorted, func(i, j int) bool { return by(sorted[i]) > by(sorted[j]) })
	if len(sorted) > topCampaignsLimit {
		sorted = sorted[:topCampaignsLimit]
	}
	return sorted
}

// DistributeROAS делит кампании на уровни: high > 3, medium 1.5..3, low < 1.5
func DistributeROAS(campaigns []models.Campaign) ROASDistribution {
	var d ROASDistribution
	for _, c := range campaigns {
		switch roas := ratio(c.RevenueUSD, c.SpendUSD); {
		case roas > HighROASThreshold:
			d.High++
		case roas >= LowROASThreshold:
			d.Medium++
		default:
			d.Low++
		}
	}
	return d
}

// Overall считает итоги по всем кампаниям
func Overall(campaigns []models.Campaign) OverallMetrics {
	var all totals
	for _, c := range campaigns {
		all.add(c)
	}
	return OverallMetrics{
		TotalSpend:        all.spend,
		TotalRevenue:      all.revenue,
		OverallROAS:       all.roas(),
		TotalImpressions:  all.impressions,
		TotalClicks:       all.clicks,
		TotalInstalls:     all.installs,
		AvgConversionRate: all.mean(all.conversionSum),
	}
}
