// Package insights строит аналитику поверх единой таблицы приложений:
// сводку рынка, запросы по категориям, текстовые выводы и отчеты.
package insights

import (
	"math"
	"sort"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
)

// Пороговые значения, общие для всех отчетов
const (
	HighRatingThreshold      = 4.0
	ExcellentRatingThreshold = 4.5
	PopularReviewsThreshold  = 10000
)

// CategoryCount - категория и число приложений в ней
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// categoryGroup - накопленные суммы по одной категории
type categoryGroup struct {
	name       string
	count      int
	ratingSum  float64
	reviewsSum float64
	priceSum   float64
	free       int
	apps       []models.UnifiedRecord
}

func (g *categoryGroup) meanRating() float64  { return safeDiv(g.ratingSum, float64(g.count)) }
func (g *categoryGroup) meanReviews() float64 { return safeDiv(g.reviewsSum, float64(g.count)) }
func (g *categoryGroup) meanPrice() float64   { return safeDiv(g.priceSum, float64(g.count)) }

// Dataset - неизменяемый снимок единой таблицы с предрассчитанными группами по категориям
type Dataset struct {
	records []models.UnifiedRecord
	groups  map[string]*categoryGroup
}

// NewDataset строит снимок. Срез records не копируется и не должен меняться после вызова.
func NewDataset(records []models.UnifiedRecord) *Dataset {
	ds := &Dataset{
		records: records,
		groups:  make(map[string]*categoryGroup),
	}
	for _, r := range records {
		g, ok := ds.groups[r.UnifiedCategory]
		if !ok {
			g = &categoryGroup{name: r.UnifiedCategory}
			ds.groups[r.UnifiedCategory] = g
		}
		g.count++
		g.ratingSum += r.Rating
		g.reviewsSum += float64(r.ReviewCount)
		g.priceSum += r.PriceUSD
		if r.AppType == models.AppTypeFree {
			g.free++
		}
		g.apps = append(g.apps, r)
	}
	return ds
}

// Records возвращает строки снимка
func (ds *Dataset) Records() []models.UnifiedRecord {
	return ds.records
}

// Len возвращает число приложений
func (ds *Dataset) Len() int {
	return len(ds.records)
}

// Filter возвращает строки, удовлетворяющие условию
func (ds *Dataset) Filter(keep func(models.UnifiedRecord) bool) []models.UnifiedRecord {
	return filter(ds.records, keep)
}

// Platform возвращает строки одной платформы
func (ds *Dataset) Platform(p models.Platform) []models.UnifiedRecord {
	return ds.Filter(func(r models.UnifiedRecord) bool { return r.Platform == p })
}

// CountWhere считает строки, удовлетворяющие условию
func (ds *Dataset) CountWhere(match func(models.UnifiedRecord) bool) int {
	return countWhere(ds.records, match)
}

// PlatformCounts возвращает число приложений по платформам
func (ds *Dataset) PlatformCounts() map[string]int {
	out := make(map[string]int)
	for _, r := range ds.records {
		out[string(r.Platform)]++
	}
	return out
}

// CategoryNames возвращает имена категорий по алфавиту
func (ds *Dataset) CategoryNames() []string {
	names := make([]string, 0, len(ds.groups))
	for name := range ds.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TopCategories возвращает n самых многочисленных категорий (n <= 0 - все)
func (ds *Dataset) TopCategories(n int) []CategoryCount {
	return topCategories(ds.records, n)
}

// Completeness - доля заполненных ячеек единой таблицы (0..1)
func (ds *Dataset) Completeness() float64 {
	if len(ds.records) == 0 {
		return 0
	}
	filled := 0
	for _, r := range ds.records {
		filled += filledCells(r)
	}
	return float64(filled) / float64(len(ds.records)*len(models.UnifiedColumns))
}

// filledCells считает непустые ячейки строки так же, как они попадают в CSV
func filledCells(r models.UnifiedRecord) int {
	texts := []string{
		r.AppID, r.AppName, string(r.Platform), r.UnifiedCategory, r.OriginalCategory,
		r.AppType, r.ContentRating, r.Genres, r.DataSource, r.Developer,
		r.Version, r.MinOSVersion,
	}
	n := 4 // rating, review_count, installs, price_usd всегда заполнены
	for _, s := range texts {
		if s != "" {
			n++
		}
	}
	if r.SizeMB.Valid {
		n++
	}
	if r.LastUpdated.Valid {
		n++
	}
	return n
}

func topCategories(records []models.UnifiedRecord, n int) []CategoryCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.UnifiedCategory]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for name, c := range counts {
		out = append(out, CategoryCount{Category: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func countWhere(records []models.UnifiedRecord, match func(models.UnifiedRecord) bool) int {
	n := 0
	for _, r := range records {
		if match(r) {
			n++
		}
	}
	return n
}

func meanOf(records []models.UnifiedRecord, value func(models.UnifiedRecord) float64) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range records {
		sum += value(r)
	}
	return sum / float64(len(records))
}

// meanSize - средний размер по заполненным значениям
func meanSize(records []models.UnifiedRecord) float64 {
	sum, n := 0.0, 0
	for _, r := range records {
		if r.SizeMB.Valid {
			sum += r.SizeMB.Float64
			n++
		}
	}
	return safeDiv(sum, float64(n))
}

func rating(r models.UnifiedRecord) float64  { return r.Rating }
func reviews(r models.UnifiedRecord) float64 { return float64(r.ReviewCount) }
func price(r models.UnifiedRecord) float64   { return r.PriceUSD }

func isFree(r models.UnifiedRecord) bool { return r.AppType == models.AppTypeFree }
func isPaid(r models.UnifiedRecord) bool { return r.AppType == models.AppTypePaid }

func percent(part, total int) float64 {
	return safeDiv(float64(part), float64(total)) * 100
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// round округляет до digits знаков после запятой
func round(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}
