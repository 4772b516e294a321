package transform

import (
	"strings"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
	"github.com/LilVoxy/appmarket_intel/ETL/utils"
)

// Колонки датасета Google Play
const (
	colApp           = "App"
	colCategory      = "Category"
	colRating        = "Rating"
	colReviews       = "Reviews"
	colSize          = "Size"
	colInstalls      = "Installs"
	colType          = "Type"
	colPrice         = "Price"
	colContentRating = "Content Rating"
	colGenres        = "Genres"
	colLastUpdated   = "Last Updated"
	colCurrentVer    = "Current Ver"
	colAndroidVer    = "Android Ver"
)

// PlayStoreColumns - обязательные колонки CSV Google Play
var PlayStoreColumns = []string{
	colApp, colCategory, colRating, colReviews, colSize, colInstalls, colType,
	colPrice, colContentRating, colGenres, colLastUpdated, colCurrentVer, colAndroidVer,
}

// PlayStoreProcessor нормализует строки датасета Google Play
type PlayStoreProcessor struct {
	logger *utils.ETLLogger
}

// NewPlayStoreProcessor создает новый экземпляр PlayStoreProcessor
func NewPlayStoreProcessor(logger *utils.ETLLogger) *PlayStoreProcessor {
	return &PlayStoreProcessor{logger: logger}
}

// ProcessPlayStore приводит сырые строки к NormalizedRecord и накапливает статистику очистки
func (p *PlayStoreProcessor) ProcessPlayStore(rows []models.RawRecord, stats *models.CleaningStats) []models.NormalizedRecord {
	records := make([]models.NormalizedRecord, 0, len(rows))

	for i, row := range rows {
		rec := models.NormalizedRecord{
			Platform:      models.PlatformAndroid,
			Row:           i,
			Name:          strings.TrimSpace(row.TextOr(colApp, "")),
			Category:      strings.TrimSpace(row.TextOr(colCategory, "")),
			AppType:       strings.TrimSpace(row.TextOr(colType, "")),
			ContentRating: row.TextOr(colContentRating, ""),
			Genres:        row.TextOr(colGenres, ""),
			Version:       row.TextOr(colCurrentVer, ""),
			MinOSVersion:  row.TextOr(colAndroidVer, ""),
		}

		if rating, ok := CoerceFloat(row[colRating]); ok {
			rec.Rating = models.FloatOf(rating)
		}

		reviews, ok := ParseCount(row[colReviews])
		rec.ReviewCount = reviews
		if !ok {
			stats.ReviewFallbacks++
		}
		if reviews > 0 {
			stats.ReviewsConverted++
		}

		rec.SizeMB = NormalizeSize(row[colSize])
		if rec.SizeMB.Valid {
			stats.SizesConverted++
		} else {
			stats.SizeMissing++
		}

		installs, ok := ParseInstalls(row[colInstalls])
		rec.Installs = installs
		if !ok {
			stats.InstallFallbacks++
		}
		if installs > 0 {
			stats.InstallsConverted++
		}

		price, ok := ParsePrice(row[colPrice])
		rec.PriceUSD = price
		if ok {
			stats.PricesConverted++
		} else {
			stats.PriceFallbacks++
		}

		rec.LastUpdated = NormalizeDate(row[colLastUpdated])
		if rec.LastUpdated.Valid {
			stats.DatesConverted++
		} else {
			stats.DateMissing++
		}

		records = append(records, rec)
	}

	p.logger.Debug("Нормализовано строк Google Play: %d (fallback: отзывы %d, установки %d, цены %d; без размера %d, без даты %d)",
		len(records), stats.ReviewFallbacks, stats.InstallFallbacks, stats.PriceFallbacks, stats.SizeMissing, stats.DateMissing)

	return records
}
