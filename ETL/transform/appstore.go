package transform

import (
	"strings"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
	"github.com/LilVoxy/appmarket_intel/ETL/utils"
)

// Поля записи iTunes Search API
const (
	FieldTrackID          = "trackId"
	FieldTrackName        = "trackName"
	FieldArtistName       = "artistName"
	FieldPrimaryGenre     = "primaryGenreName"
	FieldAverageRating    = "averageUserRating"
	FieldRatingCount      = "userRatingCount"
	FieldPrice            = "price"
	FieldCurrency         = "currency"
	FieldContentAdvisory  = "contentAdvisoryRating"
	FieldFileSizeBytes    = "fileSizeBytes"
	FieldFormattedPrice   = "formattedPrice"
	FieldReleaseDate      = "releaseDate"
	FieldCurrentVerDate   = "currentVersionReleaseDate"
	FieldBundleID         = "bundleId"
	FieldTrackViewURL     = "trackViewUrl"
	FieldDescription      = "description"
	FieldVersion          = "version"
	FieldMinimumOSVersion = "minimumOsVersion"
)

// AppStoreProcessor нормализует записи iTunes.
// Поля ответа API могут прийти строкой или числом, поэтому числа приводятся мягко.
type AppStoreProcessor struct {
	logger *utils.ETLLogger
}

// NewAppStoreProcessor создает новый экземпляр AppStoreProcessor
func NewAppStoreProcessor(logger *utils.ETLLogger) *AppStoreProcessor {
	return &AppStoreProcessor{logger: logger}
}

// ProcessAppStore приводит записи iTunes к NormalizedRecord
func (p *AppStoreProcessor) ProcessAppStore(rows []models.RawRecord, stats *models.CleaningStats) []models.NormalizedRecord {
	records := make([]models.NormalizedRecord, 0, len(rows))

	coerce := func(v any) float64 {
		f, ok := CoerceFloat(v)
		if !ok && v != nil {
			stats.GenericFallbacks++
		}
		return f
	}

	for i, row := range rows {
		trackID, _ := CoerceInt(row[FieldTrackID])

		rec := models.NormalizedRecord{
			Platform:      models.PlatformIOS,
			Row:           i,
			SourceID:      trackID,
			Name:          strings.TrimSpace(row.TextOr(FieldTrackName, "")),
			Category:      strings.TrimSpace(row.TextOr(FieldPrimaryGenre, "")),
			Genres:        row.TextOr(FieldPrimaryGenre, ""),
			ContentRating: row.TextOr(FieldContentAdvisory, ""),
			Developer:     row.TextOr(FieldArtistName, ""),
			Version:       row.TextOr(FieldVersion, ""),
			MinOSVersion:  row.TextOr(FieldMinimumOSVersion, ""),
			ReviewCount:   int64(coerce(row[FieldRatingCount])),
			PriceUSD:      coerce(row[FieldPrice]),
			SizeBytes:     coerce(row[FieldFileSizeBytes]),
			LastUpdated:   NormalizeDate(row[FieldCurrentVerDate]),
		}

		if rating, ok := CoerceFloat(row[FieldAverageRating]); ok {
			rec.Rating = models.FloatOf(rating)
		}

		records = append(records, rec)
	}

	p.logger.Debug("Нормализовано записей iTunes: %d", len(records))

	return records
}
