package transform

import (
	"strconv"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
)

// ValidateQuality считает метрики качества очищенного датасета Google Play.
// Средние берутся только по присутствующим значениям.
func ValidateQuality(records []models.NormalizedRecord) models.QualityMetrics {
	metrics := models.QualityMetrics{
		TotalApps:          len(records),
		RatingDistribution: make(map[string]int),
	}
	if len(records) == 0 {
		return metrics
	}

	categories := make(map[string]struct{})
	var (
		ratingSum, sizeSum     float64
		ratedCount, sizedCount int
		reviewSum              int64
	)

	for _, rec := range records {
		categories[rec.Category] = struct{}{}
		reviewSum += rec.ReviewCount

		switch rec.AppType {
		case models.AppTypeFree:
			metrics.FreeApps++
		case models.AppTypePaid:
			metrics.PaidApps++
		}

		if rec.Rating.Valid {
			ratingSum += rec.Rating.Float64
			ratedCount++
			metrics.RatingDistribution[strconv.FormatFloat(rec.Rating.Float64, 'f', 1, 64)]++
		} else {
			metrics.MissingRatings++
		}

		if rec.SizeMB.Valid {
			sizeSum += rec.SizeMB.Float64
			sizedCount++
		}
	}

	metrics.Categories = len(categories)
	metrics.MissingRatingsPct = float64(metrics.MissingRatings) / float64(len(records)) * 100
	metrics.AvgReviews = float64(reviewSum) / float64(len(records))
	if ratedCount > 0 {
		metrics.AvgRating = ratingSum / float64(ratedCount)
	}
	if sizedCount > 0 {
		metrics.AvgSizeMB = sizeSum / float64(sizedCount)
	}

	return metrics
}
