package models

// TransformedData содержит результат фазы Transform
type TransformedData struct {
	// Единая таблица: сначала Android, затем iOS, порядок поступления сохранен
	Unified []UnifiedRecord

	// Статистика очистки и метрики качества датасета Google Play
	Stats   CleaningStats
	Quality QualityMetrics

	AndroidApps int
	IOSApps     int
}

// CleaningStats - статистика нормализации колонок.
// *Converted - сколько значений распознано, *Fallbacks - сколько заменено значением по умолчанию.
type CleaningStats struct {
	ReviewsConverted  int `json:"reviews_converted"`
	SizesConverted    int `json:"sizes_converted"`
	InstallsConverted int `json:"installs_converted"`
	PricesConverted   int `json:"prices_converted"`
	DatesConverted    int `json:"dates_converted"`

	ReviewFallbacks  int `json:"review_fallbacks"`
	SizeMissing      int `json:"size_missing"`
	InstallFallbacks int `json:"install_fallbacks"`
	PriceFallbacks   int `json:"price_fallbacks"`
	DateMissing      int `json:"date_missing"`
	GenericFallbacks int `json:"generic_fallbacks"`

	DuplicatesRemoved int `json:"duplicates_removed"`
}

// QualityMetrics - метрики качества очищенного датасета Google Play
type QualityMetrics struct {
	TotalApps          int            `json:"total_apps"`
	MissingRatings     int            `json:"missing_ratings"`
	MissingRatingsPct  float64        `json:"missing_ratings_pct"`
	FreeApps           int            `json:"free_apps"`
	PaidApps           int            `json:"paid_apps"`
	Categories         int            `json:"categories"`
	AvgRating          float64        `json:"avg_rating"`
	AvgReviews         float64        `json:"avg_reviews"`
	AvgSizeMB          float64        `json:"avg_size_mb"`
	RatingDistribution map[string]int `json:"rating_distribution"`
}
