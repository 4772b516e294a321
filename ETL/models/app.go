package models

// Platform - платформа магазина приложений
type Platform string

const (
	PlatformAndroid Platform = "Android"
	PlatformIOS     Platform = "iOS"
)

// Значения поля app_type
const (
	AppTypeFree = "Free"
	AppTypePaid = "Paid"
)

// Значения поля data_source (происхождение записи)
const (
	SourceGooglePlay = "Google Play Store"
	SourceITunes     = "iTunes App Store"
)

// NormalizedRecord - одно приложение после нормализации колонок.
// Каждое числовое поле либо валидное конечное число, либо явно отсутствует.
type NormalizedRecord struct {
	Platform Platform
	// Порядковый номер строки в источнике
	Row int
	// Числовой идентификатор источника (trackId для iOS)
	SourceID int64

	Name          string
	Category      string
	Rating        NullFloat
	ReviewCount   int64
	Installs      int64
	SizeMB        NullFloat
	SizeBytes     float64
	AppType       string
	PriceUSD      float64
	ContentRating string
	Genres        string
	LastUpdated   NullDate
	Version       string
	MinOSVersion  string
	Developer     string
}

// UnifiedRecord - приложение в единой схеме обеих платформ
type UnifiedRecord struct {
	AppID            string    `json:"app_id"`
	AppName          string    `json:"app_name"`
	Platform         Platform  `json:"platform"`
	UnifiedCategory  string    `json:"unified_category"`
	OriginalCategory string    `json:"original_category"`
	Rating           float64   `json:"rating"`
	ReviewCount      int64     `json:"review_count"`
	Installs         int64     `json:"installs"`
	SizeMB           NullFloat `json:"size_mb"`
	AppType          string    `json:"app_type"`
	PriceUSD         float64   `json:"price_usd"`
	ContentRating    string    `json:"content_rating"`
	LastUpdated      NullDate  `json:"last_updated"`
	Genres           string    `json:"genres"`
	DataSource       string    `json:"data_source"`
	Developer        string    `json:"developer"`
	Version          string    `json:"version"`
	MinOSVersion     string    `json:"min_os_version"`
}

// UnifiedColumns - порядок колонок единой схемы в CSV и SQL
var UnifiedColumns = []string{
	"app_id", "app_name", "platform", "unified_category", "original_category",
	"rating", "review_count", "installs", "size_mb", "app_type", "price_usd",
	"content_rating", "last_updated", "genres", "data_source", "developer",
	"version", "min_os_version",
}
