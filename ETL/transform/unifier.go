package transform

import (
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
)

// androidIDSpace - размер пространства идентификаторов Android.
// Хэш имени сводится по модулю, поэтому коллизии возможны и не исправляются.
const androidIDSpace = 1_000_000

const bytesPerMB = 1024 * 1024

// AndroidAppID строит app_id Android-приложения из хэша имени
func AndroidAppID(name string) string {
	return "gp_" + strconv.FormatUint(xxhash.Sum64String(name)%androidIDSpace, 10)
}

// IOSAppID строит app_id iOS-приложения из trackId
func IOSAppID(trackID int64) string {
	return "ios_" + strconv.FormatInt(trackID, 10)
}

// appTypeFromPrice определяет тип монетизации по цене
func appTypeFromPrice(price float64) string {
	if price == 0 {
		return models.AppTypeFree
	}
	return models.AppTypePaid
}

// Unifier сводит нормализованные записи двух платформ в единую схему
type Unifier struct {
	categories *CategoryMap
}

// NewUnifier создает новый экземпляр Unifier
func NewUnifier(categories *CategoryMap) *Unifier {
	return &Unifier{categories: categories}
}

// Unify возвращает строки Android, а за ними строки iOS в порядке поступления.
// Межплатформенная дедупликация не выполняется.
func (u *Unifier) Unify(android, ios []models.NormalizedRecord) []models.UnifiedRecord {
	result := make([]models.UnifiedRecord, 0, len(android)+len(ios))
	for _, rec := range android {
		result = append(result, u.unifyAndroid(rec))
	}
	for _, rec := range ios {
		result = append(result, u.unifyIOS(rec))
	}
	return result
}

func (u *Unifier) unifyAndroid(rec models.NormalizedRecord) models.UnifiedRecord {
	appType := rec.AppType
	if appType != models.AppTypeFree && appType != models.AppTypePaid {
		appType = appTypeFromPrice(rec.PriceUSD)
	}

	return models.UnifiedRecord{
		AppID:            AndroidAppID(rec.Name),
		AppName:          rec.Name,
		Platform:         models.PlatformAndroid,
		UnifiedCategory:  u.categories.Map(models.PlatformAndroid, rec.Category),
		OriginalCategory: rec.Category,
		Rating:           rec.Rating.Float64,
		ReviewCount:      rec.ReviewCount,
		Installs:         rec.Installs,
		SizeMB:           rec.SizeMB,
		AppType:          appType,
		PriceUSD:         rec.PriceUSD,
		ContentRating:    rec.ContentRating,
		LastUpdated:      rec.LastUpdated,
		Genres:           rec.Genres,
		DataSource:       models.SourceGooglePlay,
		Developer:        "",
		Version:          rec.Version,
		MinOSVersion:     rec.MinOSVersion,
	}
}

func (u *Unifier) unifyIOS(rec models.NormalizedRecord) models.UnifiedRecord {
	sizeMB := 0.0
	if rec.SizeBytes > 0 {
		sizeMB = rec.SizeBytes / bytesPerMB
	}

	return models.UnifiedRecord{
		AppID:            IOSAppID(rec.SourceID),
		AppName:          rec.Name,
		Platform:         models.PlatformIOS,
		UnifiedCategory:  u.categories.Map(models.PlatformIOS, rec.Category),
		OriginalCategory: rec.Category,
		Rating:           rec.Rating.Float64,
		ReviewCount:      rec.ReviewCount,
		Installs:         0,
		SizeMB:           models.FloatOf(sizeMB),
		AppType:          appTypeFromPrice(rec.PriceUSD),
		PriceUSD:         rec.PriceUSD,
		ContentRating:    rec.ContentRating,
		LastUpdated:      rec.LastUpdated,
		Genres:           rec.Genres,
		DataSource:       models.SourceITunes,
		Developer:        rec.Developer,
		Version:          rec.Version,
		MinOSVersion:     rec.MinOSVersion,
	}
}

// Reunify повторно применяет таблицу категорий к уже сведенным записям.
// Проход не меняет число строк и их порядок; на едином словаре категорий он тождественен.
func (u *Unifier) Reunify(records []models.UnifiedRecord) []models.UnifiedRecord {
	result := make([]models.UnifiedRecord, len(records))
	for i, rec := range records {
		if u.categories.Known(rec.Platform, rec.OriginalCategory) || rec.UnifiedCategory == "" {
			rec.UnifiedCategory = u.categories.Map(rec.Platform, rec.OriginalCategory)
		}
		result[i] = rec
	}
	return result
}
