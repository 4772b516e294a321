package extractors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/LilVoxy/appmarket_intel/ETL/config"
	"github.com/LilVoxy/appmarket_intel/ETL/models"
	"github.com/LilVoxy/appmarket_intel/ETL/utils"
)

// descriptionLimit - максимальная длина описания приложения в символах
const descriptionLimit = 500

// itunesFields - поля записи iTunes, которые сохраняются
var itunesFields = []string{
	"trackId", "trackName", "artistName", "primaryGenreName",
	"averageUserRating", "userRatingCount", "price", "currency",
	"contentAdvisoryRating", "fileSizeBytes", "formattedPrice",
	"releaseDate", "currentVersionReleaseDate", "bundleId",
	"trackViewUrl", "description", "version", "minimumOsVersion",
}

type searchResponse struct {
	ResultCount int              `json:"resultCount"`
	Results     []map[string]any `json:"results"`
}

// ITunesExtractor последовательно опрашивает iTunes Search API по списку поисковых запросов.
// Между вызовами выдерживается фиксированная пауза; повторов нет, неудачный запрос пропускается.
type ITunesExtractor struct {
	client  *resty.Client
	limiter *rate.Limiter
	cfg     config.ITunesConfig
	logger  *utils.ETLLogger
}

// NewITunesExtractor создает новый экземпляр ITunesExtractor
func NewITunesExtractor(cfg config.ITunesConfig, logger *utils.ETLLogger) *ITunesExtractor {
	limiter := rate.NewLimiter(rate.Every(cfg.RequestDelay), 1)

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	client.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		return limiter.Wait(r.Context())
	})

	return &ITunesExtractor{
		client:  client,
		limiter: limiter,
		cfg:     cfg,
		logger:  logger,
	}
}

// ExtractApps выполняет поиск по всем запросам и возвращает записи, уникальные по trackId
func (e *ITunesExtractor) ExtractApps(ctx context.Context) ([]models.RawRecord, models.APIStats, error) {
	stats := models.APIStats{SearchTermsUsed: len(e.cfg.SearchTerms)}
	var all []models.RawRecord

	for i, term := range e.cfg.SearchTerms {
		if err := ctx.Err(); err != nil {
			return nil, stats, fmt.Errorf("загрузка iTunes прервана: %w", err)
		}

		e.logger.Debug("📡 Поиск iTunes %d/%d: %q", i+1, len(e.cfg.SearchTerms), term)
		stats.APICallsMade++

		records, err := e.search(ctx, term)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, stats, fmt.Errorf("загрузка iTunes прервана: %w", ctxErr)
			}
			stats.FailedCalls++
			e.logger.Warn("⚠️ Ошибка запроса iTunes для %q: %v", term, err)
			continue
		}
		all = append(all, records...)
	}

	apps := DedupeByTrackID(all)
	stats.AppsFetched = len(apps)
	e.logger.Info("Получено приложений iTunes: %d (вызовов API: %d, ошибок: %d)",
		len(apps), stats.APICallsMade, stats.FailedCalls)

	return apps, stats, nil
}

// search выполняет один поисковый запрос
func (e *ITunesExtractor) search(ctx context.Context, term string) ([]models.RawRecord, error) {
	resp, err := e.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"term":    term,
			"country": e.cfg.Country,
			"media":   "software",
			"entity":  "software",
			"limit":   fmt.Sprint(e.cfg.Limit),
		}).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("ошибка HTTP-запроса: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("неожиданный статус ответа: %d", resp.StatusCode())
	}

	// API отвечает text/javascript, поэтому тело разбирается вручную
	var payload searchResponse
	decoder := json.NewDecoder(bytes.NewReader(resp.Body()))
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("ошибка разбора ответа: %w", err)
	}

	records := make([]models.RawRecord, 0, len(payload.Results))
	for _, result := range payload.Results {
		records = append(records, selectFields(result))
	}
	return records, nil
}

// selectFields оставляет в записи только нужные поля и обрезает описание
func selectFields(result map[string]any) models.RawRecord {
	rec := make(models.RawRecord, len(itunesFields))
	for _, field := range itunesFields {
		v, ok := result[field]
		if !ok {
			continue
		}
		if field == "description" {
			if s, isText := v.(string); isText {
				if runes := []rune(s); len(runes) > descriptionLimit {
					v = string(runes[:descriptionLimit])
				}
			}
		}
		rec[field] = v
	}
	return rec
}

// DedupeByTrackID убирает повторы по trackId: записи без trackId отбрасываются,
// для повторов побеждают значения последней записи, позиция остается от первой.
func DedupeByTrackID(records []models.RawRecord) []models.RawRecord {
	index := make(map[string]int, len(records))
	result := make([]models.RawRecord, 0, len(records))

	for _, rec := range records {
		key, ok := rec.Text("trackId")
		if !ok || key == "" {
			continue
		}
		if pos, seen := index[key]; seen {
			result[pos] = rec
			continue
		}
		index[key] = len(result)
		result = append(result, rec)
	}
	return result
}

// LoadITunesCache читает ранее сохраненные записи iTunes
func LoadITunesCache(path string) ([]models.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("ошибка чтения кэша iTunes %s: %w", path, err)
	}

	var records []models.RawRecord
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("ошибка разбора кэша iTunes %s: %w", path, err)
	}
	return records, nil
}

// SaveITunesCache сохраняет записи iTunes для повторных запусков без обращения к API
func SaveITunesCache(path string, records []models.RawRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ошибка создания каталога кэша: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации кэша iTunes: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("ошибка записи кэша iTunes %s: %w", path, err)
	}
	return nil
}
