package extractors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LilVoxy/appmarket_intel/ETL/config"
	"github.com/LilVoxy/appmarket_intel/ETL/models"
	"github.com/LilVoxy/appmarket_intel/ETL/utils"
)

// AppStoreSource - источник записей App Store
type AppStoreSource interface {
	ExtractApps(ctx context.Context) ([]models.RawRecord, models.APIStats, error)
}

// Extractor координирует процесс извлечения данных из источников
type Extractor struct {
	cfg                config.ETLConfig
	logger             *utils.ETLLogger
	playStoreExtractor *PlayStoreExtractor
	appStoreSource     AppStoreSource
}

// NewExtractor создает новый экземпляр Extractor
func NewExtractor(cfg config.ETLConfig, logger *utils.ETLLogger) *Extractor {
	return &Extractor{
		cfg:                cfg,
		logger:             logger,
		playStoreExtractor: NewPlayStoreExtractor(cfg.Sources.PlayStoreCSV, logger),
		appStoreSource:     NewITunesExtractor(cfg.ITunes, logger),
	}
}

// WithAppStoreSource подменяет источник App Store
func (e *Extractor) WithAppStoreSource(src AppStoreSource) *Extractor {
	e.appStoreSource = src
	return e
}

// Extract выполняет извлечение данных обеих платформ.
// Отсутствие CSV Google Play прерывает запуск; App Store загружается по возможности.
func (e *Extractor) Extract(ctx context.Context) (*models.ExtractedData, error) {
	startTime := time.Now()
	e.logger.LogExtractStart()

	var extractedData models.ExtractedData
	var err error

	// Извлекаем датасет Google Play
	extractedData.PlayStore, extractedData.PlayStoreColumns, err = e.playStoreExtractor.ExtractPlayStore()
	if err != nil {
		e.logger.Error("Ошибка при извлечении данных Google Play: %v", err)
		return nil, fmt.Errorf("ошибка извлечения данных Google Play: %w", err)
	}

	// Извлекаем записи App Store
	extractedData.AppStore, extractedData.APIStats, err = e.extractAppStore(ctx)
	if err != nil {
		e.logger.Error("Ошибка при извлечении данных App Store: %v", err)
		return nil, fmt.Errorf("ошибка извлечения данных App Store: %w", err)
	}

	// Записываем время запуска
	extractedData.LastRunTS = time.Now()

	e.logger.LogExtractComplete(
		len(extractedData.PlayStore),
		len(extractedData.AppStore),
		time.Since(startTime),
	)

	return &extractedData, nil
}

// extractAppStore читает кэш, если он разрешен и существует, иначе опрашивает API и обновляет кэш
func (e *Extractor) extractAppStore(ctx context.Context) ([]models.RawRecord, models.APIStats, error) {
	itunesCfg := e.cfg.ITunes

	if itunesCfg.UseCache && itunesCfg.CacheFile != "" {
		records, err := LoadITunesCache(itunesCfg.CacheFile)
		switch {
		case err == nil:
			e.logger.Info("📁 Записи iTunes загружены из кэша %s: %d", itunesCfg.CacheFile, len(records))
			return records, models.APIStats{AppsFetched: len(records), FromCache: true}, nil
		case errors.Is(err, ErrSourceNotFound):
			e.logger.Info("Кэш iTunes не найден, выполняется загрузка через API")
		default:
			return nil, models.APIStats{}, err
		}
	}

	if !itunesCfg.Enabled {
		e.logger.Info("Загрузка iTunes отключена")
		return nil, models.APIStats{}, nil
	}

	records, stats, err := e.appStoreSource.ExtractApps(ctx)
	if err != nil {
		return nil, stats, err
	}

	if itunesCfg.CacheFile != "" && len(records) > 0 {
		if err := SaveITunesCache(itunesCfg.CacheFile, records); err != nil {
			e.logger.Warn("⚠️ Не удалось сохранить кэш iTunes: %v", err)
		}
	}

	return records, stats, nil
}
