package load

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
	"github.com/LilVoxy/appmarket_intel/ETL/utils"
)

// SQLLoader заменяет содержимое таблицы unified_apps в одной транзакции
type SQLLoader struct {
	db     *sql.DB
	logger *utils.ETLLogger
}

// NewSQLLoader создает новый экземпляр SQLLoader
func NewSQLLoader(db *sql.DB, logger *utils.ETLLogger) *SQLLoader {
	return &SQLLoader{
		db:     db,
		logger: logger,
	}
}

// Name возвращает имя хранилища
func (l *SQLLoader) Name() string {
	return "sql"
}

// CreateUnifiedTable создает таблицу unified_apps, если она не существует.
// app_id не уникален: хэш-идентификаторы Android допускают коллизии.
func (l *SQLLoader) CreateUnifiedTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS unified_apps (
		app_id VARCHAR(32) NOT NULL,
		app_name VARCHAR(512) NOT NULL,
		platform VARCHAR(16) NOT NULL,
		unified_category VARCHAR(128) NOT NULL,
		original_category VARCHAR(128),
		rating DOUBLE,
		review_count BIGINT,
		installs BIGINT,
		size_mb DOUBLE NULL,
		app_type VARCHAR(16),
		price_usd DOUBLE,
		content_rating VARCHAR(64),
		last_updated DATE NULL,
		genres VARCHAR(255),
		data_source VARCHAR(64),
		developer VARCHAR(255),
		version VARCHAR(64),
		min_os_version VARCHAR(64)
	)`

	if _, err := l.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ошибка при создании таблицы unified_apps: %w", err)
	}
	return nil
}

// LoadUnified удаляет прежние строки и вставляет новую единую таблицу
func (l *SQLLoader) LoadUnified(ctx context.Context, records []models.UnifiedRecord) error {
	startTime := time.Now()
	l.logger.Info("Начало загрузки единой таблицы в БД (всего: %d)", len(records))

	// Начинаем транзакцию
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM unified_apps"); err != nil {
		return fmt.Errorf("ошибка при очистке unified_apps: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO unified_apps
		(app_id, app_name, platform, unified_category, original_category, rating,
		review_count, installs, size_mb, app_type, price_usd, content_rating,
		last_updated, genres, data_source, developer, version, min_os_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("ошибка при подготовке запроса: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		_, err := stmt.ExecContext(ctx,
			r.AppID, r.AppName, string(r.Platform), r.UnifiedCategory, r.OriginalCategory, r.Rating,
			r.ReviewCount, r.Installs, r.SizeMB, r.AppType, r.PriceUSD, r.ContentRating,
			r.LastUpdated, r.Genres, r.DataSource, r.Developer, r.Version, r.MinOSVersion,
		)
		if err != nil {
			return fmt.Errorf("ошибка при вставке приложения %s: %w", r.AppID, err)
		}

		// Логируем прогресс каждые 1000 строк
		if (i+1)%1000 == 0 {
			l.logger.Debug("Загружено %d из %d строк...", i+1, len(records))
		}
	}

	// Фиксируем транзакцию
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	l.logger.Info("Загрузка единой таблицы завершена. Длительность: %v", time.Since(startTime))
	return nil
}
