package insights

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLEngagementRepository хранит оценки модели вовлеченности по запускам ETL
type SQLEngagementRepository struct {
	db *sql.DB
}

// NewSQLEngagementRepository создает новый репозиторий оценок
func NewSQLEngagementRepository(db *sql.DB) *SQLEngagementRepository {
	return &SQLEngagementRepository{db: db}
}

// EnsureTableExists проверяет наличие таблицы и создает ее при необходимости
func (r *SQLEngagementRepository) EnsureTableExists(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS engagement_estimates (
		run_id VARCHAR(36) NOT NULL,
		created_at DATETIME NOT NULL,
		slope DOUBLE NOT NULL,
		intercept DOUBLE NOT NULL,
		r DOUBLE NOT NULL,
		r2 DOUBLE NOT NULL,
		reviews BIGINT NOT NULL,
		rating DOUBLE NOT NULL,
		ci_lower DOUBLE NOT NULL,
		ci_upper DOUBLE NOT NULL
	);`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ошибка при создании таблицы engagement_estimates: %w", err)
	}
	return nil
}

// SaveEstimates сохраняет модель и оценки одного запуска в транзакции
func (r *SQLEngagementRepository) SaveEstimates(ctx context.Context, runID string, createdAt time.Time, ec *EngagementCorrelation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("не удалось начать транзакцию: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO engagement_estimates
		(run_id, created_at, slope, intercept, r, r2, reviews, rating, ci_lower, ci_upper)
	VALUES
		(?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return fmt.Errorf("не удалось подготовить запрос: %w", err)
	}
	defer stmt.Close()

	m := ec.Model
	for _, e := range ec.Estimates {
		if _, err := stmt.ExecContext(ctx,
			runID, createdAt, m.A, m.B, m.R, m.R2,
			e.Reviews, e.Rating, e.CILower, e.CIUpper,
		); err != nil {
			return fmt.Errorf("не удалось сохранить оценку для %d отзывов: %w", e.Reviews, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("не удалось зафиксировать транзакцию: %w", err)
	}
	return nil
}

// GetLastModel возвращает модель последнего сохраненного запуска (nil, если данных нет)
func (r *SQLEngagementRepository) GetLastModel(ctx context.Context) (*RegressionResult, error) {
	query := `
	SELECT slope, intercept, r, r2
	FROM engagement_estimates
	ORDER BY created_at DESC
	LIMIT 1;`

	var result RegressionResult
	err := r.db.QueryRowContext(ctx, query).Scan(&result.A, &result.B, &result.R, &result.R2)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении последней модели: %w", err)
	}
	return &result, nil
}

// DeleteOlderThan удаляет устаревшие оценки
func (r *SQLEngagementRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM engagement_estimates WHERE created_at < ?;`, olderThan); err != nil {
		return fmt.Errorf("ошибка при удалении устаревших оценок: %w", err)
	}
	return nil
}
