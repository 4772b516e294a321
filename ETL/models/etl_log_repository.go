package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQLETLLogRepository реализация ETLLogRepository поверх database/sql.
// Работает с MySQL и SQLite: запросы используют только общий для обоих диалект.
type SQLETLLogRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLETLLogRepository создает новый экземпляр SQLETLLogRepository
func NewSQLETLLogRepository(db *sql.DB) *SQLETLLogRepository {
	return &SQLETLLogRepository{
		db:  db,
		now: time.Now,
	}
}

const runLogColumns = `run_id, mode, start_time, end_time, status,
		android_apps, ios_apps, duplicates_removed,
		COALESCE(error_message, ''), COALESCE(execution_time_seconds, 0)`

// CreateETLLogTable создает таблицу для логирования ETL процесса, если она не существует
func (r *SQLETLLogRepository) CreateETLLogTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS etl_run_log (
		run_id VARCHAR(36) NOT NULL PRIMARY KEY,
		mode VARCHAR(32) NOT NULL,
		start_time DATETIME NOT NULL,
		end_time DATETIME NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'in_progress',
		android_apps INTEGER DEFAULT 0,
		ios_apps INTEGER DEFAULT 0,
		duplicates_removed INTEGER DEFAULT 0,
		error_message TEXT,
		execution_time_seconds DOUBLE
	)`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ошибка при создании таблицы etl_run_log: %w", err)
	}

	return nil
}

// CreateLogEntry создает новую запись о запуске ETL
func (r *SQLETLLogRepository) CreateLogEntry(ctx context.Context, mode string, startTime time.Time) (string, error) {
	runID := uuid.NewString()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO etl_run_log (run_id, mode, start_time, status) VALUES (?, ?, ?, ?)`,
		runID, mode, startTime.UTC(), RunStatusInProgress)
	if err != nil {
		return "", fmt.Errorf("ошибка при создании записи о запуске ETL: %w", err)
	}

	return runID, nil
}

// executionSeconds рассчитывает время выполнения запуска в секундах
func (r *SQLETLLogRepository) executionSeconds(ctx context.Context, runID string, endTime time.Time) (float64, error) {
	var startTime time.Time
	err := r.db.QueryRowContext(ctx, "SELECT start_time FROM etl_run_log WHERE run_id = ?", runID).Scan(&startTime)
	if err != nil {
		return 0, fmt.Errorf("ошибка при получении времени начала ETL: %w", err)
	}
	return endTime.Sub(startTime).Seconds(), nil
}

// UpdateLogEntrySuccess обновляет запись при успешном завершении ETL
func (r *SQLETLLogRepository) UpdateLogEntrySuccess(ctx context.Context, runID string, endTime time.Time, counts RunCounts) error {
	executionTime, err := r.executionSeconds(ctx, runID, endTime)
	if err != nil {
		return err
	}

	query := `
	UPDATE etl_run_log
	SET
		end_time = ?,
		status = ?,
		android_apps = ?,
		ios_apps = ?,
		duplicates_removed = ?,
		execution_time_seconds = ?
	WHERE run_id = ?`

	_, err = r.db.ExecContext(ctx, query,
		endTime.UTC(), RunStatusSuccess,
		counts.AndroidApps, counts.IOSApps, counts.DuplicatesRemoved,
		executionTime, runID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении записи о запуске ETL: %w", err)
	}

	return nil
}

// UpdateLogEntryFailure обновляет запись при неудачном завершении ETL
func (r *SQLETLLogRepository) UpdateLogEntryFailure(ctx context.Context, runID string, endTime time.Time, errorMessage string) error {
	executionTime, err := r.executionSeconds(ctx, runID, endTime)
	if err != nil {
		return err
	}

	query := `
	UPDATE etl_run_log
	SET
		end_time = ?,
		status = ?,
		error_message = ?,
		execution_time_seconds = ?
	WHERE run_id = ?`

	_, err = r.db.ExecContext(ctx, query, endTime.UTC(), RunStatusFailed, errorMessage, executionTime, runID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении записи о запуске ETL: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRunLog(row rowScanner) (*ETLRunLog, error) {
	var (
		log     ETLRunLog
		endTime sql.NullTime
	)
	err := row.Scan(
		&log.RunID, &log.Mode, &log.StartTime, &endTime, &log.Status,
		&log.AndroidApps, &log.IOSApps, &log.DuplicatesRemoved,
		&log.ErrorMessage, &log.ExecutionTimeSeconds,
	)
	if err != nil {
		return nil, err
	}
	if endTime.Valid {
		log.EndTime = endTime.Time
	}
	return &log, nil
}

func (r *SQLETLLogRepository) lastRunWithStatus(ctx context.Context, status string) (*ETLRunLog, error) {
	query := `SELECT ` + runLogColumns + `
	FROM etl_run_log
	WHERE status = ?
	ORDER BY end_time DESC
	LIMIT 1`

	log, err := scanRunLog(r.db.QueryRowContext(ctx, query, status))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка при получении последнего запуска ETL со статусом %s: %w", status, err)
	}
	return log, nil
}

// GetLastSuccessfulRun получает информацию о последнем успешном запуске ETL.
// Возвращает nil без ошибки, если успешных запусков ещё не было.
func (r *SQLETLLogRepository) GetLastSuccessfulRun(ctx context.Context) (*ETLRunLog, error) {
	return r.lastRunWithStatus(ctx, RunStatusSuccess)
}

// GetETLRunStats получает статистику о запусках ETL за определенный период
func (r *SQLETLLogRepository) GetETLRunStats(ctx context.Context, days int) ([]ETLRunLog, error) {
	since := r.now().UTC().AddDate(0, 0, -days)

	query := `SELECT ` + runLogColumns + `
	FROM etl_run_log
	WHERE start_time >= ?
	ORDER BY start_time DESC`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении статистики запусков ETL: %w", err)
	}
	defer rows.Close()

	var logs []ETLRunLog
	for rows.Next() {
		log, err := scanRunLog(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка при сканировании записи о запуске ETL: %w", err)
		}
		logs = append(logs, *log)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка после итерации по записям о запусках ETL: %w", err)
	}

	return logs, nil
}

// GetETLStateMonitor получает информацию о текущем состоянии ETL процесса
func (r *SQLETLLogRepository) GetETLStateMonitor(ctx context.Context) (*ETLStateMonitor, error) {
	lastSuccessful, err := r.GetLastSuccessfulRun(ctx)
	if err != nil {
		return nil, err
	}

	lastFailed, err := r.lastRunWithStatus(ctx, RunStatusFailed)
	if err != nil {
		return nil, err
	}

	var (
		totalSuccess, totalFailed sql.NullInt64
		avgExecutionTime          sql.NullFloat64
		totalApps                 sql.NullInt64
	)
	err = r.db.QueryRowContext(ctx, `
		SELECT
			SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END),
			AVG(CASE WHEN status = 'success' THEN execution_time_seconds ELSE NULL END),
			SUM(CASE WHEN status = 'success' THEN android_apps + ios_apps ELSE 0 END)
		FROM etl_run_log
	`).Scan(&totalSuccess, &totalFailed, &avgExecutionTime, &totalApps)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении статистики запусков ETL: %w", err)
	}

	return &ETLStateMonitor{
		LastSuccessfulRun:       lastSuccessful,
		LastFailedRun:           lastFailed,
		TotalSuccessfulRuns:     int(totalSuccess.Int64),
		TotalFailedRuns:         int(totalFailed.Int64),
		AvgExecutionTimeSeconds: avgExecutionTime.Float64,
		TotalAppsProcessed:      int(totalApps.Int64),
	}, nil
}
