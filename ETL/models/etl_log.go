package models

import (
	"context"
	"time"
)

// Статусы запуска ETL
const (
	RunStatusInProgress = "in_progress"
	RunStatusSuccess    = "success"
	RunStatusFailed     = "failed"
)

// ETLRunLog представляет запись о запуске ETL процесса
type ETLRunLog struct {
	RunID                string    `json:"run_id"`
	Mode                 string    `json:"mode"`
	StartTime            time.Time `json:"start_time"`
	EndTime              time.Time `json:"end_time"`
	Status               string    `json:"status"`
	AndroidApps          int       `json:"android_apps"`
	IOSApps              int       `json:"ios_apps"`
	DuplicatesRemoved    int       `json:"duplicates_removed"`
	ErrorMessage         string    `json:"error_message,omitempty"`
	ExecutionTimeSeconds float64   `json:"execution_time_seconds"`
}

// RunCounts - итоговые счетчики успешного запуска
type RunCounts struct {
	AndroidApps       int
	IOSApps           int
	DuplicatesRemoved int
}

// ETLLogRepository представляет репозиторий для работы с логами ETL
type ETLLogRepository interface {
	// CreateLogEntry создает новую запись о запуске ETL и возвращает её идентификатор
	CreateLogEntry(ctx context.Context, mode string, startTime time.Time) (string, error)

	// UpdateLogEntrySuccess обновляет запись при успешном завершении ETL
	UpdateLogEntrySuccess(ctx context.Context, runID string, endTime time.Time, counts RunCounts) error

	// UpdateLogEntryFailure обновляет запись при неудачном завершении ETL
	UpdateLogEntryFailure(ctx context.Context, runID string, endTime time.Time, errorMessage string) error

	// GetLastSuccessfulRun получает информацию о последнем успешном запуске ETL
	GetLastSuccessfulRun(ctx context.Context) (*ETLRunLog, error)

	// GetETLRunStats получает запуски ETL за последние days дней
	GetETLRunStats(ctx context.Context, days int) ([]ETLRunLog, error)
}

// ETLStateMonitor предоставляет информацию о текущем состоянии ETL процесса
type ETLStateMonitor struct {
	LastSuccessfulRun       *ETLRunLog `json:"last_successful_run"`
	LastFailedRun           *ETLRunLog `json:"last_failed_run,omitempty"`
	TotalSuccessfulRuns     int        `json:"total_successful_runs"`
	TotalFailedRuns         int        `json:"total_failed_runs"`
	AvgExecutionTimeSeconds float64    `json:"avg_execution_time_seconds"`
	TotalAppsProcessed      int        `json:"total_apps_processed"`
}
