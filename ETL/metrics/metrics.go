// Package metrics содержит метрики Prometheus для ETL-процесса и сервера запросов.
package metrics

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
)

const (
	// Namespace - пространство имен всех метрик
	Namespace = "appmarket"
	// Subsystem - подсистема метрик ETL
	Subsystem = "etl"
)

// PipelineMetrics хранит метрики запусков ETL в собственном реестре
type PipelineMetrics struct {
	registry *prometheus.Registry

	RunsTotal          *prometheus.CounterVec
	RunDurationSeconds prometheus.Histogram
	LastSuccess        prometheus.Gauge

	UnifiedRows       *prometheus.GaugeVec
	DuplicatesRemoved prometheus.Gauge
	ColumnFallbacks   *prometheus.GaugeVec

	APICallsTotal *prometheus.CounterVec

	QueryRequestsTotal *prometheus.CounterVec
}

// NewPipelineMetrics создает и регистрирует метрики
func NewPipelineMetrics() *PipelineMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &PipelineMetrics{registry: reg}

	m.RunsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "runs_total",
		Help:      "Количество запусков ETL по статусу",
	}, []string{"status"})

	m.RunDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "run_duration_seconds",
		Help:      "Длительность запуска ETL",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
	})

	m.LastSuccess = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "last_success_timestamp_seconds",
		Help:      "Время последнего успешного запуска (unix)",
	})

	m.UnifiedRows = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "unified_rows",
		Help:      "Строк единой таблицы по платформе в последнем запуске",
	}, []string{"platform"})

	m.DuplicatesRemoved = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "duplicates_removed",
		Help:      "Удалено дубликатов в последнем запуске",
	})

	m.ColumnFallbacks = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "column_fallbacks",
		Help:      "Значений, замененных значением по умолчанию, по колонке",
	}, []string{"column"})

	m.APICallsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: Subsystem,
		Name:      "itunes_api_calls_total",
		Help:      "Обращения к iTunes Search API по результату",
	}, []string{"result"})

	m.QueryRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "query",
		Name:      "requests_total",
		Help:      "Запросы к API рынка по маршруту",
	}, []string{"route"})

	return m
}

// ObserveRun фиксирует завершение запуска
func (m *PipelineMetrics) ObserveRun(status string, duration time.Duration, finishedAt time.Time) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDurationSeconds.Observe(duration.Seconds())
	if status == models.RunStatusSuccess {
		m.LastSuccess.Set(float64(finishedAt.Unix()))
	}
}

// RecordTransform фиксирует итоги фазы Transform
func (m *PipelineMetrics) RecordTransform(td *models.TransformedData) {
	m.UnifiedRows.WithLabelValues(string(models.PlatformAndroid)).Set(float64(td.AndroidApps))
	m.UnifiedRows.WithLabelValues(string(models.PlatformIOS)).Set(float64(td.IOSApps))
	m.DuplicatesRemoved.Set(float64(td.Stats.DuplicatesRemoved))

	m.ColumnFallbacks.WithLabelValues("reviews").Set(float64(td.Stats.ReviewFallbacks))
	m.ColumnFallbacks.WithLabelValues("size").Set(float64(td.Stats.SizeMissing))
	m.ColumnFallbacks.WithLabelValues("installs").Set(float64(td.Stats.InstallFallbacks))
	m.ColumnFallbacks.WithLabelValues("price").Set(float64(td.Stats.PriceFallbacks))
	m.ColumnFallbacks.WithLabelValues("date").Set(float64(td.Stats.DateMissing))
	m.ColumnFallbacks.WithLabelValues("generic").Set(float64(td.Stats.GenericFallbacks))
}

// RecordAPI фиксирует статистику обращений к iTunes
func (m *PipelineMetrics) RecordAPI(stats models.APIStats) {
	m.APICallsTotal.WithLabelValues("ok").Add(float64(stats.APICallsMade - stats.FailedCalls))
	m.APICallsTotal.WithLabelValues("failed").Add(float64(stats.FailedCalls))
}

// Handler возвращает HTTP-обработчик для /metrics
func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteTextfile сохраняет метрики в текстовом формате Prometheus
func (m *PipelineMetrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ошибка создания каталога для %s: %w", path, err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("ошибка записи метрик в %s: %w", path, err)
	}
	return nil
}
