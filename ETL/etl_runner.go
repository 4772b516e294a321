package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/LilVoxy/appmarket_intel/ETL/config"
	"github.com/LilVoxy/appmarket_intel/ETL/extractors"
	"github.com/LilVoxy/appmarket_intel/ETL/insights"
	"github.com/LilVoxy/appmarket_intel/ETL/load"
	"github.com/LilVoxy/appmarket_intel/ETL/marketing"
	"github.com/LilVoxy/appmarket_intel/ETL/metrics"
	"github.com/LilVoxy/appmarket_intel/ETL/models"
	"github.com/LilVoxy/appmarket_intel/ETL/transform"
	"github.com/LilVoxy/appmarket_intel/ETL/utils"
)

// Имена файлов отчетов
const (
	ValidationReportFile  = "data_validation_report.json"
	IntegrationReportFile = "integration_report.json"
	InsightsReportFile    = insights.InsightsReportFile
	ExecutiveReportFile   = "executive_market_intelligence_report.md"
	MetricsFile           = "pipeline_metrics.prom"
)

// Параметры модели вовлеченности
const (
	engagementConfidence = 0.95
	engagementRetention  = 90 * 24 * time.Hour
)

type ETLRunner struct {
	config         config.ETLConfig
	db             *sql.DB
	logger         *utils.ETLLogger
	extractor      *extractors.Extractor
	transformer    *transform.Transformer
	loadManager    *load.LoadManager
	etlLogRepo     models.ETLLogRepository
	engagementRepo *insights.SQLEngagementRepository
	metrics        *metrics.PipelineMetrics
	now            func() time.Time
}

// NewETLRunner создает новый экземпляр ETLRunner
func NewETLRunner(ctx context.Context, configPath string) (*ETLRunner, error) {
	// Получаем конфигурацию
	etlConfig, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	// Инициализируем логгер
	logger, err := utils.NewETLLogger(etlConfig.EnableDetailedLogging, etlConfig.LogDir)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации логгера: %w", err)
	}
	logger.Info("Инициализация ETL Runner")

	var db *sql.DB
	if etlConfig.Database.Enabled {
		db, err = config.ConnectDatabase(etlConfig.Database)
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
		}
	}

	runner := newETLRunner(etlConfig, db, logger)
	if err := runner.prepareTables(ctx); err != nil {
		runner.Close()
		return nil, err
	}
	return runner, nil
}

// newETLRunner собирает компоненты; db == nil отключает SQL-хранилище и журнал запусков
func newETLRunner(etlConfig config.ETLConfig, db *sql.DB, logger *utils.ETLLogger) *ETLRunner {
	runner := &ETLRunner{
		config:      etlConfig,
		db:          db,
		logger:      logger,
		extractor:   extractors.NewExtractor(etlConfig, logger),
		transformer: transform.NewTransformer(transform.DefaultCategoryMap(), logger),
		metrics:     metrics.NewPipelineMetrics(),
		now:         time.Now,
	}

	if db != nil {
		runner.etlLogRepo = models.NewSQLETLLogRepository(db)
		runner.engagementRepo = insights.NewSQLEngagementRepository(db)
	}
	runner.loadManager = load.NewLoadManager(logger, storageLoaders(etlConfig, db, logger)...)

	return runner
}

// storageLoaders возвращает хранилища в порядке записи: SQL-таблица заменяется в транзакции
// до того, как новые файлы подменят старые. Ошибка SQL оставляет прежние файлы на месте.
func storageLoaders(etlConfig config.ETLConfig, db *sql.DB, logger *utils.ETLLogger) []load.Loader {
	var loaders []load.Loader
	if db != nil {
		loaders = append(loaders, load.NewSQLLoader(db, logger))
	}
	return append(loaders, load.NewFileLoader(etlConfig.Output.DataDir, etlConfig.Output.WriteArchive, logger))
}

// prepareTables создает таблицы хранилища, если они еще не существуют
func (r *ETLRunner) prepareTables(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if err := load.NewSQLLoader(r.db, r.logger).CreateUnifiedTable(ctx); err != nil {
		return err
	}
	if err := models.NewSQLETLLogRepository(r.db).CreateETLLogTable(ctx); err != nil {
		return fmt.Errorf("ошибка при создании таблицы логов ETL: %w", err)
	}
	if err := r.engagementRepo.EnsureTableExists(ctx); err != nil {
		return err
	}
	return nil
}

// Close закрывает соединение с базой данных
func (r *ETLRunner) Close() {
	r.logger.Info("Завершение работы ETL Runner")
	if err := config.CloseDatabase(r.db); err != nil {
		r.logger.Error("%v", err)
	}
	r.logger.Sync()
}

func (r *ETLRunner) reportPath(name string) string {
	return filepath.Join(r.config.Output.ReportsDir, name)
}

// ExecuteETL выполняет полный ETL процесс
func (r *ETLRunner) ExecuteETL(ctx context.Context, mode string) error {
	startTime := r.now()

	runID, err := r.startRunLog(ctx, mode, startTime)
	if err != nil {
		return err
	}
	r.logger.LogETLStart(runID)

	// 1. Фаза извлечения данных (Extract)
	extractedData, err := r.extractor.Extract(ctx)
	if err != nil {
		return r.fail(ctx, runID, startTime, fmt.Errorf("ошибка в фазе Extract: %w", err))
	}
	r.metrics.RecordAPI(extractedData.APIStats)

	// 2. Фаза трансформации данных (Transform)
	transformedData, err := r.transformer.Transform(extractedData)
	if err != nil {
		return r.fail(ctx, runID, startTime, fmt.Errorf("ошибка в фазе Transform: %w", err))
	}
	r.metrics.RecordTransform(transformedData)

	// 3. Фаза загрузки данных (Load)
	if err := r.loadManager.Load(ctx, transformedData); err != nil {
		return r.fail(ctx, runID, startTime, fmt.Errorf("ошибка в фазе Load: %w", err))
	}

	// 4. Отчеты и аналитика
	if err := r.writeReports(ctx, runID, extractedData, transformedData); err != nil {
		return r.fail(ctx, runID, startTime, fmt.Errorf("ошибка формирования отчетов: %w", err))
	}

	endTime := r.now()
	if r.etlLogRepo != nil {
		counts := models.RunCounts{
			AndroidApps:       transformedData.AndroidApps,
			IOSApps:           transformedData.IOSApps,
			DuplicatesRemoved: transformedData.Stats.DuplicatesRemoved,
		}
		if err := r.etlLogRepo.UpdateLogEntrySuccess(ctx, runID, endTime, counts); err != nil {
			r.logger.Error("Ошибка при обновлении записи в журнале ETL: %v", err)
		}
	}
	r.metrics.ObserveRun(models.RunStatusSuccess, endTime.Sub(startTime), endTime)
	r.writeMetrics()

	r.logger.LogETLComplete(startTime,
		transformedData.AndroidApps,
		transformedData.IOSApps,
		transformedData.Stats.DuplicatesRemoved)
	return nil
}

// startRunLog создает запись в журнале ETL; без базы данных идентификатор генерируется локально
func (r *ETLRunner) startRunLog(ctx context.Context, mode string, startTime time.Time) (string, error) {
	if r.etlLogRepo == nil {
		return uuid.NewString(), nil
	}
	runID, err := r.etlLogRepo.CreateLogEntry(ctx, mode, startTime)
	if err != nil {
		r.logger.Error("Ошибка при создании записи в журнале ETL: %v", err)
		return "", fmt.Errorf("ошибка при создании записи в журнале ETL: %w", err)
	}

	lastRun, err := r.etlLogRepo.GetLastSuccessfulRun(ctx)
	switch {
	case err != nil:
		r.logger.Warn("Не удалось получить информацию о последнем успешном запуске: %v", err)
	case lastRun != nil:
		r.logger.Info("Последний успешный запуск: %v (%d Android, %d iOS)",
			lastRun.EndTime, lastRun.AndroidApps, lastRun.IOSApps)
	}
	return runID, nil
}

// fail фиксирует неудачный запуск в журнале и метриках
func (r *ETLRunner) fail(ctx context.Context, runID string, startTime time.Time, runErr error) error {
	r.logger.Error("%v", runErr)
	endTime := r.now()

	if r.etlLogRepo != nil {
		if err := r.etlLogRepo.UpdateLogEntryFailure(ctx, runID, endTime, runErr.Error()); err != nil {
			r.logger.Error("Ошибка при обновлении записи в журнале ETL: %v", err)
		}
	}
	r.metrics.ObserveRun(models.RunStatusFailed, endTime.Sub(startTime), endTime)
	r.writeMetrics()
	return runErr
}

func (r *ETLRunner) writeMetrics() {
	if err := r.metrics.WriteTextfile(r.reportPath(MetricsFile)); err != nil {
		r.logger.Warn("⚠️ %v", err)
	}
}

// writeReports формирует отчеты о проверке, интеграции и аналитике
func (r *ETLRunner) writeReports(ctx context.Context, runID string, ed *models.ExtractedData, td *models.TransformedData) error {
	now := r.now()

	outputs := []string{
		filepath.Join(r.config.Output.DataDir, load.UnifiedCSVFile),
		filepath.Join(r.config.Output.DataDir, load.UnifiedJSONFile),
	}
	if r.config.Output.WriteArchive {
		outputs = append(outputs, filepath.Join(r.config.Output.DataDir, load.UnifiedArchiveFile))
	}
	validation := transform.BuildValidationReport(runID, r.config.Sources.PlayStoreCSV, outputs, ed, td, now)
	if err := load.WriteJSONFile(r.reportPath(ValidationReportFile), validation); err != nil {
		return err
	}

	ds := insights.NewDataset(td.Unified)
	if err := load.WriteJSONFile(r.reportPath(IntegrationReportFile), insights.BuildIntegrationReport(ds, ed.APIStats, now)); err != nil {
		return err
	}

	engagement := r.analyzeEngagement(ctx, runID, ds, now)

	report := insights.BuildLLMInsightsReport(ds, engagement, now)
	if err := load.WriteJSONFile(r.reportPath(InsightsReportFile), report); err != nil {
		return err
	}
	if err := load.WriteTextFile(r.reportPath(ExecutiveReportFile), insights.RenderExecutiveReport(ds, report, now)); err != nil {
		return err
	}

	r.logger.Info("📄 Отчеты сохранены в %s", r.config.Output.ReportsDir)
	return nil
}

// analyzeEngagement строит модель рейтинга от вовлеченности. Ошибки модели некритичны.
func (r *ETLRunner) analyzeEngagement(ctx context.Context, runID string, ds *insights.Dataset, now time.Time) *insights.EngagementCorrelation {
	ec, err := insights.AnalyzeEngagement(ds, engagementConfidence)
	if err != nil {
		r.logger.Warn("Модель вовлеченности не построена: %v", err)
		return nil
	}
	r.logger.Info("Модель вовлеченности: a=%.3f, b=%.3f, R²=%.3f", ec.Model.A, ec.Model.B, ec.Model.R2)

	if r.engagementRepo == nil {
		return ec
	}
	if err := r.engagementRepo.SaveEstimates(ctx, runID, now, ec); err != nil {
		r.logger.Error("Ошибка при сохранении оценок вовлеченности: %v", err)
		return ec
	}
	if err := r.engagementRepo.DeleteOlderThan(ctx, now.Add(-engagementRetention)); err != nil {
		r.logger.Info("Не удалось удалить устаревшие оценки: %v", err)
	}
	return ec
}

// StartScheduler запускает планировщик для регулярного выполнения ETL
func (r *ETLRunner) StartScheduler(ctx context.Context) {
	scheduler := gocron.NewScheduler(time.UTC)

	r.logger.Info("Запуск планировщика ETL с интервалом %v", r.config.RunInterval)

	_, err := scheduler.Every(r.config.RunInterval).SingletonMode().Do(func() {
		r.logger.Info("Запланированный запуск ETL процесса")
		if err := r.ExecuteETL(ctx, "scheduled"); err != nil {
			r.logger.Error("Ошибка при выполнении запланированного ETL: %v", err)
		}
	})
	if err != nil {
		r.logger.Error("Ошибка при настройке планировщика: %v", err)
		return
	}

	scheduler.StartAsync()

	<-ctx.Done()

	scheduler.Stop()
	r.logger.Info("Планировщик ETL остановлен")
}

// RunD2C выполняет анализ маркетинговых кампаний
func (r *ETLRunner) RunD2C() error {
	processor := marketing.NewD2CProcessor(
		extractors.NewD2CExtractor(r.config.Sources.D2CWorkbook, r.logger),
		r.logger,
		marketing.Config{
			ReportsDir: r.config.Output.ReportsDir,
			OutputDir:  r.config.Output.D2CDir,
		},
	)
	_, err := processor.Process()
	return err
}

// LoadQueryEngine читает сохраненную единую таблицу и (если есть) отчет с выводами
func (r *ETLRunner) LoadQueryEngine() (*insights.QueryEngine, error) {
	records, err := load.ReadUnified(r.config.Output.DataDir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения единой таблицы: %w", err)
	}

	report, err := insights.ReadLLMInsightsReport(r.reportPath(InsightsReportFile))
	if err != nil {
		r.logger.Warn("Отчет с выводами недоступен: %v", err)
		report = nil
	}
	return insights.NewQueryEngine(insights.NewDataset(records), report), nil
}

// RunDashboard печатает исполнительную панель
func (r *ETLRunner) RunDashboard(w io.Writer) error {
	q, err := r.LoadQueryEngine()
	if err != nil {
		return err
	}
	scores := insights.CalculateConfidence(q.Dataset())
	insights.RenderDashboard(w, insights.BuildDashboard(q, &scores, r.now()))
	return nil
}

// Запросы режима query
const (
	QueryCategories    = "categories"
	QueryPlatforms     = "platforms"
	QueryCategory      = "category"
	QueryPricing       = "pricing"
	QueryOpportunities = "opportunities"
	QuerySummary       = "summary"
	QueryInsights      = "insights"
)

// ErrUnknownQuery - неизвестный запрос режима query
var ErrUnknownQuery = errors.New("неизвестный запрос")

// RunQuery выполняет один запрос к рынку и печатает результат
func (r *ETLRunner) RunQuery(w io.Writer, query, category string, limit int) error {
	q, err := r.LoadQueryEngine()
	if err != nil {
		return err
	}
	return renderQuery(w, q, query, category, limit)
}

func renderQuery(w io.Writer, q *insights.QueryEngine, query, category string, limit int) error {
	switch query {
	case QueryCategories:
		insights.RenderTopCategories(w, q.TopCategories(limit))
	case QueryPlatforms:
		insights.RenderPlatformComparison(w, q.ComparePlatforms())
	case QueryCategory:
		dd, err := q.CategoryDeepDive(category)
		if err != nil {
			return err
		}
		insights.RenderCategoryDeepDive(w, dd)
	case QueryPricing:
		insights.RenderPricing(w, q.Pricing())
	case QueryOpportunities:
		insights.RenderOpportunities(w, q.Opportunities())
	case QuerySummary:
		insights.RenderSummary(w, q.Summary())
	case QueryInsights:
		s, err := q.InsightsSummary()
		if err != nil {
			return err
		}
		insights.RenderInsightsSummary(w, s)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownQuery, query)
	}
	return nil
}

// newRunnerOrExit создает ETLRunner или завершает процесс
func newRunnerOrExit(ctx context.Context, configPath string) *ETLRunner {
	runner, err := NewETLRunner(ctx, configPath)
	if err != nil {
		log.Fatalf("Ошибка при создании ETL Runner: %v", err)
	}
	return runner
}

// RunScheduled запускает ETL процесс по расписанию
func RunScheduled(configPath string) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runner := newRunnerOrExit(ctx, configPath)
	defer runner.Close()

	runner.StartScheduler(ctx)
}

func main() {
	// Параметры командной строки
	modePtr := flag.String("mode", "once", "Режим работы: once, scheduled, d2c, dashboard или query")
	configPtr := flag.String("config", "config.yaml", "Путь к YAML-файлу конфигурации")
	queryPtr := flag.String("query", QuerySummary, "Запрос режима query: categories, platforms, category, pricing, opportunities, summary, insights")
	categoryPtr := flag.String("category", "", "Категория для запроса category")
	limitPtr := flag.Int("limit", 10, "Количество категорий для запроса categories")

	flag.Parse()

	log.Println("Запуск ETL Runner в режиме:", *modePtr)

	if *modePtr == "scheduled" {
		RunScheduled(*configPtr)
		return
	}

	ctx := context.Background()
	runner := newRunnerOrExit(ctx, *configPtr)

	var err error
	switch *modePtr {
	case "once":
		err = runner.ExecuteETL(ctx, "once")
	case "d2c":
		err = runner.RunD2C()
	case "dashboard":
		err = runner.RunDashboard(os.Stdout)
	case "query":
		err = runner.RunQuery(os.Stdout, *queryPtr, *categoryPtr, *limitPtr)
	default:
		runner.Close()
		log.Println("Неизвестный режим работы:", *modePtr)
		log.Println("Доступные режимы: once, scheduled, d2c, dashboard, query")
		os.Exit(1)
	}
	runner.Close()

	if err != nil {
		log.Fatalf("Ошибка выполнения режима %s: %v", *modePtr, err)
	}
	log.Println("ETL Runner завершил работу")
}
