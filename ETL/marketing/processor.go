package marketing

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/LilVoxy/appmarket_intel/ETL/load"
	"github.com/LilVoxy/appmarket_intel/ETL/models"
	"github.com/LilVoxy/appmarket_intel/ETL/utils"
)

// Имена выходных файлов D2C-анализа
const (
	ReportFile   = "d2c_analytics_report.json"
	AnalyzedFile = "d2c_campaigns_analyzed.csv"
)

// CampaignSource - источник строк книги кампаний
type CampaignSource interface {
	ExtractCampaignRows() ([]models.RawRecord, error)
}

// Config конфигурация процессора D2C-анализа
type Config struct {
	// Каталог JSON-отчета
	ReportsDir string
	// Каталог CSV с рассчитанными показателями
	OutputDir string
}

// D2CProcessor процессор анализа маркетинговых кампаний
type D2CProcessor struct {
	source CampaignSource
	logger *utils.ETLLogger
	config Config
	now    func() time.Time
}

// NewD2CProcessor создает новый процессор D2C-анализа
func NewD2CProcessor(source CampaignSource, logger *utils.ETLLogger, config Config) *D2CProcessor {
	return &D2CProcessor{
		source: source,
		logger: logger,
		config: config,
		now:    time.Now,
	}
}

// Process выполняет основной процесс: чтение книги, расчет показателей и сохранение отчетов
func (p *D2CProcessor) Process() (*Report, error) {
	startTime := time.Now()
	p.logger.Info("🚀 Запуск анализа D2C-кампаний")

	// 1. Читаем книгу
	rows, err := p.source.ExtractCampaignRows()
	if err != nil {
		return nil, fmt.Errorf("ошибка при чтении кампаний: %w", err)
	}

	// 2. Приводим строки к кампаниям
	campaigns, stats := ParseCampaigns(rows)
	p.logger.Info("Разобрано кампаний: %d из %d строк", stats.Campaigns, stats.Rows)
	if stats.SkippedNoID > 0 {
		p.logger.Warn("Пропущено строк без campaign_id: %d", stats.SkippedNoID)
	}
	if stats.NumberFallbacks > 0 {
		p.logger.Debug("Нечисловых значений заменено нулем: %d", stats.NumberFallbacks)
	}

	// 3. Считаем показатели
	report := Analyze(campaigns, stats, p.now())
	p.logger.Info("📊 Общий ROAS: %.2fx, лучший канал: %s",
		report.OverallMetrics.OverallROAS, report.BestChannel())

	// 4. Сохраняем отчет и CSV
	reportPath := filepath.Join(p.config.ReportsDir, ReportFile)
	if err := load.WriteJSONFile(reportPath, report); err != nil {
		return nil, fmt.Errorf("ошибка при сохранении отчета D2C: %w", err)
	}

	if err := os.MkdirAll(p.config.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога %s: %w", p.config.OutputDir, err)
	}
	csvPath := filepath.Join(p.config.OutputDir, AnalyzedFile)
	err = load.WriteFileAtomic(csvPath, func(w io.Writer) error {
		return WriteAnalyzedCSV(w, campaigns)
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка при сохранении кампаний: %w", err)
	}

	p.logger.Info("✅ Анализ D2C завершен за %v: %s, %s", time.Since(startTime), reportPath, csvPath)
	return report, nil
}
