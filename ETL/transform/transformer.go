package transform

import (
	"errors"
	"fmt"
	"time"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
	"github.com/LilVoxy/appmarket_intel/ETL/utils"
)

// ErrNoExtractedData возвращается, если фазе Transform не передали данных
var ErrNoExtractedData = errors.New("нет извлеченных данных")

// Transformer координирует очистку, дедупликацию и сведение данных в единую схему
type Transformer struct {
	logger             *utils.ETLLogger
	playStoreProcessor *PlayStoreProcessor
	appStoreProcessor  *AppStoreProcessor
	unifier            *Unifier
}

// NewTransformer создает новый экземпляр Transformer
func NewTransformer(categories *CategoryMap, logger *utils.ETLLogger) *Transformer {
	return &Transformer{
		logger:             logger,
		playStoreProcessor: NewPlayStoreProcessor(logger),
		appStoreProcessor:  NewAppStoreProcessor(logger),
		unifier:            NewUnifier(categories),
	}
}

// Transform выполняет полный процесс преобразования извлеченных данных
func (t *Transformer) Transform(extractedData *models.ExtractedData) (*models.TransformedData, error) {
	if extractedData == nil {
		return nil, fmt.Errorf("ошибка фазы Transform: %w", ErrNoExtractedData)
	}

	startTime := time.Now()
	t.logger.Info("Начало фазы Transform (Преобразование данных)")

	transformedData := &models.TransformedData{}

	// 1. Нормализация колонок Google Play
	t.logger.Info("Нормализация колонок Google Play...")
	android := t.playStoreProcessor.ProcessPlayStore(extractedData.PlayStore, &transformedData.Stats)

	// 2. Дедупликация по имени приложения
	t.logger.Info("Удаление дубликатов...")
	android, removed := Deduplicate(android)
	transformedData.Stats.DuplicatesRemoved = removed
	t.logger.Info("Удалено дубликатов: %d, осталось приложений: %d", removed, len(android))

	// 3. Метрики качества
	transformedData.Quality = ValidateQuality(android)

	// 4. Нормализация записей iTunes
	t.logger.Info("Нормализация записей iTunes...")
	ios := t.appStoreProcessor.ProcessAppStore(extractedData.AppStore, &transformedData.Stats)

	// 5. Сведение в единую схему
	t.logger.Info("Сведение платформ в единую схему...")
	transformedData.Unified = t.unifier.Unify(android, ios)
	transformedData.AndroidApps = len(android)
	transformedData.IOSApps = len(ios)

	duration := time.Since(startTime)
	t.logger.Info("Фаза Transform завершена. Длительность: %v", duration)

	return transformedData, nil
}

// Unifier возвращает сводящий компонент трансформера
func (t *Transformer) Unifier() *Unifier {
	return t.unifier
}
