package load

import (
	"context"
	"fmt"
	"time"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
	"github.com/LilVoxy/appmarket_intel/ETL/utils"
)

// LoadManager отвечает за управление процессом сохранения результатов
type LoadManager struct {
	logger  *utils.ETLLogger
	loaders []Loader
}

// NewLoadManager создает новый экземпляр LoadManager
func NewLoadManager(logger *utils.ETLLogger, loaders ...Loader) *LoadManager {
	return &LoadManager{
		logger:  logger,
		loaders: loaders,
	}
}

// Load выполняет фазу загрузки ETL-процесса.
// Первая ошибка любого хранилища прерывает фазу.
func (m *LoadManager) Load(ctx context.Context, transformedData *models.TransformedData) error {
	startTime := time.Now()
	m.logger.Info("Начало фазы Load (Загрузка данных)")

	for _, loader := range m.loaders {
		m.logger.Info("Сохранение в хранилище %s...", loader.Name())
		if err := loader.LoadUnified(ctx, transformedData.Unified); err != nil {
			m.logger.Error("Ошибка при сохранении в хранилище %s: %v", loader.Name(), err)
			return fmt.Errorf("ошибка при сохранении в хранилище %s: %w", loader.Name(), err)
		}
	}

	m.logger.Info("Фаза Load завершена. Длительность: %v", time.Since(startTime))
	return nil
}
