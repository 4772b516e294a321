package load

import (
	"context"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
)

// Loader интерфейс для сохранения единой таблицы приложений.
// Каждый запуск полностью перезаписывает ранее сохраненные данные.
type Loader interface {
	// Name возвращает имя хранилища для логов
	Name() string

	// LoadUnified сохраняет единую таблицу
	LoadUnified(ctx context.Context, records []models.UnifiedRecord) error
}
