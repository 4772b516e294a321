package extractors

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
	"github.com/LilVoxy/appmarket_intel/ETL/utils"
)

var (
	// ErrSourceNotFound - исходный файл отсутствует
	ErrSourceNotFound = errors.New("источник данных не найден")
	// ErrEmptySource - в источнике нет ни одной строки данных
	ErrEmptySource = errors.New("источник данных пуст")
	// ErrMissingColumn - в заголовке нет обязательной колонки
	ErrMissingColumn = errors.New("отсутствует обязательная колонка")
)

// PlayStoreExtractor читает CSV-датасет Google Play
type PlayStoreExtractor struct {
	path   string
	logger *utils.ETLLogger
}

// NewPlayStoreExtractor создает новый экземпляр PlayStoreExtractor
func NewPlayStoreExtractor(path string, logger *utils.ETLLogger) *PlayStoreExtractor {
	return &PlayStoreExtractor{
		path:   path,
		logger: logger,
	}
}

// ExtractPlayStore читает все строки CSV как RawRecord.
// Возвращает строки и число колонок заголовка.
func (e *PlayStoreExtractor) ExtractPlayStore() ([]models.RawRecord, int, error) {
	e.logger.Debug("Чтение CSV Google Play: %s", e.path)

	file, err := os.Open(e.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, fmt.Errorf("%w: %s", ErrSourceNotFound, e.path)
		}
		return nil, 0, fmt.Errorf("ошибка открытия %s: %w", e.path, err)
	}
	defer file.Close()

	rows, columns, err := ReadCSVRecords(file)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка чтения %s: %w", e.path, err)
	}

	e.logger.Debug("Прочитано строк Google Play: %d, колонок: %d", len(rows), columns)
	return rows, columns, nil
}

// ReadCSVRecords разбирает CSV с заголовком. Строки короче заголовка допускаются:
// недостающие колонки в RawRecord отсутствуют.
func ReadCSVRecords(r io.Reader) ([]models.RawRecord, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, ErrEmptySource
		}
		return nil, 0, fmt.Errorf("ошибка чтения заголовка: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	if !containsColumn(header, "App") {
		return nil, 0, fmt.Errorf("%w: App", ErrMissingColumn)
	}

	var rows []models.RawRecord
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка чтения строки %d: %w", len(rows)+2, err)
		}

		row := make(models.RawRecord, len(header))
		for i, value := range fields {
			if i >= len(header) {
				break
			}
			row[header[i]] = value
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, len(header), ErrEmptySource
	}
	return rows, len(header), nil
}

func containsColumn(header []string, name string) bool {
	for _, h := range header {
		if h == name {
			return true
		}
	}
	return false
}
