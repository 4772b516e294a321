package extractors

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
	"github.com/LilVoxy/appmarket_intel/ETL/utils"
)

// D2CExtractor читает книгу Excel с маркетинговыми кампаниями
type D2CExtractor struct {
	path   string
	logger *utils.ETLLogger
}

// NewD2CExtractor создает новый экземпляр D2CExtractor
func NewD2CExtractor(path string, logger *utils.ETLLogger) *D2CExtractor {
	return &D2CExtractor{
		path:   path,
		logger: logger,
	}
}

// ExtractCampaignRows читает первый лист книги как RawRecord
func (e *D2CExtractor) ExtractCampaignRows() ([]models.RawRecord, error) {
	e.logger.Debug("Чтение книги D2C: %s", e.path)

	file, err := os.Open(e.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, e.path)
		}
		return nil, fmt.Errorf("ошибка открытия %s: %w", e.path, err)
	}
	defer file.Close()

	rows, err := ReadWorkbookRecords(file)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", e.path, err)
	}

	e.logger.Info("Загружено кампаний D2C: %d", len(rows))
	return rows, nil
}

// ReadWorkbookRecords разбирает первый лист книги: первая строка - заголовок,
// полностью пустые строки пропускаются.
func ReadWorkbookRecords(r io.Reader) ([]models.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия книги: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySource
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения листа %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptySource
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	records := make([]models.RawRecord, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		if isBlankRow(cells) {
			continue
		}
		rec := make(models.RawRecord, len(header))
		for i, value := range cells {
			if i >= len(header) || header[i] == "" {
				continue
			}
			rec[header[i]] = value
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, ErrEmptySource
	}
	return records, nil
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
