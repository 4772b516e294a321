package load

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
	"github.com/LilVoxy/appmarket_intel/ETL/utils"
)

// Имена файлов единой таблицы
const (
	UnifiedCSVFile     = "unified_app_data.csv"
	UnifiedJSONFile    = "unified_app_data.json"
	UnifiedArchiveFile = "unified_app_data.json.sz"
)

// FileLoader сохраняет единую таблицу в CSV, JSON и (опционально) сжатый архив
type FileLoader struct {
	dir          string
	writeArchive bool
	logger       *utils.ETLLogger
}

// NewFileLoader создает новый экземпляр FileLoader
func NewFileLoader(dir string, writeArchive bool, logger *utils.ETLLogger) *FileLoader {
	return &FileLoader{
		dir:          dir,
		writeArchive: writeArchive,
		logger:       logger,
	}
}

// Name возвращает имя хранилища
func (l *FileLoader) Name() string {
	return "files"
}

// LoadUnified записывает файлы единой таблицы
func (l *FileLoader) LoadUnified(_ context.Context, records []models.UnifiedRecord) error {
	startTime := time.Now()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("ошибка создания каталога %s: %w", l.dir, err)
	}

	csvPath := filepath.Join(l.dir, UnifiedCSVFile)
	if err := WriteFileAtomic(csvPath, func(w io.Writer) error {
		return WriteUnifiedCSV(w, records)
	}); err != nil {
		return err
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации единой таблицы: %w", err)
	}
	if err := writeBytesAtomic(filepath.Join(l.dir, UnifiedJSONFile), data); err != nil {
		return err
	}

	archivePath := filepath.Join(l.dir, UnifiedArchiveFile)
	if l.writeArchive {
		if err := writeBytesAtomic(archivePath, CompressBlock(data)); err != nil {
			return err
		}
	} else if err := os.Remove(archivePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("ошибка удаления устаревшего архива %s: %w", archivePath, err)
	}

	l.logger.Info("💾 Единая таблица записана в %s (%d строк). Длительность: %v", l.dir, len(records), time.Since(startTime))
	return nil
}

// WriteFileAtomic пишет файл через временный файл и переименование:
// читатели видят либо старую, либо новую версию целиком.
func WriteFileAtomic(path string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла для %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("ошибка записи %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ошибка записи %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ошибка замены %s: %w", path, err)
	}
	return nil
}

func writeBytesAtomic(path string, data []byte) error {
	return WriteFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// WriteJSONFile сериализует значение в JSON с отступами и атомарно записывает в файл
func WriteJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ошибка создания каталога для %s: %w", path, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации %s: %w", path, err)
	}
	return writeBytesAtomic(path, data)
}

// WriteTextFile атомарно записывает текстовый отчет
func WriteTextFile(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ошибка создания каталога для %s: %w", path, err)
	}
	return writeBytesAtomic(path, []byte(text))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// WriteUnifiedCSV пишет единую таблицу в CSV с заголовком models.UnifiedColumns
func WriteUnifiedCSV(w io.Writer, records []models.UnifiedRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(models.UnifiedColumns); err != nil {
		return err
	}

	for _, r := range records {
		if err := writer.Write([]string{
			r.AppID,
			r.AppName,
			string(r.Platform),
			r.UnifiedCategory,
			r.OriginalCategory,
			formatFloat(r.Rating),
			strconv.FormatInt(r.ReviewCount, 10),
			strconv.FormatInt(r.Installs, 10),
			r.SizeMB.String(),
			r.AppType,
			formatFloat(r.PriceUSD),
			r.ContentRating,
			r.LastUpdated.String(),
			r.Genres,
			r.DataSource,
			r.Developer,
			r.Version,
			r.MinOSVersion,
		}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// ErrBadUnifiedCSV - CSV не соответствует единой схеме
var ErrBadUnifiedCSV = errors.New("CSV не соответствует единой схеме")

// ReadUnifiedCSV читает единую таблицу из CSV, записанного WriteUnifiedCSV
func ReadUnifiedCSV(r io.Reader) ([]models.UnifiedRecord, error) {
	reader := csv.NewReader(r)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения CSV: %w", err)
	}
	if len(rows) == 0 || len(rows[0]) != len(models.UnifiedColumns) {
		return nil, ErrBadUnifiedCSV
	}

	records := make([]models.UnifiedRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseUnifiedRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: строка %d: %v", ErrBadUnifiedCSV, i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseUnifiedRow(row []string) (models.UnifiedRecord, error) {
	rec := models.UnifiedRecord{
		AppID:            row[0],
		AppName:          row[1],
		Platform:         models.Platform(row[2]),
		UnifiedCategory:  row[3],
		OriginalCategory: row[4],
		AppType:          row[9],
		ContentRating:    row[11],
		Genres:           row[13],
		DataSource:       row[14],
		Developer:        row[15],
		Version:          row[16],
		MinOSVersion:     row[17],
	}

	var err error
	if rec.Rating, err = strconv.ParseFloat(row[5], 64); err != nil {
		return rec, err
	}
	if rec.ReviewCount, err = strconv.ParseInt(row[6], 10, 64); err != nil {
		return rec, err
	}
	if rec.Installs, err = strconv.ParseInt(row[7], 10, 64); err != nil {
		return rec, err
	}
	if row[8] != "" {
		size, err := strconv.ParseFloat(row[8], 64)
		if err != nil {
			return rec, err
		}
		rec.SizeMB = models.FloatOf(size)
	}
	if rec.PriceUSD, err = strconv.ParseFloat(row[10], 64); err != nil {
		return rec, err
	}
	if row[12] != "" {
		t, err := time.Parse(models.DateLayout, row[12])
		if err != nil {
			return rec, err
		}
		rec.LastUpdated = models.DateOf(t)
	}
	return rec, nil
}

// ReadUnifiedJSON читает единую таблицу из JSON-файла
func ReadUnifiedJSON(path string) ([]models.UnifiedRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", path, err)
	}
	return decodeUnified(path, data)
}

// ReadUnifiedArchive читает единую таблицу из сжатого архива
func ReadUnifiedArchive(path string) ([]models.UnifiedRecord, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", path, err)
	}
	data, err := DecompressBlock(compressed)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", path, err)
	}
	return decodeUnified(path, data)
}

func decodeUnified(path string, data []byte) ([]models.UnifiedRecord, error) {
	var records []models.UnifiedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("ошибка разбора %s: %w", path, err)
	}
	return records, nil
}

// ReadUnified читает единую таблицу из каталога: архив, если он есть, иначе JSON
func ReadUnified(dir string) ([]models.UnifiedRecord, error) {
	archive := filepath.Join(dir, UnifiedArchiveFile)
	if _, err := os.Stat(archive); err == nil {
		return ReadUnifiedArchive(archive)
	}
	return ReadUnifiedJSON(filepath.Join(dir, UnifiedJSONFile))
}
