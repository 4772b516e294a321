package models

import (
	"fmt"
	"time"
)

// RawRecord - строка источника "как есть": имя колонки -> текст или число.
// Живет только до нормализации.
type RawRecord map[string]any

// Text возвращает значение колонки как строку; ok=false, если колонки нет или значение nil
func (r RawRecord) Text(column string) (string, bool) {
	v, exists := r[column]
	if !exists || v == nil {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case fmt.Stringer:
		return val.String(), true
	default:
		return fmt.Sprint(val), true
	}
}

// TextOr возвращает строковое значение колонки или значение по умолчанию
func (r RawRecord) TextOr(column, fallback string) string {
	if s, ok := r.Text(column); ok {
		return s
	}
	return fallback
}

// ExtractedData содержит данные, извлечённые из источников
type ExtractedData struct {
	// Строки датасета Google Play (CSV)
	PlayStore []RawRecord
	// Количество колонок в исходном CSV
	PlayStoreColumns int
	// Записи iTunes Search API
	AppStore []RawRecord
	// Статистика обращений к API
	APIStats APIStats
	LastRunTS time.Time
}

// APIStats содержит статистику обращений к iTunes Search API
type APIStats struct {
	SearchTermsUsed int  `json:"search_terms_used"`
	APICallsMade    int  `json:"api_calls_made"`
	FailedCalls     int  `json:"failed_calls"`
	AppsFetched     int  `json:"itunes_apps_fetched"`
	FromCache       bool `json:"from_cache"`
}
