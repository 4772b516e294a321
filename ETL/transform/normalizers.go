package transform

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
)

// SizeVaries - значение колонки Size, означающее "размер зависит от устройства"
const SizeVaries = "Varies with device"

// Нормализаторы колонок. Ни одна функция не паникует и не возвращает ошибку:
// нераспознанное значение заменяется значением по умолчанию, а флаг ok
// сообщает вызывающему коду, что сработал fallback.

// nativeFloat возвращает значение ячейки, если она уже числовая
func nativeFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// cellText приводит ячейку к строке; nil - отсутствующее значение
func cellText(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", false
	case string:
		return s, true
	default:
		return fmt.Sprint(s), true
	}
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !finite(f) {
		return 0, false
	}
	return f, true
}

// ParseCount разбирает счетчик вида "1,234", "500k", "1.2M".
// Суффиксы чувствительны к регистру: k = ×1 000, M = ×1 000 000.
func ParseCount(v any) (int64, bool) {
	if f, ok := nativeFloat(v); ok {
		if !finite(f) {
			return 0, false
		}
		return int64(math.Round(f)), true
	}

	s, ok := cellText(v)
	if !ok || s == "" || s == "NaN" {
		return 0, false
	}

	multiplier := 1.0
	switch {
	case strings.Contains(s, "M"):
		s = strings.ReplaceAll(s, "M", "")
		multiplier = 1_000_000
	case strings.Contains(s, "k"):
		s = strings.ReplaceAll(s, "k", "")
		multiplier = 1_000
	}

	f, ok := parseFloat(strings.ReplaceAll(s, ",", ""))
	if !ok {
		return 0, false
	}
	return int64(math.Round(f * multiplier)), true
}

// NormalizeCount - ParseCount с fallback 0
func NormalizeCount(v any) int64 {
	n, _ := ParseCount(v)
	return n
}

// NormalizeSize переводит размер в мегабайты: "19M" -> 19, "512k" -> 0.5.
// "Varies with device", пустое и нераспознанное значение - отсутствие значения, а не 0.
func NormalizeSize(v any) models.NullFloat {
	if f, ok := nativeFloat(v); ok {
		if !finite(f) {
			return models.NullFloat{}
		}
		return models.FloatOf(f)
	}

	s, ok := cellText(v)
	if !ok || s == SizeVaries {
		return models.NullFloat{}
	}

	divisor := 1.0
	switch {
	case strings.Contains(s, "M"):
		s = strings.ReplaceAll(s, "M", "")
	case strings.Contains(s, "k"):
		s = strings.ReplaceAll(s, "k", "")
		divisor = 1024
	}

	f, ok := parseFloat(strings.ReplaceAll(s, ",", ""))
	if !ok {
		return models.NullFloat{}
	}
	return models.FloatOf(f / divisor)
}

// ParseInstalls разбирает число установок вида "10,000+"
func ParseInstalls(v any) (int64, bool) {
	if f, ok := nativeFloat(v); ok {
		if !finite(f) {
			return 0, false
		}
		return int64(f), true
	}

	s, ok := cellText(v)
	if !ok {
		return 0, false
	}
	s = strings.ReplaceAll(strings.ReplaceAll(s, "+", ""), ",", "")

	f, ok := parseFloat(s)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// NormalizeInstalls - ParseInstalls с fallback 0
func NormalizeInstalls(v any) int64 {
	n, _ := ParseInstalls(v)
	return n
}

// ParsePrice разбирает цену вида "$4.99"; "Free" (без учета регистра) и "0" - бесплатно
func ParsePrice(v any) (float64, bool) {
	if f, ok := nativeFloat(v); ok {
		if !finite(f) {
			return 0, false
		}
		return f, true
	}

	s, ok := cellText(v)
	if !ok {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if s == "0" || strings.EqualFold(s, "free") {
		return 0, true
	}

	f, ok := parseFloat(strings.ReplaceAll(s, "$", ""))
	if !ok {
		return 0, false
	}
	return f, true
}

// NormalizePrice - ParsePrice с fallback 0.0
func NormalizePrice(v any) float64 {
	p, _ := ParsePrice(v)
	return p
}

// Допустимый диапазон лет для даты обновления
const (
	minDateYear = 1970
	maxDateYear = 2100
)

// NormalizeDate разбирает календарную дату ("January 7, 2018", "2018-01-07", RFC 3339).
// Нераспознанная дата - отсутствие значения (не эпоха и не текущее время).
// Числа ("4.4", "1234567890") датой не считаются.
func NormalizeDate(v any) models.NullDate {
	s, ok := cellText(v)
	if !ok {
		return models.NullDate{}
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.Trim(s, "0123456789.") == "" {
		return models.NullDate{}
	}

	t, err := dateparse.ParseAny(s)
	if err != nil || t.Year() < minDateYear || t.Year() > maxDateYear {
		return models.NullDate{}
	}
	return models.DateOf(t)
}

// CoerceFloat - мягкое приведение значения неизвестного типа к числу.
// Пустая строка, "nan", "null", "none" и любые ошибки разбора дают 0.
func CoerceFloat(v any) (float64, bool) {
	if f, ok := nativeFloat(v); ok {
		if !finite(f) {
			return 0, false
		}
		return f, true
	}

	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "null", "none":
		return 0, false
	}

	return parseFloat(s)
}

// CoerceInt - CoerceFloat с отбрасыванием дробной части
func CoerceInt(v any) (int64, bool) {
	f, ok := CoerceFloat(v)
	return int64(f), ok
}
