package models

import (
	"database/sql/driver"
	"encoding/json"
	"strconv"
	"time"
)

// DateLayout - формат календарной даты в выходных файлах
const DateLayout = "2006-01-02"

// NullFloat - числовое поле с явным маркером отсутствия значения
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// FloatOf создает заполненное значение NullFloat
func FloatOf(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

// MarshalJSON сериализует отсутствующее значение как null
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// UnmarshalJSON разбирает число или null
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullFloat{}
		return nil
	}
	if err := json.Unmarshal(data, &n.Float64); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Value реализует driver.Valuer: отсутствующее значение пишется как NULL
func (n NullFloat) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Float64, nil
}

// String возвращает текстовое представление для CSV (пустая строка для отсутствующего)
func (n NullFloat) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}

// NullDate - календарная дата с явным маркером отсутствия значения
type NullDate struct {
	Time  time.Time
	Valid bool
}

// DateOf создает заполненное значение NullDate, отбрасывая время суток
func DateOf(t time.Time) NullDate {
	y, m, d := t.Date()
	return NullDate{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

// Before сообщает, что дата строго раньше other
func (n NullDate) Before(other NullDate) bool {
	return n.Time.Before(other.Time)
}

// MarshalJSON сериализует дату как "2006-01-02" или null
func (n NullDate) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Time.Format(DateLayout))
}

// UnmarshalJSON разбирает дату в формате "2006-01-02" или null
func (n *NullDate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullDate{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*n = NullDate{}
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return err
	}
	*n = DateOf(t)
	return nil
}

// Value реализует driver.Valuer
func (n NullDate) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Time.Format(DateLayout), nil
}

// String возвращает текстовое представление для CSV
func (n NullDate) String() string {
	if !n.Valid {
		return ""
	}
	return n.Time.Format(DateLayout)
}
