package transform

import (
	"sort"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
)

// Deduplicate оставляет по одной записи на каждое имя приложения - самую свежую по LastUpdated.
// Записи без даты считаются самыми старыми; при равных датах побеждает строка, встретившаяся раньше.
// Выжившие записи возвращаются в исходном порядке. Второй результат - число удаленных дубликатов.
func Deduplicate(records []models.NormalizedRecord) ([]models.NormalizedRecord, int) {
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		da, db := records[order[a]].LastUpdated, records[order[b]].LastUpdated
		if da.Valid != db.Valid {
			return da.Valid
		}
		return da.Valid && db.Before(da)
	})

	seen := make(map[string]struct{}, len(records))
	keep := make([]bool, len(records))
	for _, idx := range order {
		name := records[idx].Name
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		keep[idx] = true
	}

	result := make([]models.NormalizedRecord, 0, len(seen))
	for i, rec := range records {
		if keep[i] {
			result = append(result, rec)
		}
	}

	return result, len(records) - len(result)
}
