package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/LilVoxy/appmarket_intel/ETL/insights"
	"github.com/LilVoxy/appmarket_intel/ETL/utils"
)

// DefaultCategoryLimit - число категорий по умолчанию
const DefaultCategoryLimit = 10

// ErrorResponse - тело ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

type marketHandlers struct {
	store  *SnapshotStore
	logger *utils.ETLLogger
}

// engine возвращает движок запросов или отвечает 503
func (h *marketHandlers) engine(w http.ResponseWriter) (*Snapshot, bool) {
	snap, err := h.store.Current()
	if err != nil {
		h.writeError(w, http.StatusServiceUnavailable, err.Error())
		return nil, false
	}
	return snap, true
}

func (h *marketHandlers) dashboard(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.engine(w)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, snap.Dashboard())
}

func (h *marketHandlers) summary(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.engine(w)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, snap.Engine.Summary())
}

func (h *marketHandlers) topCategories(w http.ResponseWriter, r *http.Request) {
	limit := DefaultCategoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, "Неверное значение limit")
			return
		}
		limit = n
	}

	snap, ok := h.engine(w)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, snap.Engine.TopCategories(limit))
}

func (h *marketHandlers) categoryDeepDive(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.engine(w)
	if !ok {
		return
	}

	dd, err := snap.Engine.CategoryDeepDive(mux.Vars(r)["name"])
	if errors.Is(err, insights.ErrCategoryNotFound) {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("Ошибка анализа категории: %v", err)
		h.writeError(w, http.StatusInternalServerError, "Ошибка анализа категории")
		return
	}
	h.writeJSON(w, http.StatusOK, dd)
}

func (h *marketHandlers) platforms(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.engine(w)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, snap.Engine.ComparePlatforms())
}

func (h *marketHandlers) pricing(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.engine(w)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, snap.Engine.Pricing())
}

func (h *marketHandlers) opportunities(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.engine(w)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, snap.Engine.Opportunities())
}

func (h *marketHandlers) insights(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.engine(w)
	if !ok {
		return
	}

	summary, err := snap.Engine.InsightsSummary()
	if errors.Is(err, insights.ErrNoInsights) {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("Ошибка чтения выводов: %v", err)
		h.writeError(w, http.StatusInternalServerError, "Ошибка чтения выводов")
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *marketHandlers) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("❌ Ошибка при кодировании JSON: %v", err)
	}
}

func (h *marketHandlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, ErrorResponse{Error: msg})
}
