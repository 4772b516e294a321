package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/LilVoxy/appmarket_intel/ETL/metrics"
)

// CORSMiddleware разрешает запросы панели с любого источника
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestCounter считает запросы по шаблону маршрута
func RequestCounter(m *metrics.PipelineMetrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := "unknown"
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			m.QueryRequestsTotal.WithLabelValues(route).Inc()
			next.ServeHTTP(w, r)
		})
	}
}
