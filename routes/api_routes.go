// routes/api_routes.go
package routes

import (
	"github.com/gorilla/mux"

	"github.com/LilVoxy/appmarket_intel/ETL/metrics"
	"github.com/LilVoxy/appmarket_intel/ETL/utils"
	"github.com/LilVoxy/appmarket_intel/websocket"
)

// SetupRoutes настраивает все маршруты API и WebSocket
func SetupRoutes(
	router *mux.Router,
	store *SnapshotStore,
	wsManager *websocket.Manager,
	pipelineMetrics *metrics.PipelineMetrics,
	logger *utils.ETLLogger,
) {
	router.Use(CORSMiddleware)
	router.Use(RequestCounter(pipelineMetrics))

	h := &marketHandlers{store: store, logger: logger}

	// WebSocket панели
	router.HandleFunc("/ws/dashboard", wsManager.HandleConnections)

	// API рынка
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/dashboard", h.dashboard).Methods("GET", "OPTIONS")
	api.HandleFunc("/summary", h.summary).Methods("GET", "OPTIONS")
	api.HandleFunc("/categories", h.topCategories).Methods("GET", "OPTIONS")
	api.HandleFunc("/categories/{name}", h.categoryDeepDive).Methods("GET", "OPTIONS")
	api.HandleFunc("/platforms", h.platforms).Methods("GET", "OPTIONS")
	api.HandleFunc("/pricing", h.pricing).Methods("GET", "OPTIONS")
	api.HandleFunc("/opportunities", h.opportunities).Methods("GET", "OPTIONS")
	api.HandleFunc("/insights", h.insights).Methods("GET", "OPTIONS")

	// Метрики
	router.Handle("/metrics", pipelineMetrics.Handler()).Methods("GET")
}
