// main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/gorilla/mux"

	"github.com/LilVoxy/appmarket_intel/ETL/config"
	"github.com/LilVoxy/appmarket_intel/ETL/insights"
	"github.com/LilVoxy/appmarket_intel/ETL/load"
	"github.com/LilVoxy/appmarket_intel/ETL/metrics"
	"github.com/LilVoxy/appmarket_intel/ETL/utils"
	"github.com/LilVoxy/appmarket_intel/routes"
	"github.com/LilVoxy/appmarket_intel/websocket"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Путь к YAML-файлу конфигурации")
	flag.Parse()

	fmt.Println("Запуск сервера рыночной аналитики...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Не удалось загрузить конфигурацию: %v", err)
	}

	logger, err := utils.NewETLLogger(cfg.EnableDetailedLogging, cfg.LogDir)
	if err != nil {
		log.Fatalf("❌ Не удалось инициализировать логгер: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Хранилище снимка рынка
	store := routes.NewSnapshotStore(marketLoader(cfg, logger))
	if _, err := store.Reload(); err != nil {
		logger.Warn("⚠️ Данные рынка пока недоступны: %v", err)
	}

	// Менеджер WebSocket панели
	wsManager := websocket.NewManager(store.Dashboard)
	go wsManager.Run(ctx)

	scheduler, err := startReloader(ctx, cfg.Server.ReloadInterval, store, wsManager, logger)
	if err != nil {
		log.Fatalf("❌ Ошибка настройки планировщика: %v", err)
	}
	defer scheduler.Stop()

	router := mux.NewRouter()
	routes.SetupRoutes(router, store, wsManager, metrics.NewPipelineMetrics(), logger)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("✅ Сервер запущен на http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Ошибка запуска сервера: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("⚠️ Получен сигнал завершения, закрываем соединения...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("❌ Ошибка остановки сервера: %v", err)
	}

	logger.Info("👋 Сервер остановлен")
}

// marketLoader читает результаты последнего запуска ETL
func marketLoader(cfg config.ETLConfig, logger *utils.ETLLogger) routes.LoaderFunc {
	return func() (*insights.QueryEngine, error) {
		records, err := load.ReadUnified(cfg.Output.DataDir)
		if err != nil {
			return nil, err
		}

		report, err := insights.ReadLLMInsightsReport(filepath.Join(cfg.Output.ReportsDir, insights.InsightsReportFile))
		if err != nil {
			logger.Warn("Отчет с выводами недоступен: %v", err)
			report = nil
		}
		return insights.NewQueryEngine(insights.NewDataset(records), report), nil
	}
}

// startReloader периодически перечитывает данные и рассылает панель клиентам
func startReloader(
	ctx context.Context,
	interval time.Duration,
	store *routes.SnapshotStore,
	wsManager *websocket.Manager,
	logger *utils.ETLLogger,
) (*gocron.Scheduler, error) {
	scheduler := gocron.NewScheduler(time.UTC)

	_, err := scheduler.Every(interval).SingletonMode().WaitForSchedule().Do(func() {
		snap, err := store.Reload()
		if err != nil {
			logger.Error("Ошибка перезагрузки данных: %v", err)
			return
		}
		if err := wsManager.BroadcastDashboard(ctx, snap.Dashboard()); err != nil {
			logger.Warn("Панель не разослана: %v", err)
			return
		}
		logger.Info("🔄 Данные обновлены, клиентов: %d", wsManager.ClientCount())
	})
	if err != nil {
		return nil, err
	}

	scheduler.StartAsync()
	return scheduler, nil
}
