package utils

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ETLLogger представляет логгер для ETL-процесса
type ETLLogger struct {
	sugar     *zap.SugaredLogger
	isVerbose bool
}

// NewETLLogger создает новый экземпляр логгера для ETL.
// Сообщения пишутся в стандартный вывод и в ежедневный лог-файл в каталоге logDir
// (пустая строка - текущий каталог).
func NewETLLogger(verbose bool, logDir string) (*ETLLogger, error) {
	currentTime := time.Now().Format("2006-01-02")
	logFileName := fmt.Sprintf("etl_log_%s.log", currentTime)
	if logDir != "" {
		logFileName = filepath.Join(logDir, logFileName)
	}

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Encoding = "console"
	zapCfg.Sampling = nil
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	zapCfg.OutputPaths = []string{"stdout", logFileName}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	z, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть или создать файл лога: %w", err)
	}

	return &ETLLogger{
		sugar:     z.Sugar(),
		isVerbose: verbose,
	}, nil
}

// NewNopLogger возвращает логгер, который ничего не пишет (для тестов)
func NewNopLogger() *ETLLogger {
	return &ETLLogger{sugar: zap.NewNop().Sugar()}
}

// Info логирует информационное сообщение
func (l *ETLLogger) Info(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Warn логирует предупреждение
func (l *ETLLogger) Warn(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Error логирует сообщение об ошибке
func (l *ETLLogger) Error(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// Debug логирует отладочное сообщение (только если включен verbose режим)
func (l *ETLLogger) Debug(format string, v ...interface{}) {
	if !l.isVerbose {
		return
	}
	l.sugar.Debugf(format, v...)
}

// Sync сбрасывает буферы логгера
func (l *ETLLogger) Sync() {
	_ = l.sugar.Sync()
}

// LogETLStart логирует начало ETL-процесса
func (l *ETLLogger) LogETLStart(runID string) {
	l.Info("🚀 Начало выполнения ETL-процесса (запуск %s)", runID)
}

// LogETLComplete логирует завершение ETL-процесса
func (l *ETLLogger) LogETLComplete(startTime time.Time, androidApps, iosApps, duplicatesRemoved int) {
	l.Info("✅ ETL-процесс завершён. Длительность: %v", time.Since(startTime))
	l.Info("Обработано: %d Android-приложений, %d iOS-приложений, удалено дубликатов: %d",
		androidApps, iosApps, duplicatesRemoved)
}

// LogExtractStart логирует начало фазы извлечения данных
func (l *ETLLogger) LogExtractStart() {
	l.Info("Начало фазы Extract (Извлечение данных)")
}

// LogExtractComplete логирует завершение фазы извлечения данных
func (l *ETLLogger) LogExtractComplete(playStoreRows int, appStoreRows int, duration time.Duration) {
	l.Info("Фаза Extract завершена. Длительность: %v", duration)
	l.Info("Извлечено: %d строк Google Play, %d записей iTunes", playStoreRows, appStoreRows)
}
