package routes

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/LilVoxy/appmarket_intel/ETL/insights"
)

// ErrNotLoaded возвращается, пока данные рынка не загружены
var ErrNotLoaded = errors.New("данные рынка еще не загружены")

// LoaderFunc читает единую таблицу и отчет с выводами
type LoaderFunc func() (*insights.QueryEngine, error)

// Snapshot - загруженное состояние рынка
type Snapshot struct {
	Engine   *insights.QueryEngine
	Scores   insights.ConfidenceScores
	LoadedAt time.Time
}

// SnapshotStore хранит текущий снимок и перезагружает его по запросу
type SnapshotStore struct {
	mu      sync.RWMutex
	current *Snapshot
	load    LoaderFunc
	now     func() time.Time
}

// NewSnapshotStore создает пустое хранилище
func NewSnapshotStore(load LoaderFunc) *SnapshotStore {
	return &SnapshotStore{
		load: load,
		now:  time.Now,
	}
}

// Reload перечитывает данные. При ошибке прежний снимок сохраняется.
func (s *SnapshotStore) Reload() (*Snapshot, error) {
	engine, err := s.load()
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки данных рынка: %w", err)
	}

	snap := &Snapshot{
		Engine:   engine,
		Scores:   insights.CalculateConfidence(engine.Dataset()),
		LoadedAt: s.now().UTC(),
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
	return snap, nil
}

// Current возвращает текущий снимок или ErrNotLoaded
func (s *SnapshotStore) Current() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, ErrNotLoaded
	}
	return s.current, nil
}

// Dashboard собирает показатели панели по текущему снимку
func (s *SnapshotStore) Dashboard() (any, error) {
	snap, err := s.Current()
	if err != nil {
		return nil, err
	}
	return snap.Dashboard(), nil
}

// Dashboard рассчитывает панель снимка
func (snap *Snapshot) Dashboard() insights.DashboardSnapshot {
	return insights.BuildDashboard(snap.Engine, &snap.Scores, snap.LoadedAt)
}
