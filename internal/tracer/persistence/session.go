package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"path-tracer/internal/tracer/models"
	"path-tracer/internal/tracer/repository"
)

// ============================================================
// Session Persistence
// ============================================================

const MaxAge = 24 * time.Hour

// KV - долговременное строковое хранилище.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Manager сохраняет и восстанавливает сессию записи в один слот хранилища.
// Ни одна ошибка не прерывает запись: все сбои логируются.
type Manager struct {
	kv  KV
	key string
	now func() time.Time
}

func NewManager(kv KV, key string) *Manager {
	return &Manager{kv: kv, key: key, now: time.Now}
}

func (m *Manager) Key() string { return m.key }

// SetClock подменяет источник времени (тесты).
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

// Save сохраняет снимок. Возвращает false, если записывать нечего или
// запись не удалась. При нехватке места повторяет без изображения плана.
func (m *Manager) Save(ctx context.Context, snap models.Snapshot, cfg models.Config, image string) bool {
	if !snap.HasRecordedPoints() {
		return false
	}

	saved := models.SavedSession{
		Paths:          snap.Paths,
		CurrentPathID:  snap.CurrentPathID,
		VideoTime:      snap.VideoTime,
		Config:         cfg,
		ImageWidth:     snap.ImageWidth,
		ImageHeight:    snap.ImageHeight,
		Timestamp:      m.now().UnixMilli(),
		FloorPlanImage: image,
	}

	err := m.write(ctx, saved)
	if errors.Is(err, repository.ErrQuotaExceeded) && saved.FloorPlanImage != "" {
		log.Printf("[SESSION] quota exceeded, retrying without floor plan image")
		saved.FloorPlanImage = ""
		err = m.write(ctx, saved)
	}
	if err != nil {
		log.Printf("[SESSION] save failed: %v", err)
		return false
	}
	return true
}

func (m *Manager) write(ctx context.Context, saved models.SavedSession) error {
	data, err := json.Marshal(saved)
	if err != nil {
		return err
	}
	return m.kv.Set(ctx, m.key, string(data))
}

// Recoverable возвращает сохраненную сессию, если ее можно предложить
// к восстановлению. Поврежденная, просроченная или пустая сессия удаляется.
func (m *Manager) Recoverable(ctx context.Context) (*models.SavedSession, bool) {
	data, err := m.kv.Get(ctx, m.key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("[SESSION] load failed: %v", err)
		}
		return nil, false
	}

	var saved models.SavedSession
	if err := json.Unmarshal([]byte(data), &saved); err != nil {
		log.Printf("[SESSION] corrupt session discarded: %v", err)
		m.Clear(ctx)
		return nil, false
	}

	age := m.now().Sub(time.UnixMilli(saved.Timestamp))
	if age > MaxAge {
		log.Printf("[SESSION] expired session discarded (age %s)", age.Round(time.Second))
		m.Clear(ctx)
		return nil, false
	}
	if !models.HasRecordedPoints(saved.Paths) {
		m.Clear(ctx)
		return nil, false
	}
	return &saved, true
}

// Clear удаляет сохраненную сессию.
func (m *Manager) Clear(ctx context.Context) {
	if err := m.kv.Remove(ctx, m.key); err != nil {
		log.Printf("[SESSION] clear failed: %v", err)
	}
}
