package service

import (
	"sync"
	"time"
)

// ============================================================
// Debounced Autosave
// ============================================================

// Autosaver откладывает сохранение до паузы в изменениях. Запись идет в
// отдельной горутине и не задерживает обработчики.
type Autosaver struct {
	mu    sync.Mutex
	delay time.Duration
	save  func()
	timer *time.Timer
}

func NewAutosaver(delay time.Duration, save func()) *Autosaver {
	return &Autosaver{delay: delay, save: save}
}

// Touch переносит сохранение на delay от текущего момента.
func (a *Autosaver) Touch() {
	if a == nil || a.delay <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.save)
}

func (a *Autosaver) Stop() {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
