package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"path-tracer/internal/tracer/floorplan"
	"path-tracer/internal/tracer/models"
	"path-tracer/internal/tracer/persistence"
	"path-tracer/internal/tracer/recorder"
)

// ============================================================
// Workspace
// ============================================================

type FloorPlan struct {
	Meta    floorplan.Meta
	Path    string // файл на диске; пусто для плана из восстановленной сессии
	Preview string // data URL для сохранения в сессии
}

// Workspace - один движок записи. Все обращения к рекордеру идут под
// мьютексом пространства, по одному обработчику за раз.
type Workspace struct {
	ID string

	mu           sync.Mutex
	rec          *recorder.Recorder
	video        *recorder.RemoteVideo
	session      *persistence.Manager
	storage      *FileStorage
	previewLimit int
	plan         *FloorPlan
	autosave     *Autosaver

	// saveMu упорядочивает запись и удаление сессии. discarded ставится при
	// удалении и снимается при следующем изменении путей.
	saveMu    sync.Mutex
	discarded bool
}

// View - состояние пространства для ответа клиенту.
type View struct {
	ID        string            `json:"id"`
	State     models.Snapshot   `json:"state"`
	Config    models.Config     `json:"config"`
	Sampler   string            `json:"sampler"`
	Video     recorder.Commands `json:"video"`
	FloorPlan *floorplan.Meta   `json:"floorPlan,omitempty"`
}

// Apply выполняет fn под блокировкой и возвращает актуальное состояние.
// Если fn сообщила об изменении путей, планируется автосохранение.
func (w *Workspace) Apply(fn func(rec *recorder.Recorder) (bool, error)) (View, error) {
	w.mu.Lock()
	dirty, err := fn(w.rec)
	if dirty {
		w.discarded = false
	}
	view := w.view(true)
	w.mu.Unlock()

	if dirty {
		w.autosave.Touch()
	}
	return view, err
}

// View не забирает команды видео: они уходят клиенту с ответом на
// следующее изменение.
func (w *Workspace) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view(false)
}

func (w *Workspace) view(drain bool) View {
	commands := w.video.PendingCommands()
	if drain {
		commands = w.video.TakeCommands()
	}
	v := View{
		ID:      w.ID,
		State:   w.rec.State().Snapshot(),
		Config:  w.rec.Config(),
		Sampler: w.rec.Sampler().Kind().String(),
		Video:   commands,
	}
	if w.plan != nil {
		meta := w.plan.Meta
		v.FloorPlan = &meta
	}
	return v
}

// Paths возвращает копию путей для экспорта.
func (w *Workspace) Paths() []models.Path {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rec.State().Paths()
}

// Snapshot - состояние без выдачи накопленных команд видео.
func (w *Workspace) Snapshot() models.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rec.State().Snapshot()
}

// ============================================================
// Floor plan
// ============================================================

// LoadFloorPlan принимает новый план. Все пути сбрасываются.
func (w *Workspace) LoadFloorPlan(data []byte, filename string) (View, error) {
	meta, err := floorplan.DecodeMeta(data, filename)
	if err != nil {
		return View{}, fmt.Errorf("decode floor plan: %w", err)
	}

	plan := &FloorPlan{Meta: meta}
	preview, contentType, err := floorplan.Preview(data, meta, w.previewLimit)
	if err != nil {
		log.Printf("[TRACER] preview failed, session will not carry the image: %v", err)
	} else {
		plan.Preview = floorplan.DataURL(contentType, preview)
	}

	if w.storage != nil {
		path, err := w.storage.SavePlan(w.ID, meta.Format, data)
		if err != nil {
			return View{}, err
		}
		plan.Path = path
	}

	return w.Apply(func(rec *recorder.Recorder) (bool, error) {
		rec.LoadFloorPlan(meta)
		w.plan = plan
		return false, nil
	})
}

// PlanFile возвращает путь к файлу плана и его тип.
func (w *Workspace) PlanFile() (string, string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.plan == nil || w.plan.Path == "" {
		return "", "", false
	}
	return w.plan.Path, w.plan.Meta.ContentType, true
}

// ============================================================
// Session
// ============================================================

func (w *Workspace) capture() (models.Snapshot, models.Config, string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	image := ""
	if w.plan != nil {
		image = w.plan.Preview
	}
	return w.rec.State().Snapshot(), w.rec.Config(), image, w.discarded
}

// saveSnapshot - запись автосохранения; снимок берется под блокировкой
// пространства, запись в хранилище идет без нее. После удаления сессии
// автосохранение молчит до новых изменений.
func (w *Workspace) saveSnapshot() {
	w.saveMu.Lock()
	defer w.saveMu.Unlock()

	snap, cfg, image, discarded := w.capture()
	if discarded {
		return
	}
	if w.session.Save(context.Background(), snap, cfg, image) {
		log.Printf("[AUTOSAVE] workspace %s saved", w.ID)
	}
}

func (w *Workspace) SaveSession(ctx context.Context) bool {
	w.saveMu.Lock()
	defer w.saveMu.Unlock()

	snap, cfg, image, _ := w.capture()
	return w.session.Save(ctx, snap, cfg, image)
}

func (w *Workspace) RecoverableSession(ctx context.Context) (*models.SavedSession, bool) {
	return w.session.Recoverable(ctx)
}

// RestoreSession применяет сохраненную сессию к пространству.
func (w *Workspace) RestoreSession(ctx context.Context) (View, bool) {
	saved, ok := w.session.Recoverable(ctx)
	if !ok {
		return w.View(), false
	}

	view, _ := w.Apply(func(rec *recorder.Recorder) (bool, error) {
		rec.Restore(*saved)
		if w.plan == nil && saved.FloorPlanImage != "" {
			w.plan = &FloorPlan{
				Meta:    floorplan.Meta{Width: saved.ImageWidth, Height: saved.ImageHeight},
				Preview: saved.FloorPlanImage,
			}
		}
		return false, nil
	})
	return view, true
}

// ClearSession удаляет сохраненную сессию. Автосохранение, уже
// запущенное таймером, дожидается удаления и ничего не пишет.
func (w *Workspace) ClearSession(ctx context.Context) {
	w.saveMu.Lock()
	defer w.saveMu.Unlock()

	w.mu.Lock()
	w.discarded = true
	w.mu.Unlock()

	w.autosave.Stop()
	w.session.Clear(ctx)
}
