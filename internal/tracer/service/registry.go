package service

import (
	"errors"
	"log"
	"sync"
	"time"

	"path-tracer/internal/tracer/models"
	"path-tracer/internal/tracer/persistence"
	"path-tracer/internal/tracer/recorder"
	"path-tracer/internal/tracer/state"

	"github.com/google/uuid"
)

// ============================================================
// Workspace Registry
// ============================================================

var ErrWorkspaceNotFound = errors.New("workspace not found")

type Options struct {
	Config        models.Config
	KV            persistence.KV
	Storage       *FileStorage
	AutosaveDelay time.Duration
	PreviewLimit  int // максимальная сторона превью плана в сохраненной сессии
}

type Registry struct {
	mu         sync.Mutex
	workspaces map[string]*Workspace
	opts       Options
}

func NewRegistry(opts Options) *Registry {
	return &Registry{
		workspaces: make(map[string]*Workspace),
		opts:       opts,
	}
}

// Create заводит рабочее пространство. Если передан корректный uuid, он
// используется как id - так клиент находит сохраненную сессию после рестарта.
func (r *Registry) Create(id string) *Workspace {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if ws, ok := r.workspaces[id]; ok {
		return ws
	}

	video := recorder.NewRemoteVideo()
	ws := &Workspace{
		ID:           id,
		rec:          recorder.New(state.New(), r.opts.Config, video),
		video:        video,
		session:      persistence.NewManager(r.opts.KV, "session:"+id),
		storage:      r.opts.Storage,
		previewLimit: r.opts.PreviewLimit,
	}
	ws.autosave = NewAutosaver(r.opts.AutosaveDelay, ws.saveSnapshot)
	r.workspaces[id] = ws

	log.Printf("[TRACER] workspace %s created", id)
	return ws
}

func (r *Registry) Get(id string) (*Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ws, ok := r.workspaces[id]
	if !ok {
		return nil, ErrWorkspaceNotFound
	}
	return ws, nil
}

// Remove закрывает пространство. Сохраненная сессия остается в хранилище.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	ws, ok := r.workspaces[id]
	delete(r.workspaces, id)
	r.mu.Unlock()

	if !ok {
		return ErrWorkspaceNotFound
	}
	ws.autosave.Stop()
	if ws.storage != nil {
		if err := ws.storage.RemoveWorkspace(id); err != nil {
			log.Printf("[TRACER] remove workspace files: %v", err)
		}
	}
	log.Printf("[TRACER] workspace %s removed", id)
	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// Close останавливает все отложенные сохранения.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ws := range r.workspaces {
		ws.autosave.Stop()
	}
}
