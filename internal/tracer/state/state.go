package state

import (
	"path-tracer/internal/tracer/models"
)

// ============================================================
// Recording State
// ============================================================

const DefaultColor = "#3b82f6"

// State - единственный владелец путей и флагов записи. Все изменения
// проходят через именованные методы. Не потокобезопасен: вызывающий
// код сериализует доступ.
type State struct {
	paths         []models.Path
	currentPathID int
	nextPathID    int

	videoTime        float64
	shouldTrackMouse bool
	isDrawing        bool
	isVideoPlaying   bool
	guard            SeekGuard

	imageWidth  int
	imageHeight int
}

// New создает состояние с одним пустым путем.
func New() *State {
	s := &State{}
	s.resetPaths()
	return s
}

func (s *State) resetPaths() {
	s.paths = []models.Path{newPath(1, DefaultColor)}
	s.currentPathID = 1
	s.nextPathID = 2
}

func newPath(id int, color string) models.Path {
	return models.Path{
		PathID:  id,
		Points:  []models.Point{},
		Color:   color,
		Visible: true,
	}
}

// Clear удаляет все пути и останавливает запись (новый план, новое видео, сброс).
func (s *State) Clear() {
	s.resetPaths()
	s.videoTime = 0
	s.StopRecording()
	s.guard.Cancel()
}

// ============================================================
// Flags
// ============================================================

func (s *State) ShouldTrackMouse() bool { return s.shouldTrackMouse }
func (s *State) IsDrawing() bool { return s.isDrawing }
func (s *State) IsVideoPlaying() bool { return s.isVideoPlaying }
func (s *State) IsJumping() bool { return s.guard.Active() }
func (s *State) Guard() *SeekGuard { return &s.guard }

// SetRecording переключает все три флага разом (режим транскрипции).
func (s *State) SetRecording(on bool) {
	s.shouldTrackMouse = on
	s.isDrawing = on
	s.isVideoPlaying = on
}

// SetTracking переключает запись без видео (режим speculate).
func (s *State) SetTracking(on bool) {
	s.shouldTrackMouse = on
	s.isDrawing = on
}

func (s *State) StopRecording() { s.SetRecording(false) }

func (s *State) VideoTime() float64 { return s.videoTime }

func (s *State) SetVideoTime(t float64) { s.videoTime = t }

func (s *State) ImageSize() (int, int) { return s.imageWidth, s.imageHeight }

func (s *State) SetImageSize(width, height int) {
	s.imageWidth = width
	s.imageHeight = height
}

// Snapshot возвращает копию состояния, безопасную для сериализации.
func (s *State) Snapshot() models.Snapshot {
	return models.Snapshot{
		Paths:            s.Paths(),
		CurrentPathID:    s.currentPathID,
		VideoTime:        s.videoTime,
		ShouldTrackMouse: s.shouldTrackMouse,
		IsDrawing:        s.isDrawing,
		IsVideoPlaying:   s.isVideoPlaying,
		IsJumping:        s.guard.Active(),
		ImageWidth:       s.imageWidth,
		ImageHeight:      s.imageHeight,
	}
}
