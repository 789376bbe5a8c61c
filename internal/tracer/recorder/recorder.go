package recorder

import (
	"context"
	"fmt"
	"log"
	"time"

	"path-tracer/internal/tracer/floorplan"
	"path-tracer/internal/tracer/models"
	"path-tracer/internal/tracer/sampler"
	"path-tracer/internal/tracer/state"
)

// ============================================================
// Recording Coordinator
// ============================================================

// Recorder связывает позицию указателя, часы видео и решение сэмплера
// в добавление точек. Не потокобезопасен.
type Recorder struct {
	state    *state.State
	cfg      models.Config
	sampler  sampler.Sampler
	video    Video
	viewport floorplan.Viewport
	seeker   *Seeker

	now func() time.Time
	// Часы режима speculate для адаптивной выборки: накопленные секунды
	// записи плюс время с момента последнего включения.
	speculateBase float64
	trackingSince time.Time
}

// New создает рекордер. video может быть nil в режиме speculate.
func New(st *state.State, cfg models.Config, video Video) *Recorder {
	cfg = cfg.Normalize()
	r := &Recorder{
		state:   st,
		cfg:     cfg,
		sampler: sampler.New(cfg),
		video:   video,
		now:     time.Now,
	}
	r.seeker = &Seeker{rec: r}
	return r
}

func (r *Recorder) State() *state.State { return r.state }
func (r *Recorder) Config() models.Config { return r.cfg }
func (r *Recorder) Sampler() sampler.Sampler { return r.sampler }
func (r *Recorder) Video() Video { return r.video }
func (r *Recorder) Viewport() floorplan.Viewport { return r.viewport }
func (r *Recorder) Seeker() *Seeker { return r.seeker }

// SetClock подменяет источник времени (тесты).
func (r *Recorder) SetClock(now func() time.Time) { r.now = now }

func (r *Recorder) SetViewport(v floorplan.Viewport) { r.viewport = v }

// ============================================================
// Drawing state machine
// ============================================================

// ToggleDrawing включает или выключает запись. В режиме транскрипции
// включение запускает видео; если видео не стартовало, состояние
// откатывается и ошибка возвращается вызывающему.
func (r *Recorder) ToggleDrawing(ctx context.Context) error {
	if r.state.ShouldTrackMouse() {
		r.stop()
		return nil
	}

	if !r.cfg.IsTranscriptionMode {
		r.state.SetTracking(true)
		r.trackingSince = r.now()
		return nil
	}

	r.state.SetRecording(true)
	if r.video == nil {
		r.state.StopRecording()
		return fmt.Errorf("start playback: %w", ErrVideoNotReady)
	}
	if err := r.video.Play(ctx); err != nil {
		r.state.StopRecording()
		log.Printf("[RECORDER] play failed, recording reset: %v", err)
		return fmt.Errorf("start playback: %w", err)
	}
	return nil
}

func (r *Recorder) stop() {
	if !r.cfg.IsTranscriptionMode {
		r.speculateBase = r.speculateClock()
		r.state.SetTracking(false)
		return
	}
	r.state.StopRecording()
	if r.video != nil {
		r.video.Pause()
	}
}

// HandleVideoEvent обрабатывает событие жизненного цикла видео.
func (r *Recorder) HandleVideoEvent(ev VideoEvent) error {
	if o, ok := r.video.(observer); ok {
		o.Observe(ev)
	}

	switch ev.Type {
	case EventLoadedMetadata:
		r.LoadVideo()
	case EventTimeUpdate:
		if r.cfg.IsTranscriptionMode {
			r.state.SetVideoTime(ev.CurrentTime)
		}
	case EventPlay:
		r.OnPlay()
	case EventPause:
		r.OnPause()
	case EventEnded:
		r.OnEnded()
	case EventSeeked:
		r.OnSeeked(ev.CurrentTime)
	case EventPlayRejected:
		r.OnPlayRejected(fmt.Errorf("%w: %s", ErrPlayRejected, ev.Error))
	default:
		return fmt.Errorf("unknown video event %q", ev.Type)
	}
	return nil
}

// OnPlay - видео пошло: в режиме транскрипции это и есть запись.
func (r *Recorder) OnPlay() {
	if r.cfg.IsTranscriptionMode {
		r.state.SetRecording(true)
	}
}

// OnPause сбрасывает все флаги независимо от того, кто поставил паузу:
// запись не должна продолжаться при стоящих часах.
func (r *Recorder) OnPause() {
	if r.cfg.IsTranscriptionMode {
		r.state.StopRecording()
	}
}

func (r *Recorder) OnEnded() {
	r.OnPause()
}

func (r *Recorder) OnPlayRejected(err error) {
	r.state.StopRecording()
	log.Printf("[RECORDER] playback rejected, recording reset: %v", err)
}

// OnSeeked завершает перемотку и снимает охранник.
func (r *Recorder) OnSeeked(t float64) {
	if r.cfg.IsTranscriptionMode {
		r.state.SetVideoTime(t)
	}
	r.state.Guard().Complete()
}

// ============================================================
// Frame update
// ============================================================

// Tick - обновление кадра с текущей позицией указателя в координатах
// поверхности рисования. Возвращает true, если точка записана.
func (r *Recorder) Tick(pointer floorplan.Point) bool {
	if !r.state.ShouldTrackMouse() {
		return false
	}
	if !r.viewport.Contains(pointer) {
		return false
	}
	if r.cfg.IsTranscriptionMode && r.state.IsJumping() {
		return false
	}

	w, h := r.state.ImageSize()
	pos := r.viewport.ToImage(pointer, w, h)

	now := r.clockTime()
	decision := r.sampler.ShouldSample(sampler.Observation{Time: now, X: pos.X, Y: pos.Y})
	if !decision.Accept {
		return false
	}
	// Запись могли выключить между кадром и решением
	if !r.state.ShouldTrackMouse() {
		return false
	}

	pointTime := decision.Time
	if r.cfg.IsTranscriptionMode {
		pointTime = r.state.VideoTime()
	}
	return r.state.AppendPoint(models.Point{X: pos.X, Y: pos.Y, Time: pointTime})
}

func (r *Recorder) clockTime() float64 {
	if r.cfg.IsTranscriptionMode {
		if r.video != nil {
			r.state.SetVideoTime(r.video.CurrentTime())
		}
		return r.state.VideoTime()
	}
	return r.speculateClock()
}

func (r *Recorder) speculateClock() float64 {
	if !r.state.ShouldTrackMouse() || r.trackingSince.IsZero() {
		return r.speculateBase
	}
	return r.speculateBase + r.now().Sub(r.trackingSince).Seconds()
}

// resync выравнивает сэмплер и часы speculate по текущему числу точек
// после любого изменения пути вне обычной выборки.
func (r *Recorder) resync() {
	r.sampler.Reset(r.state.PointCount())
	if r.cfg.IsTranscriptionMode {
		return
	}
	r.speculateBase = 0
	if last, ok := r.state.LastPoint(); ok {
		r.speculateBase = last.Time
	}
	r.trackingSince = r.now()
}

// ============================================================
// Mode & configuration
// ============================================================

// UpdateConfig применяет новую конфигурацию. Смена режима останавливает
// запись и заново выбирает стратегию выборки; смена интервалов
// перенастраивает текущий сэмплер без изменения записанных точек.
func (r *Recorder) UpdateConfig(cfg models.Config) {
	cfg = cfg.Normalize()
	modeChanged := cfg.IsTranscriptionMode != r.cfg.IsTranscriptionMode
	if modeChanged && r.state.ShouldTrackMouse() {
		r.stop()
	}
	// Событие seeked из прежнего режима уже не придет
	if modeChanged {
		r.state.Guard().Cancel()
	}

	samplerChanged := r.cfg.SamplerChanged(cfg)
	r.cfg = cfg
	if samplerChanged {
		r.sampler = sampler.New(cfg)
		r.resync()
	} else {
		sampler.Reconfigure(r.sampler, cfg)
	}
}

// NewPath начинает новый путь; это разрыв записи.
func (r *Recorder) NewPath(color string) int {
	id := r.state.CreatePath(color)
	r.resync()
	return id
}

// DeletePath удаляет путь; если текущий сменился, сэмплер синхронизируется.
func (r *Recorder) DeletePath(pathID int) bool {
	before := r.state.CurrentPathID()
	if !r.state.Delete(pathID) {
		return false
	}
	if r.state.CurrentPathID() != before || before == pathID {
		r.resync()
	}
	return true
}

// Undo удаляет n последних точек текущего пути.
func (r *Recorder) Undo(n int) int {
	if n <= 0 {
		return 0
	}
	removed := r.state.Undo(n)
	if removed > 0 {
		r.resync()
	}
	return removed
}

// LoadFloorPlan - новый план сбрасывает все пути.
func (r *Recorder) LoadFloorPlan(meta floorplan.Meta) {
	r.Reset()
	r.state.SetImageSize(meta.Width, meta.Height)
}

// LoadVideo - новое видео сбрасывает все пути. В режиме speculate видео
// не задает время точек, и записанное остается.
func (r *Recorder) LoadVideo() {
	if !r.cfg.IsTranscriptionMode {
		return
	}
	r.state.Clear()
	r.speculateBase = 0
	r.sampler.Reset(0)
}

// Reset - явный сброс пользователем.
func (r *Recorder) Reset() {
	if r.state.ShouldTrackMouse() {
		r.stop()
	}
	r.state.Clear()
	r.speculateBase = 0
	r.sampler.Reset(0)
}

// Restore восстанавливает сохраненную сессию.
func (r *Recorder) Restore(saved models.SavedSession) {
	r.Reset()
	r.UpdateConfig(saved.Config)
	r.state.Restore(saved.Paths, saved.CurrentPathID)
	r.state.SetImageSize(saved.ImageWidth, saved.ImageHeight)
	r.state.SetVideoTime(saved.VideoTime)
	if r.cfg.IsTranscriptionMode && Ready(r.video) {
		r.video.Seek(saved.VideoTime)
	}
	r.resync()
}
