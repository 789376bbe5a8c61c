package recorder

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ============================================================
// Video Source
// ============================================================

var (
	ErrVideoNotReady = errors.New("video not ready")
	ErrPlayRejected  = errors.New("video play rejected")
)

// Video - источник видео, канонические часы в режиме транскрипции.
type Video interface {
	CurrentTime() float64
	Duration() float64
	Seek(t float64)
	Play(ctx context.Context) error
	Pause()
}

// Ready - у видео есть конечная положительная длительность.
func Ready(v Video) bool {
	if v == nil {
		return false
	}
	d := v.Duration()
	return !math.IsNaN(d) && !math.IsInf(d, 0) && d > 0
}

// ============================================================
// Video Events
// ============================================================

const (
	EventLoadedMetadata = "loadedmetadata"
	EventTimeUpdate     = "timeupdate"
	EventPlay           = "play"
	EventPause          = "pause"
	EventEnded          = "ended"
	EventSeeked         = "seeked"
	EventPlayRejected   = "playrejected"
)

type VideoEvent struct {
	Type        string  `json:"event"`
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
	Error       string  `json:"error,omitempty"`
}

// observer получает события раньше рекордера, чтобы зеркало видео
// было актуальным к моменту обработки.
type observer interface {
	Observe(ev VideoEvent)
}

// ============================================================
// Remote Video
// ============================================================

// Commands - что клиент должен применить к своему элементу video.
type Commands struct {
	SeekTo *float64 `json:"seekTo,omitempty"`
	Play   bool     `json:"play,omitempty"`
	Pause  bool     `json:"pause,omitempty"`
}

func (c Commands) Empty() bool {
	return c.SeekTo == nil && !c.Play && !c.Pause
}

// RemoteVideo - зеркало видеоэлемента клиента. Клиент присылает события,
// а команды (seek/play/pause) забирает из ответа.
type RemoteVideo struct {
	currentTime float64
	duration    float64
	paused      bool
	pending     Commands
}

func NewRemoteVideo() *RemoteVideo {
	return &RemoteVideo{duration: math.NaN(), paused: true}
}

func (v *RemoteVideo) CurrentTime() float64 { return v.currentTime }

func (v *RemoteVideo) Duration() float64 { return v.duration }

func (v *RemoteVideo) Paused() bool { return v.paused }

func (v *RemoteVideo) Seek(t float64) {
	v.currentTime = t
	v.pending.SeekTo = &t
}

func (v *RemoteVideo) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !Ready(v) {
		return fmt.Errorf("play: %w", ErrVideoNotReady)
	}
	v.paused = false
	v.pending.Play = true
	v.pending.Pause = false
	return nil
}

func (v *RemoteVideo) Pause() {
	v.paused = true
	v.pending.Pause = true
	v.pending.Play = false
}

// TakeCommands возвращает накопленные команды и очищает очередь.
func (v *RemoteVideo) TakeCommands() Commands {
	out := v.pending
	v.pending = Commands{}
	return out
}

// PendingCommands - очередь команд без очистки.
func (v *RemoteVideo) PendingCommands() Commands { return v.pending }

func (v *RemoteVideo) Observe(ev VideoEvent) {
	switch ev.Type {
	case EventLoadedMetadata:
		v.duration = ev.Duration
		v.currentTime = ev.CurrentTime
		v.paused = true
		v.pending = Commands{}
	case EventTimeUpdate, EventSeeked:
		v.currentTime = ev.CurrentTime
	case EventPlay:
		v.paused = false
		v.currentTime = ev.CurrentTime
	case EventPause, EventEnded, EventPlayRejected:
		v.paused = true
		v.currentTime = ev.CurrentTime
	}
}
