package sampler

import (
	"path-tracer/internal/tracer/models"
)

// ============================================================
// Sampler
// ============================================================

type Kind int

const (
	TimeBased Kind = iota
	IndexBased
	Adaptive
)

func (k Kind) String() string {
	switch k {
	case TimeBased:
		return "time"
	case IndexBased:
		return "index"
	case Adaptive:
		return "adaptive"
	}
	return "unknown"
}

// Trigger - какое правило приняло решение о выборке.
type Trigger int

const (
	TriggerNone Trigger = iota
	TriggerInterval
	TriggerStep
	TriggerFirst
	TriggerActive
	TriggerHeartbeat
)

// Observation - одно наблюдение указателя.
type Observation struct {
	Time float64 // секунды; индексный сэмплер игнорирует
	X    float64
	Y    float64
}

type Decision struct {
	Accept  bool
	Time    float64 // время, которое получит точка
	Trigger Trigger
}

// Sampler решает, станет ли наблюдение записанной точкой.
type Sampler interface {
	Kind() Kind
	ShouldSample(obs Observation) Decision
	// Reset синхронизирует внутреннее состояние после разрыва записи
	// (новый путь, перемотка, undo). pointCount - текущее число точек пути.
	Reset(pointCount int)
}

// New выбирает стратегию по флагам конфигурации.
func New(cfg models.Config) Sampler {
	cfg = cfg.Normalize()
	switch {
	case cfg.UseAdaptiveSampling:
		return NewAdaptiveSampler(cfg.PollingSeconds(), cfg.HeartbeatSeconds(), cfg.MinMovement)
	case cfg.IsTranscriptionMode:
		return NewTimeSampler(cfg.PollingSeconds())
	default:
		return NewIndexSampler(cfg.SpeculateStep)
	}
}

// Reconfigure применяет новые интервалы к уже выбранной стратегии.
// Уже записанные точки не затрагиваются.
func Reconfigure(s Sampler, cfg models.Config) {
	cfg = cfg.Normalize()
	switch v := s.(type) {
	case *TimeSampler:
		v.SetInterval(cfg.PollingSeconds())
	case *AdaptiveSampler:
		v.SetIntervals(cfg.PollingSeconds(), cfg.HeartbeatSeconds())
	}
}

// SyntheticInterval - шаг времени для синтетических точек при перемотке вперед.
func SyntheticInterval(cfg models.Config) float64 {
	cfg = cfg.Normalize()
	switch {
	case cfg.UseAdaptiveSampling:
		return cfg.HeartbeatSeconds()
	case cfg.IsTranscriptionMode:
		return cfg.PollingSeconds()
	default:
		return float64(cfg.SpeculateStep)
	}
}
