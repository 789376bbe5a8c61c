package sampler

import "math"

// ============================================================
// Adaptive sampler
// ============================================================

// AdaptiveSampler пишет часто, пока указатель движется, и редко
// (heartbeat), пока он стоит на месте.
type AdaptiveSampler struct {
	activeInterval    float64
	heartbeatInterval float64
	minMovement       float64

	lastSampleTime float64
	lastX, lastY   float64
	hasLast        bool
}

func NewAdaptiveSampler(activeInterval, heartbeatInterval, minMovement float64) *AdaptiveSampler {
	return &AdaptiveSampler{
		activeInterval:    activeInterval,
		heartbeatInterval: heartbeatInterval,
		minMovement:       minMovement,
	}
}

func (s *AdaptiveSampler) Kind() Kind { return Adaptive }

func (s *AdaptiveSampler) HeartbeatInterval() float64 { return s.heartbeatInterval }

func (s *AdaptiveSampler) SetIntervals(activeInterval, heartbeatInterval float64) {
	s.activeInterval = activeInterval
	s.heartbeatInterval = heartbeatInterval
}

func (s *AdaptiveSampler) ShouldSample(obs Observation) Decision {
	if !s.hasLast {
		s.record(obs)
		return Decision{Accept: true, Time: obs.Time, Trigger: TriggerFirst}
	}

	required, trigger := s.heartbeatInterval, TriggerHeartbeat
	if math.Hypot(obs.X-s.lastX, obs.Y-s.lastY) >= s.minMovement {
		required, trigger = s.activeInterval, TriggerActive
	}

	if obs.Time-s.lastSampleTime < required {
		return Decision{}
	}
	s.record(obs)
	return Decision{Accept: true, Time: obs.Time, Trigger: trigger}
}

func (s *AdaptiveSampler) record(obs Observation) {
	s.lastSampleTime = obs.Time
	s.lastX, s.lastY = obs.X, obs.Y
	s.hasLast = true
}

func (s *AdaptiveSampler) Reset(int) {
	s.hasLast = false
	s.lastSampleTime = 0
	s.lastX, s.lastY = 0, 0
}
