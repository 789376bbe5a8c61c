package sampler

// ============================================================
// Time-based sampler
// ============================================================

// TimeSampler принимает наблюдение, если с последней выборки прошло
// не меньше interval секунд.
type TimeSampler struct {
	interval       float64
	lastSampleTime float64
	hasSample      bool
}

func NewTimeSampler(interval float64) *TimeSampler {
	return &TimeSampler{interval: interval}
}

func (s *TimeSampler) Kind() Kind { return TimeBased }

func (s *TimeSampler) Interval() float64 { return s.interval }

// SetInterval меняет интервал на лету.
func (s *TimeSampler) SetInterval(interval float64) {
	s.interval = interval
}

func (s *TimeSampler) ShouldSample(obs Observation) Decision {
	if s.hasSample && obs.Time-s.lastSampleTime < s.interval {
		return Decision{}
	}
	s.lastSampleTime = obs.Time
	s.hasSample = true
	return Decision{Accept: true, Time: obs.Time, Trigger: TriggerInterval}
}

func (s *TimeSampler) Reset(int) {
	s.lastSampleTime = 0
	s.hasSample = false
}
