package sampler

// ============================================================
// Index-based sampler
// ============================================================

// IndexSampler принимает каждое step-е наблюдение и ведет псевдовремя
// acceptedCount*step. Используется без видео (режим speculate).
type IndexSampler struct {
	step          int
	eventCounter  int
	acceptedCount int
}

func NewIndexSampler(step int) *IndexSampler {
	if step < 1 {
		step = 1
	}
	return &IndexSampler{step: step}
}

func (s *IndexSampler) Kind() Kind { return IndexBased }

func (s *IndexSampler) Step() int { return s.step }

func (s *IndexSampler) EventCounter() int { return s.eventCounter }

func (s *IndexSampler) AcceptedCount() int { return s.acceptedCount }

// PseudoTime - время, которое получит следующая принятая точка.
func (s *IndexSampler) PseudoTime() float64 {
	return float64(s.acceptedCount * s.step)
}

func (s *IndexSampler) ShouldSample(Observation) Decision {
	accept := s.eventCounter%s.step == 0
	s.eventCounter++
	if !accept {
		return Decision{}
	}
	t := s.PseudoTime()
	s.acceptedCount++
	return Decision{Accept: true, Time: t, Trigger: TriggerStep}
}

// Reset выравнивает счетчики по границе шага так, чтобы после усечения
// до pointCount точек следующее наблюдение было принято сразу.
func (s *IndexSampler) Reset(pointCount int) {
	if pointCount < 0 {
		pointCount = 0
	}
	s.acceptedCount = pointCount
	s.eventCounter = pointCount * s.step
}
