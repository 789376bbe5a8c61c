package recorder

import (
	"log"
	"math"

	"path-tracer/internal/tracer/models"
	"path-tracer/internal/tracer/sampler"
)

// ============================================================
// Seek Controller
// ============================================================

// Seeker реализует перемотку назад/вперед над путями и часами видео.
// Перемотка, запрошенная во время незавершенной перемотки или до загрузки
// метаданных видео, молча игнорируется.
type Seeker struct {
	rec *Recorder
}

// Rewind возвращает true, если перемотка выполнена.
func (s *Seeker) Rewind() bool {
	if s.rec.cfg.IsTranscriptionMode {
		return s.rewindTime()
	}
	return s.rewindSteps()
}

func (s *Seeker) FastForward() bool {
	if s.rec.cfg.IsTranscriptionMode {
		return s.forwardTime()
	}
	return s.forwardSteps()
}

// begin занимает охранник до события seeked; false, если перемотка уже идет.
func (s *Seeker) begin(op string, target float64) bool {
	return s.rec.state.Guard().Begin(func() {
		log.Printf("[SEEK] %s to %.2fs complete", op, target)
	})
}

// ============================================================
// Transcription mode
// ============================================================

func (s *Seeker) rewindTime() bool {
	r := s.rec
	st := r.state
	if !Ready(r.video) {
		return false
	}

	newTime := math.Max(r.video.CurrentTime()-r.cfg.JumpSeconds, 0)
	if !s.begin("rewind", newTime) {
		return false
	}

	r.video.Seek(newTime)
	r.video.Pause()
	st.StopRecording()
	st.SetVideoTime(newTime)

	removed := st.TruncateToTime(st.CurrentPathID(), newTime)
	r.sampler.Reset(st.PointCount())
	log.Printf("[SEEK] rewind to %.2fs, dropped %d points", newTime, removed)
	return true
}

// forwardTime перематывает видео вперед и заполняет пропуск синтетическими
// точками в последней позиции: объект за пропущенный интервал не двигался.
func (s *Seeker) forwardTime() bool {
	r := s.rec
	st := r.state
	if !Ready(r.video) {
		return false
	}

	current := r.video.CurrentTime()
	newTime := math.Min(current+r.cfg.JumpSeconds, r.video.Duration())
	if !s.begin("forward", newTime) {
		return false
	}

	r.video.Seek(newTime)
	st.SetVideoTime(newTime)

	added := 0
	if last, ok := st.LastPoint(); ok {
		rate := sampler.SyntheticInterval(r.cfg)
		// floor от частного, а не накопление суммы: без дрейфа
		count := int(math.Floor((newTime - current) / rate))
		base := models.Point{X: last.X, Y: last.Y, Time: current}
		added = st.AppendSyntheticRun(st.CurrentPathID(), base, count, rate)
	}
	r.sampler.Reset(st.PointCount())
	log.Printf("[SEEK] forward to %.2fs, synthesized %d points", newTime, added)
	return true
}

// ============================================================
// Speculate mode
// ============================================================

func (s *Seeker) rewindSteps() bool {
	r := s.rec
	st := r.state
	if st.IsJumping() {
		return false
	}

	count := st.PointCount()
	if count == 0 {
		return false
	}
	removed := st.TruncateToCount(st.CurrentPathID(), count-r.cfg.JumpSteps)
	r.resync()
	log.Printf("[SEEK] rewind %d steps, dropped %d points", r.cfg.JumpSteps, removed)
	return true
}

func (s *Seeker) forwardSteps() bool {
	r := s.rec
	st := r.state
	if st.IsJumping() {
		return false
	}

	last, ok := st.LastPoint()
	if !ok {
		return false
	}
	step := sampler.SyntheticInterval(r.cfg)
	added := st.AppendSyntheticRun(st.CurrentPathID(), last, r.cfg.JumpSteps, step)
	r.resync()
	log.Printf("[SEEK] forward %d steps, synthesized %d points", r.cfg.JumpSteps, added)
	return true
}
