package state

// ============================================================
// Seek Guard
// ============================================================

type SeekPhase int

const (
	SeekIdle SeekPhase = iota
	SeekSeeking
)

// SeekGuard - машина состояний Idle -> Seeking -> Idle. Пока идет перемотка,
// новые перемотки отклоняются. Продолжение однократное и не накапливается.
type SeekGuard struct {
	phase      SeekPhase
	onComplete func()
}

func (g *SeekGuard) Phase() SeekPhase { return g.phase }

func (g *SeekGuard) Active() bool { return g.phase == SeekSeeking }

// Begin переводит охранник в Seeking. Возвращает false, если перемотка уже идет.
func (g *SeekGuard) Begin(onComplete func()) bool {
	if g.phase == SeekSeeking {
		return false
	}
	g.phase = SeekSeeking
	g.onComplete = onComplete
	return true
}

// Complete вызывается по событию seeked видео.
func (g *SeekGuard) Complete() {
	if g.phase != SeekSeeking {
		return
	}
	cb := g.onComplete
	g.phase = SeekIdle
	g.onComplete = nil
	if cb != nil {
		cb()
	}
}

// Cancel сбрасывает перемотку без вызова продолжения.
func (g *SeekGuard) Cancel() {
	g.phase = SeekIdle
	g.onComplete = nil
}
