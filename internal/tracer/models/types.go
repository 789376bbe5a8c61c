package models

// ============================================================
// Path primitives
// ============================================================

// Point - одна точка пути в пиксельных координатах изображения плана.
type Point struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Time   float64 `json:"time"` // секунды
	PathID int     `json:"pathId"`
}

type Path struct {
	PathID  int     `json:"pathId"`
	Points  []Point `json:"points"`
	Color   string  `json:"color"`
	Name    string  `json:"name,omitempty"`
	Visible bool    `json:"visible"`
}

// Clone возвращает глубокую копию пути.
func (p Path) Clone() Path {
	out := p
	out.Points = make([]Point, len(p.Points))
	copy(out.Points, p.Points)
	return out
}

// LastPoint возвращает последнюю точку пути.
func (p Path) LastPoint() (Point, bool) {
	if len(p.Points) == 0 {
		return Point{}, false
	}
	return p.Points[len(p.Points)-1], true
}

// ============================================================
// Recording configuration
// ============================================================

const (
	DefaultPollingRate       = 100.0  // ms
	DefaultHeartbeatInterval = 1000.0 // ms
	DefaultJumpSeconds       = 5.0
	DefaultJumpSteps         = 10
	DefaultMinMovement       = 2.0 // px
	DefaultSpeculateStep     = 1
)

type Config struct {
	PollingRate         float64 `json:"pollingRate"`       // ms
	HeartbeatInterval   float64 `json:"heartbeatInterval"` // ms
	UseAdaptiveSampling bool    `json:"useAdaptiveSampling"`
	IsTranscriptionMode bool    `json:"isTranscriptionMode"`
	IsContinuousMode    bool    `json:"isContinuousMode"`
	JumpSeconds         float64 `json:"jumpSeconds"`
	JumpSteps           int     `json:"jumpSteps"`
	MinMovement         float64 `json:"minMovement"`   // px
	SpeculateStep       int     `json:"speculateStep"` // шаг индексного сэмплера
}

// DefaultConfig - режим транскрипции с выборкой по времени.
func DefaultConfig() Config {
	return Config{
		PollingRate:         DefaultPollingRate,
		HeartbeatInterval:   DefaultHeartbeatInterval,
		IsTranscriptionMode: true,
		IsContinuousMode:    true,
		JumpSeconds:         DefaultJumpSeconds,
		JumpSteps:           DefaultJumpSteps,
		MinMovement:         DefaultMinMovement,
		SpeculateStep:       DefaultSpeculateStep,
	}
}

// Normalize подставляет значения по умолчанию вместо неположительных.
func (c Config) Normalize() Config {
	if c.PollingRate <= 0 {
		c.PollingRate = DefaultPollingRate
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.JumpSeconds <= 0 {
		c.JumpSeconds = DefaultJumpSeconds
	}
	if c.JumpSteps <= 0 {
		c.JumpSteps = DefaultJumpSteps
	}
	if c.MinMovement <= 0 {
		c.MinMovement = DefaultMinMovement
	}
	if c.SpeculateStep <= 0 {
		c.SpeculateStep = DefaultSpeculateStep
	}
	return c
}

// PollingSeconds - интервал опроса в секундах.
func (c Config) PollingSeconds() float64 { return c.PollingRate / 1000 }

// HeartbeatSeconds - интервал heartbeat в секундах.
func (c Config) HeartbeatSeconds() float64 { return c.HeartbeatInterval / 1000 }

// SamplerChanged сообщает, требует ли новая конфигурация другой стратегии выборки.
func (c Config) SamplerChanged(next Config) bool {
	return c.UseAdaptiveSampling != next.UseAdaptiveSampling ||
		c.IsTranscriptionMode != next.IsTranscriptionMode ||
		c.SpeculateStep != next.SpeculateStep ||
		c.MinMovement != next.MinMovement
}
