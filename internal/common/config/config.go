package config

import (
	"os"
	"strconv"
	"time"

	"path-tracer/internal/tracer/models"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string
	Environment  string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string
	DocsPath     string

	DBPath          string
	StorageRoot     string
	SessionMaxBytes int64
	AutosaveDelayMs int
	PreviewMaxSide  int

	// Значения записи по умолчанию для новых рабочих пространств
	PollingRate       float64
	HeartbeatInterval float64
	AdaptiveSampling  bool
	TranscriptionMode bool
	ContinuousMode    bool
	JumpSeconds       float64
	JumpSteps         int
	MinMovement       float64
	SpeculateStep     int
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "3000"),
		Environment:  getEnv("ENV", "development"),
		ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
		CORSOrigins:  getEnv("CORS_ORIGINS", "*"),
		DocsPath:     getEnv("DOCS_PATH", "docs/tracer.openapi.yaml"),

		DBPath:          getEnv("TRACER_DB_PATH", "data/db/tracer.db"),
		StorageRoot:     getEnv("TRACER_STORAGE", "data/plans"),
		SessionMaxBytes: int64(getEnvAsInt("SESSION_MAX_BYTES", 5*1024*1024)),
		AutosaveDelayMs: getEnvAsInt("AUTOSAVE_DELAY_MS", 2000),
		PreviewMaxSide:  getEnvAsInt("PREVIEW_MAX_SIDE", 1600),

		PollingRate:       getEnvAsFloat("POLLING_RATE_MS", models.DefaultPollingRate),
		HeartbeatInterval: getEnvAsFloat("HEARTBEAT_MS", models.DefaultHeartbeatInterval),
		AdaptiveSampling:  getEnvAsBool("ADAPTIVE_SAMPLING", false),
		TranscriptionMode: getEnvAsBool("TRANSCRIPTION_MODE", true),
		ContinuousMode:    getEnvAsBool("CONTINUOUS_MODE", true),
		JumpSeconds:       getEnvAsFloat("JUMP_SECONDS", models.DefaultJumpSeconds),
		JumpSteps:         getEnvAsInt("JUMP_STEPS", models.DefaultJumpSteps),
		MinMovement:       getEnvAsFloat("MIN_MOVEMENT", models.DefaultMinMovement),
		SpeculateStep:     getEnvAsInt("SPECULATE_STEP", models.DefaultSpeculateStep),
	}
}

// Recording собирает конфигурацию записи для новых пространств.
func (c *Config) Recording() models.Config {
	return models.Config{
		PollingRate:         c.PollingRate,
		HeartbeatInterval:   c.HeartbeatInterval,
		UseAdaptiveSampling: c.AdaptiveSampling,
		IsTranscriptionMode: c.TranscriptionMode,
		IsContinuousMode:    c.ContinuousMode,
		JumpSeconds:         c.JumpSeconds,
		JumpSteps:           c.JumpSteps,
		MinMovement:         c.MinMovement,
		SpeculateStep:       c.SpeculateStep,
	}.Normalize()
}

func (c *Config) AutosaveDelay() time.Duration {
	return time.Duration(c.AutosaveDelayMs) * time.Millisecond
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
