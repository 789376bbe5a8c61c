package config

import (
	"testing"
	"time"

	"path-tracer/internal/tracer/models"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "3000" {
		t.Errorf("Expected port 3000, got %s", cfg.Port)
	}
	if got := cfg.Recording(); got != models.DefaultConfig() {
		t.Errorf("Expected default recording config, got %+v", got)
	}
	if cfg.AutosaveDelay() != 2*time.Second {
		t.Errorf("Expected 2s autosave delay, got %s", cfg.AutosaveDelay())
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("POLLING_RATE_MS", "250")
	t.Setenv("ADAPTIVE_SAMPLING", "true")
	t.Setenv("TRANSCRIPTION_MODE", "false")
	t.Setenv("JUMP_STEPS", "4")
	t.Setenv("SESSION_MAX_BYTES", "1024")

	cfg := Load()
	rec := cfg.Recording()

	if rec.PollingRate != 250 || !rec.UseAdaptiveSampling || rec.IsTranscriptionMode {
		t.Errorf("Unexpected recording config %+v", rec)
	}
	if rec.JumpSteps != 4 {
		t.Errorf("Expected 4 jump steps, got %d", rec.JumpSteps)
	}
	if cfg.SessionMaxBytes != 1024 {
		t.Errorf("Expected 1024 bytes quota, got %d", cfg.SessionMaxBytes)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("READ_TIMEOUT", "soon")
	t.Setenv("MIN_MOVEMENT", "far")
	t.Setenv("CONTINUOUS_MODE", "maybe")
	t.Setenv("SPECULATE_STEP", "-3")

	cfg := Load()
	if cfg.ReadTimeout != 10 {
		t.Errorf("Expected default read timeout, got %d", cfg.ReadTimeout)
	}
	rec := cfg.Recording()
	if rec.MinMovement != models.DefaultMinMovement || !rec.IsContinuousMode {
		t.Errorf("Expected defaults for unparsable values, got %+v", rec)
	}
	if rec.SpeculateStep != models.DefaultSpeculateStep {
		t.Errorf("Expected normalized speculate step, got %d", rec.SpeculateStep)
	}
}
