package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port == "" {
		t.Error("Port should have a default")
	}
	if cfg.MaxRatingDifference != 300 {
		t.Errorf("MaxRatingDifference = %d, want 300", cfg.MaxRatingDifference)
	}
	if cfg.BattleTimeLimit != 30*time.Minute {
		t.Errorf("BattleTimeLimit = %v, want 30m", cfg.BattleTimeLimit)
	}
	if cfg.SweepInterval != 10*time.Second {
		t.Errorf("SweepInterval = %v, want 10s", cfg.SweepInterval)
	}
	if cfg.SandboxURL == "" {
		t.Error("SandboxURL should have a default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("MAX_RATING_DIFFERENCE", "150")
	t.Setenv("BATTLE_TIME_LIMIT", "10m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9999" {
		t.Errorf("Port = %q, want 9999", cfg.Port)
	}
	if cfg.MaxRatingDifference != 150 {
		t.Errorf("MaxRatingDifference = %d, want 150", cfg.MaxRatingDifference)
	}
	if cfg.BattleTimeLimit != 10*time.Minute {
		t.Errorf("BattleTimeLimit = %v, want 10m", cfg.BattleTimeLimit)
	}
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("MAX_RATING_DIFFERENCE", "not-a-number")
	t.Setenv("SWEEP_INTERVAL", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.MaxRatingDifference != 300 {
		t.Errorf("MaxRatingDifference = %d, want fallback 300", cfg.MaxRatingDifference)
	}
	if cfg.SweepInterval != 10*time.Second {
		t.Errorf("SweepInterval = %v, want fallback 10s", cfg.SweepInterval)
	}
}
