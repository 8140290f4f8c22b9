package logger

import "testing"

func TestLogBeforeInit(t *testing.T) {
	// The package-level functions must be safe without Init; importing
	// packages log during their own tests.
	Debug("debug message", "k", "v")
	Info("info message", "k", "v")
	Warn("warn message", "k", "v")
	Error("error message", "k", "v")
	Sync()
}

func TestInitLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus", "production"} {
		Init(level)
		if log == nil {
			t.Fatalf("Init(%q) left the logger nil", level)
		}
		Info("after init", "level", level)
	}
}
