package app

import (
	"log/slog"
	"testing"

	"github.com/campusfind/lostfound-backend/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
		{"  debug  ", slog.LevelDebug},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(config.LogConfig{Level: "debug", Format: "json"})
	if logger == nil {
		t.Fatal("NewLogger returned nil")
	}
	if !logger.Enabled(nil, slog.LevelDebug) {
		t.Error("debug level not enabled")
	}

	logger = NewLogger(config.LogConfig{Level: "error", Format: "text"})
	if logger.Enabled(nil, slog.LevelInfo) {
		t.Error("info should be disabled at error level")
	}
}
