package logger

import (
	"log/slog"
	"testing"
)

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		debug    string
		want     slog.Level
	}{
		{"default", "", "", slog.LevelInfo},
		{"debug flag", "", "true", slog.LevelDebug},
		{"explicit warn", "warn", "", slog.LevelWarn},
		{"explicit wins over debug", "error", "true", slog.LevelError},
		{"case insensitive", " INFO ", "true", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.logLevel)
			t.Setenv("DEBUG", tt.debug)
			if got := levelFromEnv(); got != tt.want {
				t.Errorf("levelFromEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}
