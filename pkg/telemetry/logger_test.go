package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func fileLogger(t *testing.T, cfg LoggingConfig) (*Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "redisctl.log")
	cfg.Output = path
	logger, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	return logger, path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	return string(data)
}

func TestLoggerFieldHelpers(t *testing.T) {
	logger, path := fileLogger(t, LoggingConfig{Level: "debug", Format: "json"})

	logger.NewComponentLogger("mcp").
		WithProfile("prod").
		WithRunID("run-1").
		WithWorkflow("init-cluster").
		WithStep("bootstrap").
		Info("step starting")

	out := readLog(t, path)
	for _, want := range []string{
		`"component":"mcp"`,
		`"profile":"prod"`,
		`"run_id":"run-1"`,
		`"workflow":"init-cluster"`,
		`"step":"bootstrap"`,
		`"message":"step starting"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	logger, path := fileLogger(t, LoggingConfig{Level: "warn", Format: "json"})

	logger.Debug("below the threshold")
	logger.Warnf("over %s", "the threshold")

	out := readLog(t, path)
	if strings.Contains(out, "below the threshold") {
		t.Errorf("debug line emitted at warn level:\n%s", out)
	}
	if !strings.Contains(out, "over the threshold") {
		t.Errorf("warn line missing:\n%s", out)
	}
}

func TestLoggerWithError(t *testing.T) {
	logger, path := fileLogger(t, LoggingConfig{Level: "debug", Format: "json"})

	logger.WithError(os.ErrPermission).Error("save failed")

	out := readLog(t, path)
	if !strings.Contains(out, "permission denied") {
		t.Errorf("error field missing:\n%s", out)
	}
}

func TestContextRoundTrip(t *testing.T) {
	logger := Nop()
	ctx := logger.WithContext(context.Background())
	if got := FromContext(ctx); got != logger {
		t.Error("FromContext did not return the embedded logger")
	}
}

func TestFromContextWithoutLogger(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil {
		t.Fatal("FromContext returned nil for a bare context")
	}
	// Must be safe to use.
	logger.Info("discarded")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"shouting", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDefaultLoggingConfig(t *testing.T) {
	cfg := DefaultLoggingConfig()
	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stderr" {
		t.Errorf("defaults = %+v", cfg)
	}
}
