package logging_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/JaimeStill/mod-depot/pkg/logging"
)

func TestConfig_Finalize_Defaults(t *testing.T) {
	var cfg logging.Config
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	if cfg.Level != logging.LevelInfo {
		t.Errorf("Level = %q, want %q", cfg.Level, logging.LevelInfo)
	}
	if cfg.Format != logging.FormatText {
		t.Errorf("Format = %q, want %q", cfg.Format, logging.FormatText)
	}
}

func TestConfig_Finalize_EnvOverride(t *testing.T) {
	t.Setenv("TEST_LOG_LEVEL", "debug")
	t.Setenv("TEST_LOG_FORMAT", "json")

	var cfg logging.Config
	env := &logging.Env{Level: "TEST_LOG_LEVEL", Format: "TEST_LOG_FORMAT"}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	if cfg.Level != logging.LevelDebug {
		t.Errorf("Level = %q, want debug", cfg.Level)
	}
	if cfg.Format != logging.FormatJSON {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
}

func TestConfig_Finalize_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  logging.Config
	}{
		{"bad level", logging.Config{Level: "verbose", Format: logging.FormatText}},
		{"bad format", logging.Config{Level: logging.LevelInfo, Format: "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Error("Finalize() succeeded, want error")
			}
		})
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := logging.Config{Level: logging.LevelInfo, Format: logging.FormatText}
	cfg.Merge(&logging.Config{Format: logging.FormatJSON})

	if cfg.Level != logging.LevelInfo {
		t.Errorf("Level = %q, want unchanged info", cfg.Level)
	}
	if cfg.Format != logging.FormatJSON {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
}

func TestLevel_ToSlogLevel(t *testing.T) {
	tests := []struct {
		level logging.Level
		want  slog.Level
	}{
		{logging.LevelDebug, slog.LevelDebug},
		{logging.LevelInfo, slog.LevelInfo},
		{logging.LevelWarn, slog.LevelWarn},
		{logging.LevelError, slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			if got := tt.level.ToSlogLevel(); got != tt.want {
				t.Errorf("ToSlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&logging.Config{Level: logging.LevelInfo, Format: logging.FormatJSON}, &buf)

	logger.Info("mod created", "id", "abc")

	out := buf.String()
	if !strings.HasPrefix(out, "{") {
		t.Errorf("output = %q, want JSON object", out)
	}
	if !strings.Contains(out, `"id":"abc"`) {
		t.Errorf("output = %q, want id attribute", out)
	}
}

func TestNewWithWriter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&logging.Config{Level: logging.LevelError, Format: logging.FormatText}, &buf)

	logger.Info("ignored")

	if buf.Len() != 0 {
		t.Errorf("output = %q, want empty below level", buf.String())
	}
}

func TestConfig_Finalize_AddSource(t *testing.T) {
	t.Setenv("TEST_LOG_LEVEL", "WARN")
	t.Setenv("TEST_LOG_SOURCE", "true")

	var cfg logging.Config
	env := &logging.Env{Level: "TEST_LOG_LEVEL", AddSource: "TEST_LOG_SOURCE"}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	if cfg.Level != logging.LevelWarn {
		t.Errorf("Level = %q, want warn", cfg.Level)
	}
	if !cfg.AddSource {
		t.Fatal("AddSource = false, want true")
	}

	var buf bytes.Buffer
	logging.NewWithWriter(&cfg, &buf).Warn("stored")
	if !strings.Contains(buf.String(), "source=") {
		t.Errorf("output missing source: %s", buf.String())
	}
}

func TestConfig_Finalize_BadAddSource(t *testing.T) {
	t.Setenv("TEST_LOG_SOURCE", "sometimes")

	var cfg logging.Config
	if err := cfg.Finalize(&logging.Env{AddSource: "TEST_LOG_SOURCE"}); err == nil {
		t.Error("expected error for unparseable add_source")
	}
}
