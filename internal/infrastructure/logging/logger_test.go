package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nerrad567/epicure-publisher/internal/infrastructure/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{name: "debug level", input: "debug", expected: slog.LevelDebug},
		{name: "info level", input: "info", expected: slog.LevelInfo},
		{name: "warn level", input: "warn", expected: slog.LevelWarn},
		{name: "warning level", input: "warning", expected: slog.LevelWarn},
		{name: "error level", input: "error", expected: slog.LevelError},
		{name: "unknown defaults to info", input: "unknown", expected: slog.LevelInfo},
		{name: "empty defaults to info", input: "", expected: slog.LevelInfo},
		{name: "case insensitive", input: "DEBUG", expected: slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNewWithWriter_JSONDefaultFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggingConfig{Level: "info", Format: "json"}, "1.2.3", &buf)

	logger.Info("command published", "command", "led:on")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	want := map[string]string{
		"msg":     "command published",
		"service": ServiceName,
		"version": "1.2.3",
		"command": "led:on",
	}
	for key, value := range want {
		if logEntry[key] != value {
			t.Errorf("entry[%q] = %v, want %q", key, logEntry[key], value)
		}
	}
}

func TestNewWithWriter_Formats(t *testing.T) {
	tests := []struct {
		format   string
		contains string
	}{
		{format: "text", contains: "msg=hello"},
		{format: "", contains: "msg=hello"},
		{format: "json", contains: `"msg":"hello"`},
		{format: "console", contains: "hello"},
	}

	for _, tt := range tests {
		t.Run("format="+tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewWithWriter(config.LoggingConfig{Format: tt.format}, "test", &buf)

			logger.Info("hello")

			if !strings.Contains(buf.String(), tt.contains) {
				t.Errorf("output %q does not contain %q", buf.String(), tt.contains)
			}
		})
	}
}

func TestNewWithWriter_ConsoleNoColorForBuffers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggingConfig{Format: "console"}, "test", &buf)

	logger.Warn("reconnection attempt failed", "attempt", 3)

	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected no ANSI escapes for a non-terminal writer, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "attempt=3") {
		t.Errorf("output %q does not contain attempt=3", buf.String())
	}
}

func TestIsTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "log.txt"))
	if err != nil {
		t.Fatalf("creating log file: %v", err)
	}
	defer f.Close()

	tests := []struct {
		name string
		w    io.Writer
	}{
		{"buffer", &bytes.Buffer{}},
		{"regular file", f},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if isTerminal(tt.w) {
				t.Errorf("isTerminal(%s) = true, want false", tt.name)
			}
		})
	}
}

func TestNewWithWriter_ConsoleNoColorForFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating log file: %v", err)
	}

	logger := NewWithWriter(config.LoggingConfig{Format: "console"}, "test", f)
	logger.Info("to a file")
	if err := f.Close(); err != nil {
		t.Fatalf("closing log file: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "to a file") {
		t.Errorf("log file = %q, want message", data)
	}
	if strings.Contains(string(data), "\x1b[") {
		t.Errorf("log file contains colour codes: %q", data)
	}
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggingConfig{Level: "warn", Format: "text"}, "test", &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("info entry should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn entry should be written at warn level")
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggingConfig{Format: "json"}, "1.0.0", &buf)
	childLogger := logger.With("component", "mqtt")

	if childLogger == logger {
		t.Error("expected child logger to be different from parent")
	}

	childLogger.Info("connected")
	if !strings.Contains(buf.String(), `"component":"mqtt"`) {
		t.Errorf("output %q does not contain component attribute", buf.String())
	}
}

func TestNew_Outputs(t *testing.T) {
	for _, output := range []string{"stdout", "stderr", ""} {
		if New(config.LoggingConfig{Output: output}, "test") == nil {
			t.Errorf("New(output=%q) returned nil", output)
		}
	}
}

func TestDefault(t *testing.T) {
	if Default() == nil {
		t.Fatal("expected non-nil default logger")
	}
}
