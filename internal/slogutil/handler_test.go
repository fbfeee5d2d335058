package slogutil

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)

	logger.Info("Run finished", "issues", 3, "runId", "abc")

	output := buf.String()
	for _, want := range []string{"[info]", "Run finished", " | ", "issues=3", "runId=abc"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
	if !strings.HasSuffix(output, "\n") {
		t.Errorf("expected trailing newline, got: %q", output)
	}
}

func TestHandler_ConsoleOmitsTimestamp(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleLogger(&buf, slog.LevelInfo).Info("hello")

	if !strings.HasPrefix(buf.String(), "[info] hello") {
		t.Errorf("console line should start with level, got: %q", buf.String())
	}
}

func TestHandler_QuotesStringsWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleLogger(&buf, slog.LevelInfo).Info("load", "source", "my config.yml")

	if !strings.Contains(buf.String(), `source="my config.yml"`) {
		t.Errorf("expected quoted value, got: %s", buf.String())
	}
}

func TestHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, slog.LevelInfo).WithGroup("engine").With("parallel", true)

	logger.Info("started", "files", 2)

	output := buf.String()
	if !strings.Contains(output, "engine.parallel=true") {
		t.Errorf("expected grouped attr, got: %s", output)
	}
	if !strings.Contains(output, "engine.files=2") {
		t.Errorf("expected grouped record attr, got: %s", output)
	}
}

func TestHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()

	if strings.Contains(output, "debug message") {
		t.Error("debug message should be filtered")
	}
	if strings.Contains(output, "info message") {
		t.Error("info message should be filtered")
	}
	if !strings.Contains(output, "warn message") {
		t.Error("warn message should be included")
	}
	if !strings.Contains(output, "error message") {
		t.Error("error message should be included")
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"silent", LevelSilent},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := LevelFromString(tt.input); got != tt.expected {
				t.Errorf("LevelFromString(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger()

	logger.Debug("debug")
	logger.Error("error")
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("discard logger should not be enabled for any level")
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")

	logger, f, err := NewFileLogger(path, slog.LevelInfo)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	logger.Info("written")
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "[info] written") {
		t.Errorf("log file content = %q", data)
	}
}

func TestTeeHandler(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h1 := NewHandler(&buf1, &HandlerOptions{HandlerOptions: slog.HandlerOptions{Level: slog.LevelInfo}})
	h2 := NewHandler(&buf2, &HandlerOptions{HandlerOptions: slog.HandlerOptions{Level: slog.LevelWarn}})

	logger := NewTeeLogger(h1, h2)
	logger.Info("info message")
	logger.Warn("warn message")

	if !strings.Contains(buf1.String(), "info message") {
		t.Error("buf1 should contain info message")
	}
	if !strings.Contains(buf1.String(), "warn message") {
		t.Error("buf1 should contain warn message")
	}
	if strings.Contains(buf2.String(), "info message") {
		t.Error("buf2 should not contain info message")
	}
	if !strings.Contains(buf2.String(), "warn message") {
		t.Error("buf2 should contain warn message")
	}
}
