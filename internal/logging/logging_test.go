package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for raw, want := range tests {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestSetupWriterFiltersByLevel(t *testing.T) {
	defaultLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(defaultLogger) })

	var output bytes.Buffer
	logger := SetupWriter(&output, "warn", "text")
	logger.Info("hidden")
	logger.Warn("visible", "user_id", "u1")

	text := output.String()
	if strings.Contains(text, "hidden") {
		t.Fatalf("expected info line to be filtered, got %q", text)
	}
	if !strings.Contains(text, "visible") || !strings.Contains(text, "user_id=u1") {
		t.Fatalf("expected warn line with attrs, got %q", text)
	}
	if slog.Default() != logger {
		t.Fatal("expected Setup to install the default logger")
	}
}

func TestSetupWriterJSON(t *testing.T) {
	defaultLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(defaultLogger) })

	var output bytes.Buffer
	SetupWriter(&output, "info", "JSON").Info("dose recorded", "status", "taken")

	entry := map[string]any{}
	if err := json.Unmarshal(output.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", output.String(), err)
	}
	if entry["msg"] != "dose recorded" || entry["status"] != "taken" {
		t.Fatalf("unexpected log entry %#v", entry)
	}
}
