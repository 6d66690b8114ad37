package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"error":   slog.LevelError,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"info":    slog.LevelInfo,
		"":        slog.LevelDebug,
		"verbose": slog.LevelDebug,
	}
	for in, want := range cases {
		if got := levelFromString(in); got != want {
			t.Errorf("levelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWriterFormats(t *testing.T) {
	t.Parallel()

	var jsonBuf bytes.Buffer
	NewWriter(&jsonBuf, "info", "json").Info("published", "article_id", 7)
	var entry map[string]any
	if err := json.Unmarshal(jsonBuf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json log line, got %q: %v", jsonBuf.String(), err)
	}
	if entry["msg"] != "published" || entry["article_id"] != float64(7) {
		t.Fatalf("unexpected entry: %v", entry)
	}

	var textBuf bytes.Buffer
	logger := NewWriter(&textBuf, "warn", "text")
	logger.Info("dropped")
	logger.Warn("kept")
	if strings.Contains(textBuf.String(), "dropped") || !strings.Contains(textBuf.String(), "msg=kept") {
		t.Fatalf("unexpected text output: %q", textBuf.String())
	}
}
