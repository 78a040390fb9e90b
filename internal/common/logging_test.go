package common

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger_FluentAPI(t *testing.T) {
	logger := NewLogger("error")
	if logger == nil {
		t.Fatal("NewLogger returned nil")
	}
	// Must not panic.
	logger.Info().Str("key", "value").Msg("test message")
	logger.Warn().Int("count", 42).Msg("warning")
	logger.Error().Err(nil).Msg("error message")
}

func TestNewLoggerWithOutput_WritesLines(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("info", &buf)
	logger.Info().Str("file", "history.csv").Msg("imported")

	out := buf.String()
	if !strings.Contains(out, "imported") {
		t.Errorf("expected message in output, got %q", out)
	}
}

func TestNewSilentLogger_DiscardsOutput(t *testing.T) {
	logger := NewSilentLogger()
	if logger == nil {
		t.Fatal("NewSilentLogger returned nil")
	}
	logger.Info().Msg("nothing to see")
	logger.Error().Str("k", "v").Msg("still nothing")
}

func TestWithCorrelationId(t *testing.T) {
	logger := NewSilentLogger().WithCorrelationId("abc-123")
	if logger == nil || logger.ILogger == nil {
		t.Fatal("expected wrapped logger")
	}
}
