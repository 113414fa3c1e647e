package utils

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestRunLogger_LevelPrefixes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, false)

	logger.LogInfo("wrote %d entries", 6)
	logger.LogError("category %s failed: %s", "journals", "connection refused")

	out := buf.String()
	if !strings.Contains(out, "[INFO] wrote 6 entries") {
		t.Errorf("missing info line in %q", out)
	}
	if !strings.Contains(out, "[ERROR] category journals failed: connection refused") {
		t.Errorf("missing error line in %q", out)
	}
}

func TestRunLogger_DebugSuppressedUnlessEnabled(t *testing.T) {
	var quiet, verbose bytes.Buffer

	NewWriterLogger(&quiet, false).LogDebug("hidden")
	NewWriterLogger(&verbose, true).LogDebug("shown")

	if quiet.Len() != 0 {
		t.Errorf("expected no debug output, got %q", quiet.String())
	}
	if !strings.Contains(verbose.String(), "[DEBUG] shown") {
		t.Errorf("expected debug line, got %q", verbose.String())
	}
}

func TestNewRunLogger_WritesFile(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewRunLogger(dir, false)
	if err != nil {
		t.Fatalf("NewRunLogger failed: %v", err)
	}
	logger.LogInfo("hello")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(logger.Path())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "[INFO] hello") {
		t.Errorf("log file = %q, want it to contain the info line", string(data))
	}
}

func TestNewRunLogger_StdoutOnly(t *testing.T) {
	logger, err := NewRunLogger("", false)
	if err != nil {
		t.Fatalf("NewRunLogger failed: %v", err)
	}
	if logger.Path() != "" {
		t.Errorf("Path() = %q, want empty", logger.Path())
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
}
