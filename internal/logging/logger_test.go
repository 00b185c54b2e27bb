package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger_WritesJSONFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	log, err := NewLogger(dir, "info")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	log.Info("test_message_from_logging_test")
	log.Debug("debug_is_filtered")
	_ = log.Sync()

	b, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"msg":"test_message_from_logging_test"`) || !strings.Contains(s, `"ts":`) {
		t.Fatalf("unexpected log contents: %s", s)
	}
	if strings.Contains(s, "debug_is_filtered") {
		t.Fatalf("debug entry should be filtered at info level")
	}
}

func TestNewLogger_BadLevel(t *testing.T) {
	if _, err := NewLogger(t.TempDir(), "loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
