package logging

import (
	"os"
	"path/filepath"
	"testing"

	"promptdesk/engine/internal/appdirs"
)

func TestNewFileLoggerDisabledWithoutDebug(t *testing.T) {
	setup, err := NewFileLogger(t.TempDir(), false)
	if err != nil {
		t.Fatalf("new file logger: %v", err)
	}
	if setup.Enabled {
		t.Fatalf("expected logging disabled without debug")
	}
	if setup.Logger == nil {
		t.Fatalf("disabled logger must still be usable")
	}
}

func TestNewFileLoggerWritesUnderLogsDir(t *testing.T) {
	dataDir := t.TempDir()
	setup, err := NewFileLogger(dataDir, true)
	if err != nil {
		t.Fatalf("new file logger: %v", err)
	}
	if !setup.Enabled {
		t.Fatalf("expected logging enabled with debug")
	}
	want := filepath.Join(appdirs.LogsDir(dataDir), "engine.log")
	if setup.Path != want {
		t.Fatalf("log path %q, want %q", setup.Path, want)
	}
	setup.Logger.Info("logging.test_event")
	if err := setup.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected log output on disk")
	}
}
