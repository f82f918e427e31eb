package appdirs

import (
	"os"
	"testing"
)

func TestDataDirOverride(t *testing.T) {
	os.Setenv("PROMPTDESK_DATA_DIR", "/tmp/promptdesk-test")
	defer os.Unsetenv("PROMPTDESK_DATA_DIR")
	path, err := DataDir()
	if err != nil {
		t.Fatalf("data dir: %v", err)
	}
	if path != "/tmp/promptdesk-test" {
		t.Fatalf("expected override path, got %s", path)
	}

	logs := LogsDir(path)
	if logs != "/tmp/promptdesk-test/logs" {
		t.Fatalf("expected logs dir, got %s", logs)
	}
}

func TestCorpusDirOverride(t *testing.T) {
	os.Setenv("PROMPTDESK_CORPUS_DIR", "/tmp/promptdesk-corpus")
	defer os.Unsetenv("PROMPTDESK_CORPUS_DIR")
	path, err := CorpusDir()
	if err != nil {
		t.Fatalf("corpus dir: %v", err)
	}
	if path != "/tmp/promptdesk-corpus" {
		t.Fatalf("expected override path, got %s", path)
	}
}
