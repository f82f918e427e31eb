package appdirs

import (
	"os"
	"path/filepath"
)

const (
	appDirName = "promptdesk"
)

func DataDir() (string, error) {
	if override := os.Getenv("PROMPTDESK_DATA_DIR"); override != "" {
		return override, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDirName), nil
}

// CorpusDir is the root under which the document corpus lives. Defaults to
// the current working directory so the engine can run next to its documents.
func CorpusDir() (string, error) {
	if override := os.Getenv("PROMPTDESK_CORPUS_DIR"); override != "" {
		return override, nil
	}
	return os.Getwd()
}

func LogsDir(dataDir string) string {
	return filepath.Join(dataDir, "logs")
}
