package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const schemaVersion = 1

// Directory and file names match the corpus layout the documents were
// authored against, so defaults are the Russian originals.
const (
	defaultKBDirName        = "БЗ"
	defaultAgentsDirName    = "Сценарные агенты"
	defaultMainDirName      = "Главный промт"
	defaultFallbackFileName = "Основной промт.txt"
	defaultDiffContextLines = 3
)

type Settings struct {
	SchemaVersion    int    `json:"schema_version"`
	CorpusRoot       string `json:"corpus_root,omitempty"`
	KBDirName        string `json:"kb_dir_name"`
	AgentsDirName    string `json:"agents_dir_name"`
	MainDirName      string `json:"main_dir_name"`
	FallbackFileName string `json:"fallback_file_name"`
	DiffContextLines int    `json:"diff_context_lines"`
	PreviewEnabled   bool   `json:"preview_enabled"`
}

type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Load() (*Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultSettings(), nil
		}
		return nil, err
	}
	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}
	backfillSettings(&settings)
	return &settings, nil
}

func (s *Store) Save(settings *Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	backfillSettings(settings)
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *Store) Update(fn func(*Settings)) (*Settings, error) {
	settings, err := s.Load()
	if err != nil {
		return nil, err
	}
	fn(settings)
	return settings, s.Save(settings)
}

func defaultSettings() *Settings {
	return &Settings{
		SchemaVersion:    schemaVersion,
		KBDirName:        defaultKBDirName,
		AgentsDirName:    defaultAgentsDirName,
		MainDirName:      defaultMainDirName,
		FallbackFileName: defaultFallbackFileName,
		DiffContextLines: defaultDiffContextLines,
		PreviewEnabled:   true,
	}
}

func backfillSettings(settings *Settings) {
	if settings.SchemaVersion == 0 {
		settings.SchemaVersion = schemaVersion
		// Files written before the schema field existed predate the
		// preview flag as well.
		settings.PreviewEnabled = true
	}
	if strings.TrimSpace(settings.KBDirName) == "" {
		settings.KBDirName = defaultKBDirName
	}
	if strings.TrimSpace(settings.AgentsDirName) == "" {
		settings.AgentsDirName = defaultAgentsDirName
	}
	if strings.TrimSpace(settings.MainDirName) == "" {
		settings.MainDirName = defaultMainDirName
	}
	if strings.TrimSpace(settings.FallbackFileName) == "" {
		settings.FallbackFileName = defaultFallbackFileName
	}
	if settings.DiffContextLines <= 0 {
		settings.DiffContextLines = defaultDiffContextLines
	}
}
