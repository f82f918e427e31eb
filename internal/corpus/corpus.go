// Package corpus is the file-system side of the editor: the on-disk layout
// of the document corpus and the small read/write/list contract every other
// component goes through.
package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"promptdesk/engine/internal/settings"
)

var (
	ErrMainDirEmpty    = errors.New("main document directory has no files")
	ErrNoMainDocument  = errors.New("neither main document directory nor fallback file found")
	ErrInvalidFileName = errors.New("invalid file name")
)

// FS is the contract the session layer depends on. Paths are absolute.
type FS interface {
	ReadText(path string) (string, error)
	WriteText(path, content string) error
	ListFiles(dir string) ([]string, error)
	Exists(path string) bool
	IsDir(path string) bool
}

// Layout holds the effective corpus directories after settings overrides.
type Layout struct {
	Root         string `json:"root"`
	KBDir        string `json:"kb_dir"`
	AgentsDir    string `json:"agents_dir"`
	MainDir      string `json:"main_dir"`
	FallbackFile string `json:"fallback_file"`
}

func NewLayout(root string, cfg *settings.Settings) Layout {
	if cfg.CorpusRoot != "" {
		root = cfg.CorpusRoot
	}
	return Layout{
		Root:         root,
		KBDir:        filepath.Join(root, cfg.KBDirName),
		AgentsDir:    filepath.Join(root, cfg.AgentsDirName),
		MainDir:      filepath.Join(root, cfg.MainDirName),
		FallbackFile: filepath.Join(root, cfg.FallbackFileName),
	}
}

// MainDocument applies the two-tier lookup: prefer the first .txt/.md file
// in the main directory (sorted, case-insensitive), fall back to the first
// file of any extension, then to the standalone fallback file. A main
// directory that exists but is empty is a hard error rather than a reason
// to fall through; a main directory path occupied by a regular file is
// treated as absent.
func MainDocument(fs FS, layout Layout) (string, error) {
	if fs.IsDir(layout.MainDir) {
		names, err := fs.ListFiles(layout.MainDir)
		if err != nil {
			return "", err
		}
		if len(names) == 0 {
			return "", fmt.Errorf("%w: %s", ErrMainDirEmpty, layout.MainDir)
		}
		for _, name := range names {
			ext := strings.ToLower(filepath.Ext(name))
			if ext == ".txt" || ext == ".md" {
				return filepath.Join(layout.MainDir, name), nil
			}
		}
		return filepath.Join(layout.MainDir, names[0]), nil
	}
	if fs.Exists(layout.FallbackFile) {
		return layout.FallbackFile, nil
	}
	return "", fmt.Errorf("%w: checked %s and %s", ErrNoMainDocument, layout.MainDir, layout.FallbackFile)
}

// Disk is the production FS backed by the local file system.
type Disk struct{}

func NewDisk() Disk {
	return Disk{}
}

func (Disk) ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteText creates missing parent directories and replaces the file via a
// temp-file-then-rename so a failed write never leaves a half-written
// document behind. The final path component must pass ValidateFileName.
func (Disk) WriteText(path, content string) error {
	if err := ValidateFileName(filepath.Base(path)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidFileName, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return atomicWrite(path, []byte(content))
}

// ListFiles returns the base names of regular files directly under dir,
// sorted case-insensitively. A missing directory is an empty listing, not
// an error; callers decide whether absence matters.
func (Disk) ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := strings.ToLower(names[i]), strings.ToLower(names[j])
		if a == b {
			return names[i] < names[j]
		}
		return a < b
	})
	return names, nil
}

func (Disk) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (Disk) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// BaseName strips the directory and extension, the form resolution
// matches against.
func BaseName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ValidateFileName rejects anything that could escape a corpus directory.
func ValidateFileName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.IsAbs(name) {
		return ErrInvalidFileName
	}
	if filepath.Base(name) != name || strings.Contains(name, "\\") {
		return ErrInvalidFileName
	}
	return nil
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer os.Remove(name)
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(name, path)
}
