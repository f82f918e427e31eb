// Package session owns the editing state machine: one main document, at
// most one linked document opened by following a reference, and the
// edit/save/discard cycle against last-saved baselines.
package session

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"promptdesk/engine/internal/corpus"
	"promptdesk/engine/internal/diff"
	"promptdesk/engine/internal/links"
	"promptdesk/engine/internal/logging"
	"promptdesk/engine/internal/resolve"
)

type Target string

const (
	TargetMain   Target = "main"
	TargetLinked Target = "linked"
)

const (
	StateMainOnly       = "main_only"
	StateMainWithLinked = "main_with_linked"
)

// Slot is one editable document. Baseline is the last-saved content,
// Current the in-progress buffer; Current != Baseline is the only signal
// that there are pending changes.
type Slot struct {
	Path     string `json:"path"`
	Label    string `json:"label"`
	Baseline string `json:"baseline"`
	Current  string `json:"current"`
}

func (s Slot) Dirty() bool {
	return s.Current != s.Baseline
}

// Warning is the non-fatal notice surfaced when a reference resolves to no
// file. The session is left untouched.
type Warning struct {
	Kind    links.Kind `json:"kind"`
	Query   string     `json:"query"`
	Message string     `json:"message"`
}

// ResolvedSegment is a parse segment annotated with the resolution outcome
// for kb/agent segments. Resolution re-lists the directory on every parse,
// never from a cache.
type ResolvedSegment struct {
	links.Segment
	Resolved bool   `json:"resolved,omitempty"`
	Path     string `json:"path,omitempty"`
	Label    string `json:"label,omitempty"`
}

// Session is owned by exactly one caller and mutated on a single thread of
// control; the engine layer serializes access.
type Session struct {
	fs       corpus.FS
	layout   corpus.Layout
	logger   *slog.Logger
	main     Slot
	linked   *Slot
	warnings []Warning
}

// New resolves and loads the main document. Failure here is fatal: no
// session exists without a main document.
func New(fs corpus.FS, layout corpus.Layout, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	path, err := corpus.MainDocument(fs, layout)
	if err != nil {
		return nil, err
	}
	content, err := fs.ReadText(path)
	if err != nil {
		return nil, fmt.Errorf("read main document %s: %w", path, err)
	}
	return &Session{
		fs:     fs,
		layout: layout,
		logger: logger,
		main: Slot{
			Path:     path,
			Label:    filepath.Base(path),
			Baseline: content,
			Current:  content,
		},
	}, nil
}

func (s *Session) State() string {
	if s.linked != nil {
		return StateMainWithLinked
	}
	return StateMainOnly
}

func (s *Session) Main() Slot {
	return s.main
}

func (s *Session) Linked() (Slot, bool) {
	if s.linked == nil {
		return Slot{}, false
	}
	return *s.linked, true
}

// Warnings returns the resolution warnings recorded so far, oldest first.
func (s *Session) Warnings() []Warning {
	return s.warnings
}

// Navigate resolves a reference and, on success, loads the target into the
// linked slot, replacing whatever was there. On resolution failure the
// session state is unchanged and a warning is recorded and returned. The
// error return is reserved for I/O failures reading a resolved file.
func (s *Session) Navigate(kind links.Kind, query string) (*Warning, error) {
	dir, err := s.referenceDir(kind)
	if err != nil {
		return nil, err
	}
	files, err := s.fs.ListFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var name string
	var found bool
	switch kind {
	case links.KindKB:
		name, found = resolve.KnowledgeBase(query, files)
	case links.KindAgent:
		name, found = resolve.Agent(query, files)
	}
	if !found {
		warn := Warning{
			Kind:    kind,
			Query:   query,
			Message: notFoundMessage(kind, query),
		}
		s.warnings = append(s.warnings, warn)
		s.logger.Warn("session.navigate_unresolved", "kind", string(kind), "query", query)
		return &warn, nil
	}
	path := filepath.Join(dir, name)
	content, err := s.fs.ReadText(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	s.linked = &Slot{
		Path:     path,
		Label:    slotLabel(kind, name),
		Baseline: content,
		Current:  content,
	}
	s.logger.Debug("session.navigate", "kind", string(kind), "path", path)
	return nil, nil
}

// Edit replaces the edit buffer of the addressed slot. Editing the linked
// slot while none is open is a no-op, matching the state machine contract.
func (s *Session) Edit(target Target, content string) {
	switch target {
	case TargetMain:
		s.main.Current = content
	case TargetLinked:
		if s.linked != nil {
			s.linked.Current = content
		}
	}
}

// Save writes the buffer of a dirty slot and advances its baseline. Saving
// a clean slot is a no-op. A failed write leaves both baseline and buffer
// untouched, so the save can simply be retried.
func (s *Session) Save(target Target) error {
	slot := s.slot(target)
	if slot == nil || !slot.Dirty() {
		return nil
	}
	if err := s.fs.WriteText(slot.Path, slot.Current); err != nil {
		s.logger.Warn("session.save_failed", "path", slot.Path, "error", err.Error())
		return fmt.Errorf("write %s: %w", slot.Path, err)
	}
	slot.Baseline = slot.Current
	s.logger.Debug("session.saved", "path", slot.Path)
	return nil
}

// Discard drops unsaved edits, resetting the buffer to the baseline.
func (s *Session) Discard(target Target) {
	if slot := s.slot(target); slot != nil {
		slot.Current = slot.Baseline
	}
}

// CloseLinked clears the linked slot without saving. hadUnsavedChanges lets
// a host add a confirmation step; the session itself discards silently.
func (s *Session) CloseLinked() (hadUnsavedChanges, wasOpen bool) {
	if s.linked == nil {
		return false, false
	}
	hadUnsavedChanges = s.linked.Dirty()
	if hadUnsavedChanges {
		s.logger.Warn("session.close_discards_edits", "path", s.linked.Path)
	}
	s.linked = nil
	return hadUnsavedChanges, true
}

// Diff compares a slot's baseline against its buffer.
func (s *Session) Diff(target Target, maxLines int) (diff.Result, bool, error) {
	slot := s.slot(target)
	if slot == nil {
		return diff.Result{}, false, fmt.Errorf("no %s document open", target)
	}
	result, skipped := diff.ComputeWithLimit(slot.Baseline, slot.Current, maxLines)
	return result, skipped, nil
}

// Segments parses a slot's buffer and resolves every reference against the
// current directory contents.
func (s *Session) Segments(target Target) ([]ResolvedSegment, error) {
	slot := s.slot(target)
	if slot == nil {
		return nil, fmt.Errorf("no %s document open", target)
	}
	parsed := links.Parse(slot.Current)
	resolved := make([]ResolvedSegment, 0, len(parsed))
	for _, seg := range parsed {
		out := ResolvedSegment{Segment: seg}
		switch seg.Kind {
		case links.KindKB, links.KindAgent:
			dir, err := s.referenceDir(seg.Kind)
			if err != nil {
				return nil, err
			}
			files, err := s.fs.ListFiles(dir)
			if err != nil {
				return nil, fmt.Errorf("list %s: %w", dir, err)
			}
			query := seg.Title
			matcher := resolve.KnowledgeBase
			if seg.Kind == links.KindAgent {
				query = seg.Name
				matcher = resolve.Agent
			}
			if name, ok := matcher(query, files); ok {
				out.Resolved = true
				out.Path = filepath.Join(dir, name)
				out.Label = slotLabel(seg.Kind, name)
			}
		}
		resolved = append(resolved, out)
	}
	return resolved, nil
}

func (s *Session) slot(target Target) *Slot {
	switch target {
	case TargetMain:
		return &s.main
	case TargetLinked:
		if s.linked != nil {
			return s.linked
		}
	}
	return nil
}

func (s *Session) referenceDir(kind links.Kind) (string, error) {
	switch kind {
	case links.KindKB:
		return s.layout.KBDir, nil
	case links.KindAgent:
		return s.layout.AgentsDir, nil
	default:
		return "", fmt.Errorf("unknown reference kind %q", kind)
	}
}

func slotLabel(kind links.Kind, fileName string) string {
	if kind == links.KindAgent {
		return "Агент: " + fileName
	}
	return "БЗ: " + fileName
}

func notFoundMessage(kind links.Kind, query string) string {
	if kind == links.KindAgent {
		return fmt.Sprintf("Не найден файл агента для %q", query)
	}
	return fmt.Sprintf("Не найден файл в БЗ для %q", query)
}
