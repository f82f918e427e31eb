// Package engine wires sessions, corpus access, and rendering behind the
// RPC surface the host UI drives.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"promptdesk/engine/internal/appdirs"
	"promptdesk/engine/internal/corpus"
	"promptdesk/engine/internal/errinfo"
	"promptdesk/engine/internal/links"
	"promptdesk/engine/internal/logging"
	"promptdesk/engine/internal/render"
	"promptdesk/engine/internal/session"
	"promptdesk/engine/internal/settings"
	"promptdesk/engine/internal/watch"
)

const (
	EngineVersion = "0.1.0"
	APIVersion    = "1"
)

type Notifier func(method string, params any)

type Engine struct {
	dataDir    string
	corpusRoot string
	settings   *settings.Store
	fs         corpus.FS
	logger     *slog.Logger
	notify     Notifier

	// One lock for the whole session registry: every operation runs to
	// completion before the next, which is what the session model
	// requires. Handlers are dispatched on goroutines by the RPC server.
	mu       sync.Mutex
	sessions map[string]*session.Session
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithDataDir(dir string) Option {
	return func(e *Engine) {
		e.dataDir = dir
	}
}

func WithCorpusRoot(root string) Option {
	return func(e *Engine) {
		e.corpusRoot = root
	}
}

func WithFS(fs corpus.FS) Option {
	return func(e *Engine) {
		e.fs = fs
	}
}

func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger:   logging.Nop(),
		fs:       corpus.NewDisk(),
		sessions: make(map[string]*session.Session),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.dataDir == "" {
		dataDir, err := appdirs.DataDir()
		if err != nil {
			return nil, err
		}
		e.dataDir = dataDir
	}
	if e.corpusRoot == "" {
		corpusRoot, err := appdirs.CorpusDir()
		if err != nil {
			return nil, err
		}
		e.corpusRoot = corpusRoot
	}
	e.settings = settings.NewStore(filepath.Join(e.dataDir, "settings.json"))
	return e, nil
}

func (e *Engine) SetNotifier(notify Notifier) {
	e.notify = notify
}

// NotifyCorpusChanged forwards a watcher event to the host.
func (e *Engine) NotifyCorpusChanged(event watch.Event) {
	if e.notify != nil {
		e.notify("corpus.changed", event)
	}
}

// Layout resolves the effective corpus directories from settings.
func (e *Engine) Layout() (corpus.Layout, error) {
	cfg, err := e.settings.Load()
	if err != nil {
		return corpus.Layout{}, err
	}
	return corpus.NewLayout(e.corpusRoot, cfg), nil
}

type SlotView struct {
	Path    string `json:"path"`
	Label   string `json:"label"`
	Content string `json:"content"`
	Dirty   bool   `json:"dirty"`
}

func slotView(slot session.Slot) SlotView {
	return SlotView{
		Path:    slot.Path,
		Label:   slot.Label,
		Content: slot.Current,
		Dirty:   slot.Dirty(),
	}
}

type SessionView struct {
	SessionID string    `json:"session_id"`
	State     string    `json:"state"`
	Main      SlotView  `json:"main"`
	Linked    *SlotView `json:"linked,omitempty"`
}

func (e *Engine) sessionView(id string, sess *session.Session) SessionView {
	view := SessionView{
		SessionID: id,
		State:     sess.State(),
		Main:      slotView(sess.Main()),
	}
	if linked, ok := sess.Linked(); ok {
		lv := slotView(linked)
		view.Linked = &lv
	}
	return view
}

func (e *Engine) EngineGetInfo(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	layout, err := e.Layout()
	if err != nil {
		return nil, errinfo.ValidationFailed(errinfo.PhaseSettings, err.Error())
	}
	return map[string]any{
		"engine_version": EngineVersion,
		"api_version":    APIVersion,
		"data_dir":       e.dataDir,
		"layout":         layout,
	}, nil
}

func (e *Engine) SessionOpen(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	layout, err := e.Layout()
	if err != nil {
		return nil, errinfo.ValidationFailed(errinfo.PhaseSettings, err.Error())
	}
	sess, err := session.New(e.fs, layout, e.logger)
	if err != nil {
		if errors.Is(err, corpus.ErrNoMainDocument) || errors.Is(err, corpus.ErrMainDirEmpty) {
			return nil, errinfo.CorpusNotFound(err.Error())
		}
		return nil, errinfo.FileReadFailed(errinfo.PhaseSession, layout.MainDir, err.Error())
	}
	id := uuid.NewString()
	e.sessions[id] = sess
	e.logger.Info("engine.session_opened", "session_id", id, "main", sess.Main().Path)
	return e.sessionView(id, sess), nil
}

type sessionParams struct {
	SessionID string `json:"session_id"`
	Target    string `json:"target,omitempty"`
	Kind      string `json:"kind,omitempty"`
	Query     string `json:"query,omitempty"`
	Content   string `json:"content,omitempty"`
}

func (e *Engine) SessionGet(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, sess, errInfo := e.lookup(params)
	if errInfo != nil {
		return nil, errInfo
	}
	return e.sessionView(id, sess), nil
}

func (e *Engine) SessionParseLinks(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, sess, req, errInfo := e.lookupWithParams(params)
	if errInfo != nil {
		return nil, errInfo
	}
	target, errInfo := parseTarget(req.Target, session.TargetMain)
	if errInfo != nil {
		return nil, errInfo
	}
	segments, err := sess.Segments(target)
	if err != nil {
		return nil, errinfo.FileReadFailed(errinfo.PhaseSession, "", err.Error())
	}
	return map[string]any{"segments": segments}, nil
}

func (e *Engine) SessionNavigate(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, sess, req, errInfo := e.lookupWithParams(params)
	if errInfo != nil {
		return nil, errInfo
	}
	kind, errInfo := parseKind(req.Kind)
	if errInfo != nil {
		return nil, errInfo
	}
	warn, err := sess.Navigate(kind, req.Query)
	if err != nil {
		return nil, errinfo.FileReadFailed(errinfo.PhaseNavigate, "", err.Error())
	}
	result := map[string]any{"session": e.sessionView(id, sess)}
	if warn != nil {
		// A miss is not an error: the session is untouched and the caller
		// may retry with a corrected query. The warning carries the
		// structured form alongside the user-facing message.
		info := errinfo.ResolutionFailed(errinfo.PhaseNavigate, warn.Query)
		info.Detail = warn.Message
		result["warning"] = info
	}
	return result, nil
}

func (e *Engine) SessionEdit(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, sess, req, errInfo := e.lookupWithParams(params)
	if errInfo != nil {
		return nil, errInfo
	}
	target, errInfo := parseTarget(req.Target, "")
	if errInfo != nil {
		return nil, errInfo
	}
	if target == session.TargetLinked {
		if _, ok := sess.Linked(); !ok {
			return nil, errinfo.NoLinkedDocument(id)
		}
	}
	sess.Edit(target, req.Content)
	return e.sessionView(id, sess), nil
}

func (e *Engine) SessionGetDiff(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, sess, req, errInfo := e.lookupWithParams(params)
	if errInfo != nil {
		return nil, errInfo
	}
	target, errInfo := parseTarget(req.Target, session.TargetMain)
	if errInfo != nil {
		return nil, errInfo
	}
	result, skipped, err := sess.Diff(target, 0)
	if err != nil {
		return nil, errinfo.NoLinkedDocument(id)
	}
	return map[string]any{"rows": result.Rows, "too_large": skipped}, nil
}

func (e *Engine) SessionRenderDiff(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, sess, req, errInfo := e.lookupWithParams(params)
	if errInfo != nil {
		return nil, errInfo
	}
	target, errInfo := parseTarget(req.Target, session.TargetMain)
	if errInfo != nil {
		return nil, errInfo
	}
	cfg, err := e.settings.Load()
	if err != nil {
		return nil, errinfo.ValidationFailed(errinfo.PhaseSettings, err.Error())
	}
	result, skipped, err := sess.Diff(target, 0)
	if err != nil {
		return nil, errinfo.NoLinkedDocument(id)
	}
	if skipped {
		return nil, errinfo.DiffTooLarge(errinfo.PhaseRender)
	}
	html := render.DiffTable(result, cfg.DiffContextLines, "Было", "Стало")
	return map[string]any{"html": html}, nil
}

func (e *Engine) SessionRenderPreview(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, sess, req, errInfo := e.lookupWithParams(params)
	if errInfo != nil {
		return nil, errInfo
	}
	target, errInfo := parseTarget(req.Target, session.TargetMain)
	if errInfo != nil {
		return nil, errInfo
	}
	slot, ok := e.slot(sess, target)
	if !ok {
		return nil, errinfo.NoLinkedDocument(id)
	}
	cfg, err := e.settings.Load()
	if err != nil {
		return nil, errinfo.ValidationFailed(errinfo.PhaseSettings, err.Error())
	}
	// The main document is authored as markdown; linked documents are
	// plain text rules and agent scripts.
	var html string
	if target == session.TargetMain && cfg.PreviewEnabled {
		html, err = render.Markdown(slot.Current)
		if err != nil {
			return nil, errinfo.ValidationFailed(errinfo.PhaseRender, err.Error())
		}
	} else {
		html = render.Plain(slot.Current)
	}
	return map[string]any{"html": html}, nil
}

func (e *Engine) SessionSave(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, sess, req, errInfo := e.lookupWithParams(params)
	if errInfo != nil {
		return nil, errInfo
	}
	target, errInfo := parseTarget(req.Target, "")
	if errInfo != nil {
		return nil, errInfo
	}
	slot, ok := e.slot(sess, target)
	if !ok {
		return nil, errinfo.NoLinkedDocument(id)
	}
	if err := sess.Save(target); err != nil {
		return nil, errinfo.FileWriteFailed(errinfo.PhaseSave, slot.Path, err.Error())
	}
	return e.sessionView(id, sess), nil
}

func (e *Engine) SessionDiscard(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, sess, req, errInfo := e.lookupWithParams(params)
	if errInfo != nil {
		return nil, errInfo
	}
	target, errInfo := parseTarget(req.Target, "")
	if errInfo != nil {
		return nil, errInfo
	}
	sess.Discard(target)
	return e.sessionView(id, sess), nil
}

func (e *Engine) SessionCloseLinked(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, sess, errInfo := e.lookup(params)
	if errInfo != nil {
		return nil, errInfo
	}
	hadUnsaved, wasOpen := sess.CloseLinked()
	if !wasOpen {
		return nil, errinfo.NoLinkedDocument(id)
	}
	return map[string]any{
		"session":             e.sessionView(id, sess),
		"had_unsaved_changes": hadUnsaved,
	}, nil
}

func (e *Engine) SessionClose(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, _, errInfo := e.lookup(params)
	if errInfo != nil {
		return nil, errInfo
	}
	delete(e.sessions, id)
	e.logger.Info("engine.session_closed", "session_id", id)
	return map[string]any{"closed": true}, nil
}

type corpusListParams struct {
	Dir string `json:"dir"`
}

func (e *Engine) CorpusListFiles(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	var req corpusListParams
	if err := unmarshalParams(params, &req); err != nil {
		return nil, errinfo.ValidationFailed(errinfo.PhaseCorpus, err.Error())
	}
	layout, err := e.Layout()
	if err != nil {
		return nil, errinfo.ValidationFailed(errinfo.PhaseSettings, err.Error())
	}
	var dir string
	switch req.Dir {
	case "kb":
		dir = layout.KBDir
	case "agents":
		dir = layout.AgentsDir
	case "main":
		dir = layout.MainDir
	default:
		return nil, errinfo.ValidationFailed(errinfo.PhaseCorpus, "dir must be kb, agents, or main")
	}
	files, err := e.fs.ListFiles(dir)
	if err != nil {
		return nil, errinfo.FileReadFailed(errinfo.PhaseCorpus, dir, err.Error())
	}
	return map[string]any{"dir": dir, "files": files}, nil
}

func (e *Engine) CorpusGetLayout(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	layout, err := e.Layout()
	if err != nil {
		return nil, errinfo.ValidationFailed(errinfo.PhaseSettings, err.Error())
	}
	return layout, nil
}

func (e *Engine) SettingsGet(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	cfg, err := e.settings.Load()
	if err != nil {
		return nil, errinfo.ValidationFailed(errinfo.PhaseSettings, err.Error())
	}
	return cfg, nil
}

func (e *Engine) SettingsUpdate(ctx context.Context, params json.RawMessage) (any, *errinfo.ErrorInfo) {
	var req settings.Settings
	if err := unmarshalParams(params, &req); err != nil {
		return nil, errinfo.ValidationFailed(errinfo.PhaseSettings, err.Error())
	}
	updated, err := e.settings.Update(func(cfg *settings.Settings) {
		*cfg = req
	})
	if err != nil {
		return nil, errinfo.FileWriteFailed(errinfo.PhaseSettings, "", err.Error())
	}
	return updated, nil
}

func (e *Engine) lookup(params json.RawMessage) (string, *session.Session, *errinfo.ErrorInfo) {
	var req sessionParams
	if err := unmarshalParams(params, &req); err != nil {
		return "", nil, errinfo.ValidationFailed(errinfo.PhaseSession, err.Error())
	}
	sess, ok := e.sessions[req.SessionID]
	if !ok {
		return "", nil, errinfo.SessionNotFound(req.SessionID)
	}
	return req.SessionID, sess, nil
}

func (e *Engine) lookupWithParams(params json.RawMessage) (string, *session.Session, sessionParams, *errinfo.ErrorInfo) {
	var req sessionParams
	if err := unmarshalParams(params, &req); err != nil {
		return "", nil, req, errinfo.ValidationFailed(errinfo.PhaseSession, err.Error())
	}
	sess, ok := e.sessions[req.SessionID]
	if !ok {
		return "", nil, req, errinfo.SessionNotFound(req.SessionID)
	}
	return req.SessionID, sess, req, nil
}

func (e *Engine) slot(sess *session.Session, target session.Target) (session.Slot, bool) {
	if target == session.TargetMain {
		return sess.Main(), true
	}
	return sess.Linked()
}

func parseTarget(value string, fallback session.Target) (session.Target, *errinfo.ErrorInfo) {
	switch value {
	case "":
		if fallback != "" {
			return fallback, nil
		}
	case string(session.TargetMain):
		return session.TargetMain, nil
	case string(session.TargetLinked):
		return session.TargetLinked, nil
	}
	return "", errinfo.ValidationFailed(errinfo.PhaseSession, "target must be main or linked")
}

func parseKind(value string) (links.Kind, *errinfo.ErrorInfo) {
	switch value {
	case string(links.KindKB):
		return links.KindKB, nil
	case string(links.KindAgent):
		return links.KindAgent, nil
	}
	return "", errinfo.ValidationFailed(errinfo.PhaseNavigate, "kind must be kb or agent")
}

func unmarshalParams(params json.RawMessage, dest any) error {
	if len(params) == 0 {
		return nil
	}
	return json.Unmarshal(params, dest)
}
