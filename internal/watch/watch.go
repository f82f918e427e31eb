// Package watch notifies the host when corpus files change under the
// engine, so stale edit buffers can be flagged. Purely advisory: sessions
// never react to events on their own.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"promptdesk/engine/internal/logging"
)

// Event describes one observed corpus change.
type Event struct {
	Dir  string `json:"dir"`
	Path string `json:"path"`
	Op   string `json:"op"`
}

type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	dirs     []string
	onEvent  func(Event)
	logger   *slog.Logger
	debounce map[string]time.Time
	window   time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// New creates a watcher over the given directories. Directories that do not
// exist yet are skipped at Start; onEvent fires on the watcher goroutine.
func New(dirs []string, onEvent func(Event), logger *slog.Logger) (*Watcher, error) {
	fswatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Watcher{
		watcher:  fswatcher,
		dirs:     dirs,
		onEvent:  onEvent,
		logger:   logger,
		debounce: make(map[string]time.Time),
		// Editors save in bursts; one event per burst is enough.
		window: 500 * time.Millisecond,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}, nil
}

func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, dir := range w.dirs {
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Warn("watch.add_failed", "dir", dir, "error", err.Error())
			continue
		}
		w.logger.Debug("watch.watching", "dir", dir)
	}
	go w.run(ctx)
	return nil
}

func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()
	close(w.stopCh)
	<-w.doneCh
	_ = w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch.error", "error", err.Error())
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	// Atomic saves go through dotfile temp names; skip them.
	base := filepath.Base(event.Name)
	if len(base) > 0 && base[0] == '.' {
		return
	}
	w.mu.Lock()
	now := time.Now()
	if last, ok := w.debounce[event.Name]; ok && now.Sub(last) < w.window {
		w.mu.Unlock()
		return
	}
	w.debounce[event.Name] = now
	w.mu.Unlock()

	out := Event{
		Dir:  filepath.Dir(event.Name),
		Path: event.Name,
		Op:   event.Op.String(),
	}
	w.logger.Debug("watch.event", "path", out.Path, "op", out.Op)
	if w.onEvent != nil {
		w.onEvent(out)
	}
}
