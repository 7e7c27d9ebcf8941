package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cruciblehq/bentostart/internal/launch"
	"github.com/fsnotify/fsnotify"
)

// Quiet period after the last change before a reload runs. Editors and
// builds touch many files at once.
const reloadDebounce = 500 * time.Millisecond

// Watches a directory tree and calls reload once changes settle.
type reloader struct {
	root     string
	debounce time.Duration
	reload   func()
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	timer    *time.Timer
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// Creates a reloader over root and every directory below it. Hidden
// directories and bytecode caches are not watched.
func newReloader(root string, debounce time.Duration, reload func()) (*reloader, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	r := &reloader{
		root:     abs,
		debounce: debounce,
		reload:   reload,
		watcher:  watcher,
		stopCh:   make(chan struct{}),
	}

	if err := r.addTree(abs); err != nil {
		watcher.Close()
		return nil, err
	}
	return r, nil
}

// Watches dir and its subdirectories.
func (r *reloader) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != r.root && ignored(path) {
			return filepath.SkipDir
		}
		if err := r.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// Whether changes under path never warrant a reload.
func ignored(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") || base == "__pycache__" || strings.HasSuffix(base, ".pyc")
}

func (r *reloader) start() {
	r.wg.Add(1)
	go r.loop()
}

// Stops watching. A pending reload is cancelled.
func (r *reloader) stop() error {
	close(r.stopCh)
	r.wg.Wait()

	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.mu.Unlock()

	return r.watcher.Close()
}

func (r *reloader) loop() {
	defer r.wg.Done()

	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			r.handle(event)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("file watcher error", "error", err)

		case <-r.stopCh:
			return
		}
	}
}

func (r *reloader) handle(event fsnotify.Event) {
	if ignored(event.Name) {
		return
	}

	if event.Has(fsnotify.Create) {
		// New directories are not covered by existing watches.
		if err := r.addTree(event.Name); err != nil {
			slog.Debug("failed to watch new path", "path", event.Name, "error", err)
		}
	}

	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		slog.Debug("change detected", "path", event.Name, "op", event.Op.String())
		r.schedule()
	}
}

// Debounces reloads.
func (r *reloader) schedule() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, r.reload)
}

// Starts reloading the target's service on changes to its directory.
// Returns a func that stops watching.
func (l *Launcher) watch(ctx context.Context, t launch.Target, s *site) (func(), error) {
	if l.Loader == nil {
		slog.Warn("reload requested but no service loader is configured; reload disabled")
		return func() {}, nil
	}

	dir := t.Service.Dir
	if dir == "" {
		dir = t.WorkingDir
	}

	r, err := newReloader(dir, reloadDebounce, func() { l.reload(ctx, t, s) })
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServer, err)
	}
	r.start()

	slog.Info("watching for changes", "dir", r.root)

	return func() {
		if err := r.stop(); err != nil {
			slog.Debug("failed to stop file watcher", "error", err)
		}
	}, nil
}

// Reloads the target's service and remounts it if its manifest changed.
//
// The reloaded service's declared config is injected again and the request
// timeout rebuilt from it, unless set on the command line. Declared values
// overlay the settings the server started with, so a value removed from the
// manifest keeps its previous setting. The listener, workers and TLS are
// fixed for the life of the server. A failed or incompatible reload keeps
// the current service serving. Nothing is reloaded once ctx is done.
func (l *Launcher) reload(ctx context.Context, t launch.Target, s *site) {
	if ctx.Err() != nil {
		return
	}

	svc, err := l.Loader.Load(ctx, t.BentoRef, l.SearchPath)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("reload failed", "bento", t.BentoRef, "error", err)
		return
	}

	current := s.current.Load().svc
	if svc.Digest == current.Digest {
		slog.Debug("service unchanged", "digest", svc.Digest.String())
		return
	}
	if svc.IsLegacy() {
		slog.Warn("reloaded service is legacy-style, keeping the running service", "service", svc.Tag())
		return
	}

	cfg := httpConfig(t.Server, svc.InjectConfig(targetSettings(t.Settings)))
	s.swap(mount{svc, l.engineHandler(svc, ""), cfg.Timeout})
	slog.Info("service reloaded", "service", svc.Tag(), "digest", svc.Digest.String(), "timeout", cfg.Timeout)
}
