package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"sysctlr/internal/logging"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher re-applies manifest requests when their target files change.
type Watcher struct {
	reconciler *Reconciler
	requests   []Request
	debounce   time.Duration
	logger     *slog.Logger

	// applied is signalled after every pass; tests use it to synchronise.
	applied chan []Result
}

// NewWatcher constructs a Watcher over requests.
func NewWatcher(rec *Reconciler, requests []Request, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{
		reconciler: rec,
		requests:   append([]Request(nil), requests...),
		debounce:   debounce,
		logger:     logging.NewComponentLogger(logger, "watch"),
	}
}

// Run applies every request once, then watches the target directories and
// re-applies the requests of each file that changed. It returns when ctx is
// cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if len(w.requests) == 0 {
		return errors.New("no entries to watch")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fsw.Close()

	byFile := w.requestsByFile()
	for _, dir := range targetDirs(byFile) {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.logger.Debug("watching directory", logging.String("dir", dir))
	}

	w.applyPass(ctx, w.requests)
	w.logger.Info("watching sysctl files",
		logging.Int("files", len(byFile)),
		logging.Duration("debounce", w.debounce),
	)

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			file := filepath.Clean(event.Name)
			if _, watched := byFile[file]; !watched || !relevant(event) {
				continue
			}
			pending[file] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(w.logger, "file watcher error", "watch_error",
				"Events may have been missed; the next change triggers a full pass",
				logging.Error(err),
			)

		case <-timer.C:
			var reqs []Request
			for _, file := range sortedKeys(pending) {
				reqs = append(reqs, byFile[file]...)
			}
			clear(pending)
			w.applyPass(ctx, reqs)
		}
	}
}

func (w *Watcher) applyPass(ctx context.Context, reqs []Request) {
	results, err := w.reconciler.ApplyAll(ctx, reqs)
	changed := 0
	for _, res := range results {
		if res.Committed {
			changed++
		}
	}
	if err != nil {
		w.logger.Error("reconciliation pass failed", logging.Int("entries", len(reqs)), logging.Error(err))
	} else {
		w.logger.Info("reconciliation pass complete", logging.Int("entries", len(reqs)), logging.Int("changed", changed))
	}
	if w.applied != nil {
		select {
		case w.applied <- results:
		case <-ctx.Done():
		}
	}
}

func (w *Watcher) requestsByFile() map[string][]Request {
	byFile := make(map[string][]Request)
	for _, req := range w.requests {
		file := filepath.Clean(req.File)
		byFile[file] = append(byFile[file], req)
	}
	return byFile
}

func targetDirs(byFile map[string][]Request) []string {
	seen := make(map[string]struct{})
	for file := range byFile {
		seen[filepath.Dir(file)] = struct{}{}
	}
	return sortedKeys(seen)
}

func relevant(event fsnotify.Event) bool {
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
