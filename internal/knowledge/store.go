package knowledge

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/campuscare/campuscare/internal/log"
)

// Store serves knowledge base entries with a change-aware cache.
//
// Entries are parsed once and held immutably until the backing file changes,
// at which point the cache is invalidated and the next request re-reads the
// file. If the file system watcher cannot be started the Store degrades to
// reading the file on every request, which preserves correctness at the cost
// of a read per call.
//
// Failure mode: a missing or malformed file surfaces on the request path,
// not at startup, so an operator can fix the file without restarting the
// process.
type Store struct {
	path   string
	logger log.Logger

	mu      sync.RWMutex
	entries []Entry
	cached  bool

	watcher   *fsnotify.Watcher
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewStore creates a Store for the knowledge base file at path and starts a
// watcher for cache invalidation. The file itself is not read until the
// first Entries call.
func NewStore(path string, logger log.Logger) *Store {
	s := &Store{
		path:   path,
		logger: logger,
		done:   make(chan struct{}),
	}

	// Watch the directory, not the file: editors and atomic writers replace
	// the file by rename, which would drop a watch on the file itself.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("knowledge base watcher unavailable, reading file per request", "error", err)
		return s
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		logger.Warn("cannot watch knowledge base directory, reading file per request",
			"dir", filepath.Dir(path), "error", err)
		_ = watcher.Close()
		return s
	}

	s.watcher = watcher
	s.wg.Add(1)
	go s.watch()

	return s
}

// Path returns the knowledge base file path.
func (s *Store) Path() string {
	return s.path
}

// Entries returns the current knowledge base entries.
// Safe for concurrent use; the returned slice must not be modified.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.watcher != nil {
		s.mu.RLock()
		if s.cached {
			entries := s.entries
			s.mu.RUnlock()
			return entries, nil
		}
		s.mu.RUnlock()
	}

	entries, err := Load(s.path)
	if err != nil {
		return nil, err
	}

	if s.watcher != nil {
		s.mu.Lock()
		s.entries = entries
		s.cached = true
		s.mu.Unlock()
	}

	return entries, nil
}

// Invalidate drops the cached entries so the next Entries call re-reads the
// file. Exposed for explicit reload triggers; the watcher calls it on file
// change events.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.entries = nil
	s.cached = false
	s.mu.Unlock()
}

// Close stops the file watcher. Safe to call more than once and when the
// watcher never started.
func (s *Store) Close() error {
	if s.watcher == nil {
		return nil
	}
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.watcher.Close()
		s.wg.Wait()
	})
	return err
}

// watch invalidates the cache when the knowledge base file is created,
// written, renamed, or removed.
func (s *Store) watch() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			s.logger.Debug("knowledge base changed, invalidating cache", "op", event.Op.String())
			s.Invalidate()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("knowledge base watcher error", "error", err)
		}
	}
}
