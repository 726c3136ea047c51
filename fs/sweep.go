package fs

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Defaults for the cache sweeper.
const (
	DefaultSweepInterval = time.Hour
	DefaultMaxAge        = 7 * 24 * time.Hour
	DefaultMaxCacheSize  = 100 << 20 // 100MB of cached content on disk
)

// Sweeper periodically prunes the on-disk content cache: files older than
// the maximum age are deleted, and beyond the size budget the least
// recently accessed files go first. Sweep failures are logged, never
// fatal, and never block the next cycle.
//
// The constructor starts no background work; call Start and Stop
// explicitly so tests and multiple instances do not interfere.
type Sweeper struct {
	store    *Store
	interval time.Duration
	maxAge   time.Duration
	maxSize  int64
	logger   *slog.Logger

	mu   sync.Mutex
	done chan struct{}
	wg   sync.WaitGroup
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithSweepInterval sets the time between sweeps.
func WithSweepInterval(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithMaxAge sets the age past which cached content files are deleted.
func WithMaxAge(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if d > 0 {
			s.maxAge = d
		}
	}
}

// WithMaxCacheSize sets the aggregate on-disk cache size budget.
func WithMaxCacheSize(n int64) SweeperOption {
	return func(s *Sweeper) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

// WithSweepLogger sets the logger for sweep outcomes.
func WithSweepLogger(logger *slog.Logger) SweeperOption {
	return func(s *Sweeper) {
		s.logger = logger
	}
}

// NewSweeper creates a Sweeper for the store.
func NewSweeper(store *Store, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		store:    store,
		interval: DefaultSweepInterval,
		maxAge:   DefaultMaxAge,
		maxSize:  DefaultMaxCacheSize,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the background sweep loop. Calling Start on a running
// sweeper is a no-op.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}
	s.done = make(chan struct{})
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				removed, err := s.store.Sweep(s.maxAge, s.maxSize)
				if err != nil {
					s.logger.Error("cache sweep failed", "error", err)
					continue
				}
				if removed > 0 {
					s.logger.Info("cache sweep", "removed", removed)
				}
			}
		}
	}()
}

// Stop halts the sweep loop and waits for an in-flight sweep to finish.
// Calling Stop on a stopped sweeper is a no-op.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		return
	}
	close(s.done)
	s.wg.Wait()
	s.done = nil
}

type cacheFile struct {
	path     string
	name     string
	size     int64
	accessed time.Time
}

// Sweep prunes the on-disk content cache once. Files whose modification
// time is older than maxAge are removed; the remainder is kept newest
// access first until the size budget is spent, and the least recently
// accessed overflow is removed. Returns the number of files removed.
func (s *Store) Sweep(maxAge time.Duration, maxSize int64) (int, error) {
	dir := filepath.Join(s.baseDir, cacheDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	now := s.now()
	var removed int
	var files []cacheFile

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(dir, e.Name())
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))

		if now.Sub(info.ModTime()) > maxAge {
			if err := os.Remove(path); err != nil {
				s.logger.Warn("failed to remove expired cache file", "file", e.Name(), "error", err)
				continue
			}
			s.contents.Delete(stem)
			removed++
			continue
		}

		accessed := info.ModTime()
		s.accessMu.Lock()
		for name, at := range s.accessed {
			if SanitizeName(name) == stem && at.After(accessed) {
				accessed = at
			}
		}
		s.accessMu.Unlock()

		files = append(files, cacheFile{path: path, name: stem, size: info.Size(), accessed: accessed})
	}

	// Most recently accessed first; everything past the budget goes.
	sort.Slice(files, func(i, j int) bool { return files[i].accessed.After(files[j].accessed) })

	var used int64
	for _, f := range files {
		used += f.size
		if used <= maxSize {
			continue
		}
		if err := os.Remove(f.path); err != nil {
			s.logger.Warn("failed to remove cache file", "file", f.name, "error", err)
			continue
		}
		s.contents.Delete(f.name)
		removed++
	}

	return removed, nil
}
