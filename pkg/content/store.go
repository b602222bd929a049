package content

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for a burst of writes to settle.
const DefaultDebounce = 250 * time.Millisecond

// Store holds the catalog currently being served. Readers never block and
// always see a complete catalog.
type Store struct {
	current  atomic.Pointer[Catalog]
	logger   *log.Logger
	debounce time.Duration
	onReload func(*Catalog)
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the logger used for reload messages.
func WithStoreLogger(l *log.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) StoreOption {
	return func(s *Store) { s.debounce = d }
}

// OnReload registers fn to run after every successful reload.
func OnReload(fn func(*Catalog)) StoreOption {
	return func(s *Store) { s.onReload = fn }
}

// NewStore creates a store serving c.
func NewStore(c *Catalog, opts ...StoreOption) *Store {
	s := &Store{logger: log.Default(), debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(c)
	return s
}

// Catalog returns the current catalog.
func (s *Store) Catalog() *Catalog {
	return s.current.Load()
}

// Swap replaces the current catalog.
func (s *Store) Swap(c *Catalog) {
	s.current.Store(c)
	if s.onReload != nil {
		s.onReload(c)
	}
}

// Watch reloads the catalog whenever the file at path changes, until ctx is
// done. An invalid file is logged and the previous catalog stays current.
//
// The parent directory is watched rather than the file so editors that
// replace the file by renaming are followed.
func (s *Store) Watch(ctx context.Context, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	s.logger.Info("watching catalog", "path", abs)

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			pending = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("catalog watcher error", "err", err)

		case <-pending:
			pending = nil
			s.reload(abs)
		}
	}
}

func (s *Store) reload(path string) {
	c, err := LoadFile(path)
	if err != nil {
		s.logger.Error("catalog reload failed, keeping previous catalog", "path", path, "err", err)
		return
	}
	s.Swap(c)
	s.logger.Info("catalog reloaded", "path", path, "capabilities", c.Len())
}
