package theme

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// Store persists the theme preference.
type Store interface {
	// Load returns the stored theme. ok is false when nothing valid is stored.
	Load(ctx context.Context) (t Theme, ok bool, err error)
	// Save persists t.
	Save(ctx context.Context, t Theme) error
}

// Preference is the process-wide theme preference. It is created once with
// [Init] and every change is written through to its Store before the new
// value becomes visible.
//
// Preference is safe for concurrent use.
type Preference struct {
	mu      sync.RWMutex
	store   Store
	current Theme
}

// Init resolves the initial theme: the stored preference wins, then def,
// then [Default]. A nil store keeps the preference in memory only.
func Init(ctx context.Context, store Store, def Theme) (*Preference, error) {
	if store == nil {
		store = NewMemoryStore()
	}
	t, ok, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load theme preference: %w", err)
	}
	if !ok {
		t = def
		if !t.Valid() {
			t = Default
		}
	}
	return &Preference{store: store, current: t}, nil
}

// Current returns the active theme.
func (p *Preference) Current() Theme {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Set validates t, persists it and makes it current. On a store failure the
// current theme is left unchanged.
func (p *Preference) Set(ctx context.Context, t Theme) error {
	if !t.Valid() {
		_, err := Parse(string(t))
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.store.Save(ctx, t); err != nil {
		return fmt.Errorf("save theme preference: %w", err)
	}
	p.current = t
	return nil
}

// Toggle flips between light and dark and returns the new theme.
func (p *Preference) Toggle(ctx context.Context) (Theme, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	next := p.current.Toggle()
	if err := p.store.Save(ctx, next); err != nil {
		return p.current, fmt.Errorf("save theme preference: %w", err)
	}
	p.current = next
	return next, nil
}

// =============================================================================
// FileStore
// =============================================================================

// preferenceFile is the on-disk TOML layout.
type preferenceFile struct {
	Theme string `toml:"theme"`
}

// FileStore keeps the preference in a small TOML file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by path. If path is empty it defaults
// to $XDG_CONFIG_HOME/eveshow/preferences.toml (~/.config/eveshow/...).
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		dir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "preferences.toml")
	}
	return &FileStore{path: path}, nil
}

// Path returns the preference file location.
func (s *FileStore) Path() string { return s.path }

// Load reads the stored theme. A missing file or an unknown theme value is
// reported as ok == false.
func (s *FileStore) Load(ctx context.Context) (Theme, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pf preferenceFile
	if _, err := toml.DecodeFile(s.path, &pf); err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("decode %s: %w", s.path, err)
	}
	t, err := Parse(pf.Theme)
	if err != nil {
		return "", false, nil
	}
	return t, true, nil
}

// Save writes t, replacing the file atomically.
func (s *FileStore) Save(ctx context.Context, t Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create preference dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".preferences-*.toml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(preferenceFile{Theme: t.String()}); err != nil {
		tmp.Close()
		return fmt.Errorf("encode preference: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

var _ Store = (*FileStore)(nil)

// =============================================================================
// MemoryStore
// =============================================================================

// MemoryStore keeps the preference in memory. It is used by tests and when
// no writable config directory exists.
type MemoryStore struct {
	mu    sync.Mutex
	theme Theme
	saves int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the stored theme, if any.
func (s *MemoryStore) Load(ctx context.Context) (Theme, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme, s.theme.Valid(), nil
}

// Save stores t.
func (s *MemoryStore) Save(ctx context.Context, t Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = t
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

var _ Store = (*MemoryStore)(nil)

// ConfigDir returns the eveshow config directory using the XDG standard
// (~/.config/eveshow/).
func ConfigDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "eveshow"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "eveshow"), nil
}
