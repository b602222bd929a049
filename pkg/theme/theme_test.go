package theme

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/incept5/eve-showcase/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Theme
		wantErr bool
	}{
		{"light", Light, false},
		{"dark", Dark, false},
		{"DARK", Dark, false},
		{"  Light ", Light, false},
		{"", "", true},
		{"solarized", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidTheme) {
				t.Errorf("Parse(%q) error code = %v, want %v", tt.input, errors.GetCode(err), errors.ErrCodeInvalidTheme)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToggle(t *testing.T) {
	if Light.Toggle() != Dark {
		t.Error("Light.Toggle() should be Dark")
	}
	if Dark.Toggle() != Light {
		t.Error("Dark.Toggle() should be Light")
	}
	if Theme("bogus").Toggle() != Light {
		t.Error("invalid theme should toggle to Light")
	}
}

func TestPaletteForIsDeterministic(t *testing.T) {
	for _, th := range All {
		first := PaletteFor(th)
		for i := 0; i < 10; i++ {
			if PaletteFor(th) != first {
				t.Fatalf("PaletteFor(%s) changed between calls", th)
			}
		}
		for _, c := range first.Colors() {
			if len(c) != 7 || c[0] != '#' {
				t.Errorf("PaletteFor(%s) has malformed color %q", th, c)
			}
		}
	}
}

func TestPalettesAreDisjoint(t *testing.T) {
	light := map[string]bool{}
	for _, c := range PaletteFor(Light).Colors() {
		light[c] = true
	}
	for _, c := range PaletteFor(Dark).Colors() {
		if light[c] {
			t.Errorf("color %s appears in both palettes", c)
		}
	}
}

func TestPaletteForReturnsCopy(t *testing.T) {
	p := PaletteFor(Dark)
	p.Background = "#000000"
	if PaletteFor(Dark).Background != "#0d1117" {
		t.Error("mutating a returned palette must not affect later calls")
	}
}

func TestInitPrefersStoredValue(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Save(ctx, Light)

	pref, err := Init(ctx, store, Dark)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if pref.Current() != Light {
		t.Errorf("Current() = %s, want stored %s", pref.Current(), Light)
	}
}

func TestInitFallbacks(t *testing.T) {
	ctx := context.Background()

	pref, err := Init(ctx, NewMemoryStore(), Light)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if pref.Current() != Light {
		t.Errorf("Current() = %s, want default argument %s", pref.Current(), Light)
	}

	pref, err = Init(ctx, nil, "")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if pref.Current() != Default {
		t.Errorf("Current() = %s, want package default %s", pref.Current(), Default)
	}
}

func TestPreferenceWritesThrough(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	pref, _ := Init(ctx, store, Dark)

	next, err := pref.Toggle(ctx)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if next != Light || pref.Current() != Light {
		t.Errorf("after toggle: got %s/%s, want light", next, pref.Current())
	}
	if stored, _, _ := store.Load(ctx); stored != Light {
		t.Errorf("store has %s, want %s", stored, Light)
	}

	if err := pref.Set(ctx, Dark); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if store.Saves() != 2 {
		t.Errorf("Saves() = %d, want 2", store.Saves())
	}

	if err := pref.Set(ctx, Theme("neon")); err == nil {
		t.Error("Set with invalid theme should fail")
	}
	if pref.Current() != Dark {
		t.Errorf("invalid Set changed current theme to %s", pref.Current())
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "preferences.toml")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("Load on missing file = ok %v, err %v; want miss", ok, err)
	}

	if err := store.Save(ctx, Light); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok, err := store.Load(ctx)
	if err != nil || !ok || got != Light {
		t.Fatalf("Load = %s, %v, %v; want light", got, ok, err)
	}

	// A second process sees the same value.
	pref, err := Init(ctx, store, Dark)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if pref.Current() != Light {
		t.Errorf("Current() = %s, want %s", pref.Current(), Light)
	}
}

func TestFileStoreIgnoresUnknownTheme(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "preferences.toml")
	if err := os.WriteFile(path, []byte("theme = \"sepia\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	store, _ := NewFileStore(path)
	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Errorf("Load = ok %v, err %v; want miss without error", ok, err)
	}
}

func TestConfigDirHonorsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir: %v", err)
	}
	if want := filepath.Join(dir, "eveshow"); got != want {
		t.Errorf("ConfigDir() = %s, want %s", got, want)
	}
}
