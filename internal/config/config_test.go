package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		if k, _, _ := strings.Cut(kv, "="); strings.HasPrefix(k, "EVESHOW_") {
			t.Setenv(k, "")
		}
	}
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Listen != "127.0.0.1:8080" || cfg.Cache.Backend != CacheFile {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadExplicitMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("explicit missing config should fail")
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[content]
source = "catalog.yaml"
watch = true

[server]
listen = ":9000"
theme = "light"
rate_limit = 2.5

[cache]
backend = "Memory"
ttl = "1h30m"
max_entries = 64
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Content.Source != "catalog.yaml" || !cfg.Content.Watch {
		t.Errorf("Content = %+v", cfg.Content)
	}
	if cfg.Server.Listen != ":9000" || cfg.Server.RateLimit != 2.5 || cfg.Server.Theme != "light" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Server.RateBurst != 20 {
		t.Errorf("RateBurst = %d, want default 20", cfg.Server.RateBurst)
	}
	if cfg.Cache.Backend != CacheMemory || cfg.Cache.TTL != 90*time.Minute || cfg.Cache.MaxEntries != 64 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[server]\nlisen = \":1\"\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "lisen") {
		t.Errorf("err = %v, want unknown key error", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"EVESHOW_CONTENT":    "https://example.com/c.yaml",
		"EVESHOW_LISTEN":     ":7000",
		"EVESHOW_CACHE":      "redis",
		"EVESHOW_REDIS_URL":  "redis://localhost:6379/0",
		"EVESHOW_CACHE_TTL":  "2h",
		"EVESHOW_RATE_LIMIT": "0",
	}
	cfg := Default()
	err := cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Content.Source != env["EVESHOW_CONTENT"] || cfg.Server.Listen != ":7000" {
		t.Errorf("string overrides not applied: %+v", cfg)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.TTL != 2*time.Hour || cfg.Server.RateLimit != 0 {
		t.Errorf("typed overrides not applied: %+v", cfg)
	}
}

func TestApplyEnvBadValues(t *testing.T) {
	for _, key := range []string{"EVESHOW_WATCH", "EVESHOW_RATE_LIMIT", "EVESHOW_CACHE_TTL"} {
		t.Run(key, func(t *testing.T) {
			cfg := Default()
			err := cfg.ApplyEnv(func(k string) (string, bool) {
				if k == key {
					return "bogus", true
				}
				return "", false
			})
			if err == nil || !strings.Contains(err.Error(), key) {
				t.Errorf("err = %v, want error naming %s", err, key)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "s3" }, "unknown cache.backend"},
		{"redis without url", func(c *Config) { c.Cache.Backend = "redis" }, "redis_url"},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second }, "cache.ttl"},
		{"negative rate", func(c *Config) { c.Server.RateLimit = -1 }, "rate_limit"},
		{"bad theme", func(c *Config) { c.Server.Theme = "sepia" }, "server.theme"},
		{"watch url", func(c *Config) {
			c.Content.Source = "https://example.com/c.yaml"
			c.Content.Watch = true
		}, "content.watch"},
		{"watch embedded", func(c *Config) { c.Content.Watch = true }, "content.watch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFixesBurst(t *testing.T) {
	cfg := Default()
	cfg.Server.RateBurst = 0
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Server.RateBurst != 1 {
		t.Errorf("RateBurst = %d, want 1", cfg.Server.RateBurst)
	}
}

func TestCacheDir(t *testing.T) {
	cfg := Default()
	cfg.Cache.Dir = "/tmp/x"
	if dir, _ := cfg.CacheDir(); dir != "/tmp/x" {
		t.Errorf("CacheDir() = %s, want explicit dir", dir)
	}

	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	cfg.Cache.Dir = ""
	if dir, _ := cfg.CacheDir(); dir != filepath.Join(xdg, "eveshow") {
		t.Errorf("CacheDir() = %s, want XDG path", dir)
	}
}

func TestExampleConfig(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join("..", "..", "examples", "config.toml"))
	if err != nil {
		t.Fatalf("Load example: %v", err)
	}
	if cfg.Content.Source != "examples/catalog.yaml" || !cfg.Content.Watch {
		t.Errorf("Content = %+v", cfg.Content)
	}
	if cfg.Server.Theme != "dark" || cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Cache.TTL != 7*24*time.Hour {
		t.Errorf("Cache.TTL = %s", cfg.Cache.TTL)
	}
}
