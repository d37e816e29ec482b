package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := load(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.OutputFormat != "{{.Artist}} - {{.Name}}" {
		t.Errorf("unexpected output format %q", cfg.OutputFormat)
	}
	if cfg.RateLimit != 200*time.Millisecond {
		t.Errorf("expected 200ms rate limit, got %s", cfg.RateLimit)
	}
	if !cfg.Cache.Enabled {
		t.Error("expected cache to be enabled by default")
	}
	if cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("expected 24h cache ttl, got %s", cfg.Cache.TTL)
	}
	if filepath.Base(cfg.Cache.Path) != "responses.db" {
		t.Errorf("unexpected cache path %q", cfg.Cache.Path)
	}
	if filepath.Base(cfg.Queue.Path) != "queue.db" {
		t.Errorf("unexpected queue path %q", cfg.Queue.Path)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := `
output_width: 40
rate_limit: 1s
lastfm:
  api_key: file-key
  username: alice
cache:
  enabled: false
  ttl: 2h
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("LASTKIT_LASTFM_API_KEY", "env-key")

	cfg, err := load(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"env overrides file", cfg.LastFM.APIKey, "env-key"},
		{"username", cfg.LastFM.Username, "alice"},
		{"output width", cfg.OutputWidth, 40},
		{"rate limit", cfg.RateLimit, time.Second},
		{"cache enabled", cfg.Cache.Enabled, false},
		{"cache ttl", cfg.Cache.TTL, 2 * time.Hour},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(t.TempDir())

	cfg := &Config{
		OutputFormat: "{{.Name}}",
		RateLimit:    500 * time.Millisecond,
		LogLevel:     "debug",
		LastFM: LastFMConfig{
			APIKey:     "key",
			APISecret:  "secret",
			SessionKey: "session",
			Username:   "bob",
		},
		Cache: CacheConfig{Enabled: true, Path: "/tmp/x.db", TTL: time.Hour},
		Queue: QueueConfig{Path: "/tmp/q.db"},
	}
	if err := cfg.saveTo(dir); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := load(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", *loaded, *cfg)
	}
}
