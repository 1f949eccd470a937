package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"wardrobe/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("WARDROBE_API_URL", "")
	t.Setenv("WARDROBE_MEDIA_URL", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(tempHome, ".config", "wardrobe", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.Upload.LockPath != filepath.Join(tempHome, ".local", "state", "wardrobe", "upload.lock") {
		t.Fatalf("unexpected lock path %q", cfg.Upload.LockPath)
	}
	if cfg.Journal.Path != filepath.Join(tempHome, ".local", "share", "wardrobe", "journal.db") {
		t.Fatalf("unexpected journal path %q", cfg.Journal.Path)
	}
	if cfg.Backend.APIBaseURL != "http://localhost:8000/api" {
		t.Fatalf("unexpected api base %q", cfg.Backend.APIBaseURL)
	}
	if cfg.Backend.DefaultLocationID != "101020100" || cfg.Backend.DefaultLocationName != "上海" {
		t.Fatalf("unexpected default location %+v", cfg.Backend)
	}
	if cfg.SuccessHold() != 500*time.Millisecond {
		t.Fatalf("unexpected success hold %v", cfg.SuccessHold())
	}
	if cfg.StreamCadence() != 30*time.Millisecond {
		t.Fatalf("unexpected cadence %v", cfg.StreamCadence())
	}
	if cfg.Backend.CitySearchLimit != 10 {
		t.Fatalf("unexpected city limit %d", cfg.Backend.CitySearchLimit)
	}
}

func TestLoadHonoursEnvironmentOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("WARDROBE_API_URL", "https://closet.example.com/api/")
	t.Setenv("WARDROBE_MEDIA_URL", "")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Backend.APIBaseURL != "https://closet.example.com/api" {
		t.Fatalf("expected env api url without trailing slash, got %q", cfg.Backend.APIBaseURL)
	}
	if cfg.Backend.MediaBaseURL != "http://localhost:8000" {
		t.Fatalf("media url should keep its default, got %q", cfg.Backend.MediaBaseURL)
	}
}

func TestLoadCustomFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("WARDROBE_API_URL", "")
	t.Setenv("WARDROBE_MEDIA_URL", "")
	path := filepath.Join(t.TempDir(), "wardrobe.toml")

	cfg := config.Default()
	cfg.Backend.APIBaseURL = "http://10.0.0.5:8000/api"
	cfg.Backend.MediaBaseURL = ""
	cfg.Camera.NativeCommand = "termux-camera-photo {out}"
	cfg.Logging.Format = "JSON"
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected custom file to be used, got %q exists=%v", resolved, exists)
	}
	if loaded.Backend.MediaBaseURL != "http://10.0.0.5:8000" {
		t.Fatalf("expected media url derived from api url, got %q", loaded.Backend.MediaBaseURL)
	}
	if loaded.Logging.Format != "json" {
		t.Fatalf("expected normalized log format, got %q", loaded.Logging.Format)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[backend]\napi_url = \"http://x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error for unknown key, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"defaults", func(*config.Config) {}, ""},
		{"bad scheme", func(c *config.Config) { c.Backend.APIBaseURL = "ftp://host/api" }, "http or https"},
		{"missing host", func(c *config.Config) { c.Backend.MediaBaseURL = "http://" }, "host"},
		{"zero timeout", func(c *config.Config) { c.Backend.TimeoutSeconds = 0 }, "timeout_seconds"},
		{"quality range", func(c *config.Config) { c.Camera.JPEGQuality = 101 }, "jpeg_quality"},
		{"native placeholder", func(c *config.Config) { c.Camera.NativeCommand = "snap" }, "{out}"},
		{"cadence", func(c *config.Config) { c.Stream.CadenceMS = 0 }, "cadence_ms"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("WARDROBE_API_URL", "")
	t.Setenv("WARDROBE_MEDIA_URL", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Camera.Device != "/dev/video0" {
		t.Fatalf("unexpected camera device %q", cfg.Camera.Device)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Upload.LockPath = filepath.Join(base, "state", "upload.lock")
	cfg.Journal.Path = filepath.Join(base, "share", "journal.db")
	cfg.Logging.Dir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{"state", "share", "logs"} {
		if info, err := os.Stat(filepath.Join(base, dir)); err != nil || !info.IsDir() {
			t.Fatalf("expected %s directory, err=%v", dir, err)
		}
	}
}

func TestExpandPathTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := config.ExpandPath("~/closet")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if got != filepath.Join(home, "closet") {
		t.Fatalf("unexpected expansion %q", got)
	}
}
