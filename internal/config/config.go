package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Backend describes how to reach the wardrobe REST collaborator.
type Backend struct {
	APIBaseURL          string `toml:"api_base_url"`
	MediaBaseURL        string `toml:"media_base_url"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
	CitySearchLimit     int    `toml:"city_search_limit"`
	DefaultLocationID   string `toml:"default_location_id"`
	DefaultLocationName string `toml:"default_location_name"`
}

// Camera configures still capture. NativeCommand, when set, takes precedence
// over the live device and must write a JPEG to the path substituted for {out}.
type Camera struct {
	Device        string `toml:"device"`
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	Width         int    `toml:"width"`
	Height        int    `toml:"height"`
	NativeCommand string `toml:"native_command"`
	JPEGQuality   int    `toml:"jpeg_quality"`
}

type Upload struct {
	SuccessHoldMS int    `toml:"success_hold_ms"`
	LockPath      string `toml:"lock_path"`
}

type Stream struct {
	CadenceMS int `toml:"cadence_ms"`
}

// Cache bounds the in-memory city search cache.
type Cache struct {
	CityTTLSeconds int   `toml:"city_ttl_seconds"`
	MaxCost        int64 `toml:"max_cost"`
}

// Journal controls the local upload history database.
type Journal struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for the wardrobe client.
type Config struct {
	Backend Backend `toml:"backend"`
	Camera  Camera  `toml:"camera"`
	Upload  Upload  `toml:"upload"`
	Stream  Stream  `toml:"stream"`
	Cache   Cache   `toml:"cache"`
	Journal Journal `toml:"journal"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories local state is written to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{filepath.Dir(c.Upload.LockPath)}
	if c.Journal.Enabled {
		dirs = append(dirs, filepath.Dir(c.Journal.Path))
	}
	if c.Logging.Dir != "" {
		dirs = append(dirs, c.Logging.Dir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RequestTimeout returns the per-request backend timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// SuccessHold returns how long a completed upload stays visible before clearing.
func (c *Config) SuccessHold() time.Duration {
	return time.Duration(c.Upload.SuccessHoldMS) * time.Millisecond
}

// StreamCadence returns the per-character reveal interval.
func (c *Config) StreamCadence() time.Duration {
	return time.Duration(c.Stream.CadenceMS) * time.Millisecond
}

// CityTTL returns how long city search results stay cached.
func (c *Config) CityTTL() time.Duration {
	return time.Duration(c.Cache.CityTTLSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
