package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeBackend()
	c.normalizeCamera()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeBackend() {
	if value, ok := os.LookupEnv(envAPIBaseURL); ok && strings.TrimSpace(value) != "" {
		c.Backend.APIBaseURL = value
	}
	if value, ok := os.LookupEnv(envMediaBaseURL); ok && strings.TrimSpace(value) != "" {
		c.Backend.MediaBaseURL = value
	}
	c.Backend.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.APIBaseURL), "/")
	c.Backend.MediaBaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.MediaBaseURL), "/")
	if c.Backend.MediaBaseURL == "" {
		// The media host is the API host without its /api suffix.
		c.Backend.MediaBaseURL = strings.TrimSuffix(c.Backend.APIBaseURL, "/api")
	}
	if c.Backend.CitySearchLimit <= 0 {
		c.Backend.CitySearchLimit = defaultCitySearchLimit
	}
	c.Backend.DefaultLocationID = strings.TrimSpace(c.Backend.DefaultLocationID)
	c.Backend.DefaultLocationName = strings.TrimSpace(c.Backend.DefaultLocationName)
	if c.Backend.DefaultLocationID == "" {
		c.Backend.DefaultLocationID = defaultLocationID
		c.Backend.DefaultLocationName = defaultLocationName
	}
}

func (c *Config) normalizeCamera() {
	c.Camera.Device = strings.TrimSpace(c.Camera.Device)
	c.Camera.FFmpegBinary = strings.TrimSpace(c.Camera.FFmpegBinary)
	if c.Camera.FFmpegBinary == "" {
		c.Camera.FFmpegBinary = defaultFFmpegBinary
	}
	c.Camera.NativeCommand = strings.TrimSpace(c.Camera.NativeCommand)
	if c.Camera.JPEGQuality == 0 {
		c.Camera.JPEGQuality = defaultJPEGQuality
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Upload.LockPath) == "" {
		c.Upload.LockPath = defaultLockPath
	}
	if c.Upload.LockPath, err = expandPath(c.Upload.LockPath); err != nil {
		return fmt.Errorf("upload.lock_path: %w", err)
	}
	if strings.TrimSpace(c.Journal.Path) == "" {
		c.Journal.Path = defaultJournalPath
	}
	if c.Journal.Path, err = expandPath(c.Journal.Path); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
