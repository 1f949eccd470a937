package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBackend(); err != nil {
		return err
	}
	if err := c.validateCamera(); err != nil {
		return err
	}
	if err := c.validateTiming(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateBackend() error {
	if err := validateBaseURL("backend.api_base_url", c.Backend.APIBaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("backend.media_base_url", c.Backend.MediaBaseURL); err != nil {
		return err
	}
	if c.Backend.TimeoutSeconds <= 0 {
		return errors.New("backend.timeout_seconds must be positive")
	}
	return nil
}

func validateBaseURL(field, value string) error {
	if value == "" {
		return fmt.Errorf("%s must be set", field)
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", field, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", field, value)
	}
	return nil
}

func (c *Config) validateCamera() error {
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return errors.New("camera.width and camera.height must be positive")
	}
	if c.Camera.JPEGQuality < 1 || c.Camera.JPEGQuality > 100 {
		return errors.New("camera.jpeg_quality must be between 1 and 100")
	}
	if c.Camera.NativeCommand != "" && !strings.Contains(c.Camera.NativeCommand, nativeCommandOutputPattern) {
		return fmt.Errorf("camera.native_command must contain the %s placeholder", nativeCommandOutputPattern)
	}
	return nil
}

func (c *Config) validateTiming() error {
	if c.Upload.SuccessHoldMS < 0 {
		return errors.New("upload.success_hold_ms must be zero or positive")
	}
	if c.Stream.CadenceMS <= 0 {
		return errors.New("stream.cadence_ms must be positive")
	}
	if c.Cache.CityTTLSeconds < 0 {
		return errors.New("cache.city_ttl_seconds must be zero or positive")
	}
	if c.Cache.MaxCost <= 0 {
		return errors.New("cache.max_cost must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	return nil
}
