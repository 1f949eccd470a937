package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"wardrobe/internal/backend"
	"wardrobe/internal/config"
	"wardrobe/internal/logging"
	"wardrobe/internal/services"
	"wardrobe/internal/wardrobe"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	log        *slog.Logger

	clientMu sync.Mutex
	api      *backend.Client
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) logger() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			logger = logging.NewNop()
		}
		c.log = logger
	})
	return c.log
}

// client returns the shared backend client, creating it on first use.
func (c *commandContext) client() (*backend.Client, error) {
	c.clientMu.Lock()
	defer c.clientMu.Unlock()
	if c.api != nil {
		return c.api, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	client, err := backend.NewClient(backend.ConfigFrom(cfg), backend.WithLogger(c.logger()))
	if err != nil {
		return nil, err
	}
	c.api = client
	return client, nil
}

func (c *commandContext) store() (*wardrobe.Store, *backend.Client, error) {
	client, err := c.client()
	if err != nil {
		return nil, nil, err
	}
	return wardrobe.NewStore(client, c.logger()), client, nil
}

func (c *commandContext) close() {
	c.clientMu.Lock()
	defer c.clientMu.Unlock()
	if c.api != nil {
		c.api.Close()
		c.api = nil
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func parseItemID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item id %q", arg)
	}
	return id, nil
}

// userMessage renders err for the terminal, preferring the server detail.
func userMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg := strings.TrimSpace(services.Details(err).Message); msg != "" {
		return msg
	}
	return err.Error()
}
