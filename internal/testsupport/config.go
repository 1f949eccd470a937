package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"wardrobe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose local state lives under a per-test temp
// directory. Stream cadence and success hold are shortened for tests.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Upload.LockPath = filepath.Join(base, "state", "upload.lock")
	cfgVal.Upload.SuccessHoldMS = 1
	cfgVal.Stream.CadenceMS = 1
	cfgVal.Journal.Path = filepath.Join(base, "data", "journal.db")
	cfgVal.Logging.Dir = filepath.Join(base, "logs")
	cfgVal.Backend.TimeoutSeconds = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithBackend points the config at a fake backend.
func WithBackend(b *Backend) ConfigOption {
	return func(cb *configBuilder) {
		cb.cfg.Backend.APIBaseURL = b.APIURL()
		cb.cfg.Backend.MediaBaseURL = b.URL
	}
}

// WithJournal toggles the upload journal.
func WithJournal(enabled bool) ConfigOption {
	return func(cb *configBuilder) {
		cb.cfg.Journal.Enabled = enabled
	}
}

// WithNativeCamera writes a script that copies a JPEG fixture to its first
// argument and configures it as the native capture command.
func WithNativeCamera() ConfigOption {
	return func(cb *configBuilder) {
		binDir := filepath.Join(cb.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			cb.t.Fatalf("mkdir bin dir: %v", err)
		}
		fixture := WriteJPEG(cb.t, filepath.Join(cb.baseDir, "fixtures", "native.jpg"), 8, 8)
		script := filepath.Join(binDir, "snap")
		body := "#!/bin/sh\ncp \"" + fixture + "\" \"$1\"\n"
		if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
			cb.t.Fatalf("write native camera stub: %v", err)
		}
		cb.cfg.Camera.NativeCommand = script + " {out}"
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.Upload.LockPath))
}
