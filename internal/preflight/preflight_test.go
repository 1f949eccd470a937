package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wardrobe/internal/config"
	"wardrobe/internal/services"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckBackend(t *testing.T) {
	ok := CheckBackend(context.Background(), "http://localhost:8000/api", stubPinger{})
	if !ok.Passed {
		t.Fatalf("expected pass, got %s", ok.Detail)
	}

	down := CheckBackend(context.Background(), "http://localhost:8000/api",
		stubPinger{err: services.Wrap(services.ErrTransport, "backend", "ping", "request failed", errors.New("refused"))})
	if down.Passed || !strings.Contains(down.Detail, "unreachable") {
		t.Fatalf("expected unreachable failure, got %+v", down)
	}

	rejected := CheckBackend(context.Background(), "http://localhost:8000/api",
		stubPinger{err: services.Wrap(services.ErrRemoteRejection, "backend", "ping", "Internal Server Error", nil)})
	if rejected.Passed || !strings.Contains(rejected.Detail, "Internal Server Error") {
		t.Fatalf("expected rejection detail, got %+v", rejected)
	}
}

func TestCheckCameraNativeCommand(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "snap")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Camera.NativeCommand = bin + " {out}"
	if result := CheckCamera(&cfg); !result.Passed {
		t.Fatalf("expected native command to pass, got %s", result.Detail)
	}

	cfg.Camera.NativeCommand = "clearly-not-present-camera {out}"
	if result := CheckCamera(&cfg); result.Passed {
		t.Fatal("expected missing native command to fail")
	}
}

func TestCheckCameraMissingDeviceIsOptional(t *testing.T) {
	cfg := config.Default()
	cfg.Camera.Device = filepath.Join(t.TempDir(), "video9")
	result := CheckCamera(&cfg)
	if result.Passed || !result.Optional {
		t.Fatalf("expected optional failure, got %+v", result)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Upload.LockPath = filepath.Join(base, "upload.lock")
	cfg.Journal.Path = filepath.Join(base, "journal.db")
	cfg.Camera.Device = filepath.Join(base, "video0")

	results := RunAll(context.Background(), &cfg, stubPinger{})
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if !Healthy(results) {
		t.Fatalf("expected healthy results, got %+v", results)
	}

	cfg.Journal.Enabled = false
	results = RunAll(context.Background(), &cfg, nil)
	if len(results) != 2 {
		t.Fatalf("expected state dir and camera only, got %+v", results)
	}
}
