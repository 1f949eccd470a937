package media

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"wardrobe/internal/services"
)

func TestCommandIntentReadsProducedPhoto(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	script := filepath.Join(t.TempDir(), "snap.sh")
	body := "#!/bin/sh\nprintf '\\377\\330\\377\\340' > \"$1\"\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	intent := CommandIntent{Command: script + " {out}", TempDir: t.TempDir()}
	file, err := intent.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture returned error: %v", err)
	}
	if file.Name != CaptureFileName || file.ContentType != "image/jpeg" {
		t.Fatalf("unexpected file %+v", file)
	}
	if len(file.Data) != 4 {
		t.Fatalf("unexpected data length %d", len(file.Data))
	}
}

func TestCommandIntentFailures(t *testing.T) {
	if _, err := (CommandIntent{}).Capture(context.Background()); !errors.Is(err, services.ErrDeviceUnavailable) {
		t.Fatalf("expected device unavailable for empty command, got %v", err)
	}
	if _, err := exec.LookPath("false"); err == nil {
		intent := CommandIntent{Command: "false {out}", TempDir: t.TempDir()}
		if _, err := intent.Capture(context.Background()); !errors.Is(err, services.ErrDeviceUnavailable) {
			t.Fatalf("expected device unavailable for failing command, got %v", err)
		}
	}
	if _, err := exec.LookPath("true"); err == nil {
		intent := CommandIntent{Command: "true {out}", TempDir: t.TempDir()}
		if _, err := intent.Capture(context.Background()); !errors.Is(err, services.ErrDeviceUnavailable) {
			t.Fatalf("expected device unavailable when no photo is written, got %v", err)
		}
	}
}
