package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected blank command status %#v", results[2])
	}
}

func TestCaptureRequirements(t *testing.T) {
	reqs := CaptureRequirements("ffmpeg", "")
	if len(reqs) != 1 || reqs[0].Optional {
		t.Fatalf("ffmpeg should be required without a native command: %#v", reqs)
	}

	reqs = CaptureRequirements("ffmpeg", "termux-camera-photo -c 0 {out}")
	if len(reqs) != 2 {
		t.Fatalf("expected two requirements, got %#v", reqs)
	}
	if !reqs[0].Optional {
		t.Fatal("ffmpeg should be optional when a native command is configured")
	}
	if reqs[1].Command != "termux-camera-photo" {
		t.Fatalf("unexpected native command %q", reqs[1].Command)
	}
}
