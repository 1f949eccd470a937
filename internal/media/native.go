package media

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"wardrobe/internal/services"
)

// OutputPlaceholder is replaced with the output path in native commands.
const OutputPlaceholder = "{out}"

// CommandIntent runs an external capture program (for example
// termux-camera-photo) that writes a photo to a path it is given.
type CommandIntent struct {
	Command string
	// TempDir defaults to os.TempDir.
	TempDir string
}

// Capture runs the command and reads back the photo it produced.
func (c CommandIntent) Capture(ctx context.Context) (File, error) {
	fields := strings.Fields(c.Command)
	if len(fields) == 0 {
		return File{}, services.Wrap(services.ErrDeviceUnavailable, "camera", "native", "no native capture command configured", nil)
	}

	dir, err := os.MkdirTemp(c.TempDir, "wardrobe-capture-")
	if err != nil {
		return File{}, services.Wrap(services.ErrDeviceUnavailable, "camera", "native", "create temp dir", err)
	}
	defer os.RemoveAll(dir)

	out := filepath.Join(dir, CaptureFileName)
	for i, field := range fields {
		fields[i] = strings.ReplaceAll(field, OutputPlaceholder, out)
	}

	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	if output, err := cmd.CombinedOutput(); err != nil {
		msg := strings.TrimSpace(string(output))
		if msg == "" {
			msg = "native capture failed"
		}
		return File{}, services.Wrap(services.ErrDeviceUnavailable, "camera", "native", msg, err)
	}

	file, err := OpenFile(out)
	if err != nil {
		return File{}, services.Wrap(services.ErrDeviceUnavailable, "camera", "native", "capture produced no photo", err)
	}
	return file, nil
}
