package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"wardrobe/internal/config"
	"wardrobe/internal/deps"
	"wardrobe/internal/media"
	"wardrobe/internal/services"
)

const backendCheckTimeout = 5 * time.Second

// Pinger is satisfied by the backend client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckBackend verifies the wardrobe backend answers.
func CheckBackend(ctx context.Context, baseURL string, pinger Pinger) Result {
	const name = "Backend"

	checkCtx, cancel := context.WithTimeout(ctx, backendCheckTimeout)
	defer cancel()

	if err := pinger.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%s)", baseURL, summarizeBackendError(err))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (reachable)", baseURL)}
}

// CheckCamera reports whether a still can be captured: through the native
// command when configured, otherwise through the V4L2 device.
func CheckCamera(cfg *config.Config) Result {
	const name = "Camera"

	if cfg.Camera.NativeCommand != "" {
		status := deps.CheckBinaries(deps.CaptureRequirements(cfg.Camera.FFmpegBinary, cfg.Camera.NativeCommand))[1]
		if !status.Available {
			return Result{Name: name, Detail: "native command: " + status.Detail}
		}
		return Result{Name: name, Passed: true, Detail: "native command " + status.Command}
	}

	device := &media.V4L2Device{Path: cfg.Camera.Device, FFmpeg: cfg.Camera.FFmpegBinary}
	if err := device.Probe(); err != nil {
		return Result{Name: name, Optional: true, Detail: services.Details(err).Message}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s via %s", cfg.Camera.Device, cfg.Camera.FFmpegBinary)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external programs camera capture uses.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.CaptureRequirements(cfg.Camera.FFmpegBinary, cfg.Camera.NativeCommand))
}

func summarizeBackendError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out"
	}
	if errors.Is(err, services.ErrTransport) {
		return "unreachable"
	}
	if msg := services.Details(err).Message; msg != "" {
		return msg
	}
	return err.Error()
}
