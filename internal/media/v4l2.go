package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"golang.org/x/sys/unix"

	"wardrobe/internal/logging"
	"wardrobe/internal/services"
)

// V4L2Device streams raw frames from a Video4Linux node through ffmpeg.
type V4L2Device struct {
	Path   string
	FFmpeg string
	Width  int
	Height int
	Logger *slog.Logger
}

func (d *V4L2Device) Name() string { return d.Path }

// Probe checks that the node exists and is readable and writable by the
// current user, and that ffmpeg is on PATH.
func (d *V4L2Device) Probe() error {
	info, err := os.Stat(d.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.Wrap(services.ErrDeviceUnavailable, "camera", "probe", "未检测到摄像头: "+d.Path, err)
		}
		return services.Wrap(services.ErrDeviceUnavailable, "camera", "probe", "cannot stat "+d.Path, err)
	}
	if info.Mode()&os.ModeCharDevice == 0 {
		return services.Wrap(services.ErrDeviceUnavailable, "camera", "probe", d.Path+" is not a character device", nil)
	}
	if err := unix.Access(d.Path, unix.R_OK|unix.W_OK); err != nil {
		return services.Wrap(services.ErrDeviceUnavailable, "camera", "probe", "摄像头权限被拒绝: "+d.Path+" (is the user in the video group?)", err)
	}
	if _, err := exec.LookPath(d.ffmpeg()); err != nil {
		return services.Wrap(services.ErrDeviceUnavailable, "camera", "probe", d.ffmpeg()+" not found on PATH", err)
	}
	return nil
}

func (d *V4L2Device) ffmpeg() string {
	if d.FFmpeg == "" {
		return "ffmpeg"
	}
	return d.FFmpeg
}

func (d *V4L2Device) args() []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "v4l2",
		"-video_size", strconv.Itoa(d.Width) + "x" + strconv.Itoa(d.Height),
		"-i", d.Path,
		"-f", "rawvideo", "-pix_fmt", "rgb24",
		"-",
	}
}

// Open starts ffmpeg and begins decoding frames in the background.
func (d *V4L2Device) Open(ctx context.Context) (Stream, error) {
	if d.Width <= 0 || d.Height <= 0 {
		return nil, services.Wrap(services.ErrDeviceUnavailable, "camera", "open", "invalid frame size", nil)
	}
	if err := d.Probe(); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, d.ffmpeg(), d.args()...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, services.Wrap(services.ErrDeviceUnavailable, "camera", "open", "ffmpeg stdout", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrDeviceUnavailable, "camera", "open", "start ffmpeg", err)
	}

	track := &processTrack{id: d.Path, cmd: cmd, exited: make(chan struct{})}
	stream := &rawStream{
		track:  track,
		width:  d.Width,
		height: d.Height,
		ready:  make(chan struct{}),
		logger: logging.NewComponentLogger(d.Logger, "v4l2"),
	}
	go stream.read(bufio.NewReaderSize(stdout, d.Width*d.Height*3))
	go func() {
		_ = cmd.Wait()
		close(track.exited)
	}()
	return stream, nil
}

// processTrack is the ffmpeg process feeding a stream.
type processTrack struct {
	id     string
	cmd    *exec.Cmd
	exited chan struct{}
	once   sync.Once
}

func (t *processTrack) ID() string { return t.id }

func (t *processTrack) State() TrackState {
	select {
	case <-t.exited:
		return TrackEnded
	default:
		return TrackLive
	}
}

// Stop kills ffmpeg and waits for it to exit.
func (t *processTrack) Stop() {
	t.once.Do(func() {
		if t.cmd.Process != nil {
			_ = t.cmd.Process.Kill()
		}
		<-t.exited
	})
}

type rawStream struct {
	track  *processTrack
	width  int
	height int
	logger *slog.Logger

	mu     sync.Mutex
	latest *image.NRGBA
	err    error
	ready  chan struct{}
	once   sync.Once
}

func (s *rawStream) Tracks() []Track { return []Track{s.track} }

func (s *rawStream) read(r io.Reader) {
	frameSize := s.width * s.height * 3
	buf := make([]byte, frameSize)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			s.mu.Lock()
			if s.err == nil {
				s.err = fmt.Errorf("read frame: %w", err)
			}
			s.mu.Unlock()
			s.once.Do(func() { close(s.ready) })
			s.logger.Debug("frame reader stopped", logging.Error(err))
			return
		}
		frame := RGB24ToNRGBA(buf, s.width, s.height)
		s.mu.Lock()
		s.latest = frame
		s.mu.Unlock()
		s.once.Do(func() { close(s.ready) })
	}
}

func (s *rawStream) Frame(ctx context.Context) (image.Image, error) {
	select {
	case <-s.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest != nil {
		return s.latest, nil
	}
	return nil, s.err
}

// RGB24ToNRGBA converts packed rgb24 pixels into an opaque NRGBA image.
func RGB24ToNRGBA(pix []byte, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i+2 < len(pix) && j+3 < len(img.Pix); i, j = i+3, j+4 {
		img.Pix[j] = pix[i]
		img.Pix[j+1] = pix[i+1]
		img.Pix[j+2] = pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}
