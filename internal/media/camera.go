package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"

	"github.com/disintegration/imaging"

	"wardrobe/internal/logging"
	"wardrobe/internal/services"
)

const (
	// CaptureFileName is the name given to camera stills.
	CaptureFileName = "camera-photo.jpg"
	// CaptureQuality is the JPEG quality of camera stills.
	CaptureQuality = 90
)

// TrackState mirrors the lifecycle of a media track.
type TrackState int

const (
	TrackLive TrackState = iota
	TrackEnded
)

func (s TrackState) String() string {
	if s == TrackLive {
		return "live"
	}
	return "ended"
}

// Track is one acquired media track. Stop must be idempotent.
type Track interface {
	ID() string
	State() TrackState
	Stop()
}

// Stream is an open live video stream.
type Stream interface {
	Tracks() []Track
	// Frame returns the most recent video frame at native resolution.
	Frame(ctx context.Context) (image.Image, error)
}

// Device opens live video streams.
type Device interface {
	Name() string
	Open(ctx context.Context) (Stream, error)
}

// NativeIntent is a platform capture facility that returns a finished photo.
type NativeIntent interface {
	Capture(ctx context.Context) (File, error)
}

// SessionOption customizes a CaptureSession.
type SessionOption func(*CaptureSession)

// WithQuality overrides CaptureQuality.
func WithQuality(quality int) SessionOption {
	return func(s *CaptureSession) {
		if quality > 0 && quality <= 100 {
			s.quality = quality
		}
	}
}

// WithLogger attaches a logger to the session.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *CaptureSession) {
		s.logger = logging.NewComponentLogger(logger, "camera")
	}
}

// CaptureSession is an open camera preview. Every exit path (Capture,
// Cancel, a failed Preview) ends in Close, which stops all tracks.
type CaptureSession struct {
	device  string
	stream  Stream
	quality int
	logger  *slog.Logger

	mu     sync.Mutex
	closed bool
}

// OpenSession acquires a live stream from dev. Failures are reported as
// ErrDeviceUnavailable and leave no track running.
func OpenSession(ctx context.Context, dev Device, opts ...SessionOption) (*CaptureSession, error) {
	if dev == nil {
		return nil, services.Wrap(services.ErrDeviceUnavailable, "camera", "open", "no camera device configured", nil)
	}
	s := &CaptureSession{
		device:  dev.Name(),
		quality: CaptureQuality,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	stream, err := dev.Open(ctx)
	if err != nil {
		if stream != nil {
			stopTracks(stream)
		}
		if errors.Is(err, services.ErrDeviceUnavailable) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrDeviceUnavailable, "camera", "open", "无法访问摄像头: "+dev.Name(), err)
	}
	if stream == nil {
		return nil, services.Wrap(services.ErrDeviceUnavailable, "camera", "open", "device returned no stream", nil)
	}
	s.stream = stream
	s.logger.Info("camera stream opened",
		logging.String(logging.FieldEventType, "camera_opened"),
		logging.String("device", s.device),
		logging.Int("tracks", len(stream.Tracks())),
	)
	return s, nil
}

// Preview returns the current frame. A failure closes the session.
func (s *CaptureSession) Preview(ctx context.Context) (image.Image, error) {
	frame, err := s.frame(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}
	return frame, nil
}

// Capture rasterizes the current frame at its native resolution, encodes it
// as JPEG and closes the session.
func (s *CaptureSession) Capture(ctx context.Context) (File, error) {
	defer s.Close()

	frame, err := s.frame(ctx)
	if err != nil {
		return File{}, err
	}
	still := imaging.Clone(frame)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, still, imaging.JPEG, imaging.JPEGQuality(s.quality)); err != nil {
		return File{}, services.Wrap(services.ErrDeviceUnavailable, "camera", "encode", "failed to encode still", err)
	}
	bounds := still.Bounds()
	s.logger.Info("camera still captured",
		logging.String(logging.FieldEventType, "camera_captured"),
		logging.Int("width", bounds.Dx()),
		logging.Int("height", bounds.Dy()),
		logging.Int("bytes", buf.Len()),
	)
	return File{Name: CaptureFileName, ContentType: "image/jpeg", Data: buf.Bytes()}, nil
}

// Cancel abandons the session.
func (s *CaptureSession) Cancel() {
	s.Close()
}

// Close stops every acquired track. It is safe to call more than once.
func (s *CaptureSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	stopTracks(s.stream)
	s.logger.Debug("camera stream closed", logging.String("device", s.device))
}

// Closed reports whether the session has released its tracks.
func (s *CaptureSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *CaptureSession) frame(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, services.Wrap(services.ErrDeviceUnavailable, "camera", "frame", "capture session is closed", nil)
	}
	frame, err := s.stream.Frame(ctx)
	if err != nil {
		if errors.Is(err, services.ErrDeviceUnavailable) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrDeviceUnavailable, "camera", "frame", "no frame from "+s.device, err)
	}
	if frame == nil || frame.Bounds().Empty() {
		return nil, services.Wrap(services.ErrDeviceUnavailable, "camera", "frame", "empty frame from "+s.device, nil)
	}
	return frame, nil
}

func stopTracks(stream Stream) {
	if stream == nil {
		return
	}
	for _, track := range stream.Tracks() {
		track.Stop()
	}
}

// PreviewImage scales a frame down to fit within maxWidth x maxHeight for
// display, preserving aspect ratio.
func PreviewImage(frame image.Image, maxWidth, maxHeight int) image.Image {
	return imaging.Fit(frame, maxWidth, maxHeight, imaging.Box)
}

// CaptureStill runs the camera path: the native intent when available,
// otherwise a live session driven by trigger. trigger receives the open
// session and decides whether to capture (true) or cancel (false).
func CaptureStill(ctx context.Context, native NativeIntent, dev Device, trigger func(context.Context, *CaptureSession) (bool, error), opts ...SessionOption) (Payload, error) {
	if native != nil {
		file, err := native.Capture(ctx)
		if err != nil {
			return Payload{}, err
		}
		// Native results are treated exactly like a picked file.
		return Acquire(FilePicked{File: file})
	}

	session, err := OpenSession(ctx, dev, opts...)
	if err != nil {
		return Payload{}, err
	}
	defer session.Close()

	capture, err := trigger(ctx, session)
	if err != nil {
		return Payload{}, err
	}
	if !capture {
		session.Cancel()
		return Payload{}, ErrCaptureCancelled
	}
	file, err := session.Capture(ctx)
	if err != nil {
		return Payload{}, err
	}
	return Acquire(Captured{File: file})
}

// ErrCaptureCancelled is returned when the user dismisses the camera.
var ErrCaptureCancelled = errors.New("camera capture cancelled")
