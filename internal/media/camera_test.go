package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
	"testing"

	"wardrobe/internal/services"
)

type fakeTrack struct {
	id    string
	mu    sync.Mutex
	state TrackState
	stops int
}

func (t *fakeTrack) ID() string { return t.id }

func (t *fakeTrack) State() TrackState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *fakeTrack) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = TrackEnded
	t.stops++
}

type fakeStream struct {
	tracks   []*fakeTrack
	frame    image.Image
	frameErr error
}

func (s *fakeStream) Tracks() []Track {
	out := make([]Track, len(s.tracks))
	for i, tr := range s.tracks {
		out[i] = tr
	}
	return out
}

func (s *fakeStream) Frame(context.Context) (image.Image, error) {
	return s.frame, s.frameErr
}

type fakeDevice struct {
	stream  *fakeStream
	openErr error
}

func (d *fakeDevice) Name() string { return "/dev/video-fake" }

func (d *fakeDevice) Open(context.Context) (Stream, error) {
	if d.openErr != nil {
		return d.stream, d.openErr
	}
	return d.stream, nil
}

func solidFrame(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	return img
}

func newFakeDevice(frame image.Image) (*fakeDevice, []*fakeTrack) {
	tracks := []*fakeTrack{{id: "video"}, {id: "audio"}}
	return &fakeDevice{stream: &fakeStream{tracks: tracks, frame: frame}}, tracks
}

func assertAllStopped(t *testing.T, tracks []*fakeTrack) {
	t.Helper()
	for _, tr := range tracks {
		if tr.State() != TrackEnded {
			t.Fatalf("track %s still live", tr.id)
		}
	}
}

func TestCaptureEncodesJPEGAtNativeResolutionAndStopsTracks(t *testing.T) {
	dev, tracks := newFakeDevice(solidFrame(64, 48))
	session, err := OpenSession(context.Background(), dev)
	if err != nil {
		t.Fatalf("OpenSession returned error: %v", err)
	}
	if _, err := session.Preview(context.Background()); err != nil {
		t.Fatalf("Preview returned error: %v", err)
	}
	file, err := session.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture returned error: %v", err)
	}
	if file.Name != CaptureFileName || file.ContentType != "image/jpeg" {
		t.Fatalf("unexpected file %+v", file)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(file.Data))
	if err != nil {
		t.Fatalf("capture is not a jpeg: %v", err)
	}
	if cfg.Width != 64 || cfg.Height != 48 {
		t.Fatalf("expected native 64x48, got %dx%d", cfg.Width, cfg.Height)
	}
	assertAllStopped(t, tracks)
	if !session.Closed() {
		t.Fatal("session should be closed after capture")
	}
}

func TestCancelStopsTracks(t *testing.T) {
	dev, tracks := newFakeDevice(solidFrame(4, 4))
	session, err := OpenSession(context.Background(), dev)
	if err != nil {
		t.Fatalf("OpenSession returned error: %v", err)
	}
	session.Cancel()
	session.Close()
	assertAllStopped(t, tracks)
	for _, tr := range tracks {
		if tr.stops != 1 {
			t.Fatalf("track %s stopped %d times, want 1", tr.id, tr.stops)
		}
	}
	if _, err := session.Capture(context.Background()); !errors.Is(err, services.ErrDeviceUnavailable) {
		t.Fatalf("capture after cancel should fail, got %v", err)
	}
}

func TestFrameErrorStopsTracks(t *testing.T) {
	dev, tracks := newFakeDevice(nil)
	dev.stream.frameErr = errors.New("device unplugged")
	session, err := OpenSession(context.Background(), dev)
	if err != nil {
		t.Fatalf("OpenSession returned error: %v", err)
	}
	if _, err := session.Preview(context.Background()); !errors.Is(err, services.ErrDeviceUnavailable) {
		t.Fatalf("expected device unavailable, got %v", err)
	}
	assertAllStopped(t, tracks)
}

func TestOpenFailureIsDeviceUnavailableAndReleasesTracks(t *testing.T) {
	dev, tracks := newFakeDevice(nil)
	dev.openErr = errors.New("permission denied")
	if _, err := OpenSession(context.Background(), dev); !errors.Is(err, services.ErrDeviceUnavailable) {
		t.Fatalf("expected device unavailable, got %v", err)
	}
	assertAllStopped(t, tracks)

	if _, err := OpenSession(context.Background(), nil); !errors.Is(err, services.ErrDeviceUnavailable) {
		t.Fatalf("expected device unavailable for nil device, got %v", err)
	}
}

type fakeIntent struct {
	file File
	err  error
}

func (f fakeIntent) Capture(context.Context) (File, error) { return f.file, f.err }

func TestCaptureStillPrefersNativeIntent(t *testing.T) {
	intent := fakeIntent{file: File{Name: "IMG_1.jpg", ContentType: "image/jpeg", Data: []byte{1}}}
	payload, err := CaptureStill(context.Background(), intent, nil, nil)
	if err != nil {
		t.Fatalf("CaptureStill returned error: %v", err)
	}
	if payload.Origin != "file-picker" || payload.Name != "IMG_1.jpg" {
		t.Fatalf("native result should be treated as a picked file, got %+v", payload)
	}

	intent = fakeIntent{file: File{Name: "clip.mov", ContentType: "video/quicktime"}}
	if _, err := CaptureStill(context.Background(), intent, nil, nil); !errors.Is(err, services.ErrInvalidMediaType) {
		t.Fatalf("expected invalid media type from native intent, got %v", err)
	}
}

func TestCaptureStillLiveSession(t *testing.T) {
	dev, tracks := newFakeDevice(solidFrame(8, 6))
	payload, err := CaptureStill(context.Background(), nil, dev, func(ctx context.Context, s *CaptureSession) (bool, error) {
		if _, err := s.Preview(ctx); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		t.Fatalf("CaptureStill returned error: %v", err)
	}
	if payload.Origin != "camera" || payload.Name != CaptureFileName {
		t.Fatalf("unexpected payload %+v", payload)
	}
	assertAllStopped(t, tracks)
}

func TestCaptureStillCancelAndTriggerError(t *testing.T) {
	dev, tracks := newFakeDevice(solidFrame(8, 6))
	_, err := CaptureStill(context.Background(), nil, dev, func(context.Context, *CaptureSession) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, ErrCaptureCancelled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	assertAllStopped(t, tracks)

	dev, tracks = newFakeDevice(solidFrame(8, 6))
	boom := errors.New("terminal closed")
	_, err = CaptureStill(context.Background(), nil, dev, func(context.Context, *CaptureSession) (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected trigger error, got %v", err)
	}
	assertAllStopped(t, tracks)
}

func TestPreviewImageFits(t *testing.T) {
	img := PreviewImage(solidFrame(1280, 720), 320, 320)
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 180 {
		t.Fatalf("unexpected preview size %v", b)
	}
}

func TestTrackStateString(t *testing.T) {
	if TrackLive.String() != "live" || TrackEnded.String() != "ended" {
		t.Fatal("unexpected track state labels")
	}
}
