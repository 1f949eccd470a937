// Package stream reveals a complete text one user-perceived character at a
// time on a fixed cadence, the way recommendation text is presented as if it
// were still arriving.
//
// At most one reveal job runs at a time. Start and Stop wait for the previous
// job's goroutine to exit, so no update for an old text is delivered after a
// new job begins.
package stream

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rivo/uniseg"
)

// DefaultCadence is the interval between revealed characters.
const DefaultCadence = 30 * time.Millisecond

// Ticker is the subset of time.Ticker the renderer needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker adapts time.NewTicker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Frame is one observable renderer state.
type Frame struct {
	Text     string
	Complete bool
}

// Option customizes a Renderer.
type Option func(*Renderer)

// WithCadence overrides DefaultCadence.
func WithCadence(d time.Duration) Option {
	return func(r *Renderer) {
		if d > 0 {
			r.cadence = d
		}
	}
}

// WithTicker replaces the ticker constructor.
func WithTicker(newTicker func(time.Duration) Ticker) Option {
	return func(r *Renderer) {
		if newTicker != nil {
			r.newTicker = newTicker
		}
	}
}

// WithUpdate registers a callback invoked from the reveal goroutine after
// every step. The callback must not call Start or Stop.
func WithUpdate(fn func(Frame)) Option {
	return func(r *Renderer) { r.onUpdate = fn }
}

// Renderer is a restartable typewriter over grapheme clusters.
type Renderer struct {
	cadence   time.Duration
	newTicker func(time.Duration) Ticker
	onUpdate  func(Frame)

	control sync.Mutex // serializes Start and Stop

	mu       sync.Mutex
	clusters []string
	revealed int
	text     strings.Builder
	cancel   chan struct{}
	done     chan struct{}

	active atomic.Int32
}

// New constructs an idle renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{cadence: DefaultCadence, newTicker: NewTimeTicker}
	for _, opt := range opts {
		opt(r)
	}
	done := make(chan struct{})
	close(done)
	r.done = done
	return r
}

// Split returns the grapheme clusters of text.
func Split(text string) []string {
	clusters := make([]string, 0, len(text))
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		clusters = append(clusters, g.Str())
	}
	return clusters
}

// Start cancels any running job and begins revealing text from an empty
// prefix. An empty text completes immediately.
func (r *Renderer) Start(text string) {
	r.control.Lock()
	defer r.control.Unlock()
	r.halt()

	cancel := make(chan struct{})
	done := make(chan struct{})

	r.mu.Lock()
	r.clusters = Split(text)
	r.revealed = 0
	r.text.Reset()
	r.cancel = cancel
	r.done = done
	empty := len(r.clusters) == 0
	r.mu.Unlock()

	r.emit(Frame{Complete: empty})
	if empty {
		close(done)
		return
	}

	ticker := r.newTicker(r.cadence)
	r.active.Add(1)
	go r.run(ticker, cancel, done)
}

// Stop cancels the running job, keeping whatever prefix was revealed.
func (r *Renderer) Stop() {
	r.control.Lock()
	defer r.control.Unlock()
	r.halt()
}

func (r *Renderer) halt() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel = nil
	r.mu.Unlock()
	if cancel != nil {
		close(cancel)
	}
	<-done
}

func (r *Renderer) run(ticker Ticker, cancel, done chan struct{}) {
	defer close(done)
	defer r.active.Add(-1)
	defer ticker.Stop()

	for {
		select {
		case <-cancel:
			return
		case <-ticker.C():
		}

		r.mu.Lock()
		if r.revealed < len(r.clusters) {
			r.text.WriteString(r.clusters[r.revealed])
			r.revealed++
		}
		frame := Frame{Text: r.text.String(), Complete: r.revealed >= len(r.clusters)}
		r.mu.Unlock()

		r.emit(frame)
		if frame.Complete {
			return
		}
	}
}

func (r *Renderer) emit(frame Frame) {
	if r.onUpdate != nil {
		r.onUpdate(frame)
	}
}

// Text returns the revealed prefix.
func (r *Renderer) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text.String()
}

// Complete reports whether the whole target has been revealed. Callers show a
// cursor only while this is false.
func (r *Renderer) Complete() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.revealed >= len(r.clusters)
}

// Active returns the number of live reveal timers, which is 0 or 1.
func (r *Renderer) Active() int {
	return int(r.active.Load())
}

// Wait blocks until the current job finishes or is cancelled.
func (r *Renderer) Wait(ctx context.Context) error {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
