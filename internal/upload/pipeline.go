package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"wardrobe/internal/logging"
	"wardrobe/internal/media"
	"wardrobe/internal/services"
	"wardrobe/internal/wardrobe"
)

const defaultSuccessHold = 500 * time.Millisecond

// ErrSessionActive is returned when Run is called while another session is
// in flight in this process or, with a Lock, in another process.
var ErrSessionActive = errors.New("upload session already active")

// Uploader is the remote boundary the pipeline drives.
type Uploader interface {
	Upload(ctx context.Context, payload media.Payload) (wardrobe.Item, error)
}

// Event is emitted on every stage transition.
type Event struct {
	SessionID string
	Stage     Stage
	Progress  int
	Status    string
	Item      *wardrobe.Item
	Err       error
}

// Session is the transient state of one in-flight upload.
type Session struct {
	ID        string
	Payload   media.Payload
	Stage     Stage
	StartedAt time.Time
}

// Failure reports which stage a session failed in.
type Failure struct {
	Stage Stage
	Err   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", StageFailed.Status(), f.Message())
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Message is the server detail if one was supplied, otherwise a generic text.
func (f *Failure) Message() string {
	if f == nil || f.Err == nil {
		return StageFailed.Status()
	}
	if msg := strings.TrimSpace(services.Details(f.Err).Message); msg != "" {
		return msg
	}
	return StageFailed.Status()
}

// Outcome summarises a finished session for the journal.
type Outcome struct {
	SessionID string
	FileName  string
	Origin    string
	Bytes     int
	Stage     Stage
	FailedAt  Stage
	ItemID    int64
	Category  wardrobe.Category
	Message   string
	StartedAt time.Time
	Duration  time.Duration
}

// Recorder persists session outcomes.
type Recorder interface {
	Record(ctx context.Context, outcome Outcome) error
}

// Pipeline drives one upload session at a time through its stages.
type Pipeline struct {
	uploader Uploader
	logger   *slog.Logger
	observer func(Event)
	recorder Recorder
	lock     *Lock
	hold     time.Duration
	sleep    func(context.Context, time.Duration)
	newID    func() string
	now      func() time.Time
	sampler  *logging.ProgressSampler

	mu     sync.Mutex
	active *Session
}

// Option customizes the pipeline.
type Option func(*Pipeline)

// WithObserver receives every stage transition. The callback runs on the
// goroutine calling Run.
func WithObserver(fn func(Event)) Option {
	return func(p *Pipeline) {
		p.observer = fn
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRecorder journals each finished session.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// WithLock enforces one session across processes.
func WithLock(lock *Lock) Option {
	return func(p *Pipeline) {
		p.lock = lock
	}
}

// WithSuccessHold sets how long the done state stays visible before the
// session clears.
func WithSuccessHold(d time.Duration) Option {
	return func(p *Pipeline) {
		if d >= 0 {
			p.hold = d
		}
	}
}

// WithSleep overrides how the success hold waits.
func WithSleep(fn func(context.Context, time.Duration)) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.sleep = fn
		}
	}
}

// WithSessionIDs overrides session id generation.
func WithSessionIDs(fn func() string) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.newID = fn
		}
	}
}

// NewPipeline constructs a pipeline around uploader.
func NewPipeline(uploader Uploader, opts ...Option) *Pipeline {
	p := &Pipeline{
		uploader: uploader,
		logger:   logging.NewNop(),
		hold:     defaultSuccessHold,
		sleep:    sleepContext,
		newID:    uuid.NewString,
		now:      time.Now,
		sampler:  logging.NewProgressSampler(10),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "upload-pipeline")
	return p
}

// Current returns a copy of the active session, if any.
func (p *Pipeline) Current() (Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == nil {
		return Session{}, false
	}
	return *p.active, true
}

// Stage reports the current stage; idle when no session is active.
func (p *Pipeline) Stage() Stage {
	if session, ok := p.Current(); ok {
		return session.Stage
	}
	return StageIdle
}

// Run uploads payload and returns the classified item. On failure the error
// is a *Failure naming the stage. In both cases the pipeline is idle again
// when Run returns.
func (p *Pipeline) Run(ctx context.Context, payload media.Payload) (wardrobe.Item, error) {
	if p.uploader == nil {
		return wardrobe.Item{}, services.Wrap(services.ErrConfiguration, "upload", "run", "no uploader configured", nil)
	}
	if !media.IsImageType(payload.ContentType) {
		return wardrobe.Item{}, services.Wrap(services.ErrInvalidMediaType, "upload", "run", "请选择图片文件", nil)
	}

	session, err := p.begin(payload)
	if err != nil {
		return wardrobe.Item{}, err
	}
	defer p.end()

	ctx = services.WithSessionID(ctx, session.ID)
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("upload session started",
		logging.String(logging.FieldEventType, "session_start"),
		logging.String("file", payload.Name),
		logging.String("origin", payload.Origin),
		logging.Size("size", len(payload.Data)),
	)

	p.advance(ctx, logger, session, StageUploading, nil)
	p.advance(ctx, logger, session, StageRemovingBackground, nil)

	item, err := p.uploader.Upload(services.WithStage(ctx, string(StageRemovingBackground)), payload)
	if err != nil {
		failedAt := StageClassifying
		if errors.Is(err, services.ErrTransport) {
			failedAt = StageRemovingBackground
		} else {
			p.advance(ctx, logger, session, StageClassifying, nil)
		}
		return wardrobe.Item{}, p.fail(ctx, logger, session, failedAt, err)
	}

	p.advance(ctx, logger, session, StageClassifying, nil)
	p.advance(ctx, logger, session, StageDone, &item)
	p.record(ctx, logger, session, Outcome{
		Stage:    StageDone,
		ItemID:   item.ID,
		Category: item.Category,
		Message:  StageDone.Status(),
	})
	logger.Info("upload session completed",
		logging.String(logging.FieldEventType, "session_complete"),
		logging.ItemID(item.ID),
		logging.String("category", string(item.Category)),
		logging.Duration("elapsed", p.now().Sub(session.StartedAt)),
	)

	if p.hold > 0 {
		p.sleep(ctx, p.hold)
	}
	p.emit(Event{SessionID: session.ID, Stage: StageIdle, Item: &item})
	return item, nil
}

func (p *Pipeline) begin(payload media.Payload) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active != nil {
		return nil, ErrSessionActive
	}
	if p.lock != nil {
		ok, err := p.lock.TryAcquire()
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "upload", "lock", "acquire session lock", err)
		}
		if !ok {
			return nil, ErrSessionActive
		}
	}
	p.active = &Session{
		ID:        p.newID(),
		Payload:   payload,
		Stage:     StageIdle,
		StartedAt: p.now(),
	}
	p.sampler.Reset()
	return p.active, nil
}

func (p *Pipeline) end() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lock != nil {
		if err := p.lock.Release(); err != nil {
			p.logger.Warn("upload lock release failed", logging.Error(err))
		}
	}
	p.active = nil
}

func (p *Pipeline) advance(ctx context.Context, logger *slog.Logger, session *Session, stage Stage, item *wardrobe.Item) {
	p.mu.Lock()
	session.Stage = stage
	p.mu.Unlock()

	if p.sampler.ShouldLog(session.ID, string(stage), stage.Progress()) {
		logging.WithContext(services.WithStage(ctx, string(stage)), logger).Debug("upload stage",
			logging.String(logging.FieldEventType, "stage_progress"),
			logging.Int(logging.FieldProgressPercent, stage.Progress()),
		)
	}
	p.emit(Event{
		SessionID: session.ID,
		Stage:     stage,
		Progress:  stage.Progress(),
		Status:    stage.Status(),
		Item:      item,
	})
}

func (p *Pipeline) fail(ctx context.Context, logger *slog.Logger, session *Session, stage Stage, cause error) error {
	failure := &Failure{Stage: stage, Err: cause}

	p.mu.Lock()
	session.Stage = StageFailed
	p.mu.Unlock()

	logging.ErrorWithContext(logger, "upload session failed", "session_failure",
		logging.String(logging.FieldStage, string(stage)),
		logging.String("error_message", failure.Message()),
		logging.String(logging.FieldErrorHint, hintFor(cause)),
		logging.Error(cause),
	)
	p.emit(Event{
		SessionID: session.ID,
		Stage:     StageFailed,
		Status:    StageFailed.Status(),
		Err:       failure,
	})
	p.record(ctx, logger, session, Outcome{
		Stage:    StageFailed,
		FailedAt: stage,
		Message:  failure.Message(),
	})
	p.emit(Event{SessionID: session.ID, Stage: StageIdle})
	return failure
}

func (p *Pipeline) record(ctx context.Context, logger *slog.Logger, session *Session, outcome Outcome) {
	if p.recorder == nil {
		return
	}
	outcome.SessionID = session.ID
	outcome.FileName = session.Payload.Name
	outcome.Origin = session.Payload.Origin
	outcome.Bytes = len(session.Payload.Data)
	outcome.StartedAt = session.StartedAt
	outcome.Duration = p.now().Sub(session.StartedAt)
	if err := p.recorder.Record(context.WithoutCancel(ctx), outcome); err != nil {
		logging.WarnWithContext(logger, "upload journal write failed", "journal_failure",
			logging.String(logging.FieldImpact, "session missing from history"),
			logging.Error(err),
		)
	}
}

func (p *Pipeline) emit(event Event) {
	if p.observer != nil {
		p.observer(event)
	}
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, services.ErrTransport):
		return "check that the backend is running and reachable"
	case errors.Is(err, services.ErrRemoteRejection):
		return "the backend rejected the image; retry with another photo"
	default:
		return "retry the upload"
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
