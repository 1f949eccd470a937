package wardrobe

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"wardrobe/internal/logging"
	"wardrobe/internal/services"
)

// Remote is the slice of the backend the store needs.
type Remote interface {
	Wardrobe(ctx context.Context) (Wardrobe, error)
	UpdateItem(ctx context.Context, id int64, update Update) error
	DeleteItem(ctx context.Context, id int64) error
}

// Result is returned to the caller of a mutation in place of a broadcast
// notification.
type Result struct {
	ID       int64
	Message  string
	Wardrobe Wardrobe
	// Stale is set when the mutation succeeded but the follow-up resync
	// failed; Wardrobe then holds the last known snapshot.
	Stale bool
}

// Store is the shared wardrobe state. Every mutation is followed by a full
// re-fetch; concurrent refreshes share one request.
type Store struct {
	remote Remote
	logger *slog.Logger
	group  singleflight.Group

	mu      sync.RWMutex
	current Wardrobe
	loaded  bool
}

// NewStore constructs a store backed by remote.
func NewStore(remote Remote, logger *slog.Logger) *Store {
	return &Store{
		remote: remote,
		logger: logging.NewComponentLogger(logger, "wardrobe"),
	}
}

// Snapshot returns the last fetched wardrobe and whether one has been loaded.
func (s *Store) Snapshot() (Wardrobe, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.loaded
}

// Refresh replaces the local snapshot with the authoritative remote list.
// Concurrent callers share one fetch; the fetch runs detached from any single
// caller's cancellation and is bounded by the client's own timeout.
func (s *Store) Refresh(ctx context.Context) (Wardrobe, error) {
	flightCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan("wardrobe", func() (any, error) {
		w, err := s.remote.Wardrobe(flightCtx)
		if err != nil {
			return Wardrobe{}, err
		}
		if err := w.Validate(); err != nil {
			return Wardrobe{}, err
		}
		s.mu.Lock()
		s.current = w
		s.loaded = true
		s.mu.Unlock()
		return w, nil
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return Wardrobe{}, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return Wardrobe{}, res.Err
	}
	w := res.Val.(Wardrobe)
	logging.WithContext(ctx, s.logger).Debug("wardrobe refreshed",
		logging.Int("tops", len(w.Tops)),
		logging.Int("bottoms", len(w.Bottoms)),
		logging.Int("shoes", len(w.Shoes)),
		logging.Bool("shared", res.Shared),
	)
	return w, nil
}

// Save validates the form, sends the update and resynchronizes.
func (s *Store) Save(ctx context.Context, form EditForm) (Result, error) {
	update, err := form.Update()
	if err != nil {
		return Result{}, err
	}
	if form.ID <= 0 {
		return Result{}, services.Wrap(services.ErrValidation, "edit", "save", "item id is required", nil)
	}
	if err := s.remote.UpdateItem(ctx, form.ID, update); err != nil {
		return Result{}, err
	}
	return s.resync(ctx, form.ID, "保存成功"), nil
}

// Delete removes an item and resynchronizes.
func (s *Store) Delete(ctx context.Context, id int64) (Result, error) {
	if id <= 0 {
		return Result{}, services.Wrap(services.ErrValidation, "wardrobe", "delete", "item id is required", nil)
	}
	if err := s.remote.DeleteItem(ctx, id); err != nil {
		return Result{}, err
	}
	return s.resync(ctx, id, "删除成功"), nil
}

// Added resynchronizes after an upload created a new item.
func (s *Store) Added(ctx context.Context, item Item) Result {
	return s.resync(ctx, item.ID, "上传成功")
}

func (s *Store) resync(ctx context.Context, id int64, message string) Result {
	w, err := s.Refresh(ctx)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "wardrobe resync failed", "wardrobe_resync_failed",
			logging.ItemID(id),
			logging.Error(err),
			logging.String(logging.FieldImpact, "displayed wardrobe may be out of date"),
			logging.String(logging.FieldErrorHint, "run 'wardrobe list' to retry"),
		)
		last, _ := s.Snapshot()
		return Result{ID: id, Message: message, Wardrobe: last, Stale: true}
	}
	return Result{ID: id, Message: message, Wardrobe: w}
}
