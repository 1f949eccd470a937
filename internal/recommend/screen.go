package recommend

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"wardrobe/internal/backend"
	"wardrobe/internal/logging"
)

const (
	DefaultCityName = "上海"
	DefaultCityID   = "101020100"
)

// Source is the backend surface the screen reads from.
type Source interface {
	Recommendation(ctx context.Context, location string) (backend.Recommendation, error)
	SearchCities(ctx context.Context, query string) ([]backend.City, error)
}

// Typewriter reveals recommendation text incrementally.
type Typewriter interface {
	Start(text string)
	Stop()
}

// Selection is the city the screen fetches for.
type Selection struct {
	Name string
	ID   string
}

// Screen holds the recommendation view state: selected city, last result and
// the loading flag.
type Screen struct {
	source Source
	writer Typewriter
	logger *slog.Logger

	mu      sync.Mutex
	city    Selection
	current *backend.Recommendation
	loading bool
}

// Option customizes a Screen.
type Option func(*Screen)

// WithCity overrides the initial city.
func WithCity(name, id string) Option {
	return func(s *Screen) {
		name, id = strings.TrimSpace(name), strings.TrimSpace(id)
		if id != "" {
			if name == "" {
				name = id
			}
			s.city = Selection{Name: name, ID: id}
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Screen) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScreen builds a screen with 上海 selected unless overridden.
func NewScreen(source Source, writer Typewriter, opts ...Option) *Screen {
	s := &Screen{
		source: source,
		writer: writer,
		logger: logging.NewNop(),
		city:   Selection{Name: DefaultCityName, ID: DefaultCityID},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "recommend")
	return s
}

// City returns the selected city.
func (s *Screen) City() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.city
}

// Loading reports whether a fetch is in flight.
func (s *Screen) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Current returns the last successful recommendation.
func (s *Screen) Current() (backend.Recommendation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return backend.Recommendation{}, false
	}
	return *s.current, true
}

// Search looks up cities for the picker.
func (s *Screen) Search(ctx context.Context, query string) ([]backend.City, error) {
	return s.source.SearchCities(ctx, query)
}

// Select switches to city and immediately refetches.
func (s *Screen) Select(ctx context.Context, city backend.City) (backend.Recommendation, error) {
	s.mu.Lock()
	s.city = Selection{Name: city.Label(), ID: city.ID}
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// Refresh fetches a recommendation for the selected city and restarts the
// typewriter with its text. A failed fetch keeps the previous result on
// screen.
func (s *Screen) Refresh(ctx context.Context) (backend.Recommendation, error) {
	s.mu.Lock()
	city := s.city
	s.loading = true
	s.mu.Unlock()

	rec, err := s.source.Recommendation(ctx, city.ID)

	s.mu.Lock()
	s.loading = false
	if err == nil {
		s.current = &rec
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("recommendation fetch failed",
			logging.String("location", city.ID),
			logging.String(logging.FieldImpact, "previous recommendation stays on screen"),
			logging.Error(err),
		)
		return backend.Recommendation{}, err
	}
	s.logger.Debug("recommendation fetched",
		logging.String("location", city.ID),
		logging.String("condition", rec.Weather.Condition),
		logging.Int("text_runes", len([]rune(rec.Text))),
	)
	if s.writer != nil {
		s.writer.Start(rec.Text)
	}
	return rec, nil
}

// Close stops any running reveal.
func (s *Screen) Close() {
	if s.writer != nil {
		s.writer.Stop()
	}
}
