package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"wardrobe/internal/config"
	"wardrobe/internal/logging"
	"wardrobe/internal/media"
	"wardrobe/internal/services"
	"wardrobe/internal/wardrobe"
)

const (
	defaultHTTPTimeout = 120 * time.Second
	requestIDHeader    = "X-Request-ID"
	uploadFieldName    = "file"
	maxErrorBody       = 64 << 10
)

// Config captures how to reach the backend.
type Config struct {
	APIBaseURL      string
	MediaBaseURL    string
	TimeoutSeconds  int
	CitySearchLimit int
	CityTTL         time.Duration
	CacheMaxCost    int64
}

// ConfigFrom extracts the backend settings from the application config.
func ConfigFrom(cfg *config.Config) Config {
	if cfg == nil {
		return Config{}
	}
	return Config{
		APIBaseURL:      cfg.Backend.APIBaseURL,
		MediaBaseURL:    cfg.Backend.MediaBaseURL,
		TimeoutSeconds:  cfg.Backend.TimeoutSeconds,
		CitySearchLimit: cfg.Backend.CitySearchLimit,
		CityTTL:         cfg.CityTTL(),
		CacheMaxCost:    cfg.Cache.MaxCost,
	}
}

// Client talks to the wardrobe REST backend.
type Client struct {
	cfg        Config
	apiBase    string
	mediaBase  string
	httpClient *http.Client
	logger     *slog.Logger
	cities     *cityCache
	newID      func() string
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a logger to the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRequestIDs overrides how correlation identifiers are generated.
func WithRequestIDs(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// NewClient constructs a backend client. The returned client owns a city
// cache and must be closed.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	apiBase := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if apiBase == "" {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "new client", "api base url is required", nil)
	}
	if _, err := url.Parse(apiBase); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "new client", "invalid api base url", err)
	}
	mediaBase := strings.TrimRight(strings.TrimSpace(cfg.MediaBaseURL), "/")
	if mediaBase == "" {
		mediaBase = strings.TrimSuffix(apiBase, "/api")
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.CitySearchLimit <= 0 {
		cfg.CitySearchLimit = 10
	}

	client := &Client{
		cfg:        cfg,
		apiBase:    apiBase,
		mediaBase:  mediaBase,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewNop(),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "backend")

	cities, err := newCityCache(cfg.CityTTL, cfg.CacheMaxCost, client.fetchCities)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "new client", "create city cache", err)
	}
	client.cities = cities
	return client, nil
}

// Close releases the city cache.
func (c *Client) Close() {
	if c == nil || c.cities == nil {
		return
	}
	c.cities.Close()
}

// MediaBase returns the host relative image references resolve against.
func (c *Client) MediaBase() string {
	return c.mediaBase
}

// ResolveImageURL turns a backend image reference into an absolute URL.
// Absolute references are returned unchanged.
func (c *Client) ResolveImageURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if parsed, err := url.Parse(ref); err == nil && parsed.IsAbs() {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return c.mediaBase + ref
}

// Upload sends an image as multipart field "file" and returns the classified
// item. The call blocks through background removal and classification.
func (c *Client) Upload(ctx context.Context, payload media.Payload) (wardrobe.Item, error) {
	const op = "upload"
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, uploadFieldName, payload.Name))
	header.Set("Content-Type", payload.ContentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return wardrobe.Item{}, services.Wrap(services.ErrValidation, stageName, op, "build multipart body", err)
	}
	if _, err := part.Write(payload.Data); err != nil {
		return wardrobe.Item{}, services.Wrap(services.ErrValidation, stageName, op, "build multipart body", err)
	}
	if err := writer.Close(); err != nil {
		return wardrobe.Item{}, services.Wrap(services.ErrValidation, stageName, op, "build multipart body", err)
	}

	c.logger.Debug("uploading image",
		logging.String("file", payload.Name),
		logging.String("content_type", payload.ContentType),
		logging.String("size", payload.Size()),
	)
	var item wardrobe.Item
	if err := c.do(ctx, op, http.MethodPost, "/upload", nil, body, writer.FormDataContentType(), &item); err != nil {
		return wardrobe.Item{}, err
	}
	return item, nil
}

// Wardrobe fetches the full category-partitioned list.
func (c *Client) Wardrobe(ctx context.Context) (wardrobe.Wardrobe, error) {
	var w wardrobe.Wardrobe
	if err := c.do(ctx, "get wardrobe", http.MethodGet, "/wardrobe", nil, nil, "", &w); err != nil {
		return wardrobe.Wardrobe{}, err
	}
	if err := w.Validate(); err != nil {
		return wardrobe.Wardrobe{}, err
	}
	return w, nil
}

// Category fetches one category's items.
func (c *Client) Category(ctx context.Context, category wardrobe.Category) ([]wardrobe.Item, error) {
	var items []wardrobe.Item
	path := "/wardrobe/" + url.PathEscape(string(category))
	if err := c.do(ctx, "get category", http.MethodGet, path, nil, nil, "", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Item fetches a single item by id.
func (c *Client) Item(ctx context.Context, id int64) (wardrobe.Item, error) {
	var item wardrobe.Item
	if err := c.do(ctx, "get item", http.MethodGet, itemPath(id), nil, nil, "", &item); err != nil {
		return wardrobe.Item{}, err
	}
	return item, nil
}

// UpdateItem replaces the stored fields of an item.
func (c *Client) UpdateItem(ctx context.Context, id int64, update wardrobe.Update) error {
	const op = "update item"
	encoded, err := json.Marshal(update)
	if err != nil {
		return services.Wrap(services.ErrValidation, stageName, op, "encode body", err)
	}
	var ack MutationAck
	return c.do(ctx, op, http.MethodPut, itemPath(id), nil, bytes.NewReader(encoded), "application/json", &ack)
}

// DeleteItem removes an item.
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	var ack MutationAck
	return c.do(ctx, "delete item", http.MethodDelete, itemPath(id), nil, nil, "", &ack)
}

// Recommendation fetches the weather-aware outfit suggestion for location.
func (c *Client) Recommendation(ctx context.Context, location string) (Recommendation, error) {
	query := url.Values{}
	if location = strings.TrimSpace(location); location != "" {
		query.Set("location", location)
	}
	var rec Recommendation
	if err := c.do(ctx, "get recommendation", http.MethodGet, "/recommendation", query, nil, "", &rec); err != nil {
		return Recommendation{}, err
	}
	return rec, nil
}

// Weather fetches the current conditions for location.
func (c *Client) Weather(ctx context.Context, location string) (Weather, error) {
	query := url.Values{}
	if location = strings.TrimSpace(location); location != "" {
		query.Set("location", location)
	}
	var weather Weather
	if err := c.do(ctx, "get weather", http.MethodGet, "/weather", query, nil, "", &weather); err != nil {
		return Weather{}, err
	}
	return weather, nil
}

// Ping checks that the backend answers on its wardrobe endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", http.MethodGet, "/wardrobe", nil, nil, "", nil)
}

func itemPath(id int64) string {
	return "/clothes/" + strconv.FormatInt(id, 10)
}

func (c *Client) requestID(ctx context.Context) string {
	if id, ok := services.RequestIDFromContext(ctx); ok {
		return id
	}
	return c.newID()
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	endpoint := c.apiBase + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, stageName, op, "build request", err)
	}
	requestID := c.requestID(ctx)
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("backend request failed",
			logging.String("method", method),
			logging.String("path", path),
			logging.String(logging.FieldCorrelationID, requestID),
			logging.Error(err),
		)
		return transportFailure(op, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend response",
		logging.String("method", method),
		logging.String("path", path),
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(started)),
		logging.String(logging.FieldCorrelationID, requestID),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return remoteFailure(op, resp.StatusCode, raw)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return transportFailure(op, ctx.Err())
		}
		return services.Wrap(services.ErrRemoteRejection, stageName, op, "decode response", err)
	}
	return nil
}
