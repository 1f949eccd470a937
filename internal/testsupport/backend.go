package testsupport

import (
	"net/http"
	"net/http/httptest"
	"path"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"wardrobe/internal/backend"
	"wardrobe/internal/wardrobe"
)

// Backend is an in-memory stand-in for the wardrobe REST service.
type Backend struct {
	*httptest.Server

	mu             sync.Mutex
	items          []wardrobe.Item
	nextID         int64
	classify       func(fileName string) wardrobe.Item
	uploadFailure  *failure
	recommendation backend.Recommendation
	cities         []backend.City
	hits           map[string]int
}

type failure struct {
	status int
	detail string
}

// BackendOption customizes the fake.
type BackendOption func(*Backend)

// WithClassifier overrides how uploaded files are classified.
func WithClassifier(fn func(fileName string) wardrobe.Item) BackendOption {
	return func(b *Backend) {
		b.classify = fn
	}
}

// WithCities sets the catalogue GET /cities searches.
func WithCities(cities ...backend.City) BackendOption {
	return func(b *Backend) {
		b.cities = cities
	}
}

// WithRecommendation sets the body of GET /recommendation.
func WithRecommendation(rec backend.Recommendation) BackendOption {
	return func(b *Backend) {
		b.recommendation = rec
	}
}

// NewBackend starts the fake and registers its shutdown with t.
func NewBackend(t testing.TB, opts ...BackendOption) *Backend {
	t.Helper()
	b := &Backend{
		nextID:   1,
		classify: defaultClassification,
		hits:     make(map[string]int),
		recommendation: backend.Recommendation{
			Weather: backend.Weather{Temperature: 22, FeelsLike: 21, Condition: "晴", Icon: "100", Humidity: 45, WindDir: "东南风", WindScale: "2"},
			Text:    "今天天气晴朗，适合穿轻薄的衬衫。",
		},
	}
	for _, opt := range opts {
		opt(b)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Pre(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			b.mu.Lock()
			b.hits[c.Request().Method+" "+c.Request().URL.Path]++
			b.mu.Unlock()
			return next(c)
		}
	})
	api := e.Group("/api")
	api.POST("/upload", b.upload)
	api.GET("/wardrobe", b.wardrobe)
	api.GET("/wardrobe/:category", b.category)
	api.GET("/clothes/:id", b.item)
	api.PUT("/clothes/:id", b.update)
	api.DELETE("/clothes/:id", b.remove)
	api.GET("/recommendation", b.recommend)
	api.GET("/weather", b.weather)
	api.GET("/cities", b.searchCities)

	b.Server = httptest.NewServer(e)
	t.Cleanup(b.Server.Close)
	return b
}

// APIURL is the base URL clients should be configured with.
func (b *Backend) APIURL() string {
	return b.URL + "/api"
}

// Seed stores items as if they had been uploaded, assigning ids to zero ids.
func (b *Backend) Seed(items ...wardrobe.Item) []wardrobe.Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]wardrobe.Item, 0, len(items))
	for _, item := range items {
		if item.ID == 0 {
			item.ID = b.nextID
		}
		if item.ID >= b.nextID {
			b.nextID = item.ID + 1
		}
		b.items = append(b.items, item)
		out = append(out, item)
	}
	return out
}

// Items returns a copy of the stored items.
func (b *Backend) Items() []wardrobe.Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]wardrobe.Item(nil), b.items...)
}

// FailUploads makes subsequent uploads respond with status and detail. A zero
// status restores normal behaviour.
func (b *Backend) FailUploads(status int, detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		b.uploadFailure = nil
		return
	}
	b.uploadFailure = &failure{status: status, detail: detail}
}

// Hits counts requests for "METHOD /path".
func (b *Backend) Hits(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

func defaultClassification(fileName string) wardrobe.Item {
	return wardrobe.Item{
		Category:    wardrobe.CategoryTop,
		Name:        "衬衫",
		Styles:      []string{"休闲", "通勤"},
		Seasons:     []string{"春", "夏"},
		Usages:      []string{"日常"},
		Color:       "白色",
		Description: "白色纯棉衬衫",
	}
}

func detail(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"detail": message})
}

func (b *Backend) upload(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": []echo.Map{{
			"loc": []string{"body", "file"}, "msg": "field required", "type": "value_error.missing",
		}}})
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		return detail(c, http.StatusBadRequest, "只支持图片文件")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.uploadFailure != nil {
		return detail(c, b.uploadFailure.status, b.uploadFailure.detail)
	}
	item := b.classify(header.Filename)
	item.ID = b.nextID
	b.nextID++
	item.ImageURL = "/uploads/" + strconv.FormatInt(item.ID, 10) + ".png"
	item.CreatedAt = time.Now().Format("2006-01-02T15:04:05.000000")
	b.items = append(b.items, item)
	return c.JSON(http.StatusOK, item)
}

func (b *Backend) wardrobe(c echo.Context) error {
	b.mu.Lock()
	w, _ := wardrobe.Partition(b.items)
	b.mu.Unlock()
	if w.Tops == nil {
		w.Tops = []wardrobe.Item{}
	}
	if w.Bottoms == nil {
		w.Bottoms = []wardrobe.Item{}
	}
	if w.Shoes == nil {
		w.Shoes = []wardrobe.Item{}
	}
	return c.JSON(http.StatusOK, w)
}

func (b *Backend) category(c echo.Context) error {
	category := wardrobe.Category(c.Param("category"))
	switch category {
	case wardrobe.CategoryTop, wardrobe.CategoryBottom, wardrobe.CategoryShoes:
	default:
		return detail(c, http.StatusBadRequest, "类别必须是 top, bottom 或 shoes")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	items := []wardrobe.Item{}
	for _, item := range b.items {
		if item.Category == category {
			items = append(items, item)
		}
	}
	return c.JSON(http.StatusOK, items)
}

func (b *Backend) lookup(c echo.Context) (int, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return -1, false
	}
	for i, item := range b.items {
		if item.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (b *Backend) item(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx, ok := b.lookup(c)
	if !ok {
		return detail(c, http.StatusNotFound, "衣物不存在")
	}
	return c.JSON(http.StatusOK, b.items[idx])
}

func (b *Backend) update(c echo.Context) error {
	var body wardrobe.Update
	if err := c.Bind(&body); err != nil {
		return detail(c, http.StatusUnprocessableEntity, err.Error())
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	idx, ok := b.lookup(c)
	if !ok {
		return detail(c, http.StatusNotFound, "衣物不存在")
	}
	item := b.items[idx]
	item.Category = body.Category
	item.Name = body.Name
	item.Styles = body.Styles
	item.Seasons = body.Seasons
	item.Usages = body.Usages
	item.Color = body.Color
	item.Description = body.Description
	item.ImageURL = "/uploads/" + path.Base(body.ImageFilename)
	b.items[idx] = item
	return c.JSON(http.StatusOK, backend.MutationAck{Message: "更新成功", ID: item.ID})
}

func (b *Backend) remove(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx, ok := b.lookup(c)
	if !ok {
		return detail(c, http.StatusNotFound, "衣物不存在")
	}
	id := b.items[idx].ID
	b.items = append(b.items[:idx], b.items[idx+1:]...)
	return c.JSON(http.StatusOK, backend.MutationAck{Message: "删除成功", ID: id})
}

func (b *Backend) recommend(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec := b.recommendation
	rec.Weather.Location = c.QueryParam("location")
	return c.JSON(http.StatusOK, rec)
}

func (b *Backend) weather(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	weather := b.recommendation.Weather
	weather.Location = c.QueryParam("location")
	return c.JSON(http.StatusOK, weather)
}

func (b *Backend) searchCities(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("query"))
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit < 1 || limit > 20 {
		limit = 10
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	matches := []backend.City{}
	for _, city := range b.cities {
		if strings.Contains(city.Name, query) || strings.Contains(city.Adm1, query) {
			matches = append(matches, city)
		}
		if len(matches) == limit {
			break
		}
	}
	if len(matches) == 0 {
		return detail(c, http.StatusNotFound, "未找到匹配的城市")
	}
	return c.JSON(http.StatusOK, matches)
}
