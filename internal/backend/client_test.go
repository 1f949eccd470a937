package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"wardrobe/internal/media"
	"wardrobe/internal/services"
	"wardrobe/internal/wardrobe"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(Config{APIBaseURL: server.URL + "/api", TimeoutSeconds: 5})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(client.Close)
	return client, server
}

func TestUploadSendsMultipartImage(t *testing.T) {
	var gotRequestID string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/upload" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotRequestID = r.Header.Get("X-Request-ID")
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			http.Error(w, "bad", http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "jpegdata" {
			t.Errorf("unexpected body %q", data)
		}
		if header.Filename != "shirt.jpg" {
			t.Errorf("unexpected filename %q", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "image/jpeg" {
			t.Errorf("unexpected part content type %q", ct)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": 7, "category": "top", "item": "衬衫",
			"style_semantics": []string{"休闲"}, "season_semantics": []string{"春"},
			"usage_semantics": []string{"日常"}, "color_semantics": "白色",
			"description": "白衬衫", "image_url": "/uploads/a.png",
			"created_at": "2024-05-01T10:00:00",
		})
	}))

	item, err := client.Upload(context.Background(), media.Payload{Name: "shirt.jpg", ContentType: "image/jpeg", Data: []byte("jpegdata")})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if item.ID != 7 || item.Category != wardrobe.CategoryTop || item.Name != "衬衫" {
		t.Fatalf("unexpected item %+v", item)
	}
	if gotRequestID == "" {
		t.Fatal("expected X-Request-ID header")
	}
}

func TestRequestIDFromContext(t *testing.T) {
	var got string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`{"tops":[],"bottoms":[],"shoes":[]}`))
	}))
	ctx := services.WithRequestID(context.Background(), "req-123")
	if _, err := client.Wardrobe(ctx); err != nil {
		t.Fatalf("Wardrobe: %v", err)
	}
	if got != "req-123" {
		t.Fatalf("expected context request id, got %q", got)
	}
}

func TestWardrobeRejectsMisfiledItems(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tops":[{"id":1,"category":"shoes"}],"bottoms":[],"shoes":[]}`))
	}))
	_, err := client.Wardrobe(context.Background())
	if !errors.Is(err, services.ErrRemoteRejection) {
		t.Fatalf("expected remote rejection, got %v", err)
	}
}

func TestRemoteErrorDetail(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		detail string
	}{
		{"string detail", http.StatusNotFound, `{"detail":"衣物不存在"}`, "衣物不存在"},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","item"],"msg":"field required","type":"value_error.missing"}]}`, "item: field required"},
		{"plain body", http.StatusInternalServerError, `Internal Server Error`, "Internal Server Error"},
		{"empty body", http.StatusBadGateway, ``, "Bad Gateway"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			err := client.DeleteItem(context.Background(), 3)
			if !errors.Is(err, services.ErrRemoteRejection) {
				t.Fatalf("expected remote rejection, got %v", err)
			}
			var remote *RemoteError
			if !errors.As(err, &remote) {
				t.Fatalf("expected RemoteError in chain, got %v", err)
			}
			if remote.Status != tt.status || remote.Detail != tt.detail {
				t.Fatalf("unexpected remote error %+v", remote)
			}
			if got := services.Details(err).Message; got != tt.detail {
				t.Fatalf("expected display message %q, got %q", tt.detail, got)
			}
		})
	}
}

func TestNotFoundIsMarked(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"衣物不存在"}`))
	}))
	_, err := client.Item(context.Background(), 99)
	if !errors.Is(err, services.ErrNotFound) || !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	client, err := NewClient(Config{APIBaseURL: base + "/api", TimeoutSeconds: 1})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	_, err = client.Wardrobe(context.Background())
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport failure, got %v", err)
	}
	if errors.Is(err, services.ErrRemoteRejection) {
		t.Fatalf("transport failure must not be a rejection: %v", err)
	}
}

func TestCancelledContextIsTransportFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Recommendation(ctx, "101020100")
	if !errors.Is(err, services.ErrTransport) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled transport failure, got %v", err)
	}
}

func TestUpdateItemSendsBody(t *testing.T) {
	var got wardrobe.Update
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/clothes/5" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"message":"更新成功","id":5}`))
	}))
	update := wardrobe.Update{
		Category:      wardrobe.CategoryBottom,
		Name:          "牛仔裤",
		Styles:        []string{"休闲"},
		Seasons:       []string{},
		Usages:        []string{},
		ImageFilename: "b.png",
	}
	if err := client.UpdateItem(context.Background(), 5, update); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if got.Name != "牛仔裤" || got.ImageFilename != "b.png" || got.Category != wardrobe.CategoryBottom {
		t.Fatalf("unexpected body %+v", got)
	}
}

func TestRecommendationDecodes(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("location"); got != "101010100" {
			t.Errorf("unexpected location %q", got)
		}
		_, _ = w.Write([]byte(`{
			"weather":{"temperature":21.5,"feelsLike":20,"condition":"晴","icon":"100","humidity":40,"windDir":"东风","windScale":"3","obsTime":"2024-05-01T10:00+08:00"},
			"recommendation_text":"今天适合穿衬衫 👕",
			"suggested_top":{"id":1,"category":"top","item":"衬衫","style_semantics":[],"season_semantics":[],"usage_semantics":[],"color_semantics":"","description":"","image_url":"/uploads/1.png"},
			"suggested_bottom":null
		}`))
	}))
	rec, err := client.Recommendation(context.Background(), "101010100")
	if err != nil {
		t.Fatalf("Recommendation: %v", err)
	}
	if rec.Weather.Temperature != 21.5 || rec.Weather.Icon != "100" || rec.Weather.WindScale != "3" {
		t.Fatalf("unexpected weather %+v", rec.Weather)
	}
	if rec.SuggestedTop == nil || rec.SuggestedTop.ID != 1 {
		t.Fatalf("unexpected suggested top %+v", rec.SuggestedTop)
	}
	if rec.SuggestedBottom != nil {
		t.Fatalf("expected no suggested bottom, got %+v", rec.SuggestedBottom)
	}
}

func TestSearchCitiesBlankQueryIsLocal(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[]`))
	}))
	for _, query := range []string{"", "   "} {
		cities, err := client.SearchCities(context.Background(), query)
		if err != nil {
			t.Fatalf("SearchCities(%q): %v", query, err)
		}
		if cities == nil || len(cities) != 0 {
			t.Fatalf("expected empty non-nil result, got %#v", cities)
		}
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no requests, got %d", calls.Load())
	}
}

func TestSearchCities(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/cities" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "10" {
			t.Errorf("expected default limit 10, got %q", got)
		}
		if r.URL.Query().Get("query") == "nowhere" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"未找到匹配的城市"}`))
			return
		}
		_, _ = w.Write([]byte(`[{"name":"北京","id":"101010100","adm1":"北京市","adm2":"北京","country":"中国","lat":"39.90","lon":"116.40"}]`))
	}))

	cities, err := client.SearchCities(context.Background(), " 北京 ")
	if err != nil {
		t.Fatalf("SearchCities: %v", err)
	}
	if len(cities) != 1 || cities[0].ID != "101010100" {
		t.Fatalf("unexpected cities %+v", cities)
	}
	if got := cities[0].Label(); got != "北京, 北京市" {
		t.Fatalf("unexpected label %q", got)
	}

	cities, err = client.SearchCities(context.Background(), "nowhere")
	if err != nil {
		t.Fatalf("SearchCities(nowhere): %v", err)
	}
	if len(cities) != 0 {
		t.Fatalf("expected empty result for rejection, got %+v", cities)
	}
}

func TestResolveImageURL(t *testing.T) {
	client, err := NewClient(Config{APIBaseURL: "http://host:8000/api/"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()
	tests := map[string]string{
		"":                          "",
		"/uploads/a.png":            "http://host:8000/uploads/a.png",
		"uploads/a.png":             "http://host:8000/uploads/a.png",
		"https://cdn.example/a.png": "https://cdn.example/a.png",
	}
	for ref, want := range tests {
		if got := client.ResolveImageURL(ref); got != want {
			t.Fatalf("ResolveImageURL(%q) = %q, want %q", ref, got, want)
		}
	}
	if !strings.HasSuffix(client.MediaBase(), ":8000") {
		t.Fatalf("unexpected media base %q", client.MediaBase())
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Config{}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
