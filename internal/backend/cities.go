package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"

	"wardrobe/internal/logging"
	"wardrobe/internal/services"
)

const (
	defaultCityTTL      = 10 * time.Minute
	defaultCacheMaxCost = 1 << 20
)

type cityLoader func(ctx context.Context, query string, limit int) ([]City, error)

// cityCache memoises successful city searches. Failed loads are never stored.
type cityCache struct {
	loadable *cache.LoadableCache[[]City]
}

func newCityCache(ttl time.Duration, maxCost int64, load cityLoader) (*cityCache, error) {
	if ttl <= 0 {
		ttl = defaultCityTTL
	}
	if maxCost <= 0 {
		maxCost = defaultCacheMaxCost
	}
	rc, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}

	loadFn := func(ctx context.Context, key any) ([]City, []store.Option, error) {
		raw, ok := key.(string)
		if !ok {
			return nil, nil, fmt.Errorf("city cache: unexpected key type %T", key)
		}
		query, limit := splitCityKey(raw)
		cities, err := load(ctx, query, limit)
		if err != nil {
			return nil, nil, err
		}
		return cities, []store.Option{
			store.WithExpiration(ttl),
			store.WithCost(cityCost(cities)),
		}, nil
	}

	return &cityCache{
		loadable: cache.NewLoadable[[]City](loadFn, cache.New[[]City](ristretto_store.NewRistretto(rc))),
	}, nil
}

func (c *cityCache) Get(ctx context.Context, query string, limit int) ([]City, error) {
	return c.loadable.Get(ctx, cityKey(query, limit))
}

func (c *cityCache) Close() {
	_ = c.loadable.Close()
}

func cityKey(query string, limit int) string {
	return strconv.Itoa(limit) + "|" + query
}

func splitCityKey(key string) (string, int) {
	prefix, query, ok := strings.Cut(key, "|")
	if !ok {
		return key, 0
	}
	limit, _ := strconv.Atoi(prefix)
	return query, limit
}

func cityCost(cities []City) int64 {
	var cost int64 = 1
	for _, city := range cities {
		cost += int64(len(city.Name) + len(city.ID) + len(city.Adm1) + len(city.Adm2) + len(city.Country) + len(city.Lat) + len(city.Lon))
	}
	return cost
}

// SearchCities looks up cities by free text. A blank query returns an empty
// list without a request; a backend rejection (including "no match") also
// yields an empty list. Transport failures are returned.
func (c *Client) SearchCities(ctx context.Context, query string) ([]City, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []City{}, nil
	}
	cities, err := c.cities.Get(ctx, query, c.cfg.CitySearchLimit)
	if err != nil {
		if errors.Is(err, services.ErrRemoteRejection) {
			c.logger.Debug("city search returned no results",
				logging.String("query", query),
				logging.Error(err),
			)
			return []City{}, nil
		}
		return nil, err
	}
	if cities == nil {
		cities = []City{}
	}
	return cities, nil
}

func (c *Client) fetchCities(ctx context.Context, query string, limit int) ([]City, error) {
	if limit <= 0 {
		limit = c.cfg.CitySearchLimit
	}
	values := url.Values{}
	values.Set("query", query)
	values.Set("limit", strconv.Itoa(limit))
	var cities []City
	if err := c.do(ctx, "search cities", http.MethodGet, "/cities", values, nil, "", &cities); err != nil {
		return nil, err
	}
	return cities, nil
}
