package excursion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"
	"tripscout/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errCacheMiss = errors.New("cache miss")

// fakeCache is mutex-guarded because Filter writes to the cache from a
// background goroutine.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
	getErr  error
	setErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]string{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	val, ok := f.entries[key]
	if !ok {
		return "", errCacheMiss
	}
	return val, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[key] = value
	return nil
}

func (f *fakeCache) Del(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

func (f *fakeCache) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func (f *fakeCache) seed(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value
}

type fakeClient struct {
	response *SearchResponse
	err      error
	calls    int
}

func (f *fakeClient) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	// Fresh copy so service mutation never leaks between calls.
	excursions := make([]Excursion, len(f.response.Excursions))
	copy(excursions, f.response.Excursions)
	return &SearchResponse{Metadata: f.response.Metadata, Excursions: excursions}, nil
}

func newTestService(client ExcursionClient, c *fakeCache) *Service {
	return NewService(client, c, 30, logger.NewWithWriter("test", io.Discard))
}

func providerResponse() *SearchResponse {
	return &SearchResponse{
		Metadata: Metadata{ProvidersQueried: 1, ProvidersSucceeded: 1},
		Excursions: []Excursion{
			{ID: "a", Rating: 4.5, Price: 100, Category: "Culture"},
			{ID: "b", Rating: 4.8, Price: 200, Category: "Adventure"},
			{ID: "c", Rating: 4.8, Price: 50, Category: "Adventure"},
		},
	}
}

func TestServiceSearch_MissQueriesProviderAndRanks(t *testing.T) {
	client := &fakeClient{response: providerResponse()}
	cache := newFakeCache()
	s := newTestService(client, cache)

	resp, err := s.Search(context.Background(), SearchRequest{Destination: "Paris"})
	require.NoError(t, err)

	assert.Equal(t, 1, client.calls)
	assert.Equal(t, []string{"c", "b", "a"}, ids(resp.Excursions))
	assert.False(t, resp.Metadata.CacheHit)
	assert.NotEmpty(t, resp.Metadata.CacheKey)
	assert.Equal(t, uint32(3), resp.Metadata.TotalResults)
	assert.Equal(t, 1, cache.len(), "ranked response must be cached")
}

func TestServiceSearch_HitSkipsProvider(t *testing.T) {
	client := &fakeClient{response: providerResponse()}
	cache := newFakeCache()
	s := newTestService(client, cache)

	first, err := s.Search(context.Background(), SearchRequest{Destination: "Paris"})
	require.NoError(t, err)

	second, err := s.Search(context.Background(), SearchRequest{Destination: "Paris"})
	require.NoError(t, err)

	assert.Equal(t, 1, client.calls, "second search must be served from cache")
	assert.True(t, second.Metadata.CacheHit)
	assert.Equal(t, first.Metadata.CacheKey, second.Metadata.CacheKey)
	assert.Equal(t, ids(first.Excursions), ids(second.Excursions))
}

func TestServiceSearch_KeyVariesWithParameters(t *testing.T) {
	client := &fakeClient{response: providerResponse()}
	cache := newFakeCache()
	s := newTestService(client, cache)

	_, err := s.Search(context.Background(), SearchRequest{Destination: "Paris"})
	require.NoError(t, err)
	_, err = s.Search(context.Background(), SearchRequest{Destination: "Paris", Page: 2})
	require.NoError(t, err)
	_, err = s.Search(context.Background(), SearchRequest{Destination: "London"})
	require.NoError(t, err)

	assert.Equal(t, 3, client.calls)
	assert.Equal(t, 3, cache.len())
}

func TestServiceSearch_DefaultsAppliedBeforeKeying(t *testing.T) {
	client := &fakeClient{response: providerResponse()}
	cache := newFakeCache()
	s := newTestService(client, cache)

	// Page 0 and page 1 normalize to the same request.
	_, err := s.Search(context.Background(), SearchRequest{Destination: "Paris"})
	require.NoError(t, err)
	_, err = s.Search(context.Background(), SearchRequest{Destination: "Paris", Page: 1, Limit: 20, Currency: "USD"})
	require.NoError(t, err)

	assert.Equal(t, 1, client.calls)
}

func TestServiceSearch_ProviderErrorPropagates(t *testing.T) {
	provErr := NewProviderError(502, "bad gateway")
	client := &fakeClient{err: provErr}
	cache := newFakeCache()
	s := newTestService(client, cache)

	_, err := s.Search(context.Background(), SearchRequest{Destination: "Paris"})
	require.Error(t, err)
	assert.ErrorIs(t, err, provErr)
	assert.Zero(t, cache.len(), "errors are never cached")
}

func TestServiceSearch_CorruptCacheEntryFallsThrough(t *testing.T) {
	client := &fakeClient{response: providerResponse()}
	cache := newFakeCache()
	s := newTestService(client, cache)

	key := s.generateCacheKey(SearchRequest{Destination: "Paris"}.WithDefaults())
	cache.seed(key, "{not json")

	resp, err := s.Search(context.Background(), SearchRequest{Destination: "Paris"})
	require.NoError(t, err)
	assert.Equal(t, 1, client.calls)
	assert.False(t, resp.Metadata.CacheHit)
}

func TestServiceSearch_CacheSetFailureIsNotFatal(t *testing.T) {
	client := &fakeClient{response: providerResponse()}
	cache := newFakeCache()
	cache.setErr = errors.New("redis down")
	s := newTestService(client, cache)

	resp, err := s.Search(context.Background(), SearchRequest{Destination: "Paris"})
	require.NoError(t, err)
	assert.Len(t, resp.Excursions, 3)
}

func TestServiceFilter_CachedResultFilteredWithoutProviderCall(t *testing.T) {
	client := &fakeClient{response: providerResponse()}
	cache := newFakeCache()
	s := newTestService(client, cache)

	// Prime the cache through a normal search.
	_, err := s.Search(context.Background(), SearchRequest{Destination: "Paris"})
	require.NoError(t, err)
	require.Equal(t, 1, client.calls)

	min := 4.6
	resp, err := s.Filter(context.Background(), FilterRequest{
		SearchRequest: SearchRequest{Destination: "Paris"},
		Filters:       &FilterOptions{MinRating: &min},
		Sort:          &SortOptions{By: "price", Order: "asc"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, client.calls, "filter over a cached search must not refetch")
	assert.True(t, resp.Metadata.CacheHit)
	assert.Equal(t, []string{"c", "b"}, ids(resp.Excursions))
	assert.Equal(t, uint32(2), resp.Metadata.TotalResults)
}

func TestServiceFilter_MissRefreshesAndRecaches(t *testing.T) {
	client := &fakeClient{response: providerResponse()}
	cache := newFakeCache()
	s := newTestService(client, cache)

	resp, err := s.Filter(context.Background(), FilterRequest{
		SearchRequest: SearchRequest{Destination: "Paris"},
		Filters:       &FilterOptions{Categories: []string{"Adventure"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, client.calls)
	assert.False(t, resp.Metadata.CacheHit)
	assert.Equal(t, []string{"c", "b"}, ids(resp.Excursions))

	// The refreshed search is cached in the background, unfiltered.
	require.Eventually(t, func() bool { return cache.len() == 1 }, time.Second, 5*time.Millisecond)

	key := s.generateCacheKey(SearchRequest{Destination: "Paris"}.WithDefaults())
	raw, err := cache.Get(context.Background(), key)
	require.NoError(t, err)

	var cached SearchResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Len(t, cached.Excursions, 3, "cache keeps the full result set, not the filtered view")
}

func TestServiceFilter_NoCriteriaReturnsRankedSet(t *testing.T) {
	client := &fakeClient{response: providerResponse()}
	cache := newFakeCache()
	s := newTestService(client, cache)

	resp, err := s.Filter(context.Background(), FilterRequest{
		SearchRequest: SearchRequest{Destination: "Paris"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, ids(resp.Excursions))
}

func TestServiceFilter_ProviderErrorPropagates(t *testing.T) {
	client := &fakeClient{err: NewDestinationNotFound("Atlantis")}
	s := newTestService(client, newFakeCache())

	_, err := s.Filter(context.Background(), FilterRequest{
		SearchRequest: SearchRequest{Destination: "Atlantis"},
	})

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrorCodeDestinationNotFound, appErr.Code)
}

func TestServiceInvalidateCache(t *testing.T) {
	client := &fakeClient{response: providerResponse()}
	cache := newFakeCache()
	s := newTestService(client, cache)

	_, err := s.Search(context.Background(), SearchRequest{Destination: "Paris"})
	require.NoError(t, err)
	require.Equal(t, 1, cache.len())

	require.NoError(t, s.InvalidateCache(context.Background(), SearchRequest{Destination: "Paris"}))
	assert.Zero(t, cache.len())

	_, err = s.Search(context.Background(), SearchRequest{Destination: "Paris"})
	require.NoError(t, err)
	assert.Equal(t, 2, client.calls, "invalidation must force a refetch")
}
