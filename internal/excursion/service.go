package excursion

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"
	"tripscout/pkg/cache"
	"tripscout/pkg/logger"
)

// ExcursionClient aggregates one or more upstream booking providers.
type ExcursionClient interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

type Service struct {
	client ExcursionClient
	cache  cache.Cache
	ttl    time.Duration
	logger logger.Client
}

func NewService(client ExcursionClient, cache cache.Cache, ttlMinutes int, logger logger.Client) *Service {
	return &Service{
		client: client,
		cache:  cache,
		ttl:    time.Duration(ttlMinutes) * time.Minute,
		logger: logger,
	}
}

// generateCacheKey creates a deterministic key from search parameters
func (s *Service) generateCacheKey(req SearchRequest) string {
	key := fmt.Sprintf("excursion:%s:%s:%s:%d:%d:%s",
		req.Destination,
		req.StartDate,
		req.EndDate,
		req.Page,
		req.Limit,
		req.Currency,
	)

	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("excursion:search:%x", hash[:16])
}

func (s *Service) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	req = req.WithDefaults()
	cacheKey := s.generateCacheKey(req)

	cached, err := s.cache.Get(ctx, cacheKey)
	if err == nil && cached != "" {
		var response SearchResponse
		if err := json.Unmarshal([]byte(cached), &response); err == nil {
			response.Metadata.CacheHit = true
			response.Metadata.CacheKey = cacheKey
			return &response, nil
		}
		s.logger.Error("failed to unmarshal cached search", logger.Field{Key: "err", Value: err})
	}

	startTime := time.Now()
	response, err := s.client.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	response.Excursions = rankExcursions(response.Excursions)
	response.Metadata.TotalResults = uint32(len(response.Excursions))
	response.Metadata.SearchTimeMs = uint32(time.Since(startTime).Milliseconds())
	response.Metadata.CacheHit = false
	response.Metadata.CacheKey = cacheKey

	responseBytes, err := json.Marshal(response)
	if err != nil {
		s.logger.Error("failed to marshal search response", logger.Field{Key: "err", Value: err})
		return response, nil // Return response even if caching fails
	}

	if err := s.cache.Set(ctx, cacheKey, string(responseBytes), s.ttl); err != nil {
		s.logger.Error("failed to cache search response", logger.Field{Key: "err", Value: err})
	}

	return response, nil
}

// Filter re-filters and re-sorts a previous search, refreshing from the
// providers when the cached result is gone.
func (s *Service) Filter(ctx context.Context, req FilterRequest) (*SearchResponse, error) {
	req.SearchRequest = req.SearchRequest.WithDefaults()
	cacheKey := s.generateCacheKey(req.SearchRequest)

	cached, err := s.cache.Get(ctx, cacheKey)
	if err == nil && cached != "" {
		var response SearchResponse
		if err := json.Unmarshal([]byte(cached), &response); err == nil {
			filtered := s.applyFilterRequest(response.Excursions, req)

			return &SearchResponse{
				Metadata: Metadata{
					TotalResults:       uint32(len(filtered)),
					ProvidersQueried:   response.Metadata.ProvidersQueried,
					ProvidersSucceeded: response.Metadata.ProvidersSucceeded,
					ProvidersFailed:    response.Metadata.ProvidersFailed,
					ProviderErrors:     response.Metadata.ProviderErrors,
					ItemsDropped:       response.Metadata.ItemsDropped,
					SearchTimeMs:       response.Metadata.SearchTimeMs,
					CacheKey:           cacheKey,
					CacheHit:           true,
				},
				Excursions: filtered,
			}, nil
		}
		s.logger.Error("failed to unmarshal cached search", logger.Field{Key: "err", Value: err})
	}

	// Cache miss - refresh from providers, the user waits for this.
	startTime := time.Now()
	response, err := s.client.Search(ctx, req.SearchRequest)
	if err != nil {
		return nil, err
	}

	response.Excursions = rankExcursions(response.Excursions)
	response.Metadata.SearchTimeMs = uint32(time.Since(startTime).Milliseconds())
	response.Metadata.CacheHit = false
	response.Metadata.CacheKey = cacheKey

	if responseBytes, err := json.Marshal(response); err == nil {
		go func() {
			bgCtx := context.Background() // survive the request context
			if err := s.cache.Set(bgCtx, cacheKey, string(responseBytes), s.ttl); err != nil {
				s.logger.Error("failed to cache refreshed search",
					logger.Field{Key: "err", Value: err},
					logger.Field{Key: "cache_key", Value: cacheKey},
				)
			}
		}()
	}

	filtered := s.applyFilterRequest(response.Excursions, req)

	return &SearchResponse{
		Metadata: Metadata{
			TotalResults:       uint32(len(filtered)),
			ProvidersQueried:   response.Metadata.ProvidersQueried,
			ProvidersSucceeded: response.Metadata.ProvidersSucceeded,
			ProvidersFailed:    response.Metadata.ProvidersFailed,
			ProviderErrors:     response.Metadata.ProviderErrors,
			ItemsDropped:       response.Metadata.ItemsDropped,
			SearchTimeMs:       response.Metadata.SearchTimeMs,
			CacheKey:           cacheKey,
			CacheHit:           false,
		},
		Excursions: filtered,
	}, nil
}

func (s *Service) applyFilterRequest(excursions []Excursion, req FilterRequest) []Excursion {
	filtered := excursions
	if req.Filters != nil {
		filtered = applyFilters(filtered, *req.Filters)
	}
	if req.Sort != nil {
		filtered = s.applySorting(filtered, *req.Sort)
	}
	return filtered
}

// InvalidateCache manually invalidates cache for one search criteria
func (s *Service) InvalidateCache(ctx context.Context, req SearchRequest) error {
	cacheKey := s.generateCacheKey(req.WithDefaults())
	s.logger.Info("invalidating cache", logger.Field{Key: "cache_key", Value: cacheKey})
	return s.cache.Del(ctx, cacheKey)
}
