package excursionclient

import (
	"context"
	"errors"
	"sync"
	"time"
	"tripscout/internal/excursion"
	"tripscout/pkg/logger"
)

// Provider is one upstream excursion source.
type Provider interface {
	Name() string
	Search(ctx context.Context, req excursion.SearchRequest) ([]excursion.Excursion, int, error)
}

// Manager fans a search out to every configured provider. Providers run
// concurrently under their own timeout; one failing or slow provider never
// blocks or cancels the others.
type Manager struct {
	providers []Provider
	timeout   time.Duration
	logger    logger.Client
}

func NewManager(providers []Provider, timeout time.Duration, logger logger.Client) *Manager {
	return &Manager{
		providers: providers,
		timeout:   timeout,
		logger:    logger,
	}
}

type providerResult struct {
	excursions []excursion.Excursion
	dropped    int
	err        error
}

func (m *Manager) Search(ctx context.Context, req excursion.SearchRequest) (*excursion.SearchResponse, error) {
	if len(m.providers) == 0 {
		return nil, excursion.NewConfigurationError("no excursion providers configured")
	}

	results := make([]providerResult, len(m.providers))

	var wg sync.WaitGroup
	for i, provider := range m.providers {
		wg.Add(1)
		go func(i int, provider Provider) {
			defer wg.Done()

			pctx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()

			excursions, dropped, err := provider.Search(pctx, req)
			results[i] = providerResult{excursions: excursions, dropped: dropped, err: err}
		}(i, provider)
	}
	wg.Wait()

	metadata := excursion.Metadata{
		ProvidersQueried: uint32(len(m.providers)),
	}

	var merged []excursion.Excursion
	var firstErr error
	for i, res := range results {
		name := m.providers[i].Name()
		if res.err != nil {
			m.logger.Error("provider search failed",
				logger.Field{Key: "provider", Value: name},
				logger.Field{Key: "err", Value: res.err},
			)
			metadata.ProvidersFailed++
			metadata.ProviderErrors = append(metadata.ProviderErrors, excursion.ProviderFailure{
				Provider: name,
				Code:     classifyProviderError(res.err),
				Message:  res.err.Error(),
			})
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}

		metadata.ProvidersSucceeded++
		metadata.ItemsDropped += uint32(res.dropped)
		merged = append(merged, res.excursions...)
	}

	// Every provider failed: propagate so the handler can degrade with a
	// message. Partial failure still returns the surviving results.
	if metadata.ProvidersSucceeded == 0 {
		return nil, firstErr
	}

	metadata.TotalResults = uint32(len(merged))

	return &excursion.SearchResponse{
		Metadata:   metadata,
		Excursions: merged,
	}, nil
}

func classifyProviderError(err error) excursion.ErrorCode {
	if errors.Is(err, context.DeadlineExceeded) {
		return excursion.ErrorCodeTimeout
	}

	var appErr *excursion.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return excursion.ErrorCodeProviderFailure
}
