package excursionclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"tripscout/internal/excursion"
	"tripscout/pkg/logger"

	"github.com/tidwall/gjson"
)

const viatorProviderName = "Viator"

// maxErrorBodyBytes bounds how much upstream error text is carried in a
// ProviderError.
const maxErrorBodyBytes = 2048

type ViatorClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	partnerID  string
	logger     logger.Client
}

func NewViatorClient(httpClient *http.Client, baseURL, apiKey, partnerID string, logger logger.Client) *ViatorClient {
	return &ViatorClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		partnerID:  partnerID,
		logger:     logger,
	}
}

func (v *ViatorClient) Name() string {
	return viatorProviderName
}

type viatorFiltering struct {
	Destination int64  `json:"destination"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
}

type viatorPagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type viatorSearchBody struct {
	Filtering  viatorFiltering  `json:"filtering"`
	Currency   string           `json:"currency"`
	Pagination viatorPagination `json:"pagination"`
}

// Search resolves the destination, calls the product-search endpoint and
// normalizes every returned item. The second return value is how many raw
// items were dropped as malformed.
func (v *ViatorClient) Search(ctx context.Context, req excursion.SearchRequest) ([]excursion.Excursion, int, error) {
	if v.apiKey == "" {
		return nil, 0, excursion.NewConfigurationError("viator api key is not configured")
	}

	req = req.WithDefaults()

	destinationID, ok := v.resolveDestination(ctx, req.Destination)
	if !ok {
		return nil, 0, excursion.NewDestinationNotFound(req.Destination)
	}

	body := viatorSearchBody{
		Filtering: viatorFiltering{
			Destination: destinationID,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
		},
		Currency: req.Currency,
		Pagination: viatorPagination{
			Offset: (req.Page - 1) * req.Limit,
			Limit:  req.Limit,
		},
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("viator: failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/products/search", v.baseURL)
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, 0, fmt.Errorf("viator: failed to build request: %w", err)
	}
	v.setHeaders(r)

	resp, err := v.httpClient.Do(r)
	if err != nil {
		return nil, 0, excursion.NewProviderTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := readBody(resp)
	if err != nil {
		return nil, 0, excursion.NewProviderTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody := raw
		if len(errBody) > maxErrorBodyBytes {
			errBody = errBody[:maxErrorBodyBytes]
		}
		return nil, 0, excursion.NewProviderError(resp.StatusCode, string(errBody))
	}

	root := gjson.ParseBytes(raw)

	// The products array has moved between schema versions, tolerate the
	// known key names.
	items := firstArray(root, "products", "data", "results")

	excursions, dropped := v.transformProducts(items, req.Destination)

	v.logger.Debug("viator: search complete",
		logger.Field{Key: "destination", Value: req.Destination},
		logger.Field{Key: "raw_items", Value: len(items)},
		logger.Field{Key: "transformed", Value: len(excursions)},
		logger.Field{Key: "dropped", Value: dropped},
	)

	return excursions, dropped, nil
}

func (v *ViatorClient) setHeaders(r *http.Request) {
	r.Header.Set("Accept", "application/json;version=2.0")
	r.Header.Set("Accept-Language", "en-US")
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("exp-api-key", v.apiKey)
}

func readBody(resp *http.Response) ([]byte, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return raw, nil
}

// firstArray returns the first of the named keys holding an array.
func firstArray(root gjson.Result, keys ...string) []gjson.Result {
	for _, key := range keys {
		if val := root.Get(key); val.IsArray() {
			return val.Array()
		}
	}
	return nil
}

// firstString returns the first of the named keys holding a non-empty string.
func firstString(item gjson.Result, keys ...string) string {
	for _, key := range keys {
		if val := item.Get(key); val.Exists() && val.String() != "" {
			return val.String()
		}
	}
	return ""
}

// firstNumber returns the first of the named keys holding a non-zero number.
func firstNumber(item gjson.Result, keys ...string) int64 {
	for _, key := range keys {
		if val := item.Get(key); val.Exists() && val.Int() != 0 {
			return val.Int()
		}
	}
	return 0
}
