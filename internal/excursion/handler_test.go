package excursion

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(client ExcursionClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(newTestService(client, newFakeCache())).RegisterRoutes(router)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSearchHandler_MissingDestination(t *testing.T) {
	router := newTestRouter(&fakeClient{response: providerResponse()})

	rec := doRequest(t, router, http.MethodGet, "/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Destination is required", body["error"])
	assert.Equal(t, string(ErrorCodeValidation), body["code"])
}

func TestSearchHandler_Success(t *testing.T) {
	router := newTestRouter(&fakeClient{response: providerResponse()})

	rec := doRequest(t, router, http.MethodGet, "/search?destination=Paris", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	assert.Len(t, result.Excursions, 3)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Page)
	assert.Empty(t, result.Error)
	require.NotNil(t, result.Metadata)
	assert.False(t, result.Metadata.CacheHit)
	assert.Equal(t, "c", result.Excursions[0].ID, "response is ranked")
}

func TestSearchHandler_PageParam(t *testing.T) {
	router := newTestRouter(&fakeClient{response: providerResponse()})

	rec := doRequest(t, router, http.MethodGet, "/search?destination=Paris&page=3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 3, result.Page)
}

func TestSearchHandler_BadPageDefaultsToOne(t *testing.T) {
	router := newTestRouter(&fakeClient{response: providerResponse()})

	for _, page := range []string{"abc", "-2", "0"} {
		rec := doRequest(t, router, http.MethodGet, "/search?destination=Paris&page="+page, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var result SearchResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, 1, result.Page, "page=%s", page)
	}
}

func TestSearchHandler_ProviderFailureDegradesToEmptyResult(t *testing.T) {
	router := newTestRouter(&fakeClient{err: NewProviderError(503, "unavailable")})

	rec := doRequest(t, router, http.MethodGet, "/search?destination=Paris", "")
	require.Equal(t, http.StatusOK, rec.Code, "provider flakiness must not surface as an HTTP error")

	var result SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotNil(t, result.Excursions)
	assert.Empty(t, result.Excursions)
	assert.Zero(t, result.Total)
	assert.Equal(t, 1, result.Page)
	assert.Contains(t, result.Error, "503")
}

func TestSearchHandler_DestinationNotFoundDegrades(t *testing.T) {
	router := newTestRouter(&fakeClient{err: NewDestinationNotFound("Elbonia")})

	rec := doRequest(t, router, http.MethodGet, "/search?destination=Elbonia", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Empty(t, result.Excursions)
	assert.Contains(t, result.Error, "Elbonia")
}

func TestSearchHandler_UnexpectedErrorIs500(t *testing.T) {
	router := newTestRouter(&fakeClient{err: errors.New("pq: connection refused")})

	rec := doRequest(t, router, http.MethodGet, "/search?destination=Paris", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(ErrorCodeInternalFailure), body["code"])
}

func TestFilterHandler_InvalidBody(t *testing.T) {
	router := newTestRouter(&fakeClient{response: providerResponse()})

	rec := doRequest(t, router, http.MethodPost, "/v1/excursions/filter", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFilterHandler_MissingDestination(t *testing.T) {
	router := newTestRouter(&fakeClient{response: providerResponse()})

	rec := doRequest(t, router, http.MethodPost, "/v1/excursions/filter", `{"filters":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Destination is required", body["error"])
}

func TestFilterHandler_FiltersAndSorts(t *testing.T) {
	router := newTestRouter(&fakeClient{response: providerResponse()})

	rec := doRequest(t, router, http.MethodPost, "/v1/excursions/filter", `{
		"destination": "Paris",
		"filters": {"categories": ["adventure"]},
		"sort": {"by": "price", "order": "desc"}
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	require.Len(t, result.Excursions, 2)
	assert.Equal(t, "b", result.Excursions[0].ID)
	assert.Equal(t, "c", result.Excursions[1].ID)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Page)
}

func TestFilterHandler_DegradesLikeSearch(t *testing.T) {
	router := newTestRouter(&fakeClient{err: NewConfigurationError("no providers configured")})

	rec := doRequest(t, router, http.MethodPost, "/v1/excursions/filter", `{"destination": "Paris"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Empty(t, result.Excursions)
	assert.Equal(t, "no providers configured", result.Error)
}
