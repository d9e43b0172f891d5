package main

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"
)

type searchRequest struct {
	Filtering struct {
		Destination int64  `json:"destination"`
		StartDate   string `json:"startDate"`
		EndDate     string `json:"endDate"`
	} `json:"filtering"`
	Currency   string `json:"currency"`
	Pagination struct {
		Offset int `json:"offset"`
		Limit  int `json:"limit"`
	} `json:"pagination"`
}

type destinationRequest struct {
	SearchTerm string `json:"searchTerm"`
}

type destination struct {
	DestinationID int64  `json:"destinationId"`
	Name          string `json:"name"`
	Type          string `json:"type"`
}

// cannedDestinations backs the taxonomy lookup for names outside the static
// client-side table.
var cannedDestinations = []destination{
	{DestinationID: 903, Name: "Reykjavik", Type: "CITY"},
	{DestinationID: 911, Name: "Marrakech", Type: "CITY"},
	{DestinationID: 923, Name: "Cape Town", Type: "CITY"},
	{DestinationID: 934, Name: "Buenos Aires", Type: "CITY"},
	{DestinationID: 947, Name: "Lisbon", Type: "CITY"},
}

func ViatorProductSearchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.Header.Get("exp-api-key") == "" {
		http.Error(w, `{"code":"UNAUTHORIZED","message":"missing exp-api-key header"}`, http.StatusUnauthorized)
		return
	}

	var req searchRequest
	json.NewDecoder(r.Body).Decode(&req)

	data, err := os.ReadFile("mock/files/viator_search_response.json")
	if err != nil {
		http.Error(w, "Failed to read product data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	var fileResponse struct {
		Products   []json.RawMessage `json:"products"`
		TotalCount int               `json:"totalCount"`
	}
	if err := json.Unmarshal(data, &fileResponse); err != nil {
		http.Error(w, "Failed to parse product data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// Apply pagination
	products := fileResponse.Products
	offset := req.Pagination.Offset
	limit := req.Pagination.Limit
	if limit <= 0 {
		limit = 20
	}
	if offset >= len(products) {
		products = nil
	} else {
		end := offset + limit
		if end > len(products) {
			end = len(products)
		}
		products = products[offset:end]
	}

	delay := 50 + rand.Intn(51) // 50 to 100ms
	time.Sleep(time.Duration(delay) * time.Millisecond)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"products":   products,
		"totalCount": fileResponse.TotalCount,
	})
}

func ViatorDestinationsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req destinationRequest
	json.NewDecoder(r.Body).Decode(&req)

	term := strings.ToLower(strings.TrimSpace(req.SearchTerm))

	matched := make([]destination, 0)
	for _, d := range cannedDestinations {
		if term == "" || strings.Contains(strings.ToLower(d.Name), term) {
			matched = append(matched, d)
		}
	}

	delay := 50 + rand.Intn(51)
	time.Sleep(time.Duration(delay) * time.Millisecond)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"destinations": matched,
		"totalCount":   len(matched),
	})
}
