package excursion

// Excursion is the canonical record every provider result is normalized into.
// Thumbnail and AffiliateLink are always populated, even from partial source
// data.
type Excursion struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"reviewCount"`
	Duration      string   `json:"duration"`
	Provider      string   `json:"provider"`
	Thumbnail     string   `json:"thumbnail"`
	Category      string   `json:"category"`
	Location      string   `json:"location"`
	AffiliateLink string   `json:"affiliateLink"`
	Day           int      `json:"day,omitempty"`
	Images        []string `json:"images,omitempty"`
}

type SearchRequest struct {
	Destination string `json:"destination"`
	StartDate   string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate     string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Page        int    `json:"page"`
	Limit       int    `json:"limit"`
	Currency    string `json:"currency,omitempty"`
}

const (
	DefaultLimit    = 20
	MaxLimit        = 100
	DefaultCurrency = "USD"
)

// WithDefaults returns a copy with page/limit/currency normalized.
func (r SearchRequest) WithDefaults() SearchRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit <= 0 {
		r.Limit = DefaultLimit
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
	if r.Currency == "" {
		r.Currency = DefaultCurrency
	}
	return r
}

type ProviderFailure struct {
	Provider string    `json:"provider"`
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message,omitempty"`
}

type Metadata struct {
	TotalResults       uint32            `json:"total_results"`
	ProvidersQueried   uint32            `json:"providers_queried"`
	ProvidersSucceeded uint32            `json:"providers_succeeded"`
	ProvidersFailed    uint32            `json:"providers_failed"`
	ProviderErrors     []ProviderFailure `json:"provider_errors,omitempty"`
	ItemsDropped       uint32            `json:"items_dropped,omitempty"`
	SearchTimeMs       uint32            `json:"search_time_ms,omitempty"`
	CacheHit           bool              `json:"cache_hit"`
	CacheKey           string            `json:"cache_key,omitempty"`
}

type SearchResponse struct {
	Metadata   Metadata    `json:"metadata"`
	Excursions []Excursion `json:"excursions"`
}

type PriceRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

type FilterOptions struct {
	PriceRange *PriceRange `json:"price_range,omitempty"`
	Categories []string    `json:"categories,omitempty"`
	MinRating  *float64    `json:"min_rating,omitempty"`
}

type SortOptions struct {
	By    string `json:"by"`    // rating, price, review_count
	Order string `json:"order"` // asc, desc
}

type FilterRequest struct {
	SearchRequest
	Filters *FilterOptions `json:"filters,omitempty"`
	Sort    *SortOptions   `json:"sort,omitempty"`
}
