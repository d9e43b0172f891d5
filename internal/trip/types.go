package trip

import (
	"encoding/json"
	"time"
)

// Trip is a user's multi-day plan. Dates are YYYY-MM-DD strings, matching the
// search date inputs.
type Trip struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Destination string    `json:"destination"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// TripExcursion is one excursion attached to a trip. Excursion holds a raw
// snapshot of the canonical record as it was at save time, not a live
// reference.
type TripExcursion struct {
	ID          string          `json:"id"`
	TripID      string          `json:"trip_id"`
	ExcursionID string          `json:"excursion_id"`
	Day         *int            `json:"day,omitempty"`
	Excursion   json.RawMessage `json:"excursion_data"`
	CreatedAt   time.Time       `json:"created_at"`
}

type CreateTripRequest struct {
	Name        string `json:"name"`
	Destination string `json:"destination"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type AddExcursionRequest struct {
	ExcursionID string          `json:"excursion_id"`
	Day         *int            `json:"day,omitempty"`
	Excursion   json.RawMessage `json:"excursion_data"`
}
