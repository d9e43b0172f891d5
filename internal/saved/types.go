package saved

import (
	"encoding/json"
	"time"
)

// SavedExcursion is one favorited excursion. Excursion is a raw snapshot of
// the canonical record at save time.
type SavedExcursion struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	ExcursionID string          `json:"excursion_id"`
	Excursion   json.RawMessage `json:"excursion_data"`
	CreatedAt   time.Time       `json:"created_at"`
}

type SaveRequest struct {
	ExcursionID string          `json:"excursion_id"`
	Excursion   json.RawMessage `json:"excursion_data"`
}
