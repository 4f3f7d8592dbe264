package model

import "time"

// ClothingOrder is the single aggregated merch order for an event. Per-size
// quantities are summed from the child rows parents submit; the upsert keeps
// exactly one order record per event.
type ClothingOrder struct {
	ID        string         `json:"id,omitempty"`
	EventID   string         `json:"eventId"`
	Sizes     map[string]int `json:"sizes"`
	Total     int            `json:"total"`
	GoID      string         `json:"goId,omitempty"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// ShopifyOrder is the slice of a storefront order the task pipeline needs.
type ShopifyOrder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	EventID   string    `json:"eventId"`
	Kind      TaskKind  `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}
