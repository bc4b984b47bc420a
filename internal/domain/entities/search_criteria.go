package entities

import (
	"strings"
	"time"
)

// Meal-time tags accepted by the recommendation endpoint
const (
	MealMorning = "morning"
	MealLunch   = "lunch"
	MealDinner  = "dinner"
)

// SearchCriteria is what the user asked for. MaxPrice is passed through
// unvalidated; the UI keeps it within 1..4.
type SearchCriteria struct {
	Keywords    string `json:"keywords"`
	MaxPrice    *int   `json:"max_price,omitempty"`
	Meal        string `json:"meal,omitempty"`
	Vegan       bool   `json:"vegan"`
	OpenNow     bool   `json:"open_now"`
	Personalize bool   `json:"personalize,omitempty"`
}

// MealAvailabilityKey maps a meal-time tag to the key used in good_for_meal
func MealAvailabilityKey(meal string) string {
	m := strings.ToLower(strings.TrimSpace(meal))
	if m == MealMorning {
		return "breakfast"
	}
	return m
}

// RecommendationBatch is the result of one completed search. It replaces the
// previous batch wholesale and is never mutated after creation.
type RecommendationBatch struct {
	Seq        uint64         `json:"seq"`
	Criteria   SearchCriteria `json:"criteria"`
	Results    []Restaurant   `json:"results"`
	ReceivedAt time.Time      `json:"received_at"`
}

// InteractionEvent is a user action reported back for relevance tuning
type InteractionEvent struct {
	BusinessID string  `json:"business_id"`
	EventType  string  `json:"event_type"`
	Categories *string `json:"categories,omitempty"`
	PriceLevel *int    `json:"price_level,omitempty"`
}

// Interaction event types emitted by the client
const (
	EventTypeClick = "click"
	EventTypeView  = "view"
)
