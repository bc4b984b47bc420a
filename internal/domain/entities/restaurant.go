package entities

import (
	"strings"
)

// Restaurant is one matched establishment in a recommendation batch
type Restaurant struct {
	BusinessID        string            `json:"business_id"`
	Name              string            `json:"name"`
	Stars             float64           `json:"stars"`
	ReviewCount       int               `json:"review_count"`
	Score             float64           `json:"score"`
	MatchedCategories string            `json:"matched_categories"`
	PriceLevel        *int              `json:"price_level,omitempty"`
	Location          Location          `json:"location"`
	Address           Address           `json:"address"`
	IsVegan           *bool             `json:"is_vegan,omitempty"`
	Explanation       string            `json:"explanation,omitempty"`
	GoodForMeal       map[string]bool   `json:"good_for_meal,omitempty"`
	Hours             map[string]string `json:"hours,omitempty"`
}

// Address represents a street address. Every field may be empty.
type Address struct {
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
}

// Location represents geographical coordinates
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ID returns the identifier used for list identity and dedup
func (r Restaurant) ID() string {
	return r.BusinessID
}

// Categories splits MatchedCategories into trimmed, non-empty tags
func (r Restaurant) Categories() []string {
	if strings.TrimSpace(r.MatchedCategories) == "" {
		return nil
	}
	parts := strings.Split(r.MatchedCategories, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// PriceLabel renders the price tier as dollar signs; unknown or non-positive tiers render empty
func (r Restaurant) PriceLabel() string {
	if r.PriceLevel == nil || *r.PriceLevel <= 0 {
		return ""
	}
	return strings.Repeat("$", *r.PriceLevel)
}

// ServesMeal reports whether the restaurant is flagged as good for the given meal.
// Meal-time tags are mapped to availability keys ("morning" -> "breakfast").
// A missing key counts as false.
func (r Restaurant) ServesMeal(meal string) bool {
	return r.GoodForMeal[MealAvailabilityKey(meal)]
}

// HoursFor returns the opening hours string for a day label
func (r Restaurant) HoursFor(day string) (string, bool) {
	h, ok := r.Hours[day]
	return h, ok
}

// VeganFriendly reports true only when the backend explicitly flagged the restaurant
func (r Restaurant) VeganFriendly() bool {
	return r.IsVegan != nil && *r.IsVegan
}
