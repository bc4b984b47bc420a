package recommender

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/quickbites/client/internal/domain/entities"
	"github.com/quickbites/client/pkg/pseudojson"
)

// restaurantRecord is the wire shape of one /recommend entry. Numeric fields
// are float64 because the backend serializes pandas columns and may emit 10.0
// for an integer count.
type restaurantRecord struct {
	BusinessID        string          `json:"business_id"`
	Name              string          `json:"name"`
	Stars             float64         `json:"stars"`
	ReviewCount       float64         `json:"review_count"`
	Score             float64         `json:"score"`
	MatchedCategories string          `json:"matched_categories"`
	PriceLevel        *float64        `json:"price_level"`
	Latitude          *float64        `json:"latitude"`
	Longitude         *float64        `json:"longitude"`
	Address           string          `json:"address"`
	City              string          `json:"city"`
	State             string          `json:"state"`
	IsVegan           *bool           `json:"is_vegan"`
	Explanation       string          `json:"explanation"`
	GoodForMeal       json.RawMessage `json:"good_for_meal"`
	Hours             json.RawMessage `json:"hours"`
}

var (
	errMissingID       = errors.New("record has no business_id")
	errMissingLocation = errors.New("record has no latitude/longitude")
)

func (r restaurantRecord) toEntity() (entities.Restaurant, error) {
	if strings.TrimSpace(r.BusinessID) == "" {
		return entities.Restaurant{}, errMissingID
	}
	if r.Latitude == nil || r.Longitude == nil {
		return entities.Restaurant{}, errMissingLocation
	}

	reviews := int(r.ReviewCount)
	if reviews < 0 {
		reviews = 0
	}

	return entities.Restaurant{
		BusinessID:        r.BusinessID,
		Name:              r.Name,
		Stars:             r.Stars,
		ReviewCount:       reviews,
		Score:             r.Score,
		MatchedCategories: r.MatchedCategories,
		PriceLevel:        priceTier(r.PriceLevel),
		Location: entities.Location{
			Latitude:  *r.Latitude,
			Longitude: *r.Longitude,
		},
		Address: entities.Address{
			Street: r.Address,
			City:   r.City,
			State:  r.State,
		},
		IsVegan:     r.IsVegan,
		Explanation: r.Explanation,
		GoodForMeal: mealAvailability(r.GoodForMeal),
		Hours:       operatingHours(r.Hours),
	}, nil
}

// priceTier treats 0 (the backend's "unknown") and negatives as absent
func priceTier(v *float64) *int {
	if v == nil || *v <= 0 {
		return nil
	}
	tier := int(*v)
	return &tier
}

// mealAvailability accepts the pseudo-JSON string form, or a JSON object if
// the backend ever sends structured data.
func mealAvailability(raw json.RawMessage) map[string]bool {
	if obj, ok := asObject(raw); ok {
		out := map[string]bool{}
		var decoded map[string]*bool
		if json.Unmarshal(obj, &decoded) == nil {
			for k, v := range decoded {
				if v != nil {
					out[k] = *v
				}
			}
		}
		return out
	}
	return pseudojson.ParseMealAvailability(asString(raw))
}

func operatingHours(raw json.RawMessage) map[string]string {
	if obj, ok := asObject(raw); ok {
		out := map[string]string{}
		var decoded map[string]*string
		if json.Unmarshal(obj, &decoded) == nil {
			for k, v := range decoded {
				if v != nil {
					out[k] = *v
				}
			}
		}
		return out
	}
	return pseudojson.ParseOperatingHours(asString(raw))
}

func asObject(raw json.RawMessage) (json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	return trimmed, len(trimmed) > 0 && trimmed[0] == '{'
}

// asString returns nil for absent, null or non-string values
func asString(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return s
}
