package providers

import (
	"context"

	"github.com/quickbites/client/internal/domain/entities"
)

// RecommendationProvider defines the interface to the recommendation backend
type RecommendationProvider interface {
	// Search returns matched restaurants in server relevance order
	Search(ctx context.Context, criteria entities.SearchCriteria) ([]entities.Restaurant, error)

	// LogInteraction reports a user interaction event
	LogInteraction(ctx context.Context, event entities.InteractionEvent) error
}
