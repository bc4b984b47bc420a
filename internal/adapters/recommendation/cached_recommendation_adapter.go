package recommendation

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/quickbites/client/internal/domain/entities"
	"github.com/quickbites/client/internal/domain/providers"
	"github.com/quickbites/client/internal/infrastructure/observability"
)

const (
	defaultTTLSeconds = 120
	cacheWriteTimeout = 2 * time.Second
)

// CachedRecommendationAdapter wraps a RecommendationProvider with a read-through
// cache of decoded batches. Interactions always go straight to the provider.
type CachedRecommendationAdapter struct {
	provider   providers.RecommendationProvider
	cache      providers.CacheProvider
	ttlSeconds int
	metrics    *observability.Metrics
}

var _ providers.RecommendationProvider = (*CachedRecommendationAdapter)(nil)

// NewCachedRecommendationAdapter creates a new cached recommendation adapter
func NewCachedRecommendationAdapter(provider providers.RecommendationProvider, cache providers.CacheProvider, ttlSeconds int, metrics *observability.Metrics) *CachedRecommendationAdapter {
	if ttlSeconds <= 0 {
		ttlSeconds = defaultTTLSeconds
	}
	return &CachedRecommendationAdapter{
		provider:   provider,
		cache:      cache,
		ttlSeconds: ttlSeconds,
		metrics:    metrics,
	}
}

// CacheKey returns the cache key for a search. Personalized searches depend on
// interaction history and share no key with anonymous ones.
func CacheKey(criteria entities.SearchCriteria) string {
	v := url.Values{}
	v.Set("keywords", criteria.Keywords)
	if criteria.MaxPrice != nil {
		v.Set("max_price", strconv.Itoa(*criteria.MaxPrice))
	}
	if criteria.Meal != "" {
		v.Set("meal", criteria.Meal)
	}
	v.Set("vegan", strconv.FormatBool(criteria.Vegan))
	v.Set("open_now", strconv.FormatBool(criteria.OpenNow))
	v.Set("personalize", strconv.FormatBool(criteria.Personalize))
	return "recommend:" + v.Encode()
}

// Search returns a cached batch when present, otherwise asks the provider
func (a *CachedRecommendationAdapter) Search(ctx context.Context, criteria entities.SearchCriteria) ([]entities.Restaurant, error) {
	logger := observability.LoggerFromContext(ctx)
	key := CacheKey(criteria)

	// open_now answers change minute to minute
	cacheable := !criteria.OpenNow && !criteria.Personalize

	if cacheable {
		cached, err := a.cache.Get(ctx, key)
		switch {
		case err == nil:
			var results []entities.Restaurant
			if err := json.Unmarshal(cached, &results); err == nil {
				observability.RecordCacheHit(ctx, a.metrics)
				return results, nil
			}
			logger.Warn().Err(err).Str("key", key).Msg("discarding corrupt cached recommendations")
		case errors.Is(err, providers.ErrCacheMiss):
		default:
			logger.Warn().Err(err).Msg("recommendation cache unavailable")
		}
		observability.RecordCacheMiss(ctx, a.metrics)
	}

	results, err := a.provider.Search(ctx, criteria)
	if err != nil {
		return nil, err
	}

	if cacheable {
		data, err := json.Marshal(results)
		if err != nil {
			return results, nil
		}
		// Update cache asynchronously to avoid blocking the response
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
			defer cancel()
			if err := a.cache.Set(bgCtx, key, data, a.ttlSeconds); err != nil {
				observability.LoggerFromContext(bgCtx).Warn().Err(err).Str("key", key).Msg("failed to cache recommendations")
			}
		}()
	}

	return results, nil
}

// LogInteraction is never cached
func (a *CachedRecommendationAdapter) LogInteraction(ctx context.Context, event entities.InteractionEvent) error {
	return a.provider.LogInteraction(ctx, event)
}
