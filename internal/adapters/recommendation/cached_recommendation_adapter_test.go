package recommendation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quickbites/client/internal/domain/entities"
	"github.com/quickbites/client/internal/domain/providers"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Search(ctx context.Context, criteria entities.SearchCriteria) ([]entities.Restaurant, error) {
	args := m.Called(ctx, criteria)
	results, _ := args.Get(0).([]entities.Restaurant)
	return results, args.Error(1)
}

func (m *mockProvider) LogInteraction(ctx context.Context, event entities.InteractionEvent) error {
	return m.Called(ctx, event).Error(0)
}

type memoryCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	sets   chan string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}, sets: make(chan string, 10)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	v, ok := c.data[key]
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	c.data[key] = value
	c.mu.Unlock()
	c.sets <- key
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func waitForSet(t *testing.T, c *memoryCache) string {
	t.Helper()
	select {
	case key := <-c.sets:
		return key
	case <-time.After(2 * time.Second):
		t.Fatal("cache was never written")
		return ""
	}
}

func TestCachedAdapter_MissThenHit(t *testing.T) {
	ctx := context.Background()
	criteria := entities.SearchCriteria{Keywords: "tacos"}
	batch := []entities.Restaurant{{BusinessID: "b1", Name: "Taqueria"}, {BusinessID: "b2", Name: "Cantina"}}

	provider := &mockProvider{}
	provider.On("Search", mock.Anything, criteria).Return(batch, nil).Once()
	cache := newMemoryCache()

	adapter := NewCachedRecommendationAdapter(provider, cache, 60, nil)

	first, err := adapter.Search(ctx, criteria)
	require.NoError(t, err)
	assert.Equal(t, batch, first)
	assert.Equal(t, CacheKey(criteria), waitForSet(t, cache))

	second, err := adapter.Search(ctx, criteria)
	require.NoError(t, err)
	assert.Equal(t, batch, second)

	provider.AssertNumberOfCalls(t, "Search", 1)
}

func TestCachedAdapter_OpenNowBypassesCache(t *testing.T) {
	criteria := entities.SearchCriteria{Keywords: "pizza", OpenNow: true}

	provider := &mockProvider{}
	provider.On("Search", mock.Anything, criteria).Return([]entities.Restaurant{{BusinessID: "p1"}}, nil).Twice()
	cache := newMemoryCache()

	adapter := NewCachedRecommendationAdapter(provider, cache, 60, nil)
	for i := 0; i < 2; i++ {
		_, err := adapter.Search(context.Background(), criteria)
		require.NoError(t, err)
	}

	provider.AssertExpectations(t)
	assert.Empty(t, cache.sets)
}

func TestCachedAdapter_CorruptEntryFallsThrough(t *testing.T) {
	criteria := entities.SearchCriteria{Keywords: "sushi"}
	cache := newMemoryCache()
	cache.data[CacheKey(criteria)] = []byte("{not json")

	provider := &mockProvider{}
	provider.On("Search", mock.Anything, criteria).Return([]entities.Restaurant{{BusinessID: "s1"}}, nil).Once()

	results, err := NewCachedRecommendationAdapter(provider, cache, 0, nil).Search(context.Background(), criteria)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "s1", results[0].BusinessID)
	waitForSet(t, cache)
}

func TestCachedAdapter_CacheErrorFallsThrough(t *testing.T) {
	criteria := entities.SearchCriteria{Keywords: "pho"}
	cache := newMemoryCache()
	cache.getErr = errors.New("connection refused")

	provider := &mockProvider{}
	provider.On("Search", mock.Anything, criteria).Return([]entities.Restaurant{{BusinessID: "v1"}}, nil).Once()

	results, err := NewCachedRecommendationAdapter(provider, cache, 0, nil).Search(context.Background(), criteria)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestCachedAdapter_ProviderErrorNotCached(t *testing.T) {
	criteria := entities.SearchCriteria{Keywords: "bbq"}
	cache := newMemoryCache()
	boom := errors.New("boom")

	provider := &mockProvider{}
	provider.On("Search", mock.Anything, criteria).Return(nil, boom).Once()

	_, err := NewCachedRecommendationAdapter(provider, cache, 0, nil).Search(context.Background(), criteria)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, cache.sets)
}

func TestCachedAdapter_LogInteractionPassesThrough(t *testing.T) {
	event := entities.InteractionEvent{BusinessID: "b1", EventType: entities.EventTypeClick}
	provider := &mockProvider{}
	provider.On("LogInteraction", mock.Anything, event).Return(nil).Once()

	err := NewCachedRecommendationAdapter(provider, newMemoryCache(), 0, nil).LogInteraction(context.Background(), event)
	require.NoError(t, err)
	provider.AssertExpectations(t)
}

func TestCacheKey_DistinguishesFilters(t *testing.T) {
	two := 2
	base := entities.SearchCriteria{Keywords: "ramen"}
	withPrice := entities.SearchCriteria{Keywords: "ramen", MaxPrice: &two}
	withMeal := entities.SearchCriteria{Keywords: "ramen", Meal: entities.MealLunch}

	assert.NotEqual(t, CacheKey(base), CacheKey(withPrice))
	assert.NotEqual(t, CacheKey(base), CacheKey(withMeal))
	assert.Equal(t, CacheKey(base), CacheKey(entities.SearchCriteria{Keywords: "ramen"}))
}
