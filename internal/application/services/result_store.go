package services

import (
	"context"
	"sync"

	"github.com/quickbites/client/internal/domain/entities"
)

const subscriberBuffer = 4

// ResultStore holds the current recommendation batch shared by every consumer
// (list view, map view). Only completed searches write to it; a response for
// an older search never replaces a newer one.
type ResultStore struct {
	mu          sync.RWMutex
	issued      uint64
	current     entities.RecommendationBatch
	subscribers map[chan entities.RecommendationBatch]struct{}
}

// NewResultStore creates an empty result store
func NewResultStore() *ResultStore {
	return &ResultStore{
		subscribers: make(map[chan entities.RecommendationBatch]struct{}),
	}
}

// Next issues the sequence number for a new search
func (s *ResultStore) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Apply replaces the current batch if batch.Seq is newer. It reports whether
// the batch was applied.
func (s *ResultStore) Apply(batch entities.RecommendationBatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if batch.Seq <= s.current.Seq {
		return false
	}
	batch.Results = append([]entities.Restaurant(nil), batch.Results...)
	s.current = batch

	for ch := range s.subscribers {
		select {
		case ch <- s.copyCurrent():
		default:
			// slow subscriber; it will catch up via Current
		}
	}
	return true
}

// Current returns a copy of the current batch
func (s *ResultStore) Current() entities.RecommendationBatch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyCurrent()
}

// Subscribe delivers every applied batch until ctx is done, then closes the channel
func (s *ResultStore) Subscribe(ctx context.Context) <-chan entities.RecommendationBatch {
	ch := make(chan entities.RecommendationBatch, subscriberBuffer)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subscribers, ch)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

func (s *ResultStore) copyCurrent() entities.RecommendationBatch {
	out := s.current
	out.Results = append([]entities.Restaurant(nil), s.current.Results...)
	return out
}
