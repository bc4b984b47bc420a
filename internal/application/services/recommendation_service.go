package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/quickbites/client/internal/domain/entities"
	"github.com/quickbites/client/internal/domain/providers"
	"github.com/quickbites/client/internal/infrastructure/observability"
	apperrors "github.com/quickbites/client/pkg/errors"
	"github.com/quickbites/client/pkg/retry"
)

// ErrSuperseded is returned by Search when a newer search completed first.
// The store keeps the newer batch.
var ErrSuperseded = errors.New("search superseded by a newer search")

const defaultInteractionTimeout = 5 * time.Second

// RecommendationService runs searches into a ResultStore and reports interactions
type RecommendationService struct {
	provider           providers.RecommendationProvider
	store              *ResultStore
	retryConfig        retry.Config
	interactionTimeout time.Duration
	metrics            *observability.Metrics
	pending            sync.WaitGroup
}

// RecommendationServiceOptions tunes a RecommendationService. Zero values pick defaults.
type RecommendationServiceOptions struct {
	RetryAttempts      int
	RetryInitialDelay  time.Duration
	InteractionTimeout time.Duration
	Metrics            *observability.Metrics
}

// NewRecommendationService creates a new recommendation service
func NewRecommendationService(provider providers.RecommendationProvider, store *ResultStore, opts RecommendationServiceOptions) *RecommendationService {
	retryCfg := retry.DefaultConfig()
	if opts.RetryAttempts > 0 {
		retryCfg.MaxAttempts = opts.RetryAttempts
	}
	if opts.RetryInitialDelay > 0 {
		retryCfg.InitialDelay = opts.RetryInitialDelay
	}
	retryCfg.Retryable = isRetryable

	timeout := opts.InteractionTimeout
	if timeout <= 0 {
		timeout = defaultInteractionTimeout
	}

	return &RecommendationService{
		provider:           provider,
		store:              store,
		retryConfig:        retryCfg,
		interactionTimeout: timeout,
		metrics:            opts.Metrics,
	}
}

// Store returns the result store searches are applied to
func (s *RecommendationService) Store() *ResultStore {
	return s.store
}

// Search fetches recommendations for criteria and applies them to the store.
// On failure the store keeps its previous batch and the error is returned.
func (s *RecommendationService) Search(ctx context.Context, criteria entities.SearchCriteria) (entities.RecommendationBatch, error) {
	seq := s.store.Next()

	ctx, span := observability.StartSpan(ctx, "RecommendationService.Search")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("search.seq", int64(seq)),
		attribute.String("search.keywords", criteria.Keywords),
		attribute.String("search.meal", criteria.Meal),
	)

	logger := observability.LoggerFromContext(ctx)
	start := time.Now()

	var results []entities.Restaurant
	err := retry.DoWithLog(ctx, s.retryConfig, func() error {
		r, err := s.provider.Search(ctx, criteria)
		if err != nil {
			return err
		}
		results = r
		return nil
	}, func(attempt int, err error, nextDelay time.Duration) {
		logger.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).Msg("retrying recommendation search")
	})
	if err != nil {
		observability.RecordError(span, err)
		observability.RecordSearchMetric(ctx, s.metrics, "error", 0, time.Since(start))
		logger.Error().Err(err).Uint64("seq", seq).Msg("recommendation search failed")
		return entities.RecommendationBatch{}, err
	}

	batch := entities.RecommendationBatch{
		Seq:        seq,
		Criteria:   criteria,
		Results:    results,
		ReceivedAt: time.Now(),
	}
	span.SetAttributes(attribute.Int("search.results", len(results)))

	if !s.store.Apply(batch) {
		observability.RecordStaleBatch(ctx, s.metrics)
		logger.Debug().Uint64("seq", seq).Msg("dropping stale recommendation batch")
		return batch, ErrSuperseded
	}

	observability.RecordSearchMetric(ctx, s.metrics, "ok", len(results), time.Since(start))
	logger.Info().
		Uint64("seq", seq).
		Int("results", len(results)).
		Dur("duration", time.Since(start)).
		Msg("recommendation search completed")

	return batch, nil
}

// LogInteraction reports an interaction in the background. It never blocks
// and its outcome is discarded.
func (s *RecommendationService) LogInteraction(ctx context.Context, event entities.InteractionEvent) {
	// Keep trace values but not cancellation: the caller may be gone already
	parent := context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		bgCtx, cancel := context.WithTimeout(parent, s.interactionTimeout)
		defer cancel()

		bgCtx, span := observability.StartSpan(bgCtx, "RecommendationService.LogInteraction")
		defer span.End()

		err := s.provider.LogInteraction(bgCtx, event)
		observability.RecordInteraction(bgCtx, s.metrics, event.EventType, err == nil)
		if err != nil {
			observability.LoggerFromContext(bgCtx).Debug().Err(err).
				Str("business_id", event.BusinessID).
				Str("event_type", event.EventType).
				Msg("interaction event dropped")
		}
	}()
}

// Flush waits for in-flight interaction events, up to ctx's deadline
func (s *RecommendationService) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// isRetryable retries transport failures and 5xx responses. Decode failures
// and 4xx responses will not improve on a second attempt.
func isRetryable(err error) bool {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Type != apperrors.ErrorTypeRequestFailed {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return appErr.StatusCode == 0 || appErr.StatusCode >= http.StatusInternalServerError
}
