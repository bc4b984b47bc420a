package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/quickbites/client"

// Metrics holds the client metrics
type Metrics struct {
	SearchCount        metric.Int64Counter
	SearchDuration     metric.Float64Histogram
	StaleBatchCount    metric.Int64Counter
	InteractionSent    metric.Int64Counter
	InteractionDropped metric.Int64Counter
	CacheHitCount      metric.Int64Counter
	CacheMissCount     metric.Int64Counter
}

// Setup initializes OpenTelemetry tracing
func Setup(ctx context.Context, serviceName, serviceVersion, endpoint string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tracerProvider.Shutdown, nil
}

// InitMetrics initializes client metrics against the global meter provider
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	searchCount, err := meter.Int64Counter(
		"recommend.search.count",
		metric.WithDescription("Number of recommendation searches by outcome"),
	)
	if err != nil {
		return nil, err
	}

	searchDuration, err := meter.Float64Histogram(
		"recommend.search.duration",
		metric.WithDescription("Recommendation search duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	staleBatchCount, err := meter.Int64Counter(
		"recommend.search.stale",
		metric.WithDescription("Search responses dropped because a newer search already applied"),
	)
	if err != nil {
		return nil, err
	}

	interactionSent, err := meter.Int64Counter(
		"recommend.interaction.sent",
		metric.WithDescription("Interaction events delivered"),
	)
	if err != nil {
		return nil, err
	}

	interactionDropped, err := meter.Int64Counter(
		"recommend.interaction.dropped",
		metric.WithDescription("Interaction events that failed and were discarded"),
	)
	if err != nil {
		return nil, err
	}

	cacheHitCount, err := meter.Int64Counter(
		"cache.hit.count",
		metric.WithDescription("Number of cache hits"),
	)
	if err != nil {
		return nil, err
	}

	cacheMissCount, err := meter.Int64Counter(
		"cache.miss.count",
		metric.WithDescription("Number of cache misses"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		SearchCount:        searchCount,
		SearchDuration:     searchDuration,
		StaleBatchCount:    staleBatchCount,
		InteractionSent:    interactionSent,
		InteractionDropped: interactionDropped,
		CacheHitCount:      cacheHitCount,
		CacheMissCount:     cacheMissCount,
	}, nil
}

// StartSpan starts a new trace span
func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, spanName)
}

// RecordError records an error in the current span
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
}

// RecordSearchMetric records one search outcome. A nil Metrics is a no-op.
func RecordSearchMetric(ctx context.Context, metrics *Metrics, outcome string, results int, duration time.Duration) {
	if metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	metrics.SearchCount.Add(ctx, 1, attrs)
	metrics.SearchDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.Bool("empty", results == 0),
	))
}

// RecordStaleBatch records a dropped out-of-order search response
func RecordStaleBatch(ctx context.Context, metrics *Metrics) {
	if metrics == nil {
		return
	}
	metrics.StaleBatchCount.Add(ctx, 1)
}

// RecordInteraction records whether an interaction event was delivered
func RecordInteraction(ctx context.Context, metrics *Metrics, eventType string, delivered bool) {
	if metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("event_type", eventType))
	if delivered {
		metrics.InteractionSent.Add(ctx, 1, attrs)
		return
	}
	metrics.InteractionDropped.Add(ctx, 1, attrs)
}

// RecordCacheHit records a cache hit
func RecordCacheHit(ctx context.Context, metrics *Metrics) {
	if metrics == nil {
		return
	}
	metrics.CacheHitCount.Add(ctx, 1)
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(ctx context.Context, metrics *Metrics) {
	if metrics == nil {
		return
	}
	metrics.CacheMissCount.Add(ctx, 1)
}
