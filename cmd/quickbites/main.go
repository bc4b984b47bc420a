package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quickbites/client/internal/adapters/cache"
	"github.com/quickbites/client/internal/adapters/recommendation"
	"github.com/quickbites/client/internal/application/services"
	"github.com/quickbites/client/internal/domain/entities"
	"github.com/quickbites/client/internal/domain/providers"
	"github.com/quickbites/client/internal/infrastructure/clients/recommender"
	"github.com/quickbites/client/internal/infrastructure/clients/redis"
	"github.com/quickbites/client/internal/infrastructure/observability"
	"github.com/quickbites/client/pkg/config"
)

const usage = `usage: quickbites <command> [flags]

commands:
  search    find restaurants matching keywords and filters
  interact  report a click or view on a restaurant
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return 1
	}
	observability.InitLoggerTo(stderr, cfg.OTEL.ServiceName, cfg.Env)

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Warn().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Warn().Err(err).Msg("metrics disabled")
	}

	provider, closeProvider := buildProvider(ctx, cfg, metrics)
	defer closeProvider()

	svc := services.NewRecommendationService(provider, services.NewResultStore(), services.RecommendationServiceOptions{
		RetryAttempts:      cfg.Recommender.RetryAttempts,
		InteractionTimeout: cfg.Recommender.InteractionTimeout,
		Metrics:            metrics,
	})

	switch args[0] {
	case "search":
		return runSearch(ctx, svc, args[1:], stdout, stderr)
	case "interact":
		return runInteract(ctx, svc, cfg.Recommender.InteractionTimeout, args[1:], stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}
}

// buildProvider wires the HTTP client, wrapped with the Redis cache when enabled and reachable
func buildProvider(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (providers.RecommendationProvider, func()) {
	client := recommender.NewClient(&cfg.Recommender)
	if !cfg.Cache.Enabled {
		return client, func() {}
	}

	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("recommendation cache disabled")
		return client, func() {}
	}

	cached := recommendation.NewCachedRecommendationAdapter(client, cache.NewRedisAdapter(redisClient), cfg.Cache.TTLSeconds, metrics)
	return cached, func() { _ = redisClient.Close() }
}

func runSearch(ctx context.Context, svc *services.RecommendationService, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(stderr)
	keywords := fs.String("keywords", "", "comma-separated food keywords, e.g. \"korean,japanese\"")
	maxPrice := fs.Int("max-price", 0, "maximum price tier 1-4 (0 means any)")
	meal := fs.String("meal", "", "meal time: morning, lunch or dinner")
	vegan := fs.Bool("vegan", false, "only vegan-friendly places")
	openNow := fs.Bool("open-now", false, "only places open now")
	personalize := fs.Bool("personalize", false, "personalize using past interactions")
	asJSON := fs.Bool("json", false, "print the batch as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	criteria := entities.SearchCriteria{
		Keywords:    *keywords,
		Meal:        *meal,
		Vegan:       *vegan,
		OpenNow:     *openNow,
		Personalize: *personalize,
	}
	if *maxPrice != 0 {
		criteria.MaxPrice = maxPrice
	}

	batch, err := svc.Search(ctx, criteria)
	if err != nil && !errors.Is(err, services.ErrSuperseded) {
		fmt.Fprintf(stderr, "search failed: %v\nno results; try again\n", err)
		return 1
	}

	if *asJSON {
		if err := renderJSON(stdout, batch); err != nil {
			fmt.Fprintf(stderr, "failed to write results: %v\n", err)
			return 1
		}
		return 0
	}
	renderTable(stdout, batch)
	return 0
}

func runInteract(ctx context.Context, svc *services.RecommendationService, flushTimeout time.Duration, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("interact", flag.ContinueOnError)
	fs.SetOutput(stderr)
	businessID := fs.String("business-id", "", "business identifier from a search result")
	eventType := fs.String("event", entities.EventTypeClick, "event type: click or view")
	categories := fs.String("categories", "", "matched categories of the restaurant")
	priceLevel := fs.Int("price-level", 0, "price tier of the restaurant (0 means unknown)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *businessID == "" {
		fmt.Fprintln(stderr, "-business-id is required")
		return 2
	}

	event := entities.InteractionEvent{BusinessID: *businessID, EventType: *eventType}
	if *categories != "" {
		event.Categories = categories
	}
	if *priceLevel != 0 {
		event.PriceLevel = priceLevel
	}

	svc.LogInteraction(ctx, event)

	// The process is about to exit; give the background send a chance to finish.
	flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	_ = svc.Flush(flushCtx)
	return 0
}
