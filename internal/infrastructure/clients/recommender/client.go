package recommender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quickbites/client/internal/domain/entities"
	"github.com/quickbites/client/internal/domain/providers"
	"github.com/quickbites/client/internal/infrastructure/observability"
	"github.com/quickbites/client/pkg/config"
	apperrors "github.com/quickbites/client/pkg/errors"
)

const (
	recommendPath = "/recommend"
	interactPath  = "/interact"

	sessionHeader = "X-Session-ID"

	// maxBodyBytes caps how much of a response body is read
	maxBodyBytes = 8 << 20
)

// HTTPClient talks to the recommendation backend over HTTP
type HTTPClient struct {
	baseURL    string
	sessionID  string
	httpClient *http.Client
}

var _ providers.RecommendationProvider = (*HTTPClient)(nil)

// NewClient creates a new recommendation API client
func NewClient(cfg *config.RecommenderConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		sessionID: uuid.NewString(),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SessionID returns the identifier sent with every request from this client
func (c *HTTPClient) SessionID() string {
	return c.sessionID
}

// BuildSearchURL builds the GET /recommend URL for the given criteria.
// keywords, vegan and open_now are always present; max_price and meal only when set.
func (c *HTTPClient) BuildSearchURL(criteria entities.SearchCriteria) (string, error) {
	parsed, err := url.Parse(c.baseURL + recommendPath)
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid base url %q", c.baseURL)
	}

	query := parsed.Query()
	query.Set("keywords", criteria.Keywords)
	if criteria.MaxPrice != nil {
		query.Set("max_price", strconv.Itoa(*criteria.MaxPrice))
	}
	if criteria.Meal != "" {
		query.Set("meal", criteria.Meal)
	}
	query.Set("vegan", strconv.FormatBool(criteria.Vegan))
	query.Set("open_now", strconv.FormatBool(criteria.OpenNow))
	if criteria.Personalize {
		query.Set("personalize", "true")
	}
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

// Search fetches recommendations. Transport failures and non-2xx statuses are
// REQUEST_FAILED; a body that is not a JSON array is DECODE_FAILED. Individual
// records that cannot be decoded are skipped.
func (c *HTTPClient) Search(ctx context.Context, criteria entities.SearchCriteria) ([]entities.Restaurant, error) {
	endpoint, err := c.BuildSearchURL(criteria)
	if err != nil {
		return nil, apperrors.NewRequestFailedError("invalid recommend url", err)
	}

	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	return decodeRestaurants(ctx, body)
}

// LogInteraction posts an interaction event. Callers that must not block
// should go through the service layer, which discards this result.
func (c *HTTPClient) LogInteraction(ctx context.Context, event entities.InteractionEvent) error {
	if strings.TrimSpace(event.BusinessID) == "" {
		return apperrors.NewValidationError("business id is required")
	}
	if strings.TrimSpace(event.EventType) == "" {
		return apperrors.NewValidationError("event type is required")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal interaction", err)
	}

	_, err = c.do(ctx, http.MethodPost, c.baseURL+interactPath, payload)
	return err
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, apperrors.NewRequestFailedError("failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(sessionHeader, c.sessionID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewRequestFailedError(fmt.Sprintf("%s %s failed", method, req.URL.Path), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.NewRequestFailedError("failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewStatusError(fmt.Sprintf("%s %s returned an error", method, req.URL.Path), resp.StatusCode)
	}

	return data, nil
}

// decodeRestaurants decodes the response array record by record, preserving order
// and dropping records that are malformed, lack required fields, or repeat an id.
func decodeRestaurants(ctx context.Context, body []byte) ([]entities.Restaurant, error) {
	logger := observability.LoggerFromContext(ctx)

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperrors.NewDecodeFailedError("recommend response is not a JSON array", err)
	}

	results := make([]entities.Restaurant, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for i, item := range raw {
		var rec restaurantRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			logger.Warn().Err(err).Int("index", i).Msg("skipping undecodable restaurant record")
			continue
		}

		restaurant, err := rec.toEntity()
		if err != nil {
			logger.Warn().Err(err).Int("index", i).Msg("skipping restaurant record")
			continue
		}

		if _, dup := seen[restaurant.BusinessID]; dup {
			logger.Warn().Str("business_id", restaurant.BusinessID).Msg("skipping duplicate restaurant record")
			continue
		}
		seen[restaurant.BusinessID] = struct{}{}
		results = append(results, restaurant)
	}

	return results, nil
}
