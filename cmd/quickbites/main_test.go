package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickbites/client/internal/domain/entities"
)

const sampleBody = `[
	{"business_id":"b1","name":"Cafe A","stars":4.5,"review_count":10,"score":0.9,"matched_categories":"cafe,bakery","latitude":34.41,"longitude":-119.69,"price_level":2,"city":"Goleta","good_for_meal":"{'breakfast': True, 'lunch': False}"},
	{"business_id":"b2","name":"Diner B","stars":3.5,"review_count":200,"score":0.4,"matched_categories":"","latitude":34.42,"longitude":-119.70,"explanation":"Popular nearby"}
]`

func setupServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("RECOMMENDER_BASE_URL", server.URL)
	t.Setenv("RECOMMENDER_RETRY_ATTEMPTS", "1")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("OTEL_ENABLED", "false")
	t.Setenv("APP_ENV", "test")
}

func TestRun_SearchTable(t *testing.T) {
	var query map[string][]string
	setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = io.WriteString(w, sampleBody)
	})

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"search", "-keywords", "cafe", "-max-price", "2", "-meal", "morning"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "Cafe A")
	assert.Contains(t, out, "$$")
	assert.Contains(t, out, "MORNING")
	assert.Contains(t, out, "2. Diner B: Popular nearby")
	assert.Less(t, bytes.Index(stdout.Bytes(), []byte("Cafe A")), bytes.Index(stdout.Bytes(), []byte("Diner B")))

	assert.Equal(t, []string{"cafe"}, query["keywords"])
	assert.Equal(t, []string{"2"}, query["max_price"])
	assert.Equal(t, []string{"morning"}, query["meal"])
}

func TestRun_SearchJSON(t *testing.T) {
	setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, sampleBody)
	})

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"search", "-json"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var batch entities.RecommendationBatch
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &batch))
	require.Len(t, batch.Results, 2)
	assert.Equal(t, "b1", batch.Results[0].BusinessID)
	assert.True(t, batch.Results[0].ServesMeal(entities.MealMorning))
}

func TestRun_SearchEmpty(t *testing.T) {
	setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"search", "-keywords", "nothing"}, &stdout, &stderr)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "No restaurants matched.")
}

func TestRun_SearchDecodeFailure(t *testing.T) {
	setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"error":"bad request"}`)
	})

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"search"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "DECODE_FAILED")
	assert.Empty(t, stdout.String())
}

func TestRun_Interact(t *testing.T) {
	var mu sync.Mutex
	var got map[string]interface{}
	setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, "/interact", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
	})

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"interact", "-business-id", "b1", "-event", "view", "-price-level", "3"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, map[string]interface{}{"business_id": "b1", "event_type": "view", "price_level": float64(3)}, got)
}

func TestRun_InteractFailureIsSilent(t *testing.T) {
	setupServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"interact", "-business-id", "b1"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage: quickbites")

	stderr.Reset()
	assert.Equal(t, 2, run(context.Background(), []string{"frobnicate"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), `unknown command "frobnicate"`)

	stderr.Reset()
	assert.Equal(t, 2, run(context.Background(), []string{"interact"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "-business-id is required")
}
