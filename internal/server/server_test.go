package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-datetools/internal/config"
)

// -----------------------------------------------------------------------------
// Unit Tests (White-Box Testing of Handler Logic)
// -----------------------------------------------------------------------------

// TestHandleIndex_ServingContent verifies that the index handler writes the
// standard HTTP headers and the cached document when data is available.
func TestHandleIndex_ServingContent(t *testing.T) {
	srv := NewAPIServer("0") // Port irrelevant for handler tests

	doc, err := IndexDocument()
	require.NoError(t, err)
	srv.Update(doc)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	srv.handleIndex(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeJSON, resp.Header.Get(config.HeaderContentType))
	assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
	assert.Contains(t, resp.Header.Get(config.HeaderCacheControl), "no-cache")

	// ETag should be generated automatically
	assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, doc, body)
	assert.Contains(t, string(body), config.RouteSpan, "Index must list the endpoints")
}

// TestHandleIndex_Caching verifies that the server respects ETag headers
// (If-None-Match) and returns 304 Not Modified to save bandwidth.
func TestHandleIndex_Caching(t *testing.T) {
	srv := NewAPIServer("0")
	srv.Update([]byte(`{"app":"v1"}`))

	// Step 1: Initial Request to get the ETag
	req1 := httptest.NewRequest(http.MethodGet, "/", nil)
	w1 := httptest.NewRecorder()
	srv.handleIndex(w1, req1)

	etag := w1.Result().Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag, "Server must provide an ETag")

	// Step 2: Second Request providing the known ETag
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.Header.Set(config.HeaderIfNoneMatch, etag)
	w2 := httptest.NewRecorder()
	srv.handleIndex(w2, req2)

	resp2 := w2.Result()
	defer func() { _ = resp2.Body.Close() }()

	assert.Equal(t, http.StatusNotModified, resp2.StatusCode)
	body, _ := io.ReadAll(resp2.Body)
	assert.Empty(t, body, "Body must be empty on 304 Not Modified")
}

// TestHandleIndex_MethodNotAllowed ensures strictly GET and HEAD are accepted.
func TestHandleIndex_MethodNotAllowed(t *testing.T) {
	srv := NewAPIServer("0")

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	w := httptest.NewRecorder()
	srv.handleIndex(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(config.HeaderAllow))
}

// TestHandleIndex_Initializing verifies the 503 behavior before the index is built.
func TestHandleIndex_Initializing(t *testing.T) {
	srv := NewAPIServer("0")
	// Note: We intentionally do NOT call srv.Update() here.

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	srv.handleIndex(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, config.RetryAfterSeconds, resp.Header.Get(config.HeaderRetryAfter))
}

func TestHandleIndex_UnknownPath(t *testing.T) {
	srv := NewAPIServer("0")
	srv.Update([]byte("{}"))

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	srv.handleIndex(w, req)

	assert.Equal(t, http.StatusNotFound, w.Result().StatusCode)
}

// -----------------------------------------------------------------------------
// API Endpoint Tests
// -----------------------------------------------------------------------------

// decode unmarshals a recorded JSON response body into out.
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHandleLeap(t *testing.T) {
	srv := NewAPIServer("0")

	tests := []struct {
		year string
		leap bool
	}{
		{"1900", false},
		{"2000", true},
		{"2012", true},
		{"2015", false},
	}

	for _, tt := range tests {
		t.Run(tt.year, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, config.RouteLeap+"?year="+tt.year, nil)
			w := httptest.NewRecorder()
			srv.handleLeap(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			var got leapResponse
			decode(t, w, &got)
			assert.Equal(t, tt.leap, got.Leap)
		})
	}
}

func TestHandleLeap_BadInput(t *testing.T) {
	srv := NewAPIServer("0")

	tests := []struct {
		name   string
		target string
	}{
		{"Missing year", config.RouteLeap},
		{"Non-numeric year", config.RouteLeap + "?year=banana"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			w := httptest.NewRecorder()
			srv.handleLeap(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var got errorResponse
			decode(t, w, &got)
			assert.NotEmpty(t, got.Error)
		})
	}
}

func TestHandleAngle(t *testing.T) {
	srv := NewAPIServer("0")

	req := httptest.NewRequest(http.MethodGet, config.RouteAngle+"?at=2016-01-19T18:00:00Z", nil)
	w := httptest.NewRecorder()
	srv.handleAngle(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got angleResponse
	decode(t, w, &got)
	assert.InDelta(t, math.Pi, got.Radians, 1e-12, "18:00 puts the hands opposite")
	assert.InDelta(t, 180.0, got.Degrees, 1e-12)
}

func TestHandleAngle_AcceptsRFC2822Instants(t *testing.T) {
	srv := NewAPIServer("0")

	target := config.RouteAngle + "?at=" + "Tue,%2026%20Jan%202016%2021:00:00%20GMT"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	srv.handleAngle(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got angleResponse
	decode(t, w, &got)
	assert.InDelta(t, math.Pi/2, got.Radians, 1e-12)
}

func TestHandleSpan(t *testing.T) {
	srv := NewAPIServer("0")

	target := config.RouteSpan + "?start=2015-04-04T10:00:00Z&end=2015-04-04T15:20:10.453Z"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	srv.handleSpan(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got spanResponse
	decode(t, w, &got)
	assert.Equal(t, "05:20:10.453", got.Span)
	assert.Equal(t, int64(5*3600*1000+20*60*1000+10*1000+453), got.Milliseconds)
}

func TestHandleSpan_EndBeforeStart(t *testing.T) {
	srv := NewAPIServer("0")

	target := config.RouteSpan + "?start=2015-04-04T11:00:00Z&end=2015-04-04T10:00:00Z"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	srv.handleSpan(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var got errorResponse
	decode(t, w, &got)
	assert.Equal(t, config.ErrNegativeSpan, got.Error)
}

func TestHandleParse(t *testing.T) {
	srv := NewAPIServer("0")

	req := httptest.NewRequest(http.MethodGet, config.RouteParse+"?value=2016-01-19T16:07:37%2B00:00", nil)
	w := httptest.NewRecorder()
	srv.handleParse(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got parseResponse
	decode(t, w, &got)
	assert.Equal(t, config.GrammarISO8601, got.Grammar)
	assert.Equal(t, "2016-01-19T16:07:37.000Z", got.ISO8601)
	assert.Equal(t, time.Date(2016, 1, 19, 16, 7, 37, 0, time.UTC).UnixMilli(), got.UnixMs)
}

func TestHandleParse_Malformed(t *testing.T) {
	srv := NewAPIServer("0")

	req := httptest.NewRequest(http.MethodGet, config.RouteParse+"?value=garbage", nil)
	w := httptest.NewRecorder()
	srv.handleParse(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// -----------------------------------------------------------------------------
// Concurrency Tests (Race Detection)
// -----------------------------------------------------------------------------

// TestServer_RaceCondition validates the thread-safety of atomic.Pointer usage.
// It runs high-frequency writers and readers concurrently to trigger race conditions.
// Run this with `go test -race`.
func TestServer_RaceCondition(t *testing.T) {
	srv := NewAPIServer("0")
	var wg sync.WaitGroup

	// Duration of the stress test
	duration := 500 * time.Millisecond
	end := time.Now().Add(duration)

	// Writer Routines: Stress atomic.Pointer.Store
	for w := 0; w < 5; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			i := 0
			for time.Now().Before(end) {
				data := fmt.Sprintf(`{"version":"%d-%d"}`, id, i)
				srv.Update([]byte(data))
				i++
				// Tiny sleep to yield processor and allow interleaving
				time.Sleep(1 * time.Microsecond)
			}
		}(w)
	}

	// Reader Routines: Stress atomic.Pointer.Load through the handler
	for r := 0; r < 20; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				w := httptest.NewRecorder()

				srv.handleIndex(w, req)

				// Validates that we don't get partial writes or crashes.
				code := w.Code
				if code != http.StatusOK && code != http.StatusServiceUnavailable {
					t.Errorf("Unexpected status code during race test: %d", code)
				}
			}
		}()
	}

	wg.Wait()
}

// -----------------------------------------------------------------------------
// Integration Tests (Real TCP Lifecycle)
// -----------------------------------------------------------------------------

// TestServer_Lifecycle spins up the actual TCP listener to verify network
// binding, request routing and graceful shutdown logic.
func TestServer_Lifecycle(t *testing.T) {
	const port = "18098"

	srv := NewAPIServer(port)
	doc, err := IndexDocument()
	require.NoError(t, err)
	srv.Update(doc)

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() {
		errChan <- srv.Start(ctx)
	}()

	base := "http://127.0.0.1:" + port

	// Wait for server to be responsive (TCP bind takes a few milliseconds)
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return true
	}, 2*time.Second, 50*time.Millisecond, "Server failed to bind/listen in time")

	// 1. Index document
	resp, err := http.Get(base + "/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeJSON, resp.Header.Get(config.HeaderContentType))
	_ = resp.Body.Close()

	// 2. A calculation routed through the real mux
	resp, err = http.Get(base + config.RouteLeap + "?year=2000")
	require.NoError(t, err)

	var leap leapResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&leap))
	_ = resp.Body.Close()
	assert.True(t, leap.Leap)

	// 3. Test Shutdown
	cancel() // Trigger context cancellation

	select {
	case err := <-errChan:
		// Start() returns nil on graceful shutdown
		assert.NoError(t, err, "Server should shutdown gracefully without error")
	case <-time.After(5 * time.Second):
		t.Fatal("Server shutdown timed out")
	}
}
