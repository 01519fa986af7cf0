package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func TestManualClockAdvance(t *testing.T) {
	clock := NewManualClock(epoch)
	assert.Equal(t, epoch, clock.Now())

	clock.Advance(90 * time.Second)
	assert.Equal(t, epoch.Add(90*time.Second), clock.Now())
}

func TestManualTickerFiresOncePerPeriod(t *testing.T) {
	clock := NewManualClock(epoch)
	ticker := clock.NewTicker(time.Minute)

	clock.Advance(59 * time.Second)
	assert.Len(t, ticker.C(), 0)

	clock.Advance(time.Second)
	require.Len(t, ticker.C(), 1)
	assert.Equal(t, epoch.Add(time.Minute), <-ticker.C())

	clock.Advance(3 * time.Minute)
	assert.Len(t, ticker.C(), 3)

	ticker.Stop()
	for len(ticker.C()) > 0 {
		<-ticker.C()
	}
	clock.Advance(time.Hour)
	assert.Len(t, ticker.C(), 0)
}

func TestSystemClockTicker(t *testing.T) {
	ticker := SystemClock{}.NewTicker(time.Millisecond)
	defer ticker.Stop()

	select {
	case <-ticker.C():
	case <-time.After(time.Second):
		t.Fatal("system ticker did not fire")
	}
}

func TestServiceError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewServiceError(ErrorCategoryNetwork, "NETWORK_ERROR", "request failed", "MarketDataClient", "topGainers", cause)

	assert.Equal(t, "[network:NETWORK_ERROR] request failed", err.Error())
	assert.ErrorIs(t, err, cause)

	err.WithDetails(map[string]int{"status": 0})
	assert.NotNil(t, err.Details)
	assert.NotPanics(t, err.LogError)
}

func TestServiceErrorJSONCarriesCategory(t *testing.T) {
	categories := []ErrorCategory{
		ErrorCategoryNetwork, ErrorCategoryUpstream, ErrorCategoryValidation,
		ErrorCategoryProcessing, ErrorCategoryTimeout,
	}
	for _, category := range categories {
		err := NewServiceError(category, "CODE", "failed", "MarketDataClient", "marketSummary", errors.New("cause"))

		raw, marshalErr := json.Marshal(err)
		require.NoError(t, marshalErr)

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Equal(t, string(category), decoded["category"])
		assert.NotContains(t, decoded, "Cause")
	}
}

func TestServiceMetrics(t *testing.T) {
	metrics := NewServiceMetrics("test")
	metrics.RecordRequest(true, 10*time.Millisecond)
	metrics.RecordRequest(false, 30*time.Millisecond)
	metrics.IncrementCounter("cache_hits")
	metrics.IncrementCounter("cache_hits")

	snapshot := metrics.GetSnapshot()
	assert.Equal(t, int64(2), snapshot.TotalRequests)
	assert.Equal(t, int64(1), snapshot.SuccessfulRequests)
	assert.Equal(t, int64(1), snapshot.FailedRequests)
	assert.Equal(t, 20*time.Millisecond, snapshot.AverageProcessingTime)
	assert.Equal(t, 50.0, snapshot.SuccessRate)
	assert.Equal(t, int64(2), metrics.Counter("cache_hits"))

	// Snapshots are copies.
	snapshot.Counters["cache_hits"] = 100
	assert.Equal(t, int64(2), metrics.Counter("cache_hits"))
}

func TestHTTPMetrics(t *testing.T) {
	metrics := NewHTTPMetrics()
	metrics.RecordHTTPRequest(true, http.StatusOK, 5*time.Millisecond, "", false)
	metrics.RecordHTTPRequest(false, 0, 15*time.Millisecond, "TIMEOUT", true)
	metrics.RecordHTTPRequest(false, http.StatusBadGateway, 10*time.Millisecond, "BAD_STATUS", false)

	snapshot := metrics.GetSnapshot()
	assert.Equal(t, int64(3), snapshot.TotalRequests)
	assert.Equal(t, int64(2), snapshot.FailedRequests)
	assert.Equal(t, int64(1), snapshot.TimeoutRequests)
	assert.Equal(t, map[int]int64{http.StatusOK: 1, http.StatusBadGateway: 1}, snapshot.StatusCodeCounts)
	assert.Equal(t, map[string]int64{"TIMEOUT": 1, "BAD_STATUS": 1}, snapshot.ErrorCounts)
	assert.Equal(t, 10*time.Millisecond, snapshot.AverageResponseTime)
}

func TestHTTPClientFactoryPoolsByTimeout(t *testing.T) {
	factory := NewHTTPClientFactory(15 * time.Second)

	first := factory.CreateHTTPClient(5 * time.Second)
	assert.Same(t, first, factory.CreateHTTPClient(5*time.Second))
	assert.NotSame(t, first, factory.CreateHTTPClient(10*time.Second))

	defaulted := factory.CreateHTTPClient(0)
	assert.Equal(t, 15*time.Second, defaulted.Timeout)

	factory.CleanupAllClients()
	assert.NotSame(t, first, factory.CreateHTTPClient(5*time.Second))
}

func TestHTTPClientHeaderTimeoutFollowsClientTimeout(t *testing.T) {
	factory := NewHTTPClientFactory(15 * time.Second)

	for _, timeout := range []time.Duration{5 * time.Second, 30 * time.Second} {
		client := factory.CreateHTTPClient(timeout)
		transport, ok := client.Transport.(*http.Transport)
		require.True(t, ok)
		assert.Equal(t, timeout, client.Timeout)
		assert.Equal(t, timeout, transport.ResponseHeaderTimeout)
	}
}

func TestSetJSONRequestHeaders(t *testing.T) {
	request, err := http.NewRequest(http.MethodPost, "http://example.org", http.NoBody)
	require.NoError(t, err)

	SetJSONRequestHeaders(request)
	assert.Equal(t, "application/json", request.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", request.Header.Get("Accept"))
}
