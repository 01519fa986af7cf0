package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fenilmodi00/cse-site/models"
	"github.com/fenilmodi00/cse-site/shared"
)

const (
	serviceName     = "MarketDataClient"
	maxResponseSize = 4 << 20
)

// MarketDataClientConfig holds the settings for MarketDataClient
type MarketDataClientConfig struct {
	BaseURL      string
	HTTPTimeout  time.Duration
	CacheTimeout time.Duration
	Clock        shared.Clock
}

// MarketDataClient fetches the four exchange data sets and serves them from a
// short-lived per-endpoint cache.
//
// Every failure (transport, status, body, decoding) is logged and collapses
// to "no data": the getters report ok == false and the cache is left alone.
type MarketDataClient struct {
	baseURL        string
	httpClient     *http.Client
	cache          *MarketCache
	serviceMetrics *shared.ServiceMetrics
	httpMetrics    *shared.HTTPMetrics
	logger         *logrus.Entry
}

// NewMarketDataClient creates a client owning its own cache
func NewMarketDataClient(cfg MarketDataClientConfig, factory *shared.HTTPClientFactory) *MarketDataClient {
	if factory == nil {
		factory = shared.NewHTTPClientFactory(15 * time.Second)
	}

	return &MarketDataClient{
		baseURL:        cfg.BaseURL,
		httpClient:     factory.CreateHTTPClient(cfg.HTTPTimeout),
		cache:          NewMarketCache(cfg.CacheTimeout, cfg.Clock),
		serviceMetrics: shared.NewServiceMetrics(serviceName),
		httpMetrics:    shared.NewHTTPMetrics(),
		logger:         logrus.WithField("component", serviceName),
	}
}

// Cache exposes the client's cache
func (c *MarketDataClient) Cache() *MarketCache {
	return c.cache
}

// Metrics returns snapshots of the client's service and HTTP metrics
func (c *MarketDataClient) Metrics() (shared.MetricsSnapshot, shared.HTTPMetricsSnapshot) {
	return c.serviceMetrics.GetSnapshot(), c.httpMetrics.GetSnapshot()
}

// LogSummary logs the request metrics and the current cache size
func (c *MarketDataClient) LogSummary() {
	c.serviceMetrics.LogSummary()
	c.logger.WithFields(logrus.Fields{
		"cache_entries": c.cache.Size(),
		"cache_hits":    c.serviceMetrics.Counter("cache_hits"),
		"cache_misses":  c.serviceMetrics.Counter("cache_misses"),
	}).Info("Market data cache summary")
}

// Fetch POSTs to baseURL+endpoint and returns the JSON body, or nil on any failure.
func (c *MarketDataClient) Fetch(ctx context.Context, endpoint string) json.RawMessage {
	startTime := time.Now()
	url := joinURL(c.baseURL, endpoint)

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, http.NoBody)
	if err != nil {
		return c.fail(shared.NewServiceError(shared.ErrorCategoryValidation, "BAD_REQUEST",
			"could not build request", serviceName, endpoint, err), url, 0, startTime)
	}
	shared.SetJSONRequestHeaders(request)

	response, err := c.httpClient.Do(request)
	if err != nil {
		category, code := shared.ErrorCategoryNetwork, "NETWORK_ERROR"
		if isTimeout(err) {
			category, code = shared.ErrorCategoryTimeout, "TIMEOUT"
		}
		return c.fail(shared.NewServiceError(category, code,
			"request failed", serviceName, endpoint, err), url, 0, startTime)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return c.fail(shared.NewServiceError(shared.ErrorCategoryUpstream, "BAD_STATUS",
			fmt.Sprintf("HTTP error! status: %d", response.StatusCode), serviceName, endpoint, nil),
			url, response.StatusCode, startTime)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return c.fail(shared.NewServiceError(shared.ErrorCategoryNetwork, "READ_FAILED",
			"could not read response body", serviceName, endpoint, err), url, response.StatusCode, startTime)
	}

	body = bytes.TrimSpace(body)
	if !json.Valid(body) {
		return c.fail(shared.NewServiceError(shared.ErrorCategoryProcessing, "INVALID_JSON",
			"response body is not JSON", serviceName, endpoint, nil), url, response.StatusCode, startTime)
	}
	if bytes.Equal(body, []byte("null")) {
		return c.fail(shared.NewServiceError(shared.ErrorCategoryProcessing, "EMPTY_PAYLOAD",
			"response body is null", serviceName, endpoint, nil), url, response.StatusCode, startTime)
	}

	elapsed := time.Since(startTime)
	c.serviceMetrics.RecordRequest(true, elapsed)
	c.httpMetrics.RecordHTTPRequest(true, response.StatusCode, elapsed, "", false)

	c.logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"status":   response.StatusCode,
		"bytes":    len(body),
		"took":     elapsed,
	}).Debug("Fetched market data")

	return json.RawMessage(body)
}

func (c *MarketDataClient) fail(serviceErr *shared.ServiceError, url string, statusCode int, startTime time.Time) json.RawMessage {
	elapsed := time.Since(startTime)
	serviceErr.WithDetails(logrus.Fields{"url": url, "status": statusCode})
	serviceErr.LogError()

	c.serviceMetrics.RecordRequest(false, elapsed)
	c.httpMetrics.RecordHTTPRequest(false, statusCode, elapsed, serviceErr.Code,
		serviceErr.Category == shared.ErrorCategoryTimeout)
	return nil
}

// GetMarketSummary returns the exchange summary, from cache when fresh
func (c *MarketDataClient) GetMarketSummary(ctx context.Context) (models.MarketSummary, bool) {
	key := models.EndpointMarketSummary

	if cached, found := c.cache.Get(key); found {
		if summary, ok := cached.(models.MarketSummary); ok {
			c.serviceMetrics.IncrementCounter("cache_hits")
			return summary, true
		}
	}
	c.serviceMetrics.IncrementCounter("cache_misses")

	payload := c.Fetch(ctx, key.Path())
	if payload == nil {
		return models.MarketSummary{}, false
	}

	var raw models.RawMarketSummary
	if err := json.Unmarshal(payload, &raw); err != nil {
		c.decodeFailed(key, err)
		return models.MarketSummary{}, false
	}

	summary := NormalizeMarketSummary(raw)
	c.cache.Set(key, summary)
	return summary, true
}

// GetTopGainers returns the exchange's top gainers in API order
func (c *MarketDataClient) GetTopGainers(ctx context.Context) ([]models.StockRow, bool) {
	return c.getStockRows(ctx, models.EndpointTopGainers)
}

// GetTopLosers returns the exchange's top losers in API order
func (c *MarketDataClient) GetTopLosers(ctx context.Context) ([]models.StockRow, bool) {
	return c.getStockRows(ctx, models.EndpointTopLosers)
}

// GetMostActive returns the most actively traded stocks in API order
func (c *MarketDataClient) GetMostActive(ctx context.Context) ([]models.StockRow, bool) {
	return c.getStockRows(ctx, models.EndpointMostActive)
}

func (c *MarketDataClient) getStockRows(ctx context.Context, key models.EndpointKey) ([]models.StockRow, bool) {
	if cached, found := c.cache.Get(key); found {
		if rows, ok := cached.([]models.StockRow); ok {
			c.serviceMetrics.IncrementCounter("cache_hits")
			return rows, true
		}
	}
	c.serviceMetrics.IncrementCounter("cache_misses")

	payload := c.Fetch(ctx, key.Path())
	if payload == nil {
		return nil, false
	}

	var raw []models.RawStockRow
	if err := json.Unmarshal(payload, &raw); err != nil {
		c.decodeFailed(key, err)
		return nil, false
	}

	rows := NormalizeStockRows(raw)
	c.cache.Set(key, rows)
	return rows, true
}

func (c *MarketDataClient) decodeFailed(key models.EndpointKey, err error) {
	shared.NewServiceError(shared.ErrorCategoryProcessing, "DECODE_FAILED",
		"unexpected payload shape", serviceName, key.Path(), err).LogError()
	c.serviceMetrics.IncrementCounter("decode_failures")
}

func joinURL(base, endpoint string) string {
	if base == "" {
		return endpoint
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(endpoint, "/")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
