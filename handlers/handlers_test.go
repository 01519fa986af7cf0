package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenilmodi00/cse-site/config"
	"github.com/fenilmodi00/cse-site/models"
	"github.com/fenilmodi00/cse-site/services"
)

type stubController struct {
	regions *services.RegionStore
	calls   int
}

func (s *stubController) Initialize(ctx context.Context) models.RefreshReport {
	s.calls++
	s.regions.Set(models.RegionTicker, "refreshed")
	return models.RefreshReport{CycleID: "cycle-1", Duration: time.Millisecond, FailedUpdates: []string{}}
}

func (s *stubController) Regions() *services.RegionStore { return s.regions }

type apiResponse struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func doRequest(t *testing.T, app *fiber.App, method, path string) (int, apiResponse) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func newMarketApp(controller RegionController) *fiber.App {
	app := fiber.New()
	h := NewMarketHandler(controller)
	app.Get("/api/v1/market/regions", h.GetRegions)
	app.Get("/api/v1/market/regions/:id", h.GetRegion)
	app.Post("/api/v1/market/refresh", h.TriggerRefresh)
	return app
}

func TestGetRegions(t *testing.T) {
	store := services.NewRegionStore(nil)
	store.Set(models.RegionASPIValue, "12,345.68")
	store.SetFailed(models.RegionTopGainers, "<p class=\"error-message\">Unable to fetch top gainers</p>")
	app := newMarketApp(&stubController{regions: store})

	status, body := doRequest(t, app, http.MethodGet, "/api/v1/market/regions")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Success)

	var fragments []models.RegionFragment
	require.NoError(t, json.Unmarshal(body.Data, &fragments))
	require.Len(t, fragments, 2)
	assert.Equal(t, models.RegionASPIValue, fragments[0].ID)
	assert.True(t, fragments[1].Failed)
}

func TestGetRegion(t *testing.T) {
	store := services.NewRegionStore(nil)
	store.Set(models.RegionTicker, "ticker")
	app := newMarketApp(&stubController{regions: store})

	status, body := doRequest(t, app, http.MethodGet, "/api/v1/market/regions/ticker-content")
	assert.Equal(t, http.StatusOK, status)
	var fragment models.RegionFragment
	require.NoError(t, json.Unmarshal(body.Data, &fragment))
	assert.Equal(t, "ticker", fragment.HTML)

	status, body = doRequest(t, app, http.MethodGet, "/api/v1/market/regions/top-losers")
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, body.Success)

	status, body = doRequest(t, app, http.MethodGet, "/api/v1/market/regions/hero")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body.Error, "hero")
}

func TestTriggerRefresh(t *testing.T) {
	controller := &stubController{regions: services.NewRegionStore(nil)}
	app := newMarketApp(controller)

	status, body := doRequest(t, app, http.MethodPost, "/api/v1/market/refresh")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Success)
	assert.Equal(t, 1, controller.calls)

	var report models.RefreshReport
	require.NoError(t, json.Unmarshal(body.Data, &report))
	assert.Equal(t, "cycle-1", report.CycleID)

	fragment, exists := controller.regions.Get(models.RegionTicker)
	require.True(t, exists)
	assert.Equal(t, "refreshed", fragment.HTML)
}

func TestGetMetrics(t *testing.T) {
	exchange := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"symbol":"JKH.N0000","price":190}]`))
	}))
	defer exchange.Close()

	client := services.NewMarketDataClient(services.MarketDataClientConfig{
		BaseURL:     exchange.URL,
		HTTPTimeout: time.Second,
	}, nil)
	_, found := client.GetTopGainers(context.Background())
	require.True(t, found)

	app := fiber.New()
	app.Get("/metrics", NewMetricsHandler(client).GetMetrics)

	status, body := doRequest(t, app, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, status)

	var data struct {
		Service struct {
			TotalRequests int64            `json:"total_requests"`
			Counters      map[string]int64 `json:"counters"`
		} `json:"service"`
		Cache struct {
			TimeoutMs int64 `json:"timeout_ms"`
			Size      int   `json:"size"`
			Entries   map[string]struct {
				Cached bool `json:"cached"`
				Fresh  bool `json:"fresh"`
			} `json:"entries"`
		} `json:"cache"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))

	assert.Equal(t, int64(1), data.Service.TotalRequests)
	assert.Equal(t, int64(1), data.Service.Counters["cache_misses"])
	assert.Equal(t, int64(30000), data.Cache.TimeoutMs)
	assert.Equal(t, 1, data.Cache.Size)
	assert.True(t, data.Cache.Entries["topGainers"].Cached)
	assert.True(t, data.Cache.Entries["topGainers"].Fresh)
	assert.False(t, data.Cache.Entries["mostActive"].Cached)
}

func TestPageHandler(t *testing.T) {
	dir := t.TempDir()
	livePath := filepath.Join(dir, "market.html")
	require.NoError(t, os.WriteFile(livePath, []byte(`<html><body><div id="top-gainers">Loading...</div></body></html>`), 0o644))

	store := services.NewRegionStore(nil)
	renderer, err := services.NewPageRenderer([]config.Page{
		{Slug: "market", Path: "/market", File: livePath, Live: true},
	}, store)
	require.NoError(t, err)
	store.Set(models.RegionTopGainers, services.RenderStockTable(nil))

	h := NewPageHandler(renderer)
	app := fiber.New()
	app.Get("/market", h.Serve("market"))
	app.Get("/missing", h.Serve("missing"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/market", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), "text/html"))
	html, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(html), services.NoDataNotice)
	assert.NotContains(t, string(html), "Loading...")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
