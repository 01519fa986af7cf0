package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fenilmodi00/cse-site/models"
	"github.com/fenilmodi00/cse-site/services"
)

type MetricsHandler struct {
	Client *services.MarketDataClient
}

func NewMetricsHandler(client *services.MarketDataClient) *MetricsHandler {
	return &MetricsHandler{Client: client}
}

// GetMetrics returns request metrics and per-endpoint cache state
func (h *MetricsHandler) GetMetrics(c *fiber.Ctx) error {
	serviceSnapshot, httpSnapshot := h.Client.Metrics()
	cache := h.Client.Cache()

	entries := make(map[string]interface{}, len(models.AllEndpointKeys))
	for _, key := range models.AllEndpointKeys {
		entry, exists := cache.Entry(key)
		if !exists {
			entries[string(key)] = map[string]interface{}{"cached": false}
			continue
		}
		age := time.Since(entry.Timestamp)
		entries[string(key)] = map[string]interface{}{
			"cached": true,
			"age_ms": age.Milliseconds(),
			"fresh":  age < cache.Timeout(),
			"set_at": entry.Timestamp,
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"service": serviceSnapshot,
			"http":    httpSnapshot,
			"cache": fiber.Map{
				"timeout_ms": cache.Timeout().Milliseconds(),
				"size":       cache.Size(),
				"entries":    entries,
			},
		},
	})
}
