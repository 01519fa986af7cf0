package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/fenilmodi00/cse-site/models"
	"github.com/fenilmodi00/cse-site/services"
)

// RegionController is the part of the view controller the API exposes
type RegionController interface {
	Initialize(ctx context.Context) models.RefreshReport
	Regions() *services.RegionStore
}

type MarketHandler struct {
	Controller RegionController
}

func NewMarketHandler(controller RegionController) *MarketHandler {
	return &MarketHandler{Controller: controller}
}

// GetRegions returns the current fragment of every populated region
func (h *MarketHandler) GetRegions(c *fiber.Ctx) error {
	regions := h.Controller.Regions()

	return c.JSON(fiber.Map{
		"success":      true,
		"data":         regions.Snapshot(),
		"last_updated": regions.LastUpdated(),
	})
}

// GetRegion returns one region's fragment
func (h *MarketHandler) GetRegion(c *fiber.Ctx) error {
	id := c.Params("id")
	if !models.IsRegion(id) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Unknown region: " + id,
		})
	}

	fragment, exists := h.Controller.Regions().Get(models.RegionID(id))
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Region has not been rendered yet",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fragment,
	})
}

// TriggerRefresh runs one refresh cycle and returns its report
func (h *MarketHandler) TriggerRefresh(c *fiber.Ctx) error {
	logrus.Info("Manual market refresh triggered via API")

	report := h.Controller.Initialize(c.UserContext())

	return c.JSON(fiber.Map{
		"success":  len(report.FailedUpdates) == 0,
		"message":  "Market refresh completed",
		"data":     report,
		"duration": report.Duration.String(),
	})
}
