package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/fenilmodi00/cse-site/services"
)

type PageHandler struct {
	Renderer *services.PageRenderer
}

func NewPageHandler(renderer *services.PageRenderer) *PageHandler {
	return &PageHandler{Renderer: renderer}
}

// Serve returns a handler rendering the page with the given slug
func (h *PageHandler) Serve(slug string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		html, err := h.Renderer.Render(slug)
		if errors.Is(err, services.ErrPageNotFound) {
			return c.Status(fiber.StatusNotFound).SendString("Page not found")
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"page":  slug,
				"error": err,
			}).Error("Failed to render page")
			return c.Status(fiber.StatusInternalServerError).SendString("Failed to render page")
		}

		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		c.Set(fiber.HeaderCacheControl, "no-cache")
		return c.SendString(html)
	}
}
