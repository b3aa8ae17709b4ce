package handlers

import (
	"github.com/gofiber/fiber/v2"

	"marketflow/internal/services"
)

type BundleHandler struct {
	Bundles *services.BundleService
}

func (h *BundleHandler) List(c *fiber.Ctx) error {
	bundles, err := h.Bundles.GetBundles()
	if err != nil {
		return fail(c, "bundles.list", err)
	}
	return c.JSON(bundles)
}
