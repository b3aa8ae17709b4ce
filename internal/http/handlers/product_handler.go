package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"marketflow/internal/services"
	"marketflow/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// Browse serves the shop page query: category, min, max and sort.
func (h *ProductHandler) Browse(c *fiber.Ctx) error {
	f := services.BrowseFilter{Sort: strings.TrimSpace(c.Query("sort"))}
	if raw := c.Query("category"); raw != "" {
		slug, ok := validate.Slug(raw)
		if !ok {
			return badRequest(c, "category", "invalid category")
		}
		f.Category = slug
	}
	var ok bool
	if f.MinPrice, ok = validate.Price(c.Query("min")); !ok {
		return badRequest(c, "min", "invalid minimum price")
	}
	if f.MaxPrice, ok = validate.Price(c.Query("max")); !ok {
		return badRequest(c, "max", "invalid maximum price")
	}
	res, err := h.Catalog.Browse(f)
	if err != nil {
		return fail(c, "products.browse", err)
	}
	return c.JSON(res)
}

func (h *ProductHandler) Featured(c *fiber.Ctx) error {
	prods, err := h.Catalog.GetFeatured()
	if err != nil {
		return fail(c, "products.featured", err)
	}
	return c.JSON(prods)
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	p, err := h.Catalog.GetByID(id)
	if err != nil {
		return fail(c, "products.detail", err)
	}
	return c.JSON(fiber.Map{"product": p, "onSale": p.OnSale(), "inStock": p.InStock()})
}

func (h *ProductHandler) Search(c *fiber.Ctx) error {
	q, ok := validate.Q(c.Query("q"))
	if !ok {
		return badRequest(c, "q", "enter a valid keyword (letters/numbers only)")
	}
	prods, err := h.Catalog.Search(q)
	if err != nil {
		return fail(c, "search.error", err)
	}
	return c.JSON(fiber.Map{"query": q, "products": prods, "count": len(prods)})
}
