package handlers

import (
	"github.com/gofiber/fiber/v2"

	"marketflow/internal/services"
	"marketflow/internal/validate"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		return fail(c, "categories.list", err)
	}
	return c.JSON(cats)
}

func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid category id")
	}
	cat, err := h.Catalog.GetCategory(id)
	if err != nil {
		return fail(c, "categories.get", err)
	}
	return c.JSON(cat)
}

// Products lists a category's products by slug; an unknown slug is a 404.
func (h *CategoryHandler) Products(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		return badRequest(c, "slug", "invalid category")
	}
	cat, err := h.Catalog.GetCategoryBySlug(slug)
	if err != nil {
		return fail(c, "categories.products", err)
	}
	prods, err := h.Catalog.GetByCategory(cat.Slug)
	if err != nil {
		return fail(c, "categories.products", err)
	}
	return c.JSON(fiber.Map{"category": cat, "products": prods})
}
