package handlers

import (
	"github.com/gofiber/fiber/v2"

	"marketflow/internal/domain"
	applog "marketflow/internal/log"
	"marketflow/internal/services"
	"marketflow/internal/validate"
)

type CartHandler struct {
	Sessions *services.SessionService
	Catalog  *services.CatalogService
	Bundles  *services.BundleService
}

func (h *CartHandler) session(c *fiber.Ctx) (*services.Session, error) {
	return h.Sessions.Get(ensureSID(c))
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return fail(c, "cart.load", err)
	}
	return c.JSON(sess.Cart.View())
}

type addItemBody struct {
	ProductID int `json:"productId"`
}

// Add puts one unit of a catalog product in the cart at its current price.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	var body addItemBody
	if err := c.BodyParser(&body); err != nil || body.ProductID < 1 {
		return badRequest(c, "productId", "missing productId")
	}
	p, err := h.Catalog.GetByID(body.ProductID)
	if err != nil {
		return fail(c, "cart.add", err)
	}
	sess, err := h.session(c)
	if err != nil {
		return fail(c, "cart.load", err)
	}
	if _, err := validate.Quantity(sess.Cart.Quantity(p.ID) + 1); err != nil {
		return fail(c, "cart.add", err)
	}
	if err := sess.Cart.AddToCart(p); err != nil {
		return fail(c, "cart.add", err)
	}
	applog.Info(c, "cart.add", map[string]any{"product_id": p.ID})
	return c.Status(fiber.StatusCreated).JSON(sess.Cart.View())
}

func (h *CartHandler) AddBundle(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid bundle id")
	}
	sess, err := h.session(c)
	if err != nil {
		return fail(c, "cart.load", err)
	}
	b, err := h.Bundles.GetBundle(id)
	if err != nil {
		return fail(c, "cart.add_bundle", err)
	}
	// all or nothing: no line of the bundle may pass the cap
	for _, p := range b.Products {
		if _, err := validate.Quantity(sess.Cart.Quantity(p.ID) + 1); err != nil {
			return fail(c, "cart.add_bundle", err)
		}
	}
	b, err = h.Bundles.AddBundle(sess.Cart, id)
	if err != nil {
		return fail(c, "cart.add_bundle", err)
	}
	applog.Info(c, "cart.add_bundle", map[string]any{"bundle_id": b.ID})
	return c.Status(fiber.StatusCreated).JSON(sess.Cart.View())
}

type quantityBody struct {
	Quantity *int `json:"quantity"`
}

// Update sets a line's quantity exactly; zero or less removes the line.
func (h *CartHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("productId"))
	if !ok {
		return badRequest(c, "productId", "invalid product id")
	}
	var body quantityBody
	if err := c.BodyParser(&body); err != nil || body.Quantity == nil {
		return fail(c, "cart.update", domain.ErrInvalidQuantity)
	}
	qty, err := validate.Quantity(*body.Quantity)
	if err != nil {
		return fail(c, "cart.update", err)
	}
	sess, err := h.session(c)
	if err != nil {
		return fail(c, "cart.load", err)
	}
	if err := sess.Cart.UpdateQuantity(id, qty); err != nil {
		return fail(c, "cart.update", err)
	}
	return c.JSON(sess.Cart.View())
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("productId"))
	if !ok {
		return badRequest(c, "productId", "invalid product id")
	}
	sess, err := h.session(c)
	if err != nil {
		return fail(c, "cart.load", err)
	}
	if err := sess.Cart.RemoveFromCart(id); err != nil {
		return fail(c, "cart.remove", err)
	}
	return c.JSON(sess.Cart.View())
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return fail(c, "cart.load", err)
	}
	if err := sess.Cart.ClearCart(); err != nil {
		return fail(c, "cart.clear", err)
	}
	return c.JSON(sess.Cart.View())
}
