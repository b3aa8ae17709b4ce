package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"marketflow/internal/domain"
	applog "marketflow/internal/log"
	"marketflow/internal/services"
	"marketflow/internal/validate"
)

type OrderHandler struct {
	Sessions *services.SessionService
	Checkout *services.CheckoutService
}

// Quote prices the cart for the chosen shipping method (?shipping=standard|express).
func (h *OrderHandler) Quote(c *fiber.Ctx) error {
	method := domain.ParseShippingMethod(c.Query("shipping"))
	q, err := h.Checkout.Quote(ensureSID(c), method)
	if err != nil {
		return fail(c, "checkout.quote", err)
	}
	return c.JSON(q)
}

func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var req services.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "invalid checkout form")
	}
	order, err := h.Checkout.Place(ensureSID(c), req)
	if err != nil {
		return fail(c, "order.place.fail", err)
	}
	applog.Audit(c, "order.place", map[string]any{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"items":        order.Items,
		"total":        order.Total.StringFixed(2),
	})
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	sess, err := h.Sessions.Get(ensureSID(c))
	if err != nil {
		return fail(c, "orders.list", err)
	}
	orders, err := sess.Orders.GetOrders()
	if err != nil {
		return fail(c, "orders.list", err)
	}
	return c.JSON(orders)
}

// Track looks orders up by (partial) order number, e.g. ?q=MF1234.
func (h *OrderHandler) Track(c *fiber.Ctx) error {
	q, ok := validate.Q(c.Query("q"))
	if !ok {
		return badRequest(c, "q", "enter a valid order number")
	}
	sess, err := h.Sessions.Get(ensureSID(c))
	if err != nil {
		return fail(c, "orders.track", err)
	}
	orders, err := sess.Orders.FindOrders(q)
	if err != nil {
		return fail(c, "orders.track", err)
	}
	return c.JSON(fiber.Map{"query": q, "orders": orders})
}

// View renders the confirmation/tracking page. Only the session that placed
// the order can see it; everyone else gets the not-found page.
func (h *OrderHandler) View(c *fiber.Ctx) error {
	notFound := func() error {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Order not found"})
	}
	id, ok := validate.OrderID(c.Params("id"))
	if !ok {
		return notFound()
	}
	sess, err := h.Sessions.Get(ensureSID(c))
	if err != nil {
		applog.Error(c, "order.view", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your orders"})
	}
	o, err := sess.Orders.GetOrder(id)
	if errors.Is(err, domain.ErrNotFound) {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": id})
		return notFound()
	}
	if err != nil {
		applog.Error(c, "order.view", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your orders"})
	}
	return render(c, "order", fiber.Map{"Order": o})
}
