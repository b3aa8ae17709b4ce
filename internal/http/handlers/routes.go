package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	applog "marketflow/internal/log"
)

// AppOptions tunes NewApp; zero values pick production defaults.
type AppOptions struct {
	SearchLimit  int // requests per minute per IP on search endpoints
	AccessLog    bool
	BodyLimitKiB int
}

// NewApp builds the fiber app with the global middleware stack and every route.
func NewApp(views fiber.Views, d *Deps, opt AppOptions) *fiber.App {
	if opt.SearchLimit <= 0 {
		opt.SearchLimit = 20
	}
	if opt.BodyLimitKiB <= 0 {
		opt.BodyLimitKiB = 1024 // 1 MiB
	}

	app := fiber.New(fiber.Config{
		Views:     views,
		BodyLimit: opt.BodyLimitKiB * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			// Log and show a friendly message
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong, please retry"})
		},
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	if opt.AccessLog {
		app.Use(logger.New())
	}
	app.Use(helmet.New())

	searchLimiter := limiter.New(limiter.Config{
		Max:        opt.SearchLimit,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|search"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.search.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})

	// ---------- API ----------
	api := app.Group("/api/v1")

	api.Get("/products", d.ProductHandler.Browse)
	api.Get("/products/featured", d.ProductHandler.Featured)
	api.Get("/products/:id", d.ProductHandler.Detail)
	api.Get("/search", searchLimiter, d.ProductHandler.Search)

	api.Get("/categories", d.CategoryHandler.List)
	api.Get("/categories/:id", d.CategoryHandler.Get)
	api.Get("/categories/:slug/products", d.CategoryHandler.Products)

	api.Get("/bundles", d.BundleHandler.List)

	// Cart
	api.Get("/cart", d.CartHandler.View)
	api.Post("/cart/items", d.CartHandler.Add)
	api.Post("/cart/bundles/:id", d.CartHandler.AddBundle)
	api.Patch("/cart/items/:productId", d.CartHandler.Update)
	api.Delete("/cart/items/:productId", d.CartHandler.Remove)
	api.Delete("/cart", d.CartHandler.Clear)

	// Checkout & orders
	api.Get("/checkout/quote", d.OrderHandler.Quote)
	api.Post("/checkout", d.OrderHandler.Place)
	api.Get("/orders", d.OrderHandler.List)
	api.Get("/orders/track", searchLimiter, d.OrderHandler.Track)

	app.Get("/order/:id", d.OrderHandler.View)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})
	return app
}
