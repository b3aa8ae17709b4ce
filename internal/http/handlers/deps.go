package handlers

import (
	"github.com/jmoiron/sqlx"

	"marketflow/internal/config"
	"marketflow/internal/repos"
	"marketflow/internal/services"
)

type Deps struct {
	ProductHandler  *ProductHandler
	CategoryHandler *CategoryHandler
	BundleHandler   *BundleHandler
	CartHandler     *CartHandler
	OrderHandler    *OrderHandler
}

// NewDeps wires catalog reads to db and session carts/orders to store.
func NewDeps(db *sqlx.DB, store services.Storage, cfg config.Config) (*Deps, error) {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)

	catalogSvc := services.NewCatalogService(catRepo, prodRepo, cfg.CatalogDelay)
	bundleSvc := services.NewBundleService(catalogSvc)
	sessions, err := services.NewSessionService(store, cfg.SessionCache)
	if err != nil {
		return nil, err
	}
	checkoutSvc := services.NewCheckoutService(sessions)

	return &Deps{
		ProductHandler:  &ProductHandler{Catalog: catalogSvc},
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc},
		BundleHandler:   &BundleHandler{Bundles: bundleSvc},
		CartHandler:     &CartHandler{Sessions: sessions, Catalog: catalogSvc, Bundles: bundleSvc},
		OrderHandler:    &OrderHandler{Sessions: sessions, Checkout: checkoutSvc},
	}, nil
}
