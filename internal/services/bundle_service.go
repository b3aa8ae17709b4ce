package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"marketflow/internal/domain"
)

const bundleSize = 3

type bundleRecipe struct {
	id          int
	name        string
	description string
	image       string
	discount    decimal.Decimal // fraction off the combined product price
}

// Recipes are matched in order to consecutive slices of the catalog.
var bundleRecipes = []bundleRecipe{
	{1, "Fresh Breakfast Kit", "Everything for a bright start: fruit, greens and the morning basics.",
		"/media/bundles/breakfast.jpg", decimal.RequireFromString("0.15")},
	{2, "Farmhouse Table", "Eggs, milk and fresh-baked bread for a proper family meal.",
		"/media/bundles/farmhouse.jpg", decimal.RequireFromString("0.12")},
	{3, "Pantry Essentials", "Stock the cupboard with oil, rice and a treat for later.",
		"/media/bundles/pantry.jpg", decimal.RequireFromString("0.18")},
}

type BundleService struct {
	Catalog *CatalogService
}

func NewBundleService(catalog *CatalogService) *BundleService {
	return &BundleService{Catalog: catalog}
}

// GetBundles groups the first nine catalog products into three bundles of three.
// Only complete groups become bundles, and a group too cheap to discount by a cent is skipped.
func (s *BundleService) GetBundles() ([]domain.Bundle, error) {
	prods, err := s.Catalog.GetAll()
	if err != nil {
		return nil, err
	}
	out := []domain.Bundle{}
	for i, r := range bundleRecipes {
		start := i * bundleSize
		if start+bundleSize > len(prods) {
			break
		}
		group := prods[start : start+bundleSize]
		original := decimal.Zero
		for _, p := range group {
			original = original.Add(p.Price)
		}
		price := original.Mul(decimal.NewFromInt(1).Sub(r.discount)).Round(2)
		if !price.LessThan(original) {
			continue
		}
		out = append(out, domain.Bundle{
			ID:            r.id,
			Name:          r.name,
			Description:   r.description,
			Image:         r.image,
			OriginalPrice: original,
			BundlePrice:   price,
			Savings:       original.Sub(price),
			Products:      append([]domain.Product(nil), group...),
		})
	}
	return out, nil
}

func (s *BundleService) GetBundle(id int) (domain.Bundle, error) {
	bundles, err := s.GetBundles()
	if err != nil {
		return domain.Bundle{}, err
	}
	for _, b := range bundles {
		if b.ID == id {
			return b, nil
		}
	}
	return domain.Bundle{}, fmt.Errorf("bundle %d: %w", id, domain.ErrNotFound)
}

// AddBundle adds one unit of each product in the bundle, in bundle order.
// A failed write stops at that product; earlier additions stay in the cart.
func (s *BundleService) AddBundle(cart *Cart, id int) (domain.Bundle, error) {
	b, err := s.GetBundle(id)
	if err != nil {
		return domain.Bundle{}, err
	}
	for _, p := range b.Products {
		if err := cart.AddToCart(p); err != nil {
			return domain.Bundle{}, err
		}
	}
	return b, nil
}
