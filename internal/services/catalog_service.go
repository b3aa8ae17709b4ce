package services

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"marketflow/internal/domain"
)

type ProductSource interface {
	All() ([]domain.Product, error)
}

type CategorySource interface {
	All() ([]domain.Category, error)
}

// CatalogService answers read-only queries over a snapshot of the catalog taken
// on first successful load. Every call waits Delay before answering and always
// runs to completion; there is no way to abandon a query once started.
type CatalogService struct {
	Cats  CategorySource
	Prods ProductSource
	Delay time.Duration

	mu         sync.Mutex
	loaded     bool
	products   []domain.Product
	categories []domain.Category
}

func NewCatalogService(cats CategorySource, prods ProductSource, delay time.Duration) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods, Delay: delay}
}

func (s *CatalogService) snapshot() ([]domain.Product, []domain.Category, error) {
	if s.Delay > 0 {
		time.Sleep(s.Delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		prods, err := s.Prods.All()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: products: %v", domain.ErrDataUnavailable, err)
		}
		cats, err := s.Cats.All()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: categories: %v", domain.ErrDataUnavailable, err)
		}
		s.products, s.categories, s.loaded = prods, cats, true
	}
	return s.products, s.categories, nil
}

func (s *CatalogService) filter(keep func(domain.Product) bool) ([]domain.Product, error) {
	prods, _, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	out := []domain.Product{}
	for _, p := range prods {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *CatalogService) GetAll() ([]domain.Product, error) {
	return s.filter(func(domain.Product) bool { return true })
}

func (s *CatalogService) GetByID(id int) (domain.Product, error) {
	prods, _, err := s.snapshot()
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range prods {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
}

func (s *CatalogService) GetFeatured() ([]domain.Product, error) {
	return s.filter(func(p domain.Product) bool { return p.Featured })
}

// GetByCategory matches slug case-insensitively against each product's slugified category.
func (s *CatalogService) GetByCategory(slug string) ([]domain.Product, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	return s.filter(func(p domain.Product) bool { return p.CategorySlug() == slug })
}

// Search is a case-insensitive substring match over name, description and category.
// A blank query matches nothing.
func (s *CatalogService) Search(query string) ([]domain.Product, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		if _, _, err := s.snapshot(); err != nil {
			return nil, err
		}
		return []domain.Product{}, nil
	}
	return s.filter(func(p domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) ||
			strings.Contains(strings.ToLower(p.Category), q)
	})
}

func (s *CatalogService) ListCategories() ([]domain.Category, error) {
	_, cats, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return slices.Clone(cats), nil
}

func (s *CatalogService) GetCategory(id int) (domain.Category, error) {
	_, cats, err := s.snapshot()
	if err != nil {
		return domain.Category{}, err
	}
	for _, c := range cats {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Category{}, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
}

func (s *CatalogService) GetCategoryBySlug(slug string) (domain.Category, error) {
	_, cats, err := s.snapshot()
	if err != nil {
		return domain.Category{}, err
	}
	slug = strings.ToLower(strings.TrimSpace(slug))
	for _, c := range cats {
		if c.Slug == slug {
			return c, nil
		}
	}
	return domain.Category{}, fmt.Errorf("category %q: %w", slug, domain.ErrNotFound)
}

const (
	SortName      = "name"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortFeatured  = "featured"
)

// BrowseFilter is the shop page query. Zero values mean "no constraint";
// an empty Sort means SortName.
type BrowseFilter struct {
	Category string
	MinPrice decimal.NullDecimal
	MaxPrice decimal.NullDecimal
	Sort     string
}

type BrowseResult struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
}

// Browse filters by category and inclusive price range, then sorts.
// Unknown sort keys keep catalog order.
func (s *CatalogService) Browse(f BrowseFilter) (BrowseResult, error) {
	all, err := s.GetAll()
	if err != nil {
		return BrowseResult{}, err
	}
	slug := strings.ToLower(strings.TrimSpace(f.Category))
	out := []domain.Product{}
	for _, p := range all {
		if slug != "" && p.CategorySlug() != slug {
			continue
		}
		if f.MinPrice.Valid && p.Price.LessThan(f.MinPrice.Decimal) {
			continue
		}
		if f.MaxPrice.Valid && p.Price.GreaterThan(f.MaxPrice.Decimal) {
			continue
		}
		out = append(out, p)
	}

	sortKey := f.Sort
	if sortKey == "" {
		sortKey = SortName
	}
	switch sortKey {
	case SortName:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
	case SortPriceLow:
		slices.SortStableFunc(out, func(a, b domain.Product) int { return a.Price.Cmp(b.Price) })
	case SortPriceHigh:
		slices.SortStableFunc(out, func(a, b domain.Product) int { return b.Price.Cmp(a.Price) })
	case SortFeatured:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			switch {
			case a.Featured == b.Featured:
				return 0
			case a.Featured:
				return -1
			default:
				return 1
			}
		})
	}
	return BrowseResult{Products: out, Total: len(all)}, nil
}
