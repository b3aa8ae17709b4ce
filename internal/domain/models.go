package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var reSpaces = regexp.MustCompile(`\s+`)

// Slugify lowercases a category name and hyphenates whitespace runs:
// "Fresh Fruits" becomes "fresh-fruits".
func Slugify(name string) string {
	return reSpaces.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

type Category struct {
	ID   int    `json:"Id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Product struct {
	ID            int                 `json:"Id"`
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	Price         decimal.Decimal     `json:"price"`
	OriginalPrice decimal.NullDecimal `json:"originalPrice"`
	Category      string              `json:"category"`
	Stock         int                 `json:"stock"`
	Images        []string            `json:"images"`
	Featured      bool                `json:"featured"`
	Organic       bool                `json:"organic"`
	Fresh         bool                `json:"fresh"`
}

// CategorySlug is the normalised category used for filtering.
func (p Product) CategorySlug() string { return Slugify(p.Category) }

func (p Product) OnSale() bool {
	return p.OriginalPrice.Valid && p.OriginalPrice.Decimal.GreaterThan(p.Price)
}

func (p Product) InStock() bool { return p.Stock > 0 }

// CartLine is one product's entry in a cart. Price is captured when the
// line is first created and never refreshed from the catalog.
type CartLine struct {
	ProductID int             `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Images    []string        `json:"images"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is price × quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Clone returns a copy that shares no slices with l.
func (l CartLine) Clone() CartLine {
	out := l
	if l.Images != nil {
		out.Images = append([]string(nil), l.Images...)
	}
	return out
}

type Bundle struct {
	ID            int             `json:"Id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Image         string          `json:"image"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	BundlePrice   decimal.Decimal `json:"bundlePrice"`
	Savings       decimal.Decimal `json:"savings"`
	Products      []Product       `json:"products"`
}

type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
)

// ParseShippingMethod accepts "standard" and "express" case-insensitively.
// Anything else, including the empty string, is standard shipping.
func ParseShippingMethod(s string) ShippingMethod {
	if strings.EqualFold(strings.TrimSpace(s), string(ShippingExpress)) {
		return ShippingExpress
	}
	return ShippingStandard
}

type OrderStatus string

const (
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
}

// Valid reports whether s is one of the four lifecycle states.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next directly follows s in the order lifecycle.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type ShippingInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
}

// PaymentSummary never carries a full card number or CVV.
type PaymentSummary struct {
	CardName   string `json:"cardName"`
	CardLast4  string `json:"cardLast4"`
	ExpiryDate string `json:"expiryDate"`
}

// OrderMetadata is supplied by the checkout caller and flattened into the order record.
type OrderMetadata struct {
	Shipping       *ShippingInfo   `json:"shippingInfo,omitempty"`
	Payment        *PaymentSummary `json:"payment,omitempty"`
	ShippingMethod ShippingMethod  `json:"shippingMethod,omitempty"`
	Pricing        *CheckoutQuote  `json:"pricing,omitempty"`
}

type Order struct {
	ID          int64           `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	Date        time.Time       `json:"date"`
	Status      OrderStatus     `json:"status"`
	Items       int             `json:"items"`
	Total       decimal.Decimal `json:"total"`
	CartItems   []CartLine      `json:"cartItems"`
	OrderMetadata
}

// QuickEstimate is the cart-page/sidebar summary: threshold delivery, no tax.
type QuickEstimate struct {
	Subtotal              decimal.Decimal `json:"subtotal"`
	DeliveryFee           decimal.Decimal `json:"deliveryFee"`
	Total                 decimal.Decimal `json:"total"`
	PointsEarned          int64           `json:"pointsEarned"`
	FreeDeliveryRemaining decimal.Decimal `json:"freeDeliveryRemaining"`
}

// CheckoutQuote is the full checkout summary: flat shipping by method plus tax.
type CheckoutQuote struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	ShippingMethod ShippingMethod  `json:"shippingMethod"`
	ShippingCost   decimal.Decimal `json:"shippingCost"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
	PointsEarned   int64           `json:"pointsEarned"`
}
