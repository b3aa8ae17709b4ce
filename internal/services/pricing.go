package services

import (
	"github.com/shopspring/decimal"

	"marketflow/internal/domain"
)

var (
	FreeDeliveryThreshold = decimal.NewFromInt(50)
	DeliveryFee           = decimal.RequireFromString("5.99")
	StandardShippingCost  = decimal.RequireFromString("5.99")
	ExpressShippingCost   = decimal.RequireFromString("15.99")
	TaxRate               = decimal.RequireFromString("0.08")
	PointsRate            = decimal.RequireFromString("0.10")
)

// PointsEarned is floor(subtotal × 10%), always on the pre-fee, pre-tax subtotal.
func PointsEarned(subtotal decimal.Decimal) int64 {
	return subtotal.Mul(PointsRate).Floor().IntPart()
}

// QuickEstimate is the cart page and sidebar summary. Delivery is free from
// FreeDeliveryThreshold upwards and no tax is shown.
func QuickEstimate(subtotal decimal.Decimal) domain.QuickEstimate {
	fee := DeliveryFee
	remaining := FreeDeliveryThreshold.Sub(subtotal)
	if subtotal.GreaterThanOrEqual(FreeDeliveryThreshold) {
		fee = decimal.Zero
		remaining = decimal.Zero
	}
	return domain.QuickEstimate{
		Subtotal:              subtotal,
		DeliveryFee:           fee,
		Total:                 subtotal.Add(fee),
		PointsEarned:          PointsEarned(subtotal),
		FreeDeliveryRemaining: remaining,
	}
}

// CheckoutPricing is the full checkout summary. Shipping is a flat fee chosen by
// method and ignores the free-delivery threshold used by QuickEstimate.
// Tax is rounded to the cent before it is added to the total.
func CheckoutPricing(subtotal decimal.Decimal, method domain.ShippingMethod) domain.CheckoutQuote {
	shipping := StandardShippingCost
	if method == domain.ShippingExpress {
		shipping = ExpressShippingCost
	} else {
		method = domain.ShippingStandard
	}
	tax := subtotal.Mul(TaxRate).Round(2)
	return domain.CheckoutQuote{
		Subtotal:       subtotal,
		ShippingMethod: method,
		ShippingCost:   shipping,
		Tax:            tax,
		Total:          subtotal.Add(shipping).Add(tax),
		PointsEarned:   PointsEarned(subtotal),
	}
}
