package services

import (
	"fmt"

	"go.uber.org/zap"

	"marketflow/internal/domain"
	applog "marketflow/internal/log"
	"marketflow/internal/validate"
)

// PaymentDetails is what the payment form submits. Only a masked summary of it
// is ever stored.
type PaymentDetails struct {
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
	CVV        string `json:"cvv"`
	CardName   string `json:"cardName"`
}

type CheckoutRequest struct {
	Shipping       domain.ShippingInfo `json:"shippingInfo"`
	Payment        PaymentDetails      `json:"payment"`
	ShippingMethod string              `json:"shippingMethod"`
}

type CheckoutService struct {
	Sessions *SessionService
}

func NewCheckoutService(sessions *SessionService) *CheckoutService {
	return &CheckoutService{Sessions: sessions}
}

// Quote prices the session's cart for the full checkout path.
func (s *CheckoutService) Quote(sid string, method domain.ShippingMethod) (domain.CheckoutQuote, error) {
	sess, err := s.Sessions.Get(sid)
	if err != nil {
		return domain.CheckoutQuote{}, err
	}
	return CheckoutPricing(sess.Cart.Total(), method), nil
}

// Validate checks required fields first, then formats. It returns a
// *domain.MissingFieldError or an error wrapping domain.ErrInvalidInput.
func (req *CheckoutRequest) Validate() error {
	sh, pay := req.Shipping, req.Payment
	missing := validate.Missing(
		validate.Field{Name: "firstName", Value: sh.FirstName},
		validate.Field{Name: "lastName", Value: sh.LastName},
		validate.Field{Name: "email", Value: sh.Email},
		validate.Field{Name: "address", Value: sh.Address},
		validate.Field{Name: "city", Value: sh.City},
		validate.Field{Name: "state", Value: sh.State},
		validate.Field{Name: "zipCode", Value: sh.ZipCode},
		validate.Field{Name: "cardNumber", Value: pay.CardNumber},
		validate.Field{Name: "expiryDate", Value: pay.ExpiryDate},
		validate.Field{Name: "cvv", Value: pay.CVV},
		validate.Field{Name: "cardName", Value: pay.CardName},
	)
	if len(missing) > 0 {
		return &domain.MissingFieldError{Fields: missing}
	}
	if _, ok := validate.Email(sh.Email); !ok {
		return fmt.Errorf("%w: email", domain.ErrInvalidInput)
	}
	if _, ok := validate.ZIP(sh.ZipCode); !ok {
		return fmt.Errorf("%w: zipCode", domain.ErrInvalidInput)
	}
	if _, ok := validate.CardNumber(pay.CardNumber); !ok {
		return fmt.Errorf("%w: cardNumber", domain.ErrInvalidInput)
	}
	if _, ok := validate.Expiry(pay.ExpiryDate); !ok {
		return fmt.Errorf("%w: expiryDate", domain.ErrInvalidInput)
	}
	if !validate.CVV(pay.CVV) {
		return fmt.Errorf("%w: cvv", domain.ErrInvalidInput)
	}
	return nil
}

func (p PaymentDetails) summary() *domain.PaymentSummary {
	digits, _ := validate.CardNumber(p.CardNumber)
	return &domain.PaymentSummary{
		CardName:   p.CardName,
		CardLast4:  digits[len(digits)-4:],
		ExpiryDate: p.ExpiryDate,
	}
}

// Place validates the request, prices the cart, records the order and then
// empties the cart. A failure to empty the cart is logged; the order stands.
func (s *CheckoutService) Place(sid string, req CheckoutRequest) (domain.Order, error) {
	if err := req.Validate(); err != nil {
		return domain.Order{}, err
	}
	sess, err := s.Sessions.Get(sid)
	if err != nil {
		return domain.Order{}, err
	}
	if sess.Cart.ItemCount() == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}

	method := domain.ParseShippingMethod(req.ShippingMethod)
	quote := CheckoutPricing(sess.Cart.Total(), method)
	shipping := req.Shipping
	order, err := sess.Orders.SaveOrder(domain.OrderMetadata{
		Shipping:       &shipping,
		Payment:        req.Payment.summary(),
		ShippingMethod: method,
		Pricing:        &quote,
	})
	if err != nil {
		return domain.Order{}, err
	}
	if err := sess.Cart.ClearCart(); err != nil {
		applog.L().Error("checkout.clear_cart", zap.String("order", order.OrderNumber), zap.Error(err))
	}
	return order, nil
}
