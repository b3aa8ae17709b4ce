package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketflow/internal/domain"
	"marketflow/internal/repos"
	"marketflow/internal/services"
)

func checkoutRequest() services.CheckoutRequest {
	return services.CheckoutRequest{
		Shipping: domain.ShippingInfo{
			FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com",
			Address: "1 Compiler Row", City: "Arlington", State: "VA", ZipCode: "22201-1234",
		},
		Payment: services.PaymentDetails{
			CardNumber: "5500-0000-0000-0004", ExpiryDate: "12/27", CVV: "321", CardName: "G Hopper",
		},
		ShippingMethod: "express",
	}
}

// Seeded sqlite catalog, sql-backed session storage, full checkout.
func TestCheckoutFlow_AddCartCheckout(t *testing.T) {
	db, err := repos.OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	catalog := services.NewCatalogService(repos.NewCategoryRepo(db), repos.NewProductRepo(db), 0)
	sessions, err := services.NewSessionService(repos.NewKVRepo(db), 4)
	require.NoError(t, err)
	checkout := services.NewCheckoutService(sessions)

	sid := "test-session"
	sess, err := sessions.Get(sid)
	require.NoError(t, err)
	oil, err := catalog.GetByID(8)
	require.NoError(t, err)
	require.NoError(t, sess.Cart.AddToCart(oil))
	require.NoError(t, sess.Cart.UpdateQuantity(8, 3))

	quote, err := checkout.Quote(sid, domain.ShippingExpress)
	require.NoError(t, err)
	assert.True(t, d("38.97").Equal(quote.Subtotal), "subtotal %s", quote.Subtotal)
	assert.True(t, d("3.12").Equal(quote.Tax), "tax %s", quote.Tax)
	assert.True(t, d("58.08").Equal(quote.Total), "total %s", quote.Total)

	order, err := checkout.Place(sid, checkoutRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, order.Items)
	assert.True(t, d("38.97").Equal(order.Total))
	require.NotNil(t, order.Pricing)
	assert.True(t, quote.Total.Equal(order.Pricing.Total))
	assert.Equal(t, "0004", order.Payment.CardLast4)
	assert.Zero(t, sess.Cart.ItemCount(), "cart cleared after checkout")

	raw, err := repos.NewKVRepo(db).Load(services.OrdersKey(sid))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "5500-0000")
	assert.NotContains(t, string(raw), "cvv")

	_, err = checkout.Place(sid, checkoutRequest())
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestCheckoutRequestValidate(t *testing.T) {
	req := checkoutRequest()
	assert.NoError(t, req.Validate())

	req.Shipping = domain.ShippingInfo{}
	err := req.Validate()
	var missing *domain.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"firstName", "lastName", "email", "address", "city", "state", "zipCode"}, missing.Fields)
	assert.ErrorIs(t, err, domain.ErrMissingField)

	bad := []func(*services.CheckoutRequest){
		func(r *services.CheckoutRequest) { r.Shipping.Email = "nobody" },
		func(r *services.CheckoutRequest) { r.Shipping.ZipCode = "ABCDE" },
		func(r *services.CheckoutRequest) { r.Payment.CardNumber = "1234" },
		func(r *services.CheckoutRequest) { r.Payment.ExpiryDate = "13/27" },
		func(r *services.CheckoutRequest) { r.Payment.CVV = "12" },
	}
	for i, mutate := range bad {
		r := checkoutRequest()
		mutate(&r)
		assert.ErrorIs(t, r.Validate(), domain.ErrInvalidInput, "case %d", i)
	}
}

// A cart that cannot be cleared after checkout does not undo the order.
func TestCheckoutKeepsOrderWhenClearFails(t *testing.T) {
	store := &clearFailStore{fakeStore: newFakeStore()}
	sessions, err := services.NewSessionService(store, 2)
	require.NoError(t, err)
	sess, err := sessions.Get("s")
	require.NoError(t, err)
	require.NoError(t, sess.Cart.AddToCart(product(1, "5.00")))

	store.failCart = true
	order, err := services.NewCheckoutService(sessions).Place("s", checkoutRequest())
	require.NoError(t, err)
	assert.NotZero(t, order.ID)

	orders, err := sess.Orders.GetOrders()
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, 1, sess.Cart.ItemCount())
}

// clearFailStore refuses cart writes once failCart is set; order writes still succeed.
type clearFailStore struct {
	*fakeStore
	failCart bool
}

func (s *clearFailStore) Save(key string, data []byte) error {
	if s.failCart && key == services.CartKey("s") {
		return errDisk
	}
	return s.fakeStore.Save(key, data)
}
