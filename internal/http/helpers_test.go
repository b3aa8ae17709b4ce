package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketflow/internal/config"
	"marketflow/internal/domain"
	"marketflow/internal/http/handlers"
	"marketflow/internal/repos"
	"marketflow/internal/services"
	"marketflow/web"
)

type cartView = services.CartView

type testApp struct {
	app   *fiber.App
	db    *sqlx.DB
	store services.Storage
}

// newTestApp serves the seeded catalog from in-memory sqlite. A nil store
// keeps carts and orders in a go-memdb backend.
func newTestApp(t *testing.T, store services.Storage, opt handlers.AppOptions) *testApp {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	require.NoError(t, err, "open db")
	t.Cleanup(func() { _ = db.Close() })

	if store == nil {
		mem, err := repos.NewMemRepo()
		require.NoError(t, err)
		store = mem
	}
	cfg := config.Config{SessionCache: 16}
	deps, err := handlers.NewDeps(db, store, cfg)
	require.NoError(t, err)
	return &testApp{app: handlers.NewApp(web.Engine(), deps, opt), db: db, store: store}
}

func newSID() string { return uuid.NewString() }

// call sends a request as session sid, JSON-encoding body when it is not nil.
func (ta *testApp) call(t *testing.T, method, path, sid string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), "body=%s", raw)
	return v
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got.String())
}

func validCheckout() services.CheckoutRequest {
	return services.CheckoutRequest{
		Shipping: domain.ShippingInfo{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Address:   "12 Analytical Way",
			City:      "Baltimore",
			State:     "MD",
			ZipCode:   "21201",
		},
		Payment: services.PaymentDetails{
			CardNumber: "4111 1111 1111 1234",
			ExpiryDate: "09/28",
			CVV:        "123",
			CardName:   "Ada Lovelace",
		},
		ShippingMethod: "standard",
	}
}

// failingStore reads through but refuses every write.
type failingStore struct{ services.Storage }

func (failingStore) Save(string, []byte) error { return errors.New("disk full at /var/secret/kv") }

func cookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
