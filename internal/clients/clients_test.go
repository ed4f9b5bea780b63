package clients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient("backend", srv.URL+"/api", srv.Client(), 2*time.Second, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestCatalogClient_GetProduct(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/products/p1", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"id": "p1",
			"name": "Oxford Shirt",
			"price": 1299.5,
			"images": [{"url": "https://img/1.jpg", "alt": "front"}, {"url": "https://img/2.jpg", "alt": "back"}],
			"variants": [{"color": "Blue", "color_code": "#00f", "sizes": {"M": 4, "L": 0}}]
		}`))
	})

	product, err := NewCatalogClient(c).GetProduct(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, "p1", product.ID)
	assert.Equal(t, "Oxford Shirt", product.Name)
	assert.True(t, decimal.RequireFromString("1299.5").Equal(product.Price))
	assert.Equal(t, "https://img/1.jpg", product.Image)
	require.Len(t, product.Variants, 1)
	stock, ok := product.Variants[0].Stock("M")
	assert.True(t, ok)
	assert.Equal(t, 4, stock)
}

func TestCatalogClient_GetProduct_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "Product not found"}`))
	})

	_, err := NewCatalogClient(c).GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestClient_PathSegmentsEscapedOnce(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.EscapedPath())
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "/api/products/a b", r.URL.Path)
			_, _ = w.Write([]byte(`{"id": "a b", "name": "Linen Tee", "price": 10}`))
		default:
			_, _ = w.Write([]byte(`{"name": "Asha", "wishlist": []}`))
		}
	})
	ctx := context.Background()

	product, err := NewCatalogClient(c).GetProduct(ctx, "a b")
	require.NoError(t, err)
	assert.Equal(t, "a b", product.ID)

	_, err = NewProfileClient(c).RemoveFromWishlist(ctx, "tok", "a/b")
	require.NoError(t, err)

	assert.Equal(t, []string{"/api/products/a%20b", "/api/profile/wishlist/a%2Fb"}, seen)
}

func TestOrderClient_CreateOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders/create-razorpay-order", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 1500.0, body["total_amount"])
		items := body["items"].([]any)
		require.Len(t, items, 1)
		line := items[0].(map[string]any)
		assert.Equal(t, "p1", line["product_id"])
		assert.Equal(t, 500.0, line["price"])
		assert.Equal(t, 3.0, line["quantity"])
		addr := body["shipping_address"].(map[string]any)
		assert.Equal(t, "India", addr["country"])

		_, _ = w.Write([]byte(`{"order_id": "o1", "razorpay_order_id": "rzp_1", "amount": 150000, "currency": "INR"}`))
	})

	draft := domain.OrderDraft{
		Items: []domain.OrderLine{{
			ProductID: "p1", ProductName: "Tee", Color: "Blue", Size: "M",
			Quantity: 3, Price: decimal.NewFromInt(500),
		}},
		ShippingAddress: domain.ShippingAddress{Name: "A", Country: "India"},
		TotalAmount:     decimal.NewFromInt(1500),
	}

	session, err := NewOrderClient(c).CreateOrder(context.Background(), "tok", draft)
	require.NoError(t, err)
	assert.Equal(t, &domain.PaymentSession{
		OrderID: "o1", GatewayOrderID: "rzp_1", Amount: 150000, Currency: "INR",
	}, session)
}

func TestOrderClient_VerifyPayment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders/verify-payment", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{
			"razorpay_order_id":   "rzp_1",
			"razorpay_payment_id": "pay_1",
			"razorpay_signature":  "sig",
			"order_id":            "o1",
		}, body)
		_, _ = w.Write([]byte(`{"message": "Payment verified successfully"}`))
	})

	err := NewOrderClient(c).VerifyPayment(context.Background(), "tok", "o1", domain.PaymentConfirmation{
		GatewayOrderID: "rzp_1", GatewayPaymentID: "pay_1", Signature: "sig",
	})
	assert.NoError(t, err)
}

func TestOrderClient_VerifyPayment_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail": "Invalid payment signature"}`))
	})

	err := NewOrderClient(c).VerifyPayment(context.Background(), "tok", "o1", domain.PaymentConfirmation{})
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, "Invalid payment signature", se.Detail)
}

func TestProfileClient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/profile":
			_, _ = w.Write([]byte(`{"name": "Asha", "email": "a@x", "shipping_address": {"city": "Pune"}, "wishlist": ["p1"]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/profile/wishlist":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "p2", body["product_id"])
			_, _ = w.Write([]byte(`{"name": "Asha", "wishlist": ["p1", "p2"]}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/api/profile/wishlist/p1":
			_, _ = w.Write([]byte(`{"name": "Asha", "wishlist": []}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	pc := NewProfileClient(c)
	ctx := context.Background()

	p, err := pc.GetProfile(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "Asha", p.Name)
	require.NotNil(t, p.ShippingAddress)
	assert.Equal(t, "Pune", p.ShippingAddress.City)
	assert.Equal(t, []string{"p1"}, p.Wishlist)

	p, err = pc.AddToWishlist(ctx, "tok", "p2")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, p.Wishlist)

	p, err = pc.RemoveFromWishlist(ctx, "tok", "p1")
	require.NoError(t, err)
	assert.Empty(t, p.Wishlist)
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	pc := NewProfileClient(c)

	for i := 0; i < 5; i++ {
		_, err := pc.GetProfile(context.Background(), "tok")
		assert.True(t, IsStatus(err, http.StatusServiceUnavailable))
	}

	_, err := pc.GetProfile(context.Background(), "tok")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(5), calls.Load())
}

func TestClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	pc := NewProfileClient(c)

	for i := 0; i < 10; i++ {
		_, err := pc.GetProfile(context.Background(), "tok")
		assert.True(t, IsStatus(err, http.StatusUnauthorized))
	}
}
