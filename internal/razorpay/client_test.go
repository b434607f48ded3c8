package razorpay_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/orders/ports"
	"github.com/tagobuyhelp/YellowTeaBackend/internal/razorpay"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *razorpay.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return razorpay.NewClient(srv.URL, "key-id", "key-secret", 5*time.Second)
}

func TestCreateIntent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key-id", user)
		assert.Equal(t, "key-secret", pass)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(70997), body["amount"])
		assert.Equal(t, "INR", body["currency"])
		assert.Equal(t, "YT-20260830-0001", body["receipt"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":       "order_JZk1",
			"amount":   70997,
			"currency": "INR",
			"receipt":  "YT-20260830-0001",
			"status":   "created",
		})
	})

	intent, err := client.CreateIntent(context.Background(), "YT-20260830-0001", 70997, "INR")
	require.NoError(t, err)
	assert.Equal(t, "order_JZk1", intent.ID)
	assert.Equal(t, int64(70997), intent.AmountMinor)
	assert.Equal(t, "INR", intent.Currency)
}

func TestFetchPayment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payments/pay_29QQ", r.URL.Path)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":       "pay_29QQ",
			"order_id": "order_JZk1",
			"amount":   70997,
			"status":   "captured",
			"method":   "card",
		})
	})

	payment, err := client.FetchPayment(context.Background(), "pay_29QQ")
	require.NoError(t, err)
	assert.Equal(t, "pay_29QQ", payment.ID)
	assert.Equal(t, "order_JZk1", payment.OrderID)
	assert.Equal(t, ports.PaymentStatusCaptured, payment.Status)
	assert.Equal(t, int64(70997), payment.AmountMinor)
}

func TestCreateRefund(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payments/pay_29QQ/refund", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(70997), body["amount"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         "rfnd_FP8Q",
			"payment_id": "pay_29QQ",
			"amount":     70997,
			"status":     "processed",
		})
	})

	refund, err := client.CreateRefund(context.Background(), "pay_29QQ", 70997)
	require.NoError(t, err)
	assert.Equal(t, "rfnd_FP8Q", refund.ID)
	assert.Equal(t, "processed", refund.Status)
	assert.Equal(t, int64(70997), refund.AmountMinor)
}

func TestGatewayErrorSurfacesAsUpstream(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":        "BAD_REQUEST_ERROR",
				"description": "The amount is invalid",
			},
		})
	})

	_, err := client.CreateIntent(context.Background(), "YT-20260830-0002", -1, "INR")
	require.Error(t, err)
	assert.True(t, ports.IsUpstream(err))
	assert.Contains(t, err.Error(), "The amount is invalid")
}

func TestUnreachableGatewayIsUpstream(t *testing.T) {
	client := razorpay.NewClient("http://127.0.0.1:1", "key-id", "key-secret", 500*time.Millisecond)

	_, err := client.FetchPayment(context.Background(), "pay_29QQ")
	require.Error(t, err)
	assert.True(t, ports.IsUpstream(err))
}
