package paymentprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCustomer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/customers/cus_1", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(Customer{ID: "cus_1", Email: "a@b.com"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test")
	customer, err := client.GetCustomer(context.Background(), "cus_1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", customer.Email)
	assert.False(t, customer.Deleted)
}

func TestCreateCheckoutSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "subscription", r.PostForm.Get("mode"))
		assert.Equal(t, "price_123", r.PostForm.Get("line_items[0][price]"))
		assert.Equal(t, "1", r.PostForm.Get("line_items[0][quantity]"))
		assert.Equal(t, "true", r.PostForm.Get("allow_promotion_codes"))
		assert.Contains(t, r.PostForm.Get("success_url"), "/welcome")

		_ = json.NewEncoder(w).Encode(CheckoutSessionResponse{
			ID:  "cs_1",
			URL: "https://pay.example.com/cs_1",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test")
	session, err := client.CreateCheckoutSession(context.Background(), CheckoutSessionParams{
		PriceID:             "price_123",
		SuccessURL:          "https://course.example.com/welcome?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:           "https://course.example.com/pricing",
		AllowPromotionCodes: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/cs_1", session.URL)
}

func TestGetSubscription_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test")
	sub, err := client.GetSubscription(context.Background(), "sub_missing")
	require.Error(t, err)
	assert.Nil(t, sub)
}

func TestSubscriptionObject_CustomerID(t *testing.T) {
	var obj SubscriptionObject
	require.NoError(t, json.Unmarshal([]byte(`{"id":"sub_1","customer":"cus_1","status":"active"}`), &obj))
	id, ok := obj.CustomerID()
	assert.True(t, ok)
	assert.Equal(t, "cus_1", id)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"sub_1","customer":{"id":"cus_1"}}`), &obj))
	_, ok = obj.CustomerID()
	assert.False(t, ok)
}
