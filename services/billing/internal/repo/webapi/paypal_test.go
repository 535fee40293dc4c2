package webapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"learnflix/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, captureStatus int, captureBody string) (*httptest.Server, *int32) {
	t.Helper()
	var tokenCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client" || pass != "secret" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_client","error_description":"Client Authentication failed"}`))
			return
		}
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-1","expires_in":32400}`))
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		var body createOrderRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			return
		}
		assert.Equal(t, "CAPTURE", body.Intent)
		assert.Equal(t, "9.99", body.PurchaseUnits[0].Amount.Value)
		assert.Equal(t, "USD", body.PurchaseUnits[0].Amount.CurrencyCode)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"ORDER-1","status":"CREATED"}`))
	})
	mux.HandleFunc("/v2/checkout/orders/ORDER-1/capture", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(captureStatus)
		w.Write([]byte(captureBody))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &tokenCalls
}

func newTestClient(url, secret string) *PayPalClient {
	return NewPayPalClient(&config.Config{
		PayPalAPIURL:       url,
		PayPalClientID:     "client",
		PayPalClientSecret: secret,
	})
}

func TestPayPalClient_CreateAndCapture(t *testing.T) {
	server, tokenCalls := newTestServer(t, http.StatusCreated, `{"id":"ORDER-1","status":"COMPLETED"}`)
	client := newTestClient(server.URL, "secret")
	ctx := context.Background()

	orderID, err := client.CreateOrder(ctx, "9.99", "USD", "Premium")
	require.NoError(t, err)
	assert.Equal(t, "ORDER-1", orderID)

	completed, err := client.CaptureOrder(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, completed)

	assert.Equal(t, int32(1), atomic.LoadInt32(tokenCalls), "token should be reused")
}

func TestPayPalClient_CaptureNotApproved(t *testing.T) {
	server, _ := newTestServer(t, http.StatusUnprocessableEntity,
		`{"name":"UNPROCESSABLE_ENTITY","details":[{"issue":"ORDER_NOT_APPROVED"}]}`)
	client := newTestClient(server.URL, "secret")

	completed, err := client.CaptureOrder(context.Background(), "ORDER-1")
	require.NoError(t, err)
	assert.False(t, completed)
}

func TestPayPalClient_CapturePending(t *testing.T) {
	server, _ := newTestServer(t, http.StatusCreated, `{"id":"ORDER-1","status":"PENDING"}`)
	client := newTestClient(server.URL, "secret")

	completed, err := client.CaptureOrder(context.Background(), "ORDER-1")
	require.NoError(t, err)
	assert.False(t, completed)
}

func TestPayPalClient_ServerError(t *testing.T) {
	server, _ := newTestServer(t, http.StatusInternalServerError, `{"name":"INTERNAL_SERVER_ERROR","message":"oops"}`)
	client := newTestClient(server.URL, "secret")

	_, err := client.CaptureOrder(context.Background(), "ORDER-1")
	assert.Error(t, err)
}

func TestPayPalClient_BadCredentials(t *testing.T) {
	server, _ := newTestServer(t, http.StatusCreated, `{}`)
	client := newTestClient(server.URL, "wrong")

	_, err := client.CreateOrder(context.Background(), "9.99", "USD", "Premium")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Client Authentication failed")
}
