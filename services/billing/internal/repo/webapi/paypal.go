package webapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"learnflix/pkg/config"

	"github.com/go-resty/resty/v2"
)

const (
	orderStatusCompleted = "COMPLETED"
	// Tokens are refreshed this long before PayPal says they expire.
	tokenExpiryMargin = time.Minute
)

type PayPalClient struct {
	http         *resty.Client
	clientID     string
	clientSecret string

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
	now         func() time.Time
}

func NewPayPalClient(cfg *config.Config) *PayPalClient {
	client := resty.New().
		SetBaseURL(cfg.PayPalAPIURL).
		SetTimeout(20 * time.Second).
		SetHeader("Accept", "application/json")

	return &PayPalClient{
		http:         client,
		clientID:     cfg.PayPalClientID,
		clientSecret: cfg.PayPalClientSecret,
		now:          time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type apiError struct {
	Name             string `json:"name"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Details          []struct {
		Issue string `json:"issue"`
	} `json:"details"`
}

func (e *apiError) String() string {
	if e.ErrorDescription != "" {
		return e.Error + ": " + e.ErrorDescription
	}
	return e.Name + ": " + e.Message
}

type orderAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	Amount      orderAmount `json:"amount"`
	Description string      `json:"description,omitempty"`
}

type createOrderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *PayPalClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	if c.clientID == "" || c.clientSecret == "" {
		return "", fmt.Errorf("paypal credentials not configured")
	}

	var result tokenResponse
	var failure apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.clientID, c.clientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&result).
		SetError(&failure).
		Post("/v1/oauth2/token")
	if err != nil {
		return "", fmt.Errorf("paypal token request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("paypal authentication failed (%d): %s", resp.StatusCode(), failure.String())
	}

	c.accessToken = result.AccessToken
	c.expiresAt = c.now().Add(time.Duration(result.ExpiresIn)*time.Second - tokenExpiryMargin)
	return c.accessToken, nil
}

func (c *PayPalClient) CreateOrder(ctx context.Context, amount, currency, description string) (string, error) {
	token, err := c.token(ctx)
	if err != nil {
		return "", err
	}

	var result orderResponse
	var failure apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(createOrderRequest{
			Intent: "CAPTURE",
			PurchaseUnits: []purchaseUnit{{
				Amount:      orderAmount{CurrencyCode: currency, Value: amount},
				Description: description,
			}},
		}).
		SetResult(&result).
		SetError(&failure).
		Post("/v2/checkout/orders")
	if err != nil {
		return "", fmt.Errorf("paypal create order: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("paypal create order failed (%d): %s", resp.StatusCode(), failure.String())
	}
	return result.ID, nil
}

// CaptureOrder reports false when PayPal refuses the capture because the buyer never
// approved the order; transport and server failures are errors.
func (c *PayPalClient) CaptureOrder(ctx context.Context, orderID string) (bool, error) {
	token, err := c.token(ctx)
	if err != nil {
		return false, err
	}

	var result orderResponse
	var failure apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetPathParam("orderID", orderID).
		SetResult(&result).
		SetError(&failure).
		Post("/v2/checkout/orders/{orderID}/capture")
	if err != nil {
		return false, fmt.Errorf("paypal capture: %w", err)
	}
	if resp.StatusCode() == http.StatusUnprocessableEntity || resp.StatusCode() == http.StatusNotFound {
		return false, nil
	}
	if resp.IsError() {
		return false, fmt.Errorf("paypal capture failed (%d): %s", resp.StatusCode(), failure.String())
	}
	return result.Status == orderStatusCompleted, nil
}
