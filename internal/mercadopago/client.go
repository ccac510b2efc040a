package mercadopago

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.mercadopago.com"

// ErrNotConfigured is returned when the installation has no payment
// provider credentials.
var ErrNotConfigured = errors.New("mercado pago is not configured")

// Client wraps the Mercado Pago REST API for subscription billing.
// A nil or token-less client is valid and reports itself as disabled.
type Client struct {
	AccessToken string
	PublicKey   string
	BaseURL     string

	HTTP *http.Client
}

func New(accessToken, publicKey string) *Client {
	return &Client{
		AccessToken: accessToken,
		PublicKey:   publicKey,
		BaseURL:     defaultBaseURL,
		HTTP:        &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled reports whether the client has credentials to act with.
func (c *Client) Enabled() bool {
	return c != nil && c.AccessToken != ""
}

func (c *Client) request(method, path string, payload any) (json.RawMessage, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mercado pago returned status %d: %s", resp.StatusCode, data)
	}
	return data, nil
}

// CreateCustomer registers a tenant admin as a Mercado Pago customer.
func (c *Client) CreateCustomer(email, nome, tenantSlug string) (json.RawMessage, error) {
	return c.request(http.MethodPost, "/v1/customers", map[string]any{
		"email":       email,
		"first_name":  nome,
		"description": "Cliente " + tenantSlug,
	})
}

// CreateSubscription opens a pending monthly preapproval for the given
// amount in BRL.
func (c *Client) CreateSubscription(reason string, amount float64, payerEmail, backURL string) (json.RawMessage, error) {
	return c.request(http.MethodPost, "/preapproval", map[string]any{
		"reason": reason,
		"auto_recurring": map[string]any{
			"frequency":          1,
			"frequency_type":     "months",
			"transaction_amount": amount,
			"currency_id":        "BRL",
		},
		"back_url":    backURL,
		"payer_email": payerEmail,
		"status":      "pending",
	})
}

// SubscriptionStatus fetches the current state of a preapproval.
func (c *Client) SubscriptionStatus(subscriptionID string) (json.RawMessage, error) {
	return c.request(http.MethodGet, "/preapproval/"+subscriptionID, nil)
}

// CancelSubscription cancels a preapproval.
func (c *Client) CancelSubscription(subscriptionID string) (json.RawMessage, error) {
	return c.request(http.MethodPut, "/preapproval/"+subscriptionID, map[string]any{
		"status": "cancelled",
	})
}

// PaymentLink describes a one-off checkout preference.
type PaymentLink struct {
	Title             string
	Amount            float64
	PayerEmail        string
	SuccessURL        string
	FailureURL        string
	PendingURL        string
	ExternalReference string
}

// CreatePaymentLink creates a checkout preference and returns the raw
// provider response (callers read init_point from it).
func (c *Client) CreatePaymentLink(link PaymentLink) (json.RawMessage, error) {
	return c.request(http.MethodPost, "/checkout/preferences", map[string]any{
		"items": []map[string]any{{
			"title":      link.Title,
			"quantity":   1,
			"unit_price": link.Amount,
		}},
		"payer": map[string]any{"email": link.PayerEmail},
		"back_urls": map[string]any{
			"success": link.SuccessURL,
			"failure": link.FailureURL,
			"pending": link.PendingURL,
		},
		"auto_return":        "approved",
		"external_reference": link.ExternalReference,
	})
}

// Ping verifies the credentials against a cheap authenticated endpoint.
func (c *Client) Ping() error {
	_, err := c.request(http.MethodGet, "/v1/payment_methods", nil)
	return err
}
