/**
 * @description
 * This package provides a client for interacting with the Razorpay Orders API.
 * It encapsulates the logic for making authenticated HTTP requests to create
 * orders and for verifying checkout callback signatures.
 *
 * @dependencies
 * - bytes, context, crypto/hmac, crypto/sha256, encoding/hex, encoding/json,
 *   fmt, net/http, time: Standard Go libraries.
 *
 * @notes
 * - Signature verification recomputes HMAC-SHA256 over "order_id|payment_id"
 *   with the key secret and compares in constant time via hmac.Equal. A
 *   client-supplied signature is never trusted without this check.
 */
package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.razorpay.com"

// Client is a client for the Razorpay API.
type Client struct {
	BaseURL    string
	keyID      string
	keySecret  string
	HTTPClient *http.Client
}

// NewClient creates a new Razorpay API client. An empty baseURL falls back to
// the production endpoint; tests point it at a local httptest server.
func NewClient(baseURL, keyID, keySecret string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// KeyID returns the public key id handed to the checkout widget.
func (c *Client) KeyID() string {
	return c.keyID
}

// orderRequest is the payload for the Razorpay create-order endpoint.
type orderRequest struct {
	Amount   int64             `json:"amount"` // in paise
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Order is the response from Razorpay's order endpoints.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// ErrorResponse represents an error from the Razorpay API.
type ErrorResponse struct {
	ErrorBody struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (e *ErrorResponse) Error() string {
	if e.ErrorBody.Code != "" || e.ErrorBody.Description != "" {
		return fmt.Sprintf("razorpay api error: %s - %s", e.ErrorBody.Code, e.ErrorBody.Description)
	}
	return "unknown razorpay api error"
}

// CreateOrder creates an order with the gateway. Amount is in paise; the
// receipt ties the order back to our gateway_orders row.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*Order, error) {
	body, err := json.Marshal(orderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/v1/orders", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create order request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute order request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read order response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp ErrorResponse
		if err := json.Unmarshal(bodyBytes, &errResp); err != nil {
			log.Printf("level=warn component=razorpay_client op=create_order status=%d msg=\"non-2xx response (unparsable error body)\"", resp.StatusCode)
			return nil, fmt.Errorf("failed to decode error response (status %d)", resp.StatusCode)
		}
		log.Printf("level=warn component=razorpay_client op=create_order status=%d code=%q description=%q", resp.StatusCode, errResp.ErrorBody.Code, errResp.ErrorBody.Description)
		return nil, &errResp
	}

	var order Order
	if err := json.Unmarshal(bodyBytes, &order); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}

	return &order, nil
}

// VerifySignature checks a checkout callback signature. The expected value is
// hex(HMAC-SHA256(key_secret, order_id + "|" + payment_id)).
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
