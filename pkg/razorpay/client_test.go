package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/orders" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rzp_test_key" || pass != "secret" {
			t.Errorf("unexpected basic auth: %q %q", user, pass)
		}

		var req struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
			Receipt  string `json:"receipt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Amount != 150000 {
			t.Errorf("expected amount 150000, got %d", req.Amount)
		}
		if req.Currency != "INR" {
			t.Errorf("expected currency INR, got %q", req.Currency)
		}

		json.NewEncoder(w).Encode(Order{
			ID:       "order_test123",
			Amount:   req.Amount,
			Currency: req.Currency,
			Receipt:  req.Receipt,
			Status:   "created",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "rzp_test_key", "secret")
	order, err := client.CreateOrder(context.Background(), 150000, "INR", "rcpt_1", nil)
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}
	if order.ID != "order_test123" {
		t.Errorf("expected order id order_test123, got %q", order.ID)
	}
	if order.Status != "created" {
		t.Errorf("expected status created, got %q", order.Status)
	}
}

func TestCreateOrderAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount must be at least 100"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "rzp_test_key", "secret")
	_, err := client.CreateOrder(context.Background(), 1, "INR", "rcpt_1", nil)
	if err == nil {
		t.Fatal("expected error for non-2xx response, got nil")
	}
	apiErr, ok := err.(*ErrorResponse)
	if !ok {
		t.Fatalf("expected *ErrorResponse, got %T", err)
	}
	if apiErr.ErrorBody.Code != "BAD_REQUEST_ERROR" {
		t.Errorf("expected code BAD_REQUEST_ERROR, got %q", apiErr.ErrorBody.Code)
	}
}

func TestVerifySignature(t *testing.T) {
	client := NewClient("", "rzp_test_key", "secret")

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("order_abc|pay_def"))
	valid := hex.EncodeToString(mac.Sum(nil))

	if !client.VerifySignature("order_abc", "pay_def", valid) {
		t.Error("expected valid signature to verify")
	}
	if client.VerifySignature("order_abc", "pay_def", "deadbeef") {
		t.Error("expected forged signature to fail")
	}
	if client.VerifySignature("order_other", "pay_def", valid) {
		t.Error("expected signature for a different order to fail")
	}
	if client.VerifySignature("order_abc", "pay_def", "") {
		t.Error("expected empty signature to fail")
	}
}
