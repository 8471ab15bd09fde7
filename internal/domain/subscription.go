/**
 * @description
 * Subscription and gateway-order domain models. Each society has exactly one
 * subscription row; access-gated features read it to decide whether the
 * society is active. Gateway orders record the server-side authoritative
 * amount for every Razorpay order we create, so that verification never has
 * to trust a client-supplied amount.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subscription represents a society's subscription state in the database.
type Subscription struct {
	ID         uuid.UUID  `json:"id"`
	SocietyID  uuid.UUID  `json:"society_id"`
	IsLifetime bool       `json:"is_lifetime"`
	ExpiresOn  *time.Time `json:"expires_on,omitempty"`
	FlatCount  int        `json:"flat_count"`
	TrialUsed  bool       `json:"trial_used"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// SubscriptionStatus is the DTO returned to clients. Active and DaysRemaining
// are derived; a lifetime grant suppresses expiry logic entirely.
type SubscriptionStatus struct {
	Active        bool       `json:"active"`
	IsLifetime    bool       `json:"is_lifetime"`
	ExpiresOn     *time.Time `json:"expires_on,omitempty"`
	DaysRemaining int        `json:"days_remaining"`
	FlatCount     int        `json:"flat_count"`
	MinFlatCount  int        `json:"min_flat_count"`
	TrialUsed     bool       `json:"trial_used"`
}

// Gateway order purposes.
const (
	OrderPurposeSubscription = "subscription"
	OrderPurposePayment      = "payment"
)

// Gateway order statuses.
const (
	OrderStatusCreated = "created"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
)

// GatewayOrder records a Razorpay order created server-side. Amount is the
// authoritative value that verification cross-checks against.
type GatewayOrder struct {
	ID              uuid.UUID  `json:"id"`
	SocietyID       uuid.UUID  `json:"society_id"`
	Purpose         string     `json:"purpose"`
	RazorpayOrderID string     `json:"razorpay_order_id"`
	Amount          int64      `json:"amount"` // in paise
	Currency        string     `json:"currency"`
	PlanDays        int        `json:"plan_days"`
	FlatCount       int        `json:"flat_count"`
	PaymentID       *uuid.UUID `json:"payment_id,omitempty"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
}

// CreateSubscriptionOrderPayload is the DTO for starting a subscription purchase.
type CreateSubscriptionOrderPayload struct {
	Days      int `json:"days"`
	FlatCount int `json:"flat_count"`
}

// SubscriptionOrderResponse is returned after a gateway order is created. The
// client hands these to the Razorpay checkout.
type SubscriptionOrderResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"` // in paise
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

// VerifyGatewayPaymentPayload is the DTO for the checkout callback. The
// signature is recomputed server-side; Days/amount are never taken from here.
type VerifyGatewayPaymentPayload struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// Subscription grant types issued by the super-admin.
const (
	GrantTypeTrial    = "trial"
	GrantTypeCustom   = "custom"
	GrantTypeLifetime = "lifetime"
)

// GrantSubscriptionPayload is the DTO for super-admin subscription grants.
type GrantSubscriptionPayload struct {
	SocietyID uuid.UUID `json:"society_id"`
	Type      string    `json:"type"`
	Days      int       `json:"days,omitempty"`
}

// ToggleLifetimePayload is the DTO for the super-admin lifetime switch.
type ToggleLifetimePayload struct {
	SocietyID uuid.UUID `json:"society_id"`
	Enable    bool      `json:"enable"`
}
