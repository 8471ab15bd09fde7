/**
 * @description
 * This file defines the core domain models for the payments-service.
 * These structs represent the main entities and data transfer objects (DTOs)
 * used throughout the service's business logic, database interactions, and API layers.
 *
 * @notes
 * - Using distinct types for API requests, database models, and external service
 *   payloads ensures clear separation of concerns and type safety.
 * - Amounts are stored as `int64` to represent the value in the smallest currency
 *   unit (paise), which avoids floating-point inaccuracies with financial data.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Payment statuses. Transitions between them are enforced by conditional
// updates in the store layer; completed, cancelled and refunded are terminal.
const (
	PaymentStatusPending             = "pending"
	PaymentStatusPendingVerification = "pending_verification"
	PaymentStatusCompleted           = "completed"
	PaymentStatusFailed              = "failed"
	PaymentStatusCancelled           = "cancelled"
	PaymentStatusRefunded            = "refunded"
)

// Payment categories.
const (
	PaymentCategoryMaintenance = "maintenance"
	PaymentCategoryUtility     = "utility"
	PaymentCategoryAmenity     = "amenity"
	PaymentCategoryPenalty     = "penalty"
	PaymentCategoryOther       = "other"
)

// Payment represents a billable obligation raised against a resident and its
// settlement state. This struct maps directly to the `payments` table.
type Payment struct {
	ID                uuid.UUID  `json:"id"`
	SocietyID         uuid.UUID  `json:"society_id"`
	UserID            uuid.UUID  `json:"user_id"`
	Amount            int64      `json:"amount"` // in paise
	Category          string     `json:"category"`
	Description       string     `json:"description"`
	Status            string     `json:"status"`
	DueDate           *time.Time `json:"due_date,omitempty"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
	RazorpayOrderID   *string    `json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID *string    `json:"razorpay_payment_id,omitempty"`
	RazorpaySignature *string    `json:"-"`
	ReferenceNumber   *string    `json:"reference_number,omitempty"`
	SubmittedAt       *time.Time `json:"submitted_at,omitempty"`
	RejectionReason   *string    `json:"rejection_reason,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// CreatePaymentPayload is the DTO for admin-created single payments.
type CreatePaymentPayload struct {
	UserID      uuid.UUID  `json:"user_id"`
	Amount      int64      `json:"amount"` // in paise
	Category    string     `json:"category"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdatePaymentPayload carries the editable fields of a payment. Nil fields
// are left unchanged. Edits are refused once a payment is completed.
type UpdatePaymentPayload struct {
	Amount      *int64     `json:"amount,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// BulkCreatePaymentsPayload is the DTO for admin-issued bulk billing. When
// TargetUserIDs is empty and AllResidents is true, every resident of the
// admin's society is billed.
type BulkCreatePaymentsPayload struct {
	TargetUserIDs []uuid.UUID `json:"target_user_ids,omitempty"`
	AllResidents  bool        `json:"all_residents,omitempty"`
	Amount        int64       `json:"amount"`
	Category      string      `json:"category"`
	Description   string      `json:"description"`
	DueDate       *time.Time  `json:"due_date,omitempty"`
}

// BulkCreateResult summarizes a bulk billing run. The insert itself is
// all-or-nothing; skipped targets were filtered out before the transaction.
type BulkCreateResult struct {
	CreatedCount int    `json:"created_count"`
	SkippedCount int    `json:"skipped_count"`
	Message      string `json:"message"`
}

// SubmitReferencePayload is the DTO for a resident's manual proof-of-payment
// submission (e.g. a bank transfer UTR number).
type SubmitReferencePayload struct {
	ReferenceNumber string `json:"reference_number"`
}

// Verification queue actions.
const (
	VerificationActionApprove = "APPROVE"
	VerificationActionReject  = "REJECT"
)

// DecideVerificationPayload is the DTO for an admin's approve/reject decision
// on a manually submitted payment.
type DecideVerificationPayload struct {
	PaymentID       uuid.UUID `json:"payment_id"`
	Action          string    `json:"action"`
	RejectionReason *string   `json:"rejection_reason,omitempty"`
}

// PaymentListOptions controls filtering and pagination for payment listings.
type PaymentListOptions struct {
	Page          int
	Limit         int
	Status        string
	Category      string
	UserID        *uuid.UUID
	StartDate     *time.Time
	EndDate       *time.Time
	CommunityView bool
}

// Pagination describes the page of a list response.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}
