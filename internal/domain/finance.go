package domain

import (
	"time"

	"github.com/google/uuid"
)

// Finance record types.
const (
	FinanceTypeIncome  = "income"
	FinanceTypeExpense = "expense"
)

// FinanceRecord is an entry in the community income/expense ledger. It is
// independent of per-resident payments but aggregated together with them for
// dashboard reporting. Admin-managed, no approval workflow.
type FinanceRecord struct {
	ID         uuid.UUID `json:"id"`
	SocietyID  uuid.UUID `json:"society_id"`
	Type       string    `json:"type"`
	Category   string    `json:"category"`
	Amount     int64     `json:"amount"` // in paise
	Note       string    `json:"note"`
	OccurredOn time.Time `json:"occurred_on"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateFinanceRecordPayload is the DTO for creating a ledger entry.
type CreateFinanceRecordPayload struct {
	Type       string    `json:"type"`
	Category   string    `json:"category"`
	Amount     int64     `json:"amount"`
	Note       string    `json:"note"`
	OccurredOn time.Time `json:"occurred_on"`
}

// UpdateFinanceRecordPayload carries the editable fields of a ledger entry.
type UpdateFinanceRecordPayload struct {
	Type       *string    `json:"type,omitempty"`
	Category   *string    `json:"category,omitempty"`
	Amount     *int64     `json:"amount,omitempty"`
	Note       *string    `json:"note,omitempty"`
	OccurredOn *time.Time `json:"occurred_on,omitempty"`
}

// FinanceListOptions controls filtering and pagination for ledger listings.
type FinanceListOptions struct {
	Page      int
	Limit     int
	Type      string
	Category  string
	StartDate *time.Time
	EndDate   *time.Time
}
