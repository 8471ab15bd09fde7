package domain

import "time"

// PaymentStatistics is the aggregate block attached to payment listings.
// Amounts are sums in paise; counts are row counts per status bucket.
type PaymentStatistics struct {
	TotalAmount     int64 `json:"total_amount"`
	CollectedAmount int64 `json:"collected_amount"`
	PendingAmount   int64 `json:"pending_amount"`
	TotalCount      int64 `json:"total_count"`
	CompletedCount  int64 `json:"completed_count"`
	PendingCount    int64 `json:"pending_count"`
	OverdueCount    int64 `json:"overdue_count"`
}

// FinanceSummary aggregates the ledger together with completed payments for a
// reporting window.
type FinanceSummary struct {
	TotalIncome    int64     `json:"total_income"`  // in paise
	TotalExpense   int64     `json:"total_expense"` // in paise
	NetBalance     int64     `json:"net_balance"`
	PaymentsIncome int64     `json:"payments_income"`
	LedgerIncome   int64     `json:"ledger_income"`
	RecordCount    int64     `json:"record_count"`
	PaymentCount   int64     `json:"payment_count"`
	WindowStart    time.Time `json:"window_start"`
	WindowEnd      time.Time `json:"window_end"`
}

// TimeSeriesPoint is one bucket of the income/expense series. Period is
// formatted "2006-01-02" for daily buckets and "2006-01" for monthly ones.
type TimeSeriesPoint struct {
	Period  string `json:"period"`
	Income  int64  `json:"income"`
	Expense int64  `json:"expense"`
}
