/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for all
 * data access operations required by the payments-service. By defining an interface,
 * we decouple the application's business logic from the specific database implementation
 * (e.g., PostgreSQL), making the code more modular and easier to test.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ourrapartment10-dot/payments-service/internal/domain"
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// User and society methods
	FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	ListResidentsBySociety(ctx context.Context, societyID uuid.UUID) ([]domain.User, error)
	CountPropertiesBySociety(ctx context.Context, societyID uuid.UUID) (int, error)

	// Payment methods
	CreatePayment(ctx context.Context, p *domain.Payment) error
	GetPaymentByID(ctx context.Context, paymentID uuid.UUID, societyID uuid.UUID) (*domain.Payment, error)
	ListPayments(ctx context.Context, societyID uuid.UUID, opts domain.PaymentListOptions) ([]domain.Payment, int64, error)
	GetPaymentStatistics(ctx context.Context, societyID uuid.UUID, opts domain.PaymentListOptions) (*domain.PaymentStatistics, error)
	UpdatePaymentDetails(ctx context.Context, paymentID uuid.UUID, societyID uuid.UUID, payload domain.UpdatePaymentPayload) (*domain.Payment, error)
	DeletePayment(ctx context.Context, paymentID uuid.UUID, societyID uuid.UUID) error
	BulkCreatePayments(ctx context.Context, payments []domain.Payment) error

	// Manual payment verification methods
	SubmitPaymentReference(ctx context.Context, paymentID uuid.UUID, userID uuid.UUID, referenceNumber string) (*domain.Payment, error)
	ListPendingVerifications(ctx context.Context, societyID uuid.UUID, opts domain.PaymentListOptions) ([]domain.Payment, int64, error)
	ApprovePayment(ctx context.Context, paymentID uuid.UUID, societyID uuid.UUID) (*domain.Payment, error)
	RejectPayment(ctx context.Context, paymentID uuid.UUID, societyID uuid.UUID, reason *string) (*domain.Payment, error)

	// Finance ledger methods
	CreateFinanceRecord(ctx context.Context, rec *domain.FinanceRecord) error
	GetFinanceRecordByID(ctx context.Context, recordID uuid.UUID, societyID uuid.UUID) (*domain.FinanceRecord, error)
	ListFinanceRecords(ctx context.Context, societyID uuid.UUID, opts domain.FinanceListOptions) ([]domain.FinanceRecord, int64, error)
	UpdateFinanceRecord(ctx context.Context, recordID uuid.UUID, societyID uuid.UUID, payload domain.UpdateFinanceRecordPayload) (*domain.FinanceRecord, error)
	DeleteFinanceRecord(ctx context.Context, recordID uuid.UUID, societyID uuid.UUID) error
	SummarizeFinance(ctx context.Context, societyID uuid.UUID, start, end time.Time) (*domain.FinanceSummary, error)
	FinanceTimeSeries(ctx context.Context, societyID uuid.UUID, start, end time.Time, monthly bool) ([]domain.TimeSeriesPoint, error)

	// Subscription methods
	GetSubscriptionBySocietyID(ctx context.Context, societyID uuid.UUID) (*domain.Subscription, error)
	ExtendSubscription(ctx context.Context, societyID uuid.UUID, days int, flatCount int, markTrialUsed bool) (*domain.Subscription, error)
	SetLifetimeSubscription(ctx context.Context, societyID uuid.UUID, enable bool) (*domain.Subscription, error)
	ListExpiredSubscriptions(ctx context.Context, expiredSince time.Time) ([]domain.Subscription, error)
	ListOverduePayments(ctx context.Context, asOf time.Time) ([]domain.Payment, error)

	// Gateway order methods
	CreateGatewayOrder(ctx context.Context, order *domain.GatewayOrder) error
	GetGatewayOrderByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (*domain.GatewayOrder, error)
	SettleGatewayOrder(ctx context.Context, razorpayOrderID, razorpayPaymentID, razorpaySignature string) (*domain.GatewayOrder, *domain.Subscription, *domain.Payment, error)
}
