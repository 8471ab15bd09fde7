/**
 * @description
 * This file contains the core business logic for the payments-service. The
 * `Service` struct orchestrates the payment lifecycle, coordinating between
 * the database repository, the Razorpay gateway client, the Redis rate
 * limiter, and the message broker.
 *
 * Key features:
 * - Implements admin billing: single, bulk, edit and delete with the
 *   completed-payment guard.
 * - Implements the resident side of manual payments: reference submission
 *   with distributed rate limiting.
 * - Publishes events to RabbitMQ for asynchronous processing by other services.
 *
 * @dependencies
 * - context, errors, fmt, log, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID generation.
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/razorpay, pkg/rabbitmq: For external service communication.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ourrapartment10-dot/payments-service/internal/domain"
	"github.com/ourrapartment10-dot/payments-service/internal/store"
	"github.com/ourrapartment10-dot/payments-service/pkg/rabbitmq"
	"github.com/ourrapartment10-dot/payments-service/pkg/razorpay"
)

const (
	// maxBulkTargets caps a single bulk billing run.
	maxBulkTargets = 500

	manualSubmitRateScope = "manual_submit"
	orderCreateRateScope  = "order_create"
)

var (
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInvalidCategory      = errors.New("unknown payment category")
	ErrInvalidFinanceType   = errors.New("finance type must be income or expense")
	ErrEmptyReference       = errors.New("reference number is required")
	ErrInvalidAction        = errors.New("action must be APPROVE or REJECT")
	ErrNoBillingTargets     = errors.New("no billable residents matched the request")
	ErrTooManyTargets       = errors.New("bulk billing target list is too large")
	ErrTargetNotResident    = errors.New("target user is not a resident of this society")
	ErrPaymentNotOwned      = errors.New("payment does not belong to this user")
	ErrSignatureMismatch    = errors.New("payment signature verification failed")
	ErrOrderSocietyMismatch = errors.New("order does not belong to this society")
)

// RateLimitError signals that a caller exceeded a rate limit. RetryAfterSeconds
// feeds the Retry-After response header.
type RateLimitError struct {
	RetryAfterSeconds int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %d seconds", e.RetryAfterSeconds)
}

// RateLimiter is the distributed rate limiting dependency. A nil limiter
// disables limiting (e.g. when Redis is not configured).
type RateLimiter interface {
	ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (count int, retryAfterSeconds int, err error)
}

// Service provides the core business logic for payments and subscriptions.
type Service struct {
	repo            store.Repository
	razorpayClient  *razorpay.Client
	eventProducer   rabbitmq.Publisher
	rateLimiter     RateLimiter
	trialDays       int
	submitRateLimit int
	orderRateLimit  int
}

// NewService creates a new payments service instance.
func NewService(repo store.Repository, gateway *razorpay.Client, producer rabbitmq.Publisher, limiter RateLimiter, trialDays, submitRateLimit, orderRateLimit int) *Service {
	return &Service{
		repo:            repo,
		razorpayClient:  gateway,
		eventProducer:   producer,
		rateLimiter:     limiter,
		trialDays:       trialDays,
		submitRateLimit: submitRateLimit,
		orderRateLimit:  orderRateLimit,
	}
}

func validCategory(category string) bool {
	switch category {
	case domain.PaymentCategoryMaintenance,
		domain.PaymentCategoryUtility,
		domain.PaymentCategoryAmenity,
		domain.PaymentCategoryPenalty,
		domain.PaymentCategoryOther:
		return true
	}
	return false
}

func (s *Service) consumeRateLimit(ctx context.Context, scope, subject string, limit int) error {
	if s.rateLimiter == nil || limit <= 0 {
		return nil
	}
	count, retryAfter, err := s.rateLimiter.ConsumeRateLimit(ctx, scope, subject, limit, time.Minute)
	if err != nil {
		// Rate limiting is best-effort: a Redis outage must not take down
		// payment submission.
		log.Printf("level=warn component=payments_service msg=\"rate limiter unavailable\" scope=%s err=%v", scope, err)
		return nil
	}
	if count > limit {
		return &RateLimitError{RetryAfterSeconds: retryAfter}
	}
	return nil
}

// ListPayments returns a page of payments with pagination metadata and the
// aggregate statistics block computed over the same filter.
func (s *Service) ListPayments(ctx context.Context, societyID uuid.UUID, opts domain.PaymentListOptions) ([]domain.Payment, *domain.Pagination, *domain.PaymentStatistics, error) {
	payments, total, err := s.repo.ListPayments(ctx, societyID, opts)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list payments: %w", err)
	}

	stats, err := s.repo.GetPaymentStatistics(ctx, societyID, opts)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to compute payment statistics: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	pages := int((total + int64(limit) - 1) / int64(limit))

	return payments, &domain.Pagination{Page: page, Limit: limit, Total: total, Pages: pages}, stats, nil
}

// GetPayment retrieves a single payment scoped to a society.
func (s *Service) GetPayment(ctx context.Context, paymentID, societyID uuid.UUID) (*domain.Payment, error) {
	return s.repo.GetPaymentByID(ctx, paymentID, societyID)
}

// resolveBillableResident checks that a target user is an active resident of
// the admin's society.
func (s *Service) resolveBillableResident(ctx context.Context, societyID, userID uuid.UUID) (*domain.User, error) {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.SocietyID != societyID || user.Role != domain.RoleResident || !user.IsActive {
		return nil, ErrTargetNotResident
	}
	return user, nil
}

// CreatePayment creates a single payment against a resident.
func (s *Service) CreatePayment(ctx context.Context, societyID uuid.UUID, payload domain.CreatePaymentPayload) (*domain.Payment, error) {
	if payload.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !validCategory(payload.Category) {
		return nil, ErrInvalidCategory
	}
	if _, err := s.resolveBillableResident(ctx, societyID, payload.UserID); err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		ID:          uuid.New(),
		SocietyID:   societyID,
		UserID:      payload.UserID,
		Amount:      payload.Amount,
		Category:    payload.Category,
		Description: payload.Description,
		Status:      domain.PaymentStatusPending,
		DueDate:     payload.DueDate,
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	return payment, nil
}

// UpdatePayment applies a partial edit to a payment. Completed payments are
// immutable.
func (s *Service) UpdatePayment(ctx context.Context, paymentID, societyID uuid.UUID, payload domain.UpdatePaymentPayload) (*domain.Payment, error) {
	if payload.Amount != nil && *payload.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if payload.Category != nil && !validCategory(*payload.Category) {
		return nil, ErrInvalidCategory
	}
	return s.repo.UpdatePaymentDetails(ctx, paymentID, societyID, payload)
}

// DeletePayment removes a payment unless it has been completed.
func (s *Service) DeletePayment(ctx context.Context, paymentID, societyID uuid.UUID) error {
	return s.repo.DeletePayment(ctx, paymentID, societyID)
}

// BulkCreatePayments bills a set of residents in one shot. Targets that turn
// out not to be billable are skipped and reported; the rows that survive
// filtering are inserted atomically.
func (s *Service) BulkCreatePayments(ctx context.Context, societyID uuid.UUID, payload domain.BulkCreatePaymentsPayload) (*domain.BulkCreateResult, error) {
	if payload.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !validCategory(payload.Category) {
		return nil, ErrInvalidCategory
	}

	var targets []uuid.UUID
	skipped := 0

	if payload.AllResidents {
		residents, err := s.repo.ListResidentsBySociety(ctx, societyID)
		if err != nil {
			return nil, fmt.Errorf("failed to list residents: %w", err)
		}
		for _, resident := range residents {
			targets = append(targets, resident.ID)
		}
	} else {
		if len(payload.TargetUserIDs) > maxBulkTargets {
			return nil, ErrTooManyTargets
		}
		seen := make(map[uuid.UUID]bool, len(payload.TargetUserIDs))
		for _, userID := range payload.TargetUserIDs {
			if seen[userID] {
				skipped++
				continue
			}
			seen[userID] = true
			if _, err := s.resolveBillableResident(ctx, societyID, userID); err != nil {
				if err == store.ErrUserNotFound || err == ErrTargetNotResident {
					skipped++
					continue
				}
				return nil, err
			}
			targets = append(targets, userID)
		}
	}

	if len(targets) == 0 {
		return nil, ErrNoBillingTargets
	}
	if len(targets) > maxBulkTargets {
		return nil, ErrTooManyTargets
	}

	payments := make([]domain.Payment, 0, len(targets))
	for _, userID := range targets {
		payments = append(payments, domain.Payment{
			ID:          uuid.New(),
			SocietyID:   societyID,
			UserID:      userID,
			Amount:      payload.Amount,
			Category:    payload.Category,
			Description: payload.Description,
			Status:      domain.PaymentStatusPending,
			DueDate:     payload.DueDate,
		})
	}

	if err := s.repo.BulkCreatePayments(ctx, payments); err != nil {
		return nil, fmt.Errorf("failed to create bulk payments: %w", err)
	}

	return &domain.BulkCreateResult{
		CreatedCount: len(payments),
		SkippedCount: skipped,
		Message:      fmt.Sprintf("created %d payments, skipped %d targets", len(payments), skipped),
	}, nil
}

// SubmitManualPayment records a resident's proof-of-payment reference and
// queues the payment for admin verification.
func (s *Service) SubmitManualPayment(ctx context.Context, userID, paymentID uuid.UUID, payload domain.SubmitReferencePayload) (*domain.Payment, error) {
	reference := strings.TrimSpace(payload.ReferenceNumber)
	if reference == "" {
		return nil, ErrEmptyReference
	}

	if err := s.consumeRateLimit(ctx, manualSubmitRateScope, userID.String(), s.submitRateLimit); err != nil {
		return nil, err
	}

	payment, err := s.repo.SubmitPaymentReference(ctx, paymentID, userID, reference)
	if err != nil {
		return nil, err
	}

	if pubErr := s.eventProducer.PublishPaymentEvent(ctx, rabbitmq.RoutingKeyPaymentManualSubmitted, rabbitmq.PaymentEvent{
		PaymentID: payment.ID,
		SocietyID: payment.SocietyID,
		UserID:    payment.UserID,
		Amount:    payment.Amount,
		Status:    payment.Status,
		Timestamp: time.Now(),
	}); pubErr != nil {
		log.Printf("level=warn component=payments_service msg=\"failed to publish manual submission event\" payment_id=%s err=%v", payment.ID, pubErr)
	}

	return payment, nil
}

// CreateFinanceRecord adds an entry to the community ledger.
func (s *Service) CreateFinanceRecord(ctx context.Context, societyID uuid.UUID, payload domain.CreateFinanceRecordPayload) (*domain.FinanceRecord, error) {
	if payload.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if payload.Type != domain.FinanceTypeIncome && payload.Type != domain.FinanceTypeExpense {
		return nil, ErrInvalidFinanceType
	}

	occurredOn := payload.OccurredOn
	if occurredOn.IsZero() {
		occurredOn = time.Now().UTC()
	}

	rec := &domain.FinanceRecord{
		ID:         uuid.New(),
		SocietyID:  societyID,
		Type:       payload.Type,
		Category:   payload.Category,
		Amount:     payload.Amount,
		Note:       payload.Note,
		OccurredOn: occurredOn,
	}
	if err := s.repo.CreateFinanceRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create finance record: %w", err)
	}
	return rec, nil
}

// GetFinanceRecord retrieves a single ledger entry.
func (s *Service) GetFinanceRecord(ctx context.Context, recordID, societyID uuid.UUID) (*domain.FinanceRecord, error) {
	return s.repo.GetFinanceRecordByID(ctx, recordID, societyID)
}

// ListFinanceRecords returns a page of ledger entries.
func (s *Service) ListFinanceRecords(ctx context.Context, societyID uuid.UUID, opts domain.FinanceListOptions) ([]domain.FinanceRecord, *domain.Pagination, error) {
	records, total, err := s.repo.ListFinanceRecords(ctx, societyID, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list finance records: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	pages := int((total + int64(limit) - 1) / int64(limit))

	return records, &domain.Pagination{Page: page, Limit: limit, Total: total, Pages: pages}, nil
}

// UpdateFinanceRecord applies a partial edit to a ledger entry.
func (s *Service) UpdateFinanceRecord(ctx context.Context, recordID, societyID uuid.UUID, payload domain.UpdateFinanceRecordPayload) (*domain.FinanceRecord, error) {
	if payload.Amount != nil && *payload.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if payload.Type != nil && *payload.Type != domain.FinanceTypeIncome && *payload.Type != domain.FinanceTypeExpense {
		return nil, ErrInvalidFinanceType
	}
	return s.repo.UpdateFinanceRecord(ctx, recordID, societyID, payload)
}

// DeleteFinanceRecord removes a ledger entry.
func (s *Service) DeleteFinanceRecord(ctx context.Context, recordID, societyID uuid.UUID) error {
	return s.repo.DeleteFinanceRecord(ctx, recordID, societyID)
}
