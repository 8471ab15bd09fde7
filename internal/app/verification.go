/**
 * @description
 * Admin verification queue logic. Residents push manually-paid payments into
 * the queue; admins approve or reject them here. Decisions ride on the
 * store's conditional updates so two admins racing on the same payment cannot
 * both win.
 */

package app

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/ourrapartment10-dot/payments-service/internal/domain"
	"github.com/ourrapartment10-dot/payments-service/pkg/rabbitmq"
)

// ListVerifications returns the society's verification queue, oldest
// submission first. With no status filter the queue shows payments awaiting
// a decision; an explicit filter lets admins review past decisions.
func (s *Service) ListVerifications(ctx context.Context, societyID uuid.UUID, opts domain.PaymentListOptions) ([]domain.Payment, *domain.Pagination, error) {
	if opts.Status == "" {
		opts.Status = domain.PaymentStatusPendingVerification
	}

	payments, total, err := s.repo.ListPendingVerifications(ctx, societyID, opts)
	if err != nil {
		return nil, nil, err
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

	return payments, &domain.Pagination{Page: page, Limit: limit, Total: total, Pages: pages}, nil
}

// DecideVerification applies an admin's approve/reject decision to a payment
// in the verification queue.
func (s *Service) DecideVerification(ctx context.Context, societyID uuid.UUID, payload domain.DecideVerificationPayload) (*domain.Payment, error) {
	var (
		payment *domain.Payment
		err     error
	)

	switch payload.Action {
	case domain.VerificationActionApprove:
		payment, err = s.repo.ApprovePayment(ctx, payload.PaymentID, societyID)
	case domain.VerificationActionReject:
		payment, err = s.repo.RejectPayment(ctx, payload.PaymentID, societyID, payload.RejectionReason)
	default:
		return nil, ErrInvalidAction
	}
	if err != nil {
		return nil, err
	}

	event := rabbitmq.PaymentEvent{
		PaymentID: payment.ID,
		SocietyID: payment.SocietyID,
		UserID:    payment.UserID,
		Amount:    payment.Amount,
		Status:    payment.Status,
		Timestamp: time.Now(),
	}
	if payment.RejectionReason != nil {
		event.Reason = *payment.RejectionReason
	}
	if pubErr := s.eventProducer.PublishPaymentEvent(ctx, rabbitmq.RoutingKeyPaymentVerificationDecided, event); pubErr != nil {
		log.Printf("level=warn component=payments_service msg=\"failed to publish verification decision event\" payment_id=%s err=%v", payment.ID, pubErr)
	}

	if payment.Status == domain.PaymentStatusCompleted {
		if pubErr := s.eventProducer.PublishPaymentEvent(ctx, rabbitmq.RoutingKeyPaymentCompleted, event); pubErr != nil {
			log.Printf("level=warn component=payments_service msg=\"failed to publish payment completed event\" payment_id=%s err=%v", payment.ID, pubErr)
		}
	}

	return payment, nil
}
