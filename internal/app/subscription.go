/**
 * @description
 * Subscription lifecycle and gateway order flow. Order amounts are computed
 * server-side from the published pricing and persisted before the client sees
 * the order; the verification callback recomputes the signature and settles
 * against the stored order, never against client-supplied values.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/ourrapartment10-dot/payments-service/internal/domain"
	"github.com/ourrapartment10-dot/payments-service/internal/store"
	"github.com/ourrapartment10-dot/payments-service/pkg/rabbitmq"
)

var (
	ErrFlatCountTooLow   = errors.New("flat count is below the society minimum")
	ErrTrialAlreadyUsed  = errors.New("trial subscription has already been used")
	ErrInvalidGrant      = errors.New("unknown subscription grant type")
	ErrInvalidGrantDays  = errors.New("grant days must be greater than zero")
	ErrMissingSociety    = errors.New("society id is required")
	ErrPaymentNotPayable = errors.New("payment is not payable online")
)

// GetSubscriptionStatus returns the derived subscription view for a society.
// A society with no subscription row yet gets an inactive status with the
// purchase floor filled in.
func (s *Service) GetSubscriptionStatus(ctx context.Context, societyID uuid.UUID) (*domain.SubscriptionStatus, error) {
	propertyCount, err := s.repo.CountPropertiesBySociety(ctx, societyID)
	if err != nil {
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}
	minFlats := MinFlatCount(propertyCount)

	sub, err := s.repo.GetSubscriptionBySocietyID(ctx, societyID)
	if err != nil {
		if err == store.ErrSubscriptionNotFound {
			return &domain.SubscriptionStatus{MinFlatCount: minFlats}, nil
		}
		return nil, err
	}

	status := &domain.SubscriptionStatus{
		IsLifetime:   sub.IsLifetime,
		ExpiresOn:    sub.ExpiresOn,
		FlatCount:    sub.FlatCount,
		MinFlatCount: minFlats,
		TrialUsed:    sub.TrialUsed,
	}
	if sub.IsLifetime {
		status.Active = true
		return status, nil
	}
	if sub.ExpiresOn != nil {
		remaining := time.Until(*sub.ExpiresOn)
		if remaining > 0 {
			status.Active = true
			status.DaysRemaining = int(remaining.Hours() / 24)
		}
	}
	return status, nil
}

// CreateSubscriptionOrder prices a plan, creates the gateway order, and
// persists the authoritative amount for later verification.
func (s *Service) CreateSubscriptionOrder(ctx context.Context, societyID uuid.UUID, payload domain.CreateSubscriptionOrderPayload) (*domain.SubscriptionOrderResponse, error) {
	if err := s.consumeRateLimit(ctx, orderCreateRateScope, societyID.String(), s.orderRateLimit); err != nil {
		return nil, err
	}

	propertyCount, err := s.repo.CountPropertiesBySociety(ctx, societyID)
	if err != nil {
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}
	if payload.FlatCount < MinFlatCount(propertyCount) {
		return nil, ErrFlatCountTooLow
	}

	amount, err := PlanPrice(payload.Days, payload.FlatCount)
	if err != nil {
		return nil, err
	}

	orderID := uuid.New()
	gatewayOrder, err := s.razorpayClient.CreateOrder(ctx, amount, "INR", orderID.String(), map[string]string{
		"society_id": societyID.String(),
		"purpose":    domain.OrderPurposeSubscription,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	record := &domain.GatewayOrder{
		ID:              orderID,
		SocietyID:       societyID,
		Purpose:         domain.OrderPurposeSubscription,
		RazorpayOrderID: gatewayOrder.ID,
		Amount:          amount,
		Currency:        "INR",
		PlanDays:        payload.Days,
		FlatCount:       payload.FlatCount,
		Status:          domain.OrderStatusCreated,
	}
	if err := s.repo.CreateGatewayOrder(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist gateway order: %w", err)
	}

	return &domain.SubscriptionOrderResponse{
		OrderID:  gatewayOrder.ID,
		Amount:   amount,
		Currency: "INR",
		KeyID:    s.razorpayClient.KeyID(),
	}, nil
}

// CreatePaymentOrder creates a gateway order to settle one of the resident's
// own payments online. The amount is read from the payment row, never from
// the request.
func (s *Service) CreatePaymentOrder(ctx context.Context, societyID, userID, paymentID uuid.UUID) (*domain.SubscriptionOrderResponse, error) {
	if err := s.consumeRateLimit(ctx, orderCreateRateScope, userID.String(), s.orderRateLimit); err != nil {
		return nil, err
	}

	payment, err := s.repo.GetPaymentByID(ctx, paymentID, societyID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != userID {
		return nil, ErrPaymentNotOwned
	}
	switch payment.Status {
	case domain.PaymentStatusPending, domain.PaymentStatusFailed, domain.PaymentStatusPendingVerification:
	default:
		return nil, ErrPaymentNotPayable
	}

	orderID := uuid.New()
	gatewayOrder, err := s.razorpayClient.CreateOrder(ctx, payment.Amount, "INR", orderID.String(), map[string]string{
		"society_id": societyID.String(),
		"payment_id": payment.ID.String(),
		"purpose":    domain.OrderPurposePayment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	record := &domain.GatewayOrder{
		ID:              orderID,
		SocietyID:       societyID,
		Purpose:         domain.OrderPurposePayment,
		RazorpayOrderID: gatewayOrder.ID,
		Amount:          payment.Amount,
		Currency:        "INR",
		PaymentID:       &payment.ID,
		Status:          domain.OrderStatusCreated,
	}
	if err := s.repo.CreateGatewayOrder(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist gateway order: %w", err)
	}

	return &domain.SubscriptionOrderResponse{
		OrderID:  gatewayOrder.ID,
		Amount:   payment.Amount,
		Currency: "INR",
		KeyID:    s.razorpayClient.KeyID(),
	}, nil
}

// VerifyGatewayPayment handles the checkout callback for both subscription
// and payment orders. The signature check gates everything but mutates
// nothing, so a failed or forged callback leaves the order claimable and the
// owner can retry checkout. The claim and the settlement commit together in
// the store; a replayed callback loses the claim.
func (s *Service) VerifyGatewayPayment(ctx context.Context, societyID uuid.UUID, payload domain.VerifyGatewayPaymentPayload) (*domain.Subscription, *domain.Payment, error) {
	if !s.razorpayClient.VerifySignature(payload.RazorpayOrderID, payload.RazorpayPaymentID, payload.RazorpaySignature) {
		return nil, nil, ErrSignatureMismatch
	}

	order, err := s.repo.GetGatewayOrderByRazorpayOrderID(ctx, payload.RazorpayOrderID)
	if err != nil {
		return nil, nil, err
	}
	if order.SocietyID != societyID {
		return nil, nil, ErrOrderSocietyMismatch
	}

	order, sub, payment, err := s.repo.SettleGatewayOrder(ctx, payload.RazorpayOrderID, payload.RazorpayPaymentID, payload.RazorpaySignature)
	if err != nil {
		return nil, nil, err
	}

	switch order.Purpose {
	case domain.OrderPurposeSubscription:
		if pubErr := s.eventProducer.PublishSubscriptionEvent(ctx, rabbitmq.RoutingKeySubscriptionExtended, rabbitmq.SubscriptionEvent{
			SocietyID: societyID,
			ExpiresOn: sub.ExpiresOn,
			DaysAdded: order.PlanDays,
			Timestamp: time.Now(),
		}); pubErr != nil {
			log.Printf("level=warn component=payments_service msg=\"failed to publish subscription extended event\" society_id=%s err=%v", societyID, pubErr)
		}
		return sub, nil, nil

	case domain.OrderPurposePayment:
		if pubErr := s.eventProducer.PublishPaymentEvent(ctx, rabbitmq.RoutingKeyPaymentCompleted, rabbitmq.PaymentEvent{
			PaymentID: payment.ID,
			SocietyID: payment.SocietyID,
			UserID:    payment.UserID,
			Amount:    payment.Amount,
			Status:    payment.Status,
			Timestamp: time.Now(),
		}); pubErr != nil {
			log.Printf("level=warn component=payments_service msg=\"failed to publish payment completed event\" payment_id=%s err=%v", payment.ID, pubErr)
		}
		return nil, payment, nil

	default:
		return nil, nil, fmt.Errorf("unknown gateway order purpose %q", order.Purpose)
	}
}

// GrantSubscription applies a super-admin grant: a one-time trial, a custom
// number of days, or the lifetime flag.
func (s *Service) GrantSubscription(ctx context.Context, payload domain.GrantSubscriptionPayload) (*domain.Subscription, error) {
	if payload.SocietyID == uuid.Nil {
		return nil, ErrMissingSociety
	}

	switch payload.Type {
	case domain.GrantTypeTrial:
		existing, err := s.repo.GetSubscriptionBySocietyID(ctx, payload.SocietyID)
		if err != nil && err != store.ErrSubscriptionNotFound {
			return nil, err
		}
		if existing != nil && existing.TrialUsed {
			return nil, ErrTrialAlreadyUsed
		}
		return s.repo.ExtendSubscription(ctx, payload.SocietyID, s.trialDays, 0, true)

	case domain.GrantTypeCustom:
		if payload.Days <= 0 {
			return nil, ErrInvalidGrantDays
		}
		return s.repo.ExtendSubscription(ctx, payload.SocietyID, payload.Days, 0, false)

	case domain.GrantTypeLifetime:
		return s.repo.SetLifetimeSubscription(ctx, payload.SocietyID, true)

	default:
		return nil, ErrInvalidGrant
	}
}

// ToggleLifetime flips the lifetime flag for a society.
func (s *Service) ToggleLifetime(ctx context.Context, payload domain.ToggleLifetimePayload) (*domain.Subscription, error) {
	if payload.SocietyID == uuid.Nil {
		return nil, ErrMissingSociety
	}
	return s.repo.SetLifetimeSubscription(ctx, payload.SocietyID, payload.Enable)
}
