package app

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ourrapartment10-dot/payments-service/internal/domain"
	"github.com/ourrapartment10-dot/payments-service/internal/store"
	"github.com/ourrapartment10-dot/payments-service/pkg/rabbitmq"
	"github.com/ourrapartment10-dot/payments-service/pkg/razorpay"
)

type subscriptionRepoStub struct {
	store.Repository

	propertyCount int
	subscription  *domain.Subscription
	payment       *domain.Payment
	order         *domain.GatewayOrder

	createdOrder *domain.GatewayOrder

	settleErr   error
	settleCalls int

	extendCalled    bool
	extendDays      int
	extendFlatCount int
	extendTrial     bool

	lifetimeCalled bool
	lifetimeEnable bool
}

func (s *subscriptionRepoStub) CountPropertiesBySociety(ctx context.Context, societyID uuid.UUID) (int, error) {
	return s.propertyCount, nil
}

func (s *subscriptionRepoStub) GetSubscriptionBySocietyID(ctx context.Context, societyID uuid.UUID) (*domain.Subscription, error) {
	if s.subscription == nil {
		return nil, store.ErrSubscriptionNotFound
	}
	return s.subscription, nil
}

func (s *subscriptionRepoStub) GetPaymentByID(ctx context.Context, paymentID, societyID uuid.UUID) (*domain.Payment, error) {
	if s.payment == nil {
		return nil, store.ErrPaymentNotFound
	}
	return s.payment, nil
}

func (s *subscriptionRepoStub) CreateGatewayOrder(ctx context.Context, order *domain.GatewayOrder) error {
	s.createdOrder = order
	return nil
}

func (s *subscriptionRepoStub) GetGatewayOrderByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (*domain.GatewayOrder, error) {
	if s.order == nil {
		return nil, store.ErrGatewayOrderNotFound
	}
	return s.order, nil
}

// SettleGatewayOrder mirrors the store's transactional settle: the claim only
// wins on a created order, and an injected error leaves the order claimable
// the way a rolled-back transaction would.
func (s *subscriptionRepoStub) SettleGatewayOrder(ctx context.Context, razorpayOrderID, razorpayPaymentID, razorpaySignature string) (*domain.GatewayOrder, *domain.Subscription, *domain.Payment, error) {
	s.settleCalls++

	if s.order == nil {
		return nil, nil, nil, store.ErrGatewayOrderNotFound
	}
	if s.order.Status != domain.OrderStatusCreated {
		return nil, nil, nil, store.ErrGatewayOrderNotClaimable
	}
	if s.settleErr != nil {
		return nil, nil, nil, s.settleErr
	}

	switch s.order.Purpose {
	case domain.OrderPurposeSubscription:
		sub, err := s.ExtendSubscription(ctx, s.order.SocietyID, s.order.PlanDays, s.order.FlatCount, false)
		if err != nil {
			return nil, nil, nil, err
		}
		s.order.Status = domain.OrderStatusPaid
		return s.order, sub, nil, nil

	case domain.OrderPurposePayment:
		if s.order.PaymentID == nil || s.payment == nil {
			return nil, nil, nil, store.ErrPaymentNotFound
		}
		switch s.payment.Status {
		case domain.PaymentStatusPending, domain.PaymentStatusPendingVerification, domain.PaymentStatusFailed:
		default:
			return nil, nil, nil, store.ErrPaymentNotActionable
		}
		s.payment.Status = domain.PaymentStatusCompleted
		s.order.Status = domain.OrderStatusPaid
		return s.order, nil, s.payment, nil

	default:
		return nil, nil, nil, store.ErrGatewayOrderNotFound
	}
}

func (s *subscriptionRepoStub) ExtendSubscription(ctx context.Context, societyID uuid.UUID, days, flatCount int, markTrialUsed bool) (*domain.Subscription, error) {
	s.extendCalled = true
	s.extendDays = days
	s.extendFlatCount = flatCount
	s.extendTrial = markTrialUsed

	expires := time.Now().AddDate(0, 0, days)
	return &domain.Subscription{
		ID:        uuid.New(),
		SocietyID: societyID,
		ExpiresOn: &expires,
		FlatCount: flatCount,
		TrialUsed: markTrialUsed,
	}, nil
}

func (s *subscriptionRepoStub) SetLifetimeSubscription(ctx context.Context, societyID uuid.UUID, enable bool) (*domain.Subscription, error) {
	s.lifetimeCalled = true
	s.lifetimeEnable = enable
	return &domain.Subscription{ID: uuid.New(), SocietyID: societyID, IsLifetime: enable}, nil
}

// fakeGatewayServer stands in for the Razorpay orders endpoint and echoes the
// amount it was asked to hold.
func fakeGatewayServer(t *testing.T, orderID string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
			Receipt  string `json:"receipt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode order request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       orderID,
			"amount":   req.Amount,
			"currency": req.Currency,
			"receipt":  req.Receipt,
			"status":   "created",
		})
	}))
}

func signCallback(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestGetSubscriptionStatus_NoSubscriptionRow(t *testing.T) {
	repo := &subscriptionRepoStub{propertyCount: 40}
	svc := newTestService(repo, nil, nil)

	status, err := svc.GetSubscriptionStatus(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if status.Active {
		t.Fatal("expected inactive status without a subscription row")
	}
	if status.MinFlatCount != 40 {
		t.Fatalf("expected min flat count 40, got %d", status.MinFlatCount)
	}
}

func TestGetSubscriptionStatus_SmallSocietyFloor(t *testing.T) {
	repo := &subscriptionRepoStub{propertyCount: 5}
	svc := newTestService(repo, nil, nil)

	status, err := svc.GetSubscriptionStatus(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if status.MinFlatCount != 12 {
		t.Fatalf("expected billing floor of 12 flats, got %d", status.MinFlatCount)
	}
}

func TestGetSubscriptionStatus_Lifetime(t *testing.T) {
	repo := &subscriptionRepoStub{
		propertyCount: 20,
		subscription:  &domain.Subscription{ID: uuid.New(), IsLifetime: true},
	}
	svc := newTestService(repo, nil, nil)

	status, err := svc.GetSubscriptionStatus(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !status.Active || !status.IsLifetime {
		t.Fatalf("expected active lifetime status, got %+v", status)
	}
}

func TestGetSubscriptionStatus_ComputesDaysRemaining(t *testing.T) {
	expires := time.Now().Add(10*24*time.Hour + time.Hour)
	repo := &subscriptionRepoStub{
		propertyCount: 20,
		subscription:  &domain.Subscription{ID: uuid.New(), ExpiresOn: &expires, FlatCount: 24},
	}
	svc := newTestService(repo, nil, nil)

	status, err := svc.GetSubscriptionStatus(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !status.Active {
		t.Fatal("expected active status for a future expiry")
	}
	if status.DaysRemaining != 10 {
		t.Fatalf("expected 10 days remaining, got %d", status.DaysRemaining)
	}
}

func TestGetSubscriptionStatus_ExpiredIsInactive(t *testing.T) {
	expires := time.Now().Add(-time.Hour)
	repo := &subscriptionRepoStub{
		propertyCount: 20,
		subscription:  &domain.Subscription{ID: uuid.New(), ExpiresOn: &expires},
	}
	svc := newTestService(repo, nil, nil)

	status, err := svc.GetSubscriptionStatus(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if status.Active {
		t.Fatal("expected inactive status after expiry")
	}
}

func TestCreateSubscriptionOrder_RejectsLowFlatCount(t *testing.T) {
	repo := &subscriptionRepoStub{propertyCount: 40}
	svc := newTestService(repo, nil, nil)

	_, err := svc.CreateSubscriptionOrder(context.Background(), uuid.New(), domain.CreateSubscriptionOrderPayload{
		Days:      90,
		FlatCount: 30,
	})
	if err != ErrFlatCountTooLow {
		t.Fatalf("expected ErrFlatCountTooLow, got %v", err)
	}
	if repo.createdOrder != nil {
		t.Fatal("did not expect a gateway order")
	}
}

func TestCreateSubscriptionOrder_PersistsAuthoritativeAmount(t *testing.T) {
	server := fakeGatewayServer(t, "order_SUB123")
	defer server.Close()

	repo := &subscriptionRepoStub{propertyCount: 20}
	svc := NewService(repo, razorpay.NewClient(server.URL, "rzp_test_key", "test_secret"), &publisherRecorder{}, nil, 30, 5, 10)

	resp, err := svc.CreateSubscriptionOrder(context.Background(), uuid.New(), domain.CreateSubscriptionOrderPayload{
		Days:      90,
		FlatCount: 20,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	wantAmount, err := PlanPrice(90, 20)
	if err != nil {
		t.Fatalf("unexpected pricing error: %v", err)
	}
	if resp.Amount != wantAmount {
		t.Fatalf("expected amount %d, got %d", wantAmount, resp.Amount)
	}
	if resp.OrderID != "order_SUB123" {
		t.Fatalf("unexpected order id %q", resp.OrderID)
	}
	if resp.KeyID != "rzp_test_key" {
		t.Fatalf("expected checkout key id, got %q", resp.KeyID)
	}

	if repo.createdOrder == nil {
		t.Fatal("expected the gateway order to be persisted")
	}
	if repo.createdOrder.Amount != wantAmount {
		t.Fatalf("expected stored amount %d, got %d", wantAmount, repo.createdOrder.Amount)
	}
	if repo.createdOrder.Purpose != domain.OrderPurposeSubscription {
		t.Fatalf("unexpected order purpose %q", repo.createdOrder.Purpose)
	}
	if repo.createdOrder.PlanDays != 90 || repo.createdOrder.FlatCount != 20 {
		t.Fatalf("unexpected plan fields: %+v", repo.createdOrder)
	}
}

func TestCreatePaymentOrder_RejectsForeignPayment(t *testing.T) {
	societyID := uuid.New()
	repo := &subscriptionRepoStub{
		payment: &domain.Payment{
			ID:        uuid.New(),
			SocietyID: societyID,
			UserID:    uuid.New(),
			Amount:    80000,
			Status:    domain.PaymentStatusPending,
		},
	}
	svc := newTestService(repo, nil, nil)

	_, err := svc.CreatePaymentOrder(context.Background(), societyID, uuid.New(), repo.payment.ID)
	if err != ErrPaymentNotOwned {
		t.Fatalf("expected ErrPaymentNotOwned, got %v", err)
	}
}

func TestCreatePaymentOrder_RejectsSettledPayment(t *testing.T) {
	societyID := uuid.New()
	userID := uuid.New()
	repo := &subscriptionRepoStub{
		payment: &domain.Payment{
			ID:        uuid.New(),
			SocietyID: societyID,
			UserID:    userID,
			Amount:    80000,
			Status:    domain.PaymentStatusCompleted,
		},
	}
	svc := newTestService(repo, nil, nil)

	_, err := svc.CreatePaymentOrder(context.Background(), societyID, userID, repo.payment.ID)
	if err != ErrPaymentNotPayable {
		t.Fatalf("expected ErrPaymentNotPayable, got %v", err)
	}
}

func TestCreatePaymentOrder_UsesPaymentAmount(t *testing.T) {
	server := fakeGatewayServer(t, "order_PAY456")
	defer server.Close()

	societyID := uuid.New()
	userID := uuid.New()
	repo := &subscriptionRepoStub{
		payment: &domain.Payment{
			ID:        uuid.New(),
			SocietyID: societyID,
			UserID:    userID,
			Amount:    175000,
			Status:    domain.PaymentStatusPending,
		},
	}
	svc := NewService(repo, razorpay.NewClient(server.URL, "rzp_test_key", "test_secret"), &publisherRecorder{}, nil, 30, 5, 10)

	resp, err := svc.CreatePaymentOrder(context.Background(), societyID, userID, repo.payment.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if resp.Amount != 175000 {
		t.Fatalf("expected the payment's amount, got %d", resp.Amount)
	}
	if repo.createdOrder.Purpose != domain.OrderPurposePayment {
		t.Fatalf("unexpected order purpose %q", repo.createdOrder.Purpose)
	}
	if repo.createdOrder.PaymentID == nil || *repo.createdOrder.PaymentID != repo.payment.ID {
		t.Fatal("expected the order to reference the payment")
	}
}

func TestVerifyGatewayPayment_SignatureMismatch(t *testing.T) {
	societyID := uuid.New()
	repo := &subscriptionRepoStub{
		order: &domain.GatewayOrder{
			ID:              uuid.New(),
			SocietyID:       societyID,
			Purpose:         domain.OrderPurposeSubscription,
			RazorpayOrderID: "order_X",
			Status:          domain.OrderStatusCreated,
		},
	}
	svc := newTestService(repo, nil, nil)

	_, _, err := svc.VerifyGatewayPayment(context.Background(), societyID, domain.VerifyGatewayPaymentPayload{
		RazorpayOrderID:   "order_X",
		RazorpayPaymentID: "pay_X",
		RazorpaySignature: "forged",
	})
	if err != ErrSignatureMismatch {
		t.Fatalf("expected ErrSignatureMismatch, got %v", err)
	}
	if repo.settleCalls != 0 {
		t.Fatal("did not expect a settlement attempt on a bad signature")
	}
	if repo.order.Status != domain.OrderStatusCreated {
		t.Fatalf("expected the order to stay claimable, got %q", repo.order.Status)
	}
}

func TestVerifyGatewayPayment_MismatchLeavesOrderRetryable(t *testing.T) {
	ownerSociety := uuid.New()
	repo := &subscriptionRepoStub{
		order: &domain.GatewayOrder{
			ID:              uuid.New(),
			SocietyID:       ownerSociety,
			Purpose:         domain.OrderPurposeSubscription,
			RazorpayOrderID: "order_X",
			PlanDays:        90,
			FlatCount:       20,
			Status:          domain.OrderStatusCreated,
		},
	}
	svc := newTestService(repo, nil, nil)

	// A forged callback only needs the public order id; it must not touch
	// the order no matter who sends it.
	_, _, err := svc.VerifyGatewayPayment(context.Background(), uuid.New(), domain.VerifyGatewayPaymentPayload{
		RazorpayOrderID:   "order_X",
		RazorpayPaymentID: "pay_X",
		RazorpaySignature: "forged",
	})
	if err != ErrSignatureMismatch {
		t.Fatalf("expected ErrSignatureMismatch, got %v", err)
	}
	if repo.order.Status != domain.OrderStatusCreated {
		t.Fatalf("expected the order to stay claimable, got %q", repo.order.Status)
	}

	// The owner's genuine callback still settles the order.
	sub, _, err := svc.VerifyGatewayPayment(context.Background(), ownerSociety, domain.VerifyGatewayPaymentPayload{
		RazorpayOrderID:   "order_X",
		RazorpayPaymentID: "pay_X",
		RazorpaySignature: signCallback("test_secret", "order_X", "pay_X"),
	})
	if err != nil {
		t.Fatalf("expected the retry to succeed, got %v", err)
	}
	if sub == nil || !repo.extendCalled {
		t.Fatal("expected the retry to extend the subscription")
	}
}

func TestVerifyGatewayPayment_RetryAfterSettleFailure(t *testing.T) {
	societyID := uuid.New()
	repo := &subscriptionRepoStub{
		order: &domain.GatewayOrder{
			ID:              uuid.New(),
			SocietyID:       societyID,
			Purpose:         domain.OrderPurposeSubscription,
			RazorpayOrderID: "order_X",
			PlanDays:        90,
			FlatCount:       20,
			Status:          domain.OrderStatusCreated,
		},
		settleErr: context.DeadlineExceeded,
	}
	svc := newTestService(repo, nil, nil)

	payload := domain.VerifyGatewayPaymentPayload{
		RazorpayOrderID:   "order_X",
		RazorpayPaymentID: "pay_X",
		RazorpaySignature: signCallback("test_secret", "order_X", "pay_X"),
	}

	_, _, err := svc.VerifyGatewayPayment(context.Background(), societyID, payload)
	if err == nil {
		t.Fatal("expected the transient settlement failure to surface")
	}
	if repo.order.Status != domain.OrderStatusCreated {
		t.Fatalf("expected a failed settlement to leave the order claimable, got %q", repo.order.Status)
	}

	repo.settleErr = nil
	sub, _, err := svc.VerifyGatewayPayment(context.Background(), societyID, payload)
	if err != nil {
		t.Fatalf("expected the retried callback to succeed, got %v", err)
	}
	if sub == nil || repo.order.Status != domain.OrderStatusPaid {
		t.Fatal("expected the retry to settle the order")
	}
}

func TestVerifyGatewayPayment_RejectsForeignSociety(t *testing.T) {
	societyID := uuid.New()
	repo := &subscriptionRepoStub{
		order: &domain.GatewayOrder{
			ID:              uuid.New(),
			SocietyID:       uuid.New(),
			Purpose:         domain.OrderPurposeSubscription,
			RazorpayOrderID: "order_X",
			Status:          domain.OrderStatusCreated,
		},
	}
	svc := newTestService(repo, nil, nil)

	_, _, err := svc.VerifyGatewayPayment(context.Background(), societyID, domain.VerifyGatewayPaymentPayload{
		RazorpayOrderID:   "order_X",
		RazorpayPaymentID: "pay_X",
		RazorpaySignature: signCallback("test_secret", "order_X", "pay_X"),
	})
	if err != ErrOrderSocietyMismatch {
		t.Fatalf("expected ErrOrderSocietyMismatch, got %v", err)
	}
	if repo.extendCalled {
		t.Fatal("did not expect the subscription to be extended")
	}
}

func TestVerifyGatewayPayment_ExtendsSubscription(t *testing.T) {
	societyID := uuid.New()
	repo := &subscriptionRepoStub{
		order: &domain.GatewayOrder{
			ID:              uuid.New(),
			SocietyID:       societyID,
			Purpose:         domain.OrderPurposeSubscription,
			RazorpayOrderID: "order_X",
			Amount:          300000,
			PlanDays:        90,
			FlatCount:       20,
			Status:          domain.OrderStatusCreated,
		},
	}
	producer := &publisherRecorder{}
	svc := newTestService(repo, producer, nil)

	sub, payment, err := svc.VerifyGatewayPayment(context.Background(), societyID, domain.VerifyGatewayPaymentPayload{
		RazorpayOrderID:   "order_X",
		RazorpayPaymentID: "pay_X",
		RazorpaySignature: signCallback("test_secret", "order_X", "pay_X"),
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if payment != nil {
		t.Fatal("did not expect a payment for a subscription order")
	}
	if sub == nil || sub.ExpiresOn == nil {
		t.Fatal("expected an extended subscription")
	}
	if repo.extendDays != 90 || repo.extendFlatCount != 20 {
		t.Fatalf("unexpected extension args: days=%d flats=%d", repo.extendDays, repo.extendFlatCount)
	}

	if len(producer.subscriptionEvents) != 1 {
		t.Fatalf("expected 1 subscription event, got %d", len(producer.subscriptionEvents))
	}
	if producer.subscriptionEvents[0].routingKey != rabbitmq.RoutingKeySubscriptionExtended {
		t.Fatalf("unexpected routing key %q", producer.subscriptionEvents[0].routingKey)
	}
}

func TestVerifyGatewayPayment_ReplayedCallbackConflicts(t *testing.T) {
	societyID := uuid.New()
	repo := &subscriptionRepoStub{
		order: &domain.GatewayOrder{
			ID:              uuid.New(),
			SocietyID:       societyID,
			Purpose:         domain.OrderPurposeSubscription,
			RazorpayOrderID: "order_X",
			Status:          domain.OrderStatusPaid,
		},
	}
	svc := newTestService(repo, nil, nil)

	_, _, err := svc.VerifyGatewayPayment(context.Background(), societyID, domain.VerifyGatewayPaymentPayload{
		RazorpayOrderID:   "order_X",
		RazorpayPaymentID: "pay_X",
		RazorpaySignature: signCallback("test_secret", "order_X", "pay_X"),
	})
	if err != store.ErrGatewayOrderNotClaimable {
		t.Fatalf("expected ErrGatewayOrderNotClaimable, got %v", err)
	}
	if repo.extendCalled {
		t.Fatal("did not expect a replay to extend the subscription")
	}
}

func TestVerifyGatewayPayment_SettlesPaymentOrder(t *testing.T) {
	societyID := uuid.New()
	payment := &domain.Payment{
		ID:        uuid.New(),
		SocietyID: societyID,
		UserID:    uuid.New(),
		Amount:    175000,
		Status:    domain.PaymentStatusPending,
	}
	repo := &subscriptionRepoStub{
		payment: payment,
		order: &domain.GatewayOrder{
			ID:              uuid.New(),
			SocietyID:       societyID,
			Purpose:         domain.OrderPurposePayment,
			RazorpayOrderID: "order_X",
			Amount:          payment.Amount,
			PaymentID:       &payment.ID,
			Status:          domain.OrderStatusCreated,
		},
	}
	producer := &publisherRecorder{}
	svc := newTestService(repo, producer, nil)

	sub, got, err := svc.VerifyGatewayPayment(context.Background(), societyID, domain.VerifyGatewayPaymentPayload{
		RazorpayOrderID:   "order_X",
		RazorpayPaymentID: "pay_X",
		RazorpaySignature: signCallback("test_secret", "order_X", "pay_X"),
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if sub != nil {
		t.Fatal("did not expect a subscription for a payment order")
	}
	if repo.order.Status != domain.OrderStatusPaid {
		t.Fatalf("expected the order to be settled, got %q", repo.order.Status)
	}
	if got.Status != domain.PaymentStatusCompleted {
		t.Fatalf("expected completed status, got %q", got.Status)
	}

	if len(producer.paymentEvents) != 1 {
		t.Fatalf("expected 1 payment event, got %d", len(producer.paymentEvents))
	}
	if producer.paymentEvents[0].routingKey != rabbitmq.RoutingKeyPaymentCompleted {
		t.Fatalf("unexpected routing key %q", producer.paymentEvents[0].routingKey)
	}
}

func TestGrantSubscription_TrialOnlyOnce(t *testing.T) {
	repo := &subscriptionRepoStub{
		subscription: &domain.Subscription{ID: uuid.New(), TrialUsed: true},
	}
	svc := newTestService(repo, nil, nil)

	_, err := svc.GrantSubscription(context.Background(), domain.GrantSubscriptionPayload{
		SocietyID: uuid.New(),
		Type:      domain.GrantTypeTrial,
	})
	if err != ErrTrialAlreadyUsed {
		t.Fatalf("expected ErrTrialAlreadyUsed, got %v", err)
	}
	if repo.extendCalled {
		t.Fatal("did not expect an extension for a used trial")
	}
}

func TestGrantSubscription_TrialMarksUsage(t *testing.T) {
	repo := &subscriptionRepoStub{}
	svc := newTestService(repo, nil, nil)

	sub, err := svc.GrantSubscription(context.Background(), domain.GrantSubscriptionPayload{
		SocietyID: uuid.New(),
		Type:      domain.GrantTypeTrial,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !repo.extendCalled || !repo.extendTrial {
		t.Fatal("expected a trial extension marking the trial used")
	}
	if repo.extendDays != 30 {
		t.Fatalf("expected the configured trial length, got %d", repo.extendDays)
	}
	if !sub.TrialUsed {
		t.Fatal("expected the returned subscription to carry the trial flag")
	}
}

func TestGrantSubscription_CustomRequiresDays(t *testing.T) {
	svc := newTestService(&subscriptionRepoStub{}, nil, nil)

	_, err := svc.GrantSubscription(context.Background(), domain.GrantSubscriptionPayload{
		SocietyID: uuid.New(),
		Type:      domain.GrantTypeCustom,
		Days:      0,
	})
	if err != ErrInvalidGrantDays {
		t.Fatalf("expected ErrInvalidGrantDays, got %v", err)
	}
}

func TestGrantSubscription_RejectsUnknownType(t *testing.T) {
	svc := newTestService(&subscriptionRepoStub{}, nil, nil)

	_, err := svc.GrantSubscription(context.Background(), domain.GrantSubscriptionPayload{
		SocietyID: uuid.New(),
		Type:      "comped",
	})
	if err != ErrInvalidGrant {
		t.Fatalf("expected ErrInvalidGrant, got %v", err)
	}
}

func TestGrantSubscription_RequiresSociety(t *testing.T) {
	repo := &subscriptionRepoStub{}
	svc := newTestService(repo, nil, nil)

	_, err := svc.GrantSubscription(context.Background(), domain.GrantSubscriptionPayload{
		Type: domain.GrantTypeCustom,
		Days: 90,
	})
	if err != ErrMissingSociety {
		t.Fatalf("expected ErrMissingSociety, got %v", err)
	}
	if repo.extendCalled || repo.lifetimeCalled {
		t.Fatal("did not expect a grant for the zero society id")
	}
}

func TestToggleLifetime_RequiresSociety(t *testing.T) {
	repo := &subscriptionRepoStub{}
	svc := newTestService(repo, nil, nil)

	_, err := svc.ToggleLifetime(context.Background(), domain.ToggleLifetimePayload{Enable: true})
	if err != ErrMissingSociety {
		t.Fatalf("expected ErrMissingSociety, got %v", err)
	}
	if repo.lifetimeCalled {
		t.Fatal("did not expect the lifetime flag to be touched")
	}
}

func TestToggleLifetime(t *testing.T) {
	repo := &subscriptionRepoStub{}
	svc := newTestService(repo, nil, nil)

	sub, err := svc.ToggleLifetime(context.Background(), domain.ToggleLifetimePayload{
		SocietyID: uuid.New(),
		Enable:    true,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !repo.lifetimeCalled || !repo.lifetimeEnable {
		t.Fatal("expected the lifetime flag to be set")
	}
	if !sub.IsLifetime {
		t.Fatal("expected the returned subscription to be lifetime")
	}
}
