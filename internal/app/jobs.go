/**
 * @description
 * Scheduled job implementations: the subscription expiry sweep and the
 * overdue payment reminder. Both jobs only read and publish; downstream
 * consumers own delivery.
 */
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/ourrapartment10-dot/payments-service/internal/store"
	"github.com/ourrapartment10-dot/payments-service/pkg/rabbitmq"
)

// expirySweepLookback bounds how far back the expiry sweep announces. Runs
// are expected to be much more frequent than this, so an occasional missed
// run still gets every expiry announced once without re-announcing old ones
// forever.
const expirySweepLookback = 48 * time.Hour

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	repo     store.Repository
	producer rabbitmq.Publisher
	logger   *slog.Logger
}

// NewJobs creates a new Jobs runner.
func NewJobs(repo store.Repository, producer rabbitmq.Publisher, logger *slog.Logger) *Jobs {
	return &Jobs{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// SweepExpiredSubscriptions announces recently-expired subscriptions.
func (j *Jobs) SweepExpiredSubscriptions() {
	j.logger.Info("starting subscription expiry sweep")
	ctx := context.Background()

	subs, err := j.repo.ListExpiredSubscriptions(ctx, time.Now().Add(-expirySweepLookback))
	if err != nil {
		j.logger.Error("failed to list expired subscriptions", "error", err)
		return
	}

	if len(subs) == 0 {
		j.logger.Info("no expired subscriptions to announce")
		return
	}

	j.logger.Info("found expired subscriptions", "count", len(subs))

	for _, sub := range subs {
		event := rabbitmq.SubscriptionEvent{
			SocietyID: sub.SocietyID,
			ExpiresOn: sub.ExpiresOn,
			Timestamp: time.Now(),
		}
		if err := j.producer.PublishSubscriptionEvent(ctx, rabbitmq.RoutingKeySubscriptionExpired, event); err != nil {
			j.logger.Error("failed to publish subscription expired event", "society_id", sub.SocietyID, "error", err)
			continue
		}
		j.logger.Info("announced expired subscription", "society_id", sub.SocietyID)
	}

	j.logger.Info("subscription expiry sweep finished")
}

// SendOverdueReminders announces unsettled payments past their due date.
func (j *Jobs) SendOverdueReminders() {
	j.logger.Info("starting overdue payment reminder job")
	ctx := context.Background()

	payments, err := j.repo.ListOverduePayments(ctx, time.Now())
	if err != nil {
		j.logger.Error("failed to list overdue payments", "error", err)
		return
	}

	if len(payments) == 0 {
		j.logger.Info("no overdue payments to remind")
		return
	}

	j.logger.Info("found overdue payments", "count", len(payments))

	for _, p := range payments {
		event := rabbitmq.PaymentEvent{
			PaymentID: p.ID,
			SocietyID: p.SocietyID,
			UserID:    p.UserID,
			Amount:    p.Amount,
			Status:    p.Status,
			Timestamp: time.Now(),
		}
		if err := j.producer.PublishPaymentEvent(ctx, rabbitmq.RoutingKeyPaymentOverdue, event); err != nil {
			j.logger.Error("failed to publish overdue payment event", "payment_id", p.ID, "error", err)
		}
	}

	j.logger.Info("overdue payment reminder job finished")
}
