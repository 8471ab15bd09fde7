/**
 * @description
 * Cron scheduler setup for scheduled jobs.
 */
package app

import (
	"context"
	"log/slog"

	"github.com/ourrapartment10-dot/payments-service/internal/config"
	"github.com/robfig/cron/v3"
)

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	logger *slog.Logger
	config config.Config
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(jobs *Jobs, logger *slog.Logger, cfg config.Config) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:   c,
		jobs:   jobs,
		logger: logger,
		config: cfg,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.config.ExpirySweepSchedule, s.jobs.SweepExpiredSubscriptions); err != nil {
		s.logger.Error("failed to schedule subscription expiry sweep", "error", err)
	} else {
		s.logger.Info("scheduled subscription expiry sweep", "schedule", s.config.ExpirySweepSchedule)
	}

	if _, err := s.cron.AddFunc(s.config.OverdueReminderSchedule, s.jobs.SendOverdueReminders); err != nil {
		s.logger.Error("failed to schedule overdue payment reminders", "error", err)
	} else {
		s.logger.Info("scheduled overdue payment reminders", "schedule", s.config.OverdueReminderSchedule)
	}

	s.cron.Start()
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
