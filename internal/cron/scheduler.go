package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"adyenbridge/internal/adyen"
	"adyenbridge/internal/repository"
)

// Stale pending attempts are marked expired after this long.
const pendingAttemptTTL = 24 * time.Hour

// Scheduler manages all cron jobs.
type Scheduler struct {
	cron       *cron.Cron
	logger     *zap.Logger
	attempts   *repository.AttemptRepository
	management *adyen.Management
}

// New creates a new cron scheduler.
func New(attempts *repository.AttemptRepository, management *adyen.Management, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		logger:     logger,
		attempts:   attempts,
		management: management,
	}
}

// Start registers and starts all cron jobs.
func (s *Scheduler) Start() {
	s.logger.Info("Starting cron scheduler...")

	// Expire stale pending attempts - every hour
	if _, err := s.cron.AddFunc("0 0 * * * *", func() {
		s.logger.Debug("Running: expire stale attempts")
		s.expireStaleAttempts()
	}); err != nil {
		s.logger.Error("Failed to register cron job",
			zap.String("job", "expire stale attempts"), zap.Error(err))
	}

	// Gateway credential probe - every 30 minutes
	if _, err := s.cron.AddFunc("0 */30 * * * *", func() {
		s.logger.Debug("Running: credential probe")
		s.credentialProbe()
	}); err != nil {
		s.logger.Error("Failed to register cron job",
			zap.String("job", "credential probe"), zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler and returns a context that is done when all
// running jobs have finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Stopping cron scheduler...")
	return s.cron.Stop()
}

func (s *Scheduler) expireStaleAttempts() {
	cutoff := time.Now().Add(-pendingAttemptTTL)
	expired, err := s.attempts.ExpireStalePending(cutoff)
	if err != nil {
		s.logger.Error("Failed to expire stale attempts", zap.Error(err))
		return
	}
	if expired > 0 {
		s.logger.Info("Expired stale payment attempts", zap.Int64("count", expired))
	}
}

func (s *Scheduler) credentialProbe() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	valid, err := s.management.ValidateCredentials(ctx)
	if err != nil {
		s.logger.Warn("Credential probe could not reach gateway", zap.Error(err))
		return
	}
	if !valid {
		s.logger.Error("Gateway rejected configured credentials")
		return
	}
	s.logger.Debug("Credential probe OK")
}
