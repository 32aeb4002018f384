package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/reliefops/relief-api/internal/config"
)

const digestTimeout = 2 * time.Minute

// DigestRunner produces and delivers the shortfall digest.
type DigestRunner interface {
	Run(ctx context.Context) (string, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron   *cron.Cron
	digest DigestRunner
	cfg    config.DigestConfig
	logger *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the configured timezone.
func NewScheduler(cfg config.DigestConfig, digest DigestRunner, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	// Standard 5-field cron expressions (min, hour, dom, month, dow).
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:   c,
		digest: digest,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("digest_schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.sendShortfallDigest); err != nil {
		return fmt.Errorf("schedule shortfall digest: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendShortfallDigest() {
	s.logger.Info("generating shortfall digest")
	ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
	defer cancel()

	if _, err := s.digest.Run(ctx); err != nil {
		s.logger.Error("failed to send shortfall digest", zap.Error(err))
		return
	}
	s.logger.Info("shortfall digest sent successfully")
}
