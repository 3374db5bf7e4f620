package cronjob

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/projecthub/submission-backend/internal/logging"
)

// Purger deletes read notifications older than a retention window.
type Purger interface {
	PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error)
}

type Scheduler struct {
	purger    Purger
	schedule  string
	retention time.Duration
	timeout   time.Duration
	cron      *cron.Cron
}

// NewScheduler runs the notification purge on a six-field (seconds first) cron schedule.
func NewScheduler(purger Purger, schedule string, retention time.Duration) *Scheduler {
	return &Scheduler{
		purger:    purger,
		schedule:  schedule,
		retention: retention,
		timeout:   5 * time.Minute,
		cron:      cron.New(cron.WithSeconds()),
	}
}

// Start registers the purge job and starts the cron runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		_, _ = s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("failed to create cron job: %w", err)
	}

	logging.NewLogger(context.Background()).LogInfof("cron", "scheduler started (schedule %q, retention %s)", s.schedule, s.retention)
	s.cron.Start()
	return nil
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// RunOnce performs a single purge.
func (s *Scheduler) RunOnce(ctx context.Context) (int64, error) {
	logger := logging.NewLogger(ctx)
	started := time.Now()

	n, err := s.purger.PurgeRead(ctx, s.retention)
	if err != nil {
		logger.LogError("purge_notifications", err)
		return 0, err
	}

	logger.LogInfof("purge_notifications", "purge completed in %s", time.Since(started))
	return n, nil
}
