// Package maintenance runs the periodic housekeeping jobs: zeroing broken
// streaks and closing attempts nobody finished.
package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/abhisek/drillz/internal/economy"
	"github.com/abhisek/drillz/internal/store"
)

// Config selects the schedules and limits of the jobs.
type Config struct {
	StreakSweep string         // cron expression, in Location
	AttemptTTL  time.Duration  // active attempts older than this are abandoned
	Location    *time.Location // calendar day for streaks
}

// Scheduler owns the cron runner.
type Scheduler struct {
	progress store.ProgressRepo
	attempts store.AttemptRepo
	cfg      Config
	cron     *cron.Cron
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	running bool
}

// NewScheduler returns a stopped scheduler.
func NewScheduler(progress store.ProgressRepo, attempts store.AttemptRepo, cfg Config, logger *zap.Logger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Scheduler{
		progress: progress,
		attempts: attempts,
		cfg:      cfg,
		cron:     cron.New(cron.WithLocation(cfg.Location)),
		logger:   logger.Named("maintenance"),
		now:      time.Now,
	}
}

// Start registers the jobs and starts the runner.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	if _, err := s.cron.AddFunc(s.cfg.StreakSweep, func() { s.run("streak sweep", s.SweepStreaks) }); err != nil {
		return fmt.Errorf("schedule streak sweep %q: %w", s.cfg.StreakSweep, err)
	}
	// Stale attempts are checked hourly; the TTL is usually a day.
	if _, err := s.cron.AddFunc("@hourly", func() { s.run("abandon stale attempts", s.AbandonStale) }); err != nil {
		return fmt.Errorf("schedule stale attempt job: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("scheduler started",
		zap.String("streak_sweep", s.cfg.StreakSweep),
		zap.Duration("attempt_ttl", s.cfg.AttemptTTL))
	return nil
}

// Stop stops the runner and waits for a running job to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) run(name string, job func(ctx context.Context) (int64, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := s.now()
	n, err := job(ctx)
	if err != nil {
		s.logger.Error("job failed", zap.String("job", name), zap.Error(err))
		return
	}
	s.logger.Info("job finished",
		zap.String("job", name),
		zap.Int64("rows", n),
		zap.Duration("duration", s.now().Sub(start)))
}

// SweepStreaks zeroes the current streak of learners whose last activity
// was before yesterday. A learner active yesterday keeps the streak until
// the end of today.
func (s *Scheduler) SweepStreaks(ctx context.Context) (int64, error) {
	yesterday := economy.Yesterday(economy.Day(s.now(), s.cfg.Location))
	n, err := s.progress.ExpireStreaks(ctx, yesterday)
	if err != nil {
		return 0, fmt.Errorf("expire streaks: %w", err)
	}
	return n, nil
}

// AbandonStale closes active attempts started more than AttemptTTL ago.
func (s *Scheduler) AbandonStale(ctx context.Context) (int64, error) {
	if s.cfg.AttemptTTL <= 0 {
		return 0, nil
	}
	n, err := s.attempts.AbandonStale(ctx, s.now().Add(-s.cfg.AttemptTTL))
	if err != nil {
		return 0, fmt.Errorf("abandon stale attempts: %w", err)
	}
	return n, nil
}
