// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/slyyfoxx/foxxtalk/internal/metrics"
)

// PurgeSchedule runs the token purge at minute 7 of every hour.
const PurgeSchedule = "7 * * * *"

const jobTimeout = 5 * time.Minute

// TokenPurger deletes expired bearer token records. auth.TokenStore
// implements it.
type TokenPurger interface {
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// Scheduler wraps a cron instance with the site's maintenance jobs.
type Scheduler struct {
	cron   *cron.Cron
	tokens TokenPurger
	logger *slog.Logger
	now    func() time.Time
}

// New creates a scheduler. tokens may be nil when bearer tokens are not
// stored by this process.
func New(tokens TokenPurger, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:   cron.New(),
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.tokens != nil {
		if _, err := s.cron.AddFunc(PurgeSchedule, s.run("purge expired tokens", s.PurgeTokens)); err != nil {
			return err
		}
	}
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) run(name string, job func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := job(ctx); err != nil {
			s.logger.Error("scheduled job failed", "job", name, "error", err)
		}
	}
}

// PurgeTokens removes token records that have already expired.
func (s *Scheduler) PurgeTokens(ctx context.Context) error {
	n, err := s.tokens.PurgeExpired(ctx, s.now())
	if err != nil {
		return err
	}
	metrics.TokensPurgedTotal.Add(float64(n))
	if n > 0 {
		s.logger.Info("purged expired tokens", "count", n)
	}
	return nil
}
