package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/filmfinder/filmfinder/internal/catalog"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron    *cron.Cron
	manager *catalog.Manager
	logger  *logrus.Logger

	stopCh chan struct{}
}

// NewScheduler creates a new scheduler
func NewScheduler(manager *catalog.Manager, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		manager: manager,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	// Every 6 hours: replace the genre vocabularies wholesale
	_, err := s.cron.AddFunc("0 */6 * * *", func() {
		s.runGenreRefresh()
	})
	if err != nil {
		return fmt.Errorf("failed to add genre refresh job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	// Bootstrap the vocabularies immediately, retrying with backoff until
	// they resolve. The fallback genre names serve meanwhile.
	go s.bootstrapGenres()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	close(s.stopCh)
	s.cron.Stop()
}

func (s *Scheduler) bootstrapGenres() {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 5 * time.Second
	policy.MaxInterval = 5 * time.Minute
	policy.MaxElapsedTime = 0 // keep trying until the daemon stops

	attempt := func() error {
		select {
		case <-s.stopCh:
			return backoff.Permanent(context.Canceled)
		default:
		}
		return s.manager.RefreshGenres(context.Background())
	}

	if err := backoff.Retry(attempt, policy); err != nil {
		s.logger.WithError(err).Warn("Genre vocabulary bootstrap abandoned")
		return
	}
	s.logger.Info("Genre vocabularies loaded")
}

// runGenreRefresh executes the periodic genre refresh job
func (s *Scheduler) runGenreRefresh() {
	s.logger.Info("Running scheduled genre refresh")

	if err := s.manager.RefreshGenres(context.Background()); err != nil {
		s.logger.WithError(err).Error("Genre refresh job failed")
	} else {
		s.logger.Info("Genre refresh job completed successfully")
	}
}
