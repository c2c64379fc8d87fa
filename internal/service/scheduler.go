package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// MediaCleaner removes stored media older than the retention window.
type MediaCleaner interface {
	CleanupOldFiles(maxAgeDays int) error
}

// Scheduler periodically prunes downloaded media past its retention window.
type Scheduler struct {
	cleaner       MediaCleaner
	retentionDays int
	intervalHours int
	logger        *logrus.Logger
	stopCh        chan struct{}
}

func NewScheduler(cleaner MediaCleaner, retentionDays, intervalHours int, logger *logrus.Logger) *Scheduler {
	if intervalHours <= 0 {
		intervalHours = 24
	}
	return &Scheduler{
		cleaner:       cleaner,
		retentionDays: retentionDays,
		intervalHours: intervalHours,
		logger:        logger,
		stopCh:        make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(s.intervalHours) * time.Hour)
	defer ticker.Stop()

	s.logger.Info("Starting media cleanup scheduler")

	s.runCleanup()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler context cancelled, stopping")
			return
		case <-s.stopCh:
			s.logger.Info("Scheduler stop signal received, stopping")
			return
		case <-ticker.C:
			s.runCleanup()
		}
	}
}

func (s *Scheduler) Stop() {
	close(s.stopCh)
}

func (s *Scheduler) runCleanup() {
	s.logger.WithField("retentionDays", s.retentionDays).Info("Running scheduled media cleanup")

	if err := s.cleaner.CleanupOldFiles(s.retentionDays); err != nil {
		s.logger.WithError(err).Error("Failed to cleanup old media files")
	} else {
		s.logger.Info("Media cleanup completed")
	}
}
