package app

import (
	"context"
	"log"
	"time"

	"knowledge-check-service/internal/domain"
)

// StalenessScanner finds users whose latest attempt on a recurring quiz is older than
// the quiz frequency and hands them to a Notifier. It never mutates attempts.
type StalenessScanner struct {
	attempts AttemptRepository
	notifier Notifier
	now      Clock
	logger   *log.Logger
}

func NewStalenessScanner(attempts AttemptRepository, notifier Notifier, logger *log.Logger) *StalenessScanner {
	return NewStalenessScannerWithClock(attempts, notifier, logger, time.Now)
}

// NewStalenessScannerWithClock allows deterministic "now" in tests.
func NewStalenessScannerWithClock(attempts AttemptRepository, notifier Notifier, logger *log.Logger, now Clock) *StalenessScanner {
	if logger == nil {
		logger = log.Default()
	}
	return &StalenessScanner{attempts: attempts, notifier: notifier, now: now, logger: logger}
}

// FindOutdated returns the latest attempt per (user, quiz) that is older than the quiz frequency.
func (s *StalenessScanner) FindOutdated(ctx context.Context) ([]domain.Attempt, error) {
	latest, err := s.attempts.LatestRecurring(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	var outdated []domain.Attempt
	for _, l := range latest {
		maxAge := time.Duration(l.FrequencyDays) * 24 * time.Hour
		if now.Sub(l.CreatedAt) > maxAge {
			outdated = append(outdated, l.Attempt)
		}
	}
	return outdated, nil
}

// Run scans once and notifies affected users.
func (s *StalenessScanner) Run(ctx context.Context) error {
	outdated, err := s.FindOutdated(ctx)
	if err != nil {
		s.logger.Printf("find outdated attempts: %v", err)
		return err
	}
	if len(outdated) == 0 {
		return nil
	}
	if err := s.notifier.Notify(ctx, outdated); err != nil {
		s.logger.Printf("notify %d outdated attempts: %v", len(outdated), err)
		return err
	}
	s.logger.Printf("notified %d outdated attempts", len(outdated))
	return nil
}
