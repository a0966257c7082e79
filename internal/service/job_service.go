package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"turnero/internal/db"
	"turnero/internal/repository"
	"turnero/internal/utils"
)

type JobService struct {
	store     repository.DocumentStore
	notifier  Notifier
	logger    *zap.Logger
	loc       *time.Location
	retention time.Duration
	now       func() time.Time
}

// NewJobService builds the background jobs. A zero retention disables purging.
func NewJobService(store repository.DocumentStore, notifier Notifier, logger *zap.Logger, loc *time.Location, retention time.Duration) *JobService {
	if loc == nil {
		loc = time.UTC
	}
	return &JobService{
		store:     store,
		notifier:  notifier,
		logger:    logger,
		loc:       loc,
		retention: retention,
		now:       time.Now,
	}
}

// SendReminders notifies every confirmed appointment dated tomorrow.
func (s *JobService) SendReminders(ctx context.Context) (int, error) {
	if s.notifier == nil {
		return 0, nil
	}
	tomorrow := s.now().In(s.loc).AddDate(0, 0, 1).Format(utils.DateLayout)

	doc, err := s.store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("cron job: load store: %w", err)
	}

	sent := 0
	for _, a := range doc.Appointments {
		if a.Date != tomorrow || a.Status != db.StatusConfirmed {
			continue
		}
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		s.notifier.Notify(a, EventReminder)
		sent++
	}
	s.logger.Info("cron job: reminders sent", zap.String("date", tomorrow), zap.Int("count", sent))
	return sent, nil
}

// PurgeCancelled deletes cancelled appointments last updated before the
// retention window.
func (s *JobService) PurgeCancelled(ctx context.Context) (int, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.retention)

	removed := 0
	err := s.store.Update(ctx, func(doc *db.Document) error {
		kept := doc.Appointments[:0]
		for _, a := range doc.Appointments {
			if a.Status == db.StatusCancelled && a.UpdatedAt.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, a)
		}
		doc.Appointments = kept
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("cron job: purge cancelled appointments: %w", err)
	}
	s.logger.Info("cron job: cancelled appointments purged", zap.Int("count", removed), zap.Time("cutoff", cutoff))
	return removed, nil
}

// Start registers the jobs on a cron scheduler running in the service's
// timezone. An empty spec skips that job. The caller stops the returned
// scheduler on shutdown.
func (s *JobService) Start(ctx context.Context, reminderSpec, purgeSpec string) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(s.loc))
	if reminderSpec != "" {
		if _, err := c.AddFunc(reminderSpec, func() {
			if _, err := s.SendReminders(ctx); err != nil {
				s.logger.Error("reminder job failed", zap.Error(err))
			}
		}); err != nil {
			return nil, fmt.Errorf("invalid reminder schedule %q: %w", reminderSpec, err)
		}
	}
	if purgeSpec != "" && s.retention > 0 {
		if _, err := c.AddFunc(purgeSpec, func() {
			if _, err := s.PurgeCancelled(ctx); err != nil {
				s.logger.Error("purge job failed", zap.Error(err))
			}
		}); err != nil {
			return nil, fmt.Errorf("invalid purge schedule %q: %w", purgeSpec, err)
		}
	}
	c.Start()
	s.logger.Info("cron scheduler started", zap.Int("jobs", len(c.Entries())))
	return c, nil
}
