package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"turnero/internal/db"
	"turnero/internal/entities"
	apperrors "turnero/internal/errors"
	"turnero/internal/repository"
	"turnero/internal/utils"
)

type AdminService struct {
	store    repository.DocumentStore
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewAdminService(store repository.DocumentStore, notifier Notifier, logger *zap.Logger) *AdminService {
	return &AdminService{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// ListAppointments returns matching appointments newest first. The counts
// always cover the whole store.
func (s *AdminService) ListAppointments(ctx context.Context, filter entities.AppointmentFilter) (*entities.AppointmentsList, error) {
	status := strings.ToLower(strings.TrimSpace(filter.Status))
	switch status {
	case "", "all", db.StatusConfirmed, db.StatusCancelled:
	default:
		return nil, apperrors.ErrValidation("invalid status filter")
	}
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	list := &entities.AppointmentsList{
		Appointments: make([]db.Appointment, 0, len(doc.Appointments)),
		Total:        len(doc.Appointments),
	}
	for _, a := range doc.Appointments {
		switch a.Status {
		case db.StatusConfirmed:
			list.Confirmed++
		case db.StatusCancelled:
			list.Cancelled++
		}
		if status != "" && status != "all" && a.Status != status {
			continue
		}
		if query != "" && !matchesQuery(a, query) {
			continue
		}
		list.Appointments = append(list.Appointments, a)
	}
	slices.SortStableFunc(list.Appointments, func(a, b db.Appointment) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return list, nil
}

func matchesQuery(a db.Appointment, query string) bool {
	for _, field := range []string{a.Name, a.Email, a.Phone, a.Date, a.Time} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// SetStatus confirms or cancels an appointment. Re-confirming fails when the
// slot has been booked by someone else in the meantime.
func (s *AdminService) SetStatus(ctx context.Context, id, status string) (*db.Appointment, error) {
	if status != db.StatusConfirmed && status != db.StatusCancelled {
		return nil, apperrors.ErrValidation("invalid status")
	}

	var (
		updated  db.Appointment
		previous string
	)
	err := s.store.Update(ctx, func(doc *db.Document) error {
		i := doc.FindAppointment(id)
		if i < 0 {
			return apperrors.ErrNotFound("appointment not found")
		}
		appt := &doc.Appointments[i]
		if status == db.StatusConfirmed && !appt.Active() && doc.SlotTaken(appt.Date, appt.Time, appt.ID) {
			return apperrors.ErrConflict("slot has been booked by another appointment")
		}
		previous = appt.Status
		appt.Status = status
		appt.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
		updated = *appt
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment status updated",
		zap.String("id", updated.ID),
		zap.String("from", previous),
		zap.String("to", updated.Status),
	)
	if previous != updated.Status {
		event := EventConfirmed
		if updated.Status == db.StatusCancelled {
			event = EventCancelled
		}
		notify(s.notifier, updated, event)
	}
	return &updated, nil
}

// SetAvailability replaces the slot list for one day.
func (s *AdminService) SetAvailability(ctx context.Context, year, month, day int, slots []string) error {
	if !utils.ValidDayParts(year, month, day) {
		return apperrors.ErrValidation("invalid year, month or day")
	}
	if slots == nil {
		slots = []string{}
	}
	err := s.store.Update(ctx, func(doc *db.Document) error {
		doc.Availability.Set(year, month, day, slots)
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("availability updated",
		zap.Int("year", year), zap.Int("month", month), zap.Int("day", day),
		zap.Strings("slots", slots),
	)
	return nil
}

func (s *AdminService) GetAvailability(ctx context.Context, year, month, day int) ([]string, error) {
	if !utils.ValidDayParts(year, month, day) {
		return nil, apperrors.ErrValidation("invalid year, month or day")
	}
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Availability.Slots(year, month, day), nil
}
