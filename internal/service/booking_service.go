package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"turnero/internal/db"
	"turnero/internal/entities"
	apperrors "turnero/internal/errors"
	"turnero/internal/repository"
	"turnero/internal/utils"
)

type BookingService struct {
	store    repository.DocumentStore
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewBookingService(store repository.DocumentStore, notifier Notifier, logger *zap.Logger) *BookingService {
	return &BookingService{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// GetAvailableSlots returns the configured slots for date minus those held
// by active appointments, in configured order.
func (s *BookingService) GetAvailableSlots(ctx context.Context, date string) (*entities.AvailabilityResponse, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, apperrors.ErrValidation("date is required")
	}
	year, month, day, err := utils.ParseDate(date)
	if err != nil {
		return nil, apperrors.ErrValidation(err.Error())
	}

	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	configured := doc.Availability.Slots(year, month, day)
	booked := map[string]bool{}
	bookedCount := 0
	for _, a := range doc.Appointments {
		if a.Date == date && a.Active() {
			booked[a.Time] = true
			bookedCount++
		}
	}

	available := make([]string, 0, len(configured))
	for _, slot := range configured {
		if !booked[slot] {
			available = append(available, slot)
		}
	}

	return &entities.AvailabilityResponse{
		Date:           date,
		AvailableSlots: available,
		TotalSlots:     len(configured),
		BookedSlots:    bookedCount,
	}, nil
}

// CreateAppointment books (date, time). The conflict check and the insert
// happen inside one store update, so a slot can never be booked twice.
func (s *BookingService) CreateAppointment(ctx context.Context, req entities.AppointmentRequest) (*db.Appointment, error) {
	req = normalizeAppointmentRequest(req)
	if err := validateAppointmentRequest(req); err != nil {
		return nil, err
	}

	var created db.Appointment
	err := s.store.Update(ctx, func(doc *db.Document) error {
		if doc.SlotTaken(req.Date, req.Time, "") {
			return apperrors.ErrConflict("sorry, this slot is already booked")
		}
		now := s.now().UTC().Truncate(time.Millisecond)
		created = db.Appointment{
			ID:        newAppointmentID(doc, now),
			Date:      req.Date,
			Time:      req.Time,
			Name:      req.Name,
			Email:     req.Email,
			Phone:     req.Phone,
			Status:    db.StatusConfirmed,
			CreatedAt: now,
			UpdatedAt: now,
		}
		doc.Appointments = append(doc.Appointments, created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment created",
		zap.String("id", created.ID),
		zap.String("date", created.Date),
		zap.String("time", created.Time),
	)
	notify(s.notifier, created, EventConfirmed)
	return &created, nil
}

// newAppointmentID derives the id from the creation time in milliseconds,
// stepping forward past ids already present in the document.
func newAppointmentID(doc *db.Document, now time.Time) string {
	n := now.UnixMilli()
	for doc.FindAppointment(strconv.FormatInt(n, 10)) >= 0 {
		n++
	}
	return strconv.FormatInt(n, 10)
}
