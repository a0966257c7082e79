package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"turnero/internal/db"
	"turnero/internal/entities"
	apperrors "turnero/internal/errors"
	"turnero/internal/repository"
)

func setupBooking(t *testing.T) (*BookingService, *AdminService, *repository.FileStore, *fakeNotifier) {
	t.Helper()
	store := newTestStore(t)
	notifier := newFakeNotifier()
	logger := zaptest.NewLogger(t)
	clock := fixedClock(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))

	booking := NewBookingService(store, notifier, logger)
	booking.now = clock
	admin := NewAdminService(store, notifier, logger)
	admin.now = clock

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &db.Document{
		Appointments: []db.Appointment{},
		Availability: db.Availability{"2024": {"1": {"15": {"09:00", "10:00"}}}},
	}))
	return booking, admin, store, notifier
}

func request(date, slot string) entities.AppointmentRequest {
	return entities.AppointmentRequest{Date: date, Time: slot, Name: "Dana Levi", Email: "dana@example.com", Phone: "+972500000000"}
}

func TestGetAvailableSlotsScenario(t *testing.T) {
	booking, _, _, notifier := setupBooking(t)
	ctx := context.Background()

	got, err := booking.GetAvailableSlots(ctx, "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, &entities.AvailabilityResponse{
		Date: "2024-01-15", AvailableSlots: []string{"09:00", "10:00"}, TotalSlots: 2, BookedSlots: 0,
	}, got)

	appt, err := booking.CreateAppointment(ctx, request("2024-01-15", "09:00"))
	require.NoError(t, err)
	assert.Equal(t, db.StatusConfirmed, appt.Status)
	assert.Equal(t, EventConfirmed, notifier.next(t).event)

	got, err = booking.GetAvailableSlots(ctx, "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00"}, got.AvailableSlots)
	assert.Equal(t, 2, got.TotalSlots)
	assert.Equal(t, 1, got.BookedSlots)

	_, err = booking.CreateAppointment(ctx, request("2024-01-15", "09:00"))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	notifier.none(t)
}

func TestGetAvailableSlotsIsSetDifferencePreservingOrder(t *testing.T) {
	booking, admin, _, _ := setupBooking(t)
	ctx := context.Background()
	configured := []string{"16:00", "08:00", "12:30", "09:15", "11:00"}
	require.NoError(t, admin.SetAvailability(ctx, 2024, 3, 4, configured))

	for _, slot := range []string{"08:00", "11:00"} {
		_, err := booking.CreateAppointment(ctx, request("2024-03-04", slot))
		require.NoError(t, err)
	}
	// a booking outside the configured slots still counts as booked
	_, err := booking.CreateAppointment(ctx, request("2024-03-04", "18:00"))
	require.NoError(t, err)

	got, err := booking.GetAvailableSlots(ctx, "2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, []string{"16:00", "12:30", "09:15"}, got.AvailableSlots)
	assert.Equal(t, 5, got.TotalSlots)
	assert.Equal(t, 3, got.BookedSlots)
}

func TestGetAvailableSlotsUnconfiguredDate(t *testing.T) {
	booking, _, _, _ := setupBooking(t)

	got, err := booking.GetAvailableSlots(context.Background(), "2025-07-01")
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.AvailableSlots)
	assert.Zero(t, got.TotalSlots)
}

func TestGetAvailableSlotsRejectsBadDate(t *testing.T) {
	booking, _, _, _ := setupBooking(t)

	for _, date := range []string{"", "  ", "2024/01/15", "2024-13-01"} {
		_, err := booking.GetAvailableSlots(context.Background(), date)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation), "date %q", date)
	}
}

func TestCreateAppointmentValidation(t *testing.T) {
	booking, _, _, _ := setupBooking(t)
	ctx := context.Background()

	cases := map[string]entities.AppointmentRequest{
		"missing date":  {Time: "09:00", Name: "A", Email: "a@example.com"},
		"missing time":  {Date: "2024-01-15", Name: "A", Email: "a@example.com"},
		"missing name":  {Date: "2024-01-15", Time: "09:00", Name: "   ", Email: "a@example.com"},
		"missing email": {Date: "2024-01-15", Time: "09:00", Name: "A"},
		"bad email":     {Date: "2024-01-15", Time: "09:00", Name: "A", Email: "not-an-email"},
		"bad date":      {Date: "15-01-2024", Time: "09:00", Name: "A", Email: "a@example.com"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := booking.CreateAppointment(ctx, req)
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
		})
	}
}

func TestCreateAppointmentPersistsFields(t *testing.T) {
	booking, _, store, _ := setupBooking(t)
	ctx := context.Background()

	appt, err := booking.CreateAppointment(ctx, entities.AppointmentRequest{
		Date: " 2024-01-15 ", Time: "10:00", Name: " Noa ", Email: "noa@example.com",
	})
	require.NoError(t, err)

	created := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, fmt.Sprint(created.UnixMilli()), appt.ID)
	assert.Equal(t, "2024-01-15", appt.Date)
	assert.Equal(t, "Noa", appt.Name)
	assert.Equal(t, "", appt.Phone)
	assert.Equal(t, created, appt.CreatedAt)
	assert.Equal(t, appt.CreatedAt, appt.UpdatedAt)

	doc, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Appointments, 1)
	assert.Equal(t, *appt, doc.Appointments[0])
}

func TestAppointmentIDsAreUniqueWithinTheSameMillisecond(t *testing.T) {
	booking, _, _, _ := setupBooking(t)
	frozen := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	booking.now = func() time.Time { return frozen }
	ctx := context.Background()

	a, err := booking.CreateAppointment(ctx, request("2024-01-15", "09:00"))
	require.NoError(t, err)
	b, err := booking.CreateAppointment(ctx, request("2024-01-15", "10:00"))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestCancelledSlotReappears(t *testing.T) {
	booking, admin, _, _ := setupBooking(t)
	ctx := context.Background()

	appt, err := booking.CreateAppointment(ctx, request("2024-01-15", "09:00"))
	require.NoError(t, err)
	_, err = admin.SetStatus(ctx, appt.ID, db.StatusCancelled)
	require.NoError(t, err)

	got, err := booking.GetAvailableSlots(ctx, "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00"}, got.AvailableSlots)
	assert.Zero(t, got.BookedSlots)

	_, err = booking.CreateAppointment(ctx, request("2024-01-15", "09:00"))
	assert.NoError(t, err, "a cancelled slot can be booked again")
}

func TestConcurrentBookingsOfOneSlotYieldOneWinner(t *testing.T) {
	booking, _, store, _ := setupBooking(t)
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := booking.CreateAppointment(ctx, request("2024-01-15", "09:00"))
			switch {
			case err == nil:
				successes.Add(1)
			case apperrors.IsKind(err, apperrors.KindConflict):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, successes.Load())
	assert.EqualValues(t, 24, conflicts.Load())

	doc, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.Appointments, 1)
}

func TestConcurrentBookingsOnDifferentDatesAreAllKept(t *testing.T) {
	booking, _, store, _ := setupBooking(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for day := 1; day <= 20; day++ {
		wg.Add(1)
		go func(day int) {
			defer wg.Done()
			_, err := booking.CreateAppointment(ctx, request(fmt.Sprintf("2024-05-%02d", day), "09:00"))
			assert.NoError(t, err)
		}(day)
	}
	wg.Wait()

	doc, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.Appointments, 20)
}
