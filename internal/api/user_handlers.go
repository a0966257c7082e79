package api

import (
	"net/http"

	"go.uber.org/zap"

	"turnero/internal/entities"
	"turnero/internal/service"
)

type UserAppointmentHandler struct {
	Service *service.BookingService
	Logger  *zap.Logger
}

func NewUserAppointmentHandler(svc *service.BookingService, logger *zap.Logger) *UserAppointmentHandler {
	return &UserAppointmentHandler{Service: svc, Logger: logger}
}

func (h *UserAppointmentHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeErrorMessage(w, http.StatusBadRequest, "date is required")
		return
	}
	res, err := h.Service.GetAvailableSlots(r.Context(), date)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *UserAppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	appt, err := h.Service.CreateAppointment(r.Context(), entities.AppointmentRequest{
		Date:  req.Date,
		Time:  req.Time,
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, AppointmentResponse{
		Success:     true,
		Appointment: *appt,
		Message:     "Appointment booked successfully!",
	})
}
