package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"turnero/internal/auth"
	"turnero/internal/entities"
	"turnero/internal/service"
)

type AdminHandler struct {
	Service *service.AdminService
	Logger  *zap.Logger
}

func NewAdminHandler(svc *service.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{Service: svc, Logger: logger}
}

func (h *AdminHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListAppointments(r.Context(), entities.AppointmentFilter{
		Status: r.URL.Query().Get("status"),
		Query:  r.URL.Query().Get("q"),
	})
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req UpdateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	appt, err := h.Service.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	h.Logger.Info("admin changed appointment status",
		zap.String("admin", adminSubject(r)),
		zap.String("id", appt.ID),
		zap.String("status", appt.Status),
	)
	writeJSON(w, http.StatusOK, AppointmentResponse{Success: true, Appointment: *appt})
}

func (h *AdminHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	var req SetAvailabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	err := h.Service.SetAvailability(r.Context(), int(req.Year), int(req.Month), int(req.Day), req.Slots)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	h.Logger.Info("admin changed availability",
		zap.String("admin", adminSubject(r)),
		zap.Int("year", int(req.Year)), zap.Int("month", int(req.Month)), zap.Int("day", int(req.Day)),
	)
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Availability updated"})
}

func (h *AdminHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	year, errY := strconv.Atoi(vars["year"])
	month, errM := strconv.Atoi(vars["month"])
	day, errD := strconv.Atoi(vars["day"])
	if errY != nil || errM != nil || errD != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid year, month or day")
		return
	}
	slots, err := h.Service.GetAvailability(r.Context(), year, month, day)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, SlotsResponse{Slots: slots})
}

// adminSubject names the authenticated admin, or "anonymous" when admin auth
// is disabled.
func adminSubject(r *http.Request) string {
	if c, ok := auth.ClaimsFromContext(r.Context()); ok {
		return c.Subject
	}
	return "anonymous"
}
