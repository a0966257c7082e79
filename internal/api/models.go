package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"turnero/internal/db"
)

// Appointment
type CreateAppointmentRequest struct {
	Date  string `json:"date"`
	Time  string `json:"time"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type AppointmentResponse struct {
	Success     bool           `json:"success"`
	Appointment db.Appointment `json:"appointment"`
	Message     string         `json:"message,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Availability
type SetAvailabilityRequest struct {
	Year  flexInt  `json:"year"`
	Month flexInt  `json:"month"`
	Day   flexInt  `json:"day"`
	Slots []string `json:"slots"`
}

type SlotsResponse struct {
	Slots []string `json:"slots"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Auth
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// flexInt accepts 7, "7" and "07". Admin clients send date parts as strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("value is required")
	}
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("%q is not an integer", s)
	}
	*f = flexInt(n)
	return nil
}
