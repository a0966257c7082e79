package entities

import "turnero/internal/db"

type AppointmentsList struct {
	Appointments []db.Appointment `json:"appointments"`
	Total        int              `json:"total"`
	Confirmed    int              `json:"confirmed"`
	Cancelled    int              `json:"cancelled"`
}

// AppointmentFilter narrows the admin listing. Empty fields match everything.
type AppointmentFilter struct {
	Status string
	Query  string
}
