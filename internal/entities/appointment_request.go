package entities

type AppointmentRequest struct {
	Date  string `json:"date" validate:"required"`
	Time  string `json:"time" validate:"required"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}
