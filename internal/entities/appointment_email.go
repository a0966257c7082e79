package entities

type AppointmentEmailData struct {
	BusinessName  string
	CustomerName  string
	AppointmentID string
	DateFormatted string
	Time          string
	Headline      string
	Body          string
	CurrentYear   int
}
