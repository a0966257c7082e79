package entities

type AvailabilityResponse struct {
	Date           string   `json:"date"`
	AvailableSlots []string `json:"availableSlots"`
	TotalSlots     int      `json:"totalSlots"`
	BookedSlots    int      `json:"bookedSlots"`
}
