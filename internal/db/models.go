package db

import (
	"fmt"
	"strconv"
	"time"
)

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

type Appointment struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Active reports whether the appointment still holds its slot.
func (a Appointment) Active() bool {
	return a.Status != StatusCancelled
}

// Availability maps year -> month -> day -> ordered slot times.
// Keys are unpadded decimal strings.
type Availability map[string]map[string]map[string][]string

// Slots returns the configured slots for a day. Zero-padded month and day
// keys written by older admin clients are also honored.
func (a Availability) Slots(year, month, day int) []string {
	months, ok := a[strconv.Itoa(year)]
	if !ok {
		return []string{}
	}
	days := lookup(months, month)
	if days == nil {
		return []string{}
	}
	slots, ok := days[strconv.Itoa(day)]
	if !ok {
		slots, ok = days[fmt.Sprintf("%02d", day)]
	}
	if !ok || slots == nil {
		return []string{}
	}
	out := make([]string, len(slots))
	copy(out, slots)
	return out
}

// Set replaces the day's slot list, creating the year and month levels as needed.
func (a Availability) Set(year, month, day int, slots []string) {
	y, m, d := strconv.Itoa(year), strconv.Itoa(month), strconv.Itoa(day)
	if a[y] == nil {
		a[y] = map[string]map[string][]string{}
	}
	if a[y][m] == nil {
		a[y][m] = map[string][]string{}
	}
	// fold a legacy padded month into the canonical key so its days stay visible
	if pm := fmt.Sprintf("%02d", month); pm != m {
		for k, v := range a[y][pm] {
			if _, exists := a[y][m][k]; !exists {
				a[y][m][k] = v
			}
		}
		delete(a[y], pm)
	}
	stored := make([]string, len(slots))
	copy(stored, slots)
	a[y][m][d] = stored
	if pd := fmt.Sprintf("%02d", day); pd != d {
		delete(a[y][m], pd)
	}
}

func lookup(months map[string]map[string][]string, month int) map[string][]string {
	if days, ok := months[strconv.Itoa(month)]; ok {
		return days
	}
	return months[fmt.Sprintf("%02d", month)]
}

// Document is the whole persisted state.
type Document struct {
	Appointments []Appointment `json:"appointments"`
	Availability Availability  `json:"availability"`
}

// Normalize replaces nil collections so the document always serializes as
// `{"appointments": [], "availability": {}}`.
func (d *Document) Normalize() {
	if d.Appointments == nil {
		d.Appointments = []Appointment{}
	}
	if d.Availability == nil {
		d.Availability = Availability{}
	}
}

// FindAppointment returns the index of the appointment with the given id, or -1.
func (d *Document) FindAppointment(id string) int {
	for i := range d.Appointments {
		if d.Appointments[i].ID == id {
			return i
		}
	}
	return -1
}

// SlotTaken reports whether an active appointment other than exceptID holds (date, time).
func (d *Document) SlotTaken(date, slot, exceptID string) bool {
	for _, a := range d.Appointments {
		if a.ID != exceptID && a.Active() && a.Date == date && a.Time == slot {
			return true
		}
	}
	return false
}
