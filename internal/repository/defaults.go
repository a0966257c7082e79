package repository

import "turnero/internal/db"

var (
	fullDay  = []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"}
	shortDay = []string{"10:00", "11:00", "14:00", "15:00"}
)

// DefaultAvailability is the baseline written on first start.
func DefaultAvailability() db.Availability {
	a := db.Availability{}
	for _, month := range []struct {
		month    int
		firstDay int
	}{{1, 15}, {2, 1}} {
		for i := 0; i < 5; i++ {
			slots := fullDay
			if i%2 == 1 {
				slots = shortDay
			}
			a.Set(2024, month.month, month.firstDay+i, slots)
		}
	}
	return a
}
