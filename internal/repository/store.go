package repository

import (
	"context"

	"turnero/internal/db"
)

// DocumentStore persists the whole appointments document. Every operation
// works on the full document; Update is the only safe way to mutate it.
type DocumentStore interface {
	Load(ctx context.Context) (*db.Document, error)
	Save(ctx context.Context, doc *db.Document) error
	// Update runs fn on a freshly loaded document and saves the result.
	// Concurrent Update calls are serialized. When fn returns an error
	// nothing is written and the error is returned unchanged.
	Update(ctx context.Context, fn func(doc *db.Document) error) error
}

// NewDocument returns an empty document seeded with the default availability.
func NewDocument() *db.Document {
	return &db.Document{
		Appointments: []db.Appointment{},
		Availability: DefaultAvailability(),
	}
}
