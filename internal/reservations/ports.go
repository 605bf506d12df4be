package reservations

import "context"

// Store is the key-value backend holding reservations and contact records.
type Store interface {
	// QueryReservations returns every reservation stored under the exact
	// (bookstore, date) pair. An empty result is not an error.
	QueryReservations(ctx context.Context, bookstore, date string) ([]Reservation, error)
	// PutReservation writes r keyed by (bookstore, date, time).
	PutReservation(ctx context.Context, r Reservation, mode PutMode) error
	// FindBookstoreEmail returns found=false with a nil error when no record exists.
	FindBookstoreEmail(ctx context.Context, bookstore string) (email string, found bool, err error)
}

// Notifier delivers one message to one recipient. A nil error means the
// transport accepted the message; nothing more is confirmed.
type Notifier interface {
	Send(ctx context.Context, m Message) error
}
