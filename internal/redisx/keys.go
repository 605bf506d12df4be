package redisx

import (
	"fmt"
	"time"
)

const (
	// Reservations for one day: hash reservations:{len(bookstore)}:{bookstore}:{date},
	// field = slot time. The length keeps names containing ':' from colliding.
	KeyDayReservations = "reservations:%d:%s:%s"

	// Contact record: bookstore:email:{bookstore} -> email
	KeyBookstoreEmail = "bookstore:email:%s"

	// Delivered notifications: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLDedup = 48 * time.Hour
	// TTLClaim bounds how long an in-flight delivery blocks duplicates if
	// its worker dies before finishing.
	TTLClaim = 2 * time.Minute
)

func dayKey(bookstore, date string) string {
	return fmt.Sprintf(KeyDayReservations, len(bookstore), bookstore, date)
}
