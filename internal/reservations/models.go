package reservations

// Reservation is one booked slot. Timestamp is assigned by the recorder at
// creation time (unix seconds) and never changes afterwards.
type Reservation struct {
	BookstoreName string `json:"bookstoreName"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Customer      string `json:"customer"` // email address, also the notification target
	Timestamp     int64  `json:"timestamp"`
}

// BookstoreEmailRecord maps a bookstore to the address its owner is notified at.
// Records are managed outside this service; it only reads them.
type BookstoreEmailRecord struct {
	BookstoreName string `json:"bookstoreName"`
	Email         string `json:"email"`
}

// TimeSlot is one entry of the computed availability grid.
type TimeSlot struct {
	Time        string
	IsAvailable bool
}

// PutMode selects the write policy for PutReservation.
type PutMode int

const (
	// PutOverwrite replaces any reservation already stored for the slot.
	PutOverwrite PutMode = iota
	// PutIfAbsent fails with ErrConflict when the slot is already taken.
	PutIfAbsent
)

func (m PutMode) String() string {
	switch m {
	case PutOverwrite:
		return "overwrite"
	case PutIfAbsent:
		return "if-absent"
	default:
		return "unknown"
	}
}
