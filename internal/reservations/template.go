package reservations

import "fmt"

const (
	SubjectOwner    = "New Reservation Created"
	SubjectCustomer = "Your Reservation Is Confirmed"
)

// Message is a single notification handed to a Notifier.
type Message struct {
	To      string `json:"recipient"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func notificationBody(r Reservation) string {
	return fmt.Sprintf(
		"New reservation created:\n\nBookstore: %s\nDate: %s\nTime: %s\nCustomer: %s\nTimestamp: %d",
		r.BookstoreName, r.Date, r.Time, r.Customer, r.Timestamp,
	)
}

// Notifications builds the owner copy and the customer copy, in that order.
func Notifications(r Reservation, ownerEmail string) []Message {
	body := notificationBody(r)
	return []Message{
		{To: ownerEmail, Subject: SubjectOwner, Body: body},
		{To: r.Customer, Subject: SubjectCustomer, Body: body},
	}
}
