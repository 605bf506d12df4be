// Package notify contains the transports a reservation notification can be
// handed to. Every transport implements reservations.Notifier and reports
// only whether the transport accepted the message.
package notify
