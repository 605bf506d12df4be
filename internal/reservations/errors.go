package reservations

import (
	"errors"
	"fmt"
)

// Kind tags a domain error so callers can branch without matching strings.
type Kind int

const (
	KindUnknown Kind = iota
	KindInput
	KindStorage
	KindLookup
	KindRecipientNotFound
	KindDispatch
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindStorage:
		return "storage"
	case KindLookup:
		return "lookup"
	case KindRecipientNotFound:
		return "recipient_not_found"
	case KindDispatch:
		return "dispatch"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// ErrConflict is returned by stores when a PutIfAbsent write hits an occupied slot.
var ErrConflict = errors.New("slot already reserved")

// Error is the error type returned by Service. Field is set for KindInput.
type Error struct {
	Kind  Kind
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.Kind == KindInput && e.Field != "" {
		return fmt.Sprintf("Missing key: '%s'", e.Field)
	}
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func missingField(field string) error {
	return &Error{Kind: KindInput, Field: field}
}

func wrap(kind Kind, err error) error {
	return &Error{Kind: kind, Err: err}
}
