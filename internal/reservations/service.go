package reservations

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Service hosts the Slot Calculator and the Reservation Recorder. It keeps no
// state between calls; store and notifier are the only shared resources.
type Service struct {
	store    Store
	notifier Notifier
	log      *zap.Logger
	clock    func() time.Time
	mode     PutMode
}

type Option func(*Service)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock overrides time.Now for timestamp assignment.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithStrictBooking makes Create reject a slot that is already stored
// instead of overwriting it.
func WithStrictBooking(strict bool) Option {
	return func(s *Service) {
		if strict {
			s.mode = PutIfAbsent
		} else {
			s.mode = PutOverwrite
		}
	}
}

func NewService(store Store, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		store:    store,
		notifier: notifier,
		log:      zap.NewNop(),
		clock:    time.Now,
		mode:     PutOverwrite,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ListSlots returns the ten-slot availability grid for a bookstore and date.
// A store failure is returned as KindStorage and no grid is produced.
func (s *Service) ListSlots(ctx context.Context, bookstore, date string) ([]TimeSlot, error) {
	if bookstore == "" {
		return nil, missingField("bookstore")
	}
	if date == "" {
		return nil, missingField("date")
	}

	existing, err := s.store.QueryReservations(ctx, bookstore, date)
	if err != nil {
		return nil, wrap(KindStorage, err)
	}
	return ComputeSlots(existing), nil
}

type CreateInput struct {
	Bookstore string
	Date      string
	Time      string
	Customer  string
}

// CreateResult describes what Create did. Persisted stays true when a later
// lookup or dispatch step fails: the write is never rolled back.
type CreateResult struct {
	Reservation Reservation
	Persisted   bool
	Notified    bool
}

// Create validates, persists and announces a reservation. Time is stored as
// given and is not checked against the slot grid.
func (s *Service) Create(ctx context.Context, in CreateInput) (CreateResult, error) {
	switch {
	case in.Bookstore == "":
		return CreateResult{}, missingField("bookstore")
	case in.Date == "":
		return CreateResult{}, missingField("date")
	case in.Time == "":
		return CreateResult{}, missingField("time")
	case in.Customer == "":
		return CreateResult{}, missingField("customer")
	}

	res := CreateResult{Reservation: Reservation{
		BookstoreName: in.Bookstore,
		Date:          in.Date,
		Time:          in.Time,
		Customer:      in.Customer,
		Timestamp:     s.clock().Unix(),
	}}

	log := s.log.With(
		zap.String("bookstore", in.Bookstore),
		zap.String("date", in.Date),
		zap.String("time", in.Time),
	)

	if err := s.store.PutReservation(ctx, res.Reservation, s.mode); err != nil {
		if errors.Is(err, ErrConflict) {
			return res, wrap(KindConflict, err)
		}
		return res, wrap(KindStorage, err)
	}
	res.Persisted = true
	log.Info("reservation stored", zap.Stringer("mode", s.mode))

	owner, found, err := s.store.FindBookstoreEmail(ctx, in.Bookstore)
	if err != nil {
		return res, wrap(KindLookup, err)
	}
	if !found {
		log.Warn("notification skipped: unknown bookstore")
		return res, &Error{Kind: KindRecipientNotFound, Err: errors.New("notification skipped: unknown bookstore " + in.Bookstore)}
	}

	for _, m := range Notifications(res.Reservation, owner) {
		if err := s.notifier.Send(ctx, m); err != nil {
			log.Error("notification dispatch failed", zap.String("subject", m.Subject), zap.Error(err))
			return res, wrap(KindDispatch, err)
		}
	}
	res.Notified = true
	log.Info("reservation notifications sent")

	return res, nil
}
