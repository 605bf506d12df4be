// Package memory is an in-process reservations.Store used for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ariefcatur/go-bookstore-reservations/internal/reservations"
)

type dayKey struct{ bookstore, date string }

type Store struct {
	mu     sync.RWMutex
	days   map[dayKey]map[string]reservations.Reservation
	emails map[string]string
}

func New() *Store {
	return &Store{
		days:   map[dayKey]map[string]reservations.Reservation{},
		emails: map[string]string{},
	}
}

// SetBookstoreEmail seeds a contact record.
func (s *Store) SetBookstoreEmail(bookstore, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails[bookstore] = email
}

func (s *Store) QueryReservations(_ context.Context, bookstore, date string) ([]reservations.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	day := s.days[dayKey{bookstore, date}]
	out := make([]reservations.Reservation, 0, len(day))
	for _, r := range day {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

func (s *Store) PutReservation(_ context.Context, r reservations.Reservation, mode reservations.PutMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := dayKey{r.BookstoreName, r.Date}
	day, ok := s.days[k]
	if !ok {
		day = map[string]reservations.Reservation{}
		s.days[k] = day
	}
	if _, taken := day[r.Time]; taken && mode == reservations.PutIfAbsent {
		return reservations.ErrConflict
	}
	day[r.Time] = r
	return nil
}

func (s *Store) FindBookstoreEmail(_ context.Context, bookstore string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email, ok := s.emails[bookstore]
	return email, ok, nil
}
