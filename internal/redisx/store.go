package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/ariefcatur/go-bookstore-reservations/internal/reservations"
	"github.com/redis/go-redis/v9"
)

// Store keeps each day's reservations in one hash so a day is read with a
// single HGETALL and a slot is claimed with HSET or HSETNX.
type Store struct {
	Redis redis.Cmdable
}

func (s *Store) QueryReservations(ctx context.Context, bookstore, date string) ([]reservations.Reservation, error) {
	fields, err := s.Redis.HGetAll(ctx, dayKey(bookstore, date)).Result()
	if err != nil {
		return nil, err
	}

	out := make([]reservations.Reservation, 0, len(fields))
	for slot, raw := range fields {
		var r reservations.Reservation
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("decode reservation %s: %w", slot, err)
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

func (s *Store) PutReservation(ctx context.Context, r reservations.Reservation, mode reservations.PutMode) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	key := dayKey(r.BookstoreName, r.Date)

	if mode == reservations.PutIfAbsent {
		ok, err := s.Redis.HSetNX(ctx, key, r.Time, b).Result()
		if err != nil {
			return err
		}
		if !ok {
			return reservations.ErrConflict
		}
		return nil
	}
	return s.Redis.HSet(ctx, key, r.Time, b).Err()
}

func (s *Store) FindBookstoreEmail(ctx context.Context, bookstore string) (string, bool, error) {
	email, err := s.Redis.Get(ctx, fmt.Sprintf(KeyBookstoreEmail, bookstore)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return email, email != "", nil
}
