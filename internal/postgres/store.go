package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-bookstore-reservations/internal/reservations"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is satisfied by *pgxpool.Pool and by pgxmock pools.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct{ DB DB }

var schema = []string{
	`CREATE TABLE IF NOT EXISTS reservations (
		bookstore_name TEXT   NOT NULL,
		slot_date      TEXT   NOT NULL,
		slot_time      TEXT   NOT NULL,
		customer       TEXT   NOT NULL,
		created_at     BIGINT NOT NULL,
		PRIMARY KEY (bookstore_name, slot_date, slot_time)
	)`,
	`CREATE TABLE IF NOT EXISTS bookstores (
		name  TEXT PRIMARY KEY,
		email TEXT NOT NULL
	)`,
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.DB.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) QueryReservations(ctx context.Context, bookstore, date string) ([]reservations.Reservation, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT bookstore_name, slot_date, slot_time, customer, created_at
		FROM reservations
		WHERE bookstore_name = $1 AND slot_date = $2
		ORDER BY slot_time`, bookstore, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []reservations.Reservation
	for rows.Next() {
		var r reservations.Reservation
		if err := rows.Scan(&r.BookstoreName, &r.Date, &r.Time, &r.Customer, &r.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const (
	insertReservation = `
		INSERT INTO reservations (bookstore_name, slot_date, slot_time, customer, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	onConflictOverwrite = `
		ON CONFLICT (bookstore_name, slot_date, slot_time)
		DO UPDATE SET customer = EXCLUDED.customer, created_at = EXCLUDED.created_at`
	onConflictKeep = `
		ON CONFLICT (bookstore_name, slot_date, slot_time) DO NOTHING`
)

func (s *Store) PutReservation(ctx context.Context, r reservations.Reservation, mode reservations.PutMode) error {
	sql := insertReservation + onConflictOverwrite
	if mode == reservations.PutIfAbsent {
		sql = insertReservation + onConflictKeep
	}

	ct, err := s.DB.Exec(ctx, sql, r.BookstoreName, r.Date, r.Time, r.Customer, r.Timestamp)
	if err != nil {
		return err
	}
	if mode == reservations.PutIfAbsent && ct.RowsAffected() == 0 {
		return reservations.ErrConflict
	}
	return nil
}

func (s *Store) FindBookstoreEmail(ctx context.Context, bookstore string) (string, bool, error) {
	var email string
	err := s.DB.QueryRow(ctx, `SELECT email FROM bookstores WHERE name = $1`, bookstore).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return email, true, nil
}
