// Package bookings stores appointments and assembles a day's availability
// from the schedule engine and its collaborators.
package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Booking statuses.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// ErrNotFound is returned when a booking does not exist.
var ErrNotFound = errors.New("bookings: not found")

// Booking is a confirmed (or cancelled) appointment.
type Booking struct {
	ID              uuid.UUID `json:"id"`
	ServiceID       uuid.UUID `json:"service_id"`
	ServiceName     string    `json:"service_name"`
	Date            time.Time `json:"date"` // calendar date, midnight
	StartMinute     int       `json:"start_minute"`
	DurationMinutes int       `json:"duration_minutes"`
	ClientName      string    `json:"client_name"`
	ClientEmail     string    `json:"client_email"`
	Status          string    `json:"status"`
	CalendarEventID string    `json:"calendar_event_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides persistence helpers for bookings.
type Repository struct {
	db DB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("bookings: db required")
	}
	return &Repository{db: db}
}

const bookingColumns = `id, service_id, service_name, booking_date, start_minute,
	duration_minutes, client_name, client_email, status,
	COALESCE(calendar_event_id, ''), created_at`

// Create inserts a confirmed booking row.
func (r *Repository) Create(ctx context.Context, b *Booking) error {
	b.Status = StatusConfirmed
	row := r.db.QueryRow(ctx,
		`INSERT INTO bookings (id, service_id, service_name, booking_date, start_minute,
		   duration_minutes, client_name, client_email, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		b.ID, b.ServiceID, b.ServiceName, b.Date, b.StartMinute,
		b.DurationMinutes, b.ClientName, b.ClientEmail, b.Status)
	if err := row.Scan(&b.CreatedAt); err != nil {
		return fmt.Errorf("bookings: insert: %w", err)
	}
	return nil
}

// GetByID loads one booking.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("bookings: get: %w", err)
	}
	return b, nil
}

// ListForDate returns the confirmed bookings on a calendar date, earliest first.
func (r *Repository) ListForDate(ctx context.Context, date time.Time) ([]Booking, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE booking_date = $1 AND status = $2
		 ORDER BY start_minute`,
		date, StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("bookings: list for date: %w", err)
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("bookings: scan: %w", err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: rows: %w", err)
	}
	return out, nil
}

// Cancel marks a booking cancelled. The row is kept for history.
func (r *Repository) Cancel(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE bookings SET status = $2 WHERE id = $1 AND status = $3`,
		id, StatusCancelled, StatusConfirmed)
	if err != nil {
		return fmt.Errorf("bookings: cancel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetCalendarEventID records the external calendar event backing a booking.
func (r *Repository) SetCalendarEventID(ctx context.Context, id uuid.UUID, eventID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE bookings SET calendar_event_id = $2 WHERE id = $1`, id, eventID)
	if err != nil {
		return fmt.Errorf("bookings: set calendar event: %w", err)
	}
	return nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.ServiceID, &b.ServiceName, &b.Date, &b.StartMinute,
		&b.DurationMinutes, &b.ClientName, &b.ClientEmail, &b.Status,
		&b.CalendarEventID, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
