// Package services manages the bookable service offerings.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a service does not exist.
var ErrNotFound = errors.New("services: not found")

// Service is a bookable offering configured by the admin.
type Service struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"duration_minutes"`
	PriceCents      int       `json:"price_cents"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides persistence for service offerings.
type Repository struct {
	db DB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("services: db required")
	}
	return &Repository{db: db}
}

const serviceColumns = "id, name, duration_minutes, price_cents, active, created_at, updated_at"

// Create inserts a new offering.
func (r *Repository) Create(ctx context.Context, name string, durationMinutes, priceCents int) (*Service, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("services: duration must be positive, got %d", durationMinutes)
	}
	svc := &Service{
		ID:              uuid.New(),
		Name:            name,
		DurationMinutes: durationMinutes,
		PriceCents:      priceCents,
		Active:          true,
	}
	row := r.db.QueryRow(ctx,
		`INSERT INTO services (id, name, duration_minutes, price_cents, active)
		 VALUES ($1, $2, $3, $4, TRUE)
		 RETURNING created_at, updated_at`,
		svc.ID, svc.Name, svc.DurationMinutes, svc.PriceCents)
	if err := row.Scan(&svc.CreatedAt, &svc.UpdatedAt); err != nil {
		return nil, fmt.Errorf("services: insert: %w", err)
	}
	return svc, nil
}

// Update changes an offering's name, duration or price.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name string, durationMinutes, priceCents int) error {
	if durationMinutes <= 0 {
		return fmt.Errorf("services: duration must be positive, got %d", durationMinutes)
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE services SET name = $2, duration_minutes = $3, price_cents = $4, updated_at = now()
		 WHERE id = $1`,
		id, name, durationMinutes, priceCents)
	if err != nil {
		return fmt.Errorf("services: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate hides an offering from the booking page without deleting history.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE services SET active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("services: deactivate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID loads one offering.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Service, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = $1`, id)
	svc, err := scanService(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("services: get: %w", err)
	}
	return svc, nil
}

// ListActive returns the offerings shown on the booking page.
func (r *Repository) ListActive(ctx context.Context) ([]Service, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("services: list active: %w", err)
	}
	defer rows.Close()
	return collectServices(rows)
}

// ListAll returns every offering, active or not, for the admin screen.
func (r *Repository) ListAll(ctx context.Context) ([]Service, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+serviceColumns+` FROM services ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("services: list all: %w", err)
	}
	defer rows.Close()
	return collectServices(rows)
}

func scanService(row pgx.Row) (*Service, error) {
	var svc Service
	err := row.Scan(&svc.ID, &svc.Name, &svc.DurationMinutes, &svc.PriceCents,
		&svc.Active, &svc.CreatedAt, &svc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func collectServices(rows pgx.Rows) ([]Service, error) {
	var out []Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("services: scan: %w", err)
		}
		out = append(out, *svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("services: rows: %w", err)
	}
	return out, nil
}
