package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepository(mock), mock
}

func TestCreateBooking(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Now().UTC()
	b := &Booking{
		ID:              uuid.New(),
		ServiceID:       uuid.New(),
		ServiceName:     "Haircut",
		Date:            time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		StartMinute:     570,
		DurationMinutes: 45,
		ClientName:      "Ana",
		ClientEmail:     "ana@example.com",
	}

	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(b.ID, b.ServiceID, b.ServiceName, b.Date, b.StartMinute,
			b.DurationMinutes, b.ClientName, b.ClientEmail, StatusConfirmed).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))

	require.NoError(t, repo.Create(context.Background(), b))
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, created, b.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListForDateOrdersByStart(t *testing.T) {
	repo, mock := newMockRepo(t)
	date := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM bookings").
		WithArgs(date, StatusConfirmed).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "service_id", "service_name", "booking_date", "start_minute",
			"duration_minutes", "client_name", "client_email", "status",
			"calendar_event_id", "created_at",
		}).
			AddRow(uuid.New(), uuid.New(), "Haircut", date, 540, 45, "Ana", "a@x.com", StatusConfirmed, "", now).
			AddRow(uuid.New(), uuid.New(), "Color", date, 660, 90, "Bo", "b@x.com", StatusConfirmed, "evt-2", now))

	list, err := repo.ListForDate(context.Background(), date)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 540, list[0].StartMinute)
	assert.Equal(t, "evt-2", list[1].CalendarEventID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(id, StatusCancelled, StatusConfirmed).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Cancel(context.Background(), id)
	assert.True(t, errors.Is(err, ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetCalendarEventID(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE bookings SET calendar_event_id").
		WithArgs(id, "evt-42").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.SetCalendarEventID(context.Background(), id, "evt-42"))
	require.NoError(t, mock.ExpectationsWereMet())
}
