package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mkarlsen/bookline/internal/notify"
	"github.com/mkarlsen/bookline/internal/observability/metrics"
	"github.com/mkarlsen/bookline/internal/schedule"
	"github.com/mkarlsen/bookline/internal/services"
	"github.com/mkarlsen/bookline/internal/settings"
	"github.com/mkarlsen/bookline/pkg/logging"
)

var (
	// ErrSlotUnavailable means the requested start time is not bookable
	// under the current schedule and busy data.
	ErrSlotUnavailable = errors.New("bookings: slot unavailable")
	// ErrServiceInactive means the offering exists but is not bookable.
	ErrServiceInactive = errors.New("bookings: service inactive")
)

// SettingsSource yields the current scheduling configuration.
type SettingsSource interface {
	Get(ctx context.Context) (*settings.Settings, error)
}

// Catalog resolves service offerings.
type Catalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (*services.Service, error)
}

// BusySource reports externally-booked time for a date, already normalized
// to same-day busy intervals.
type BusySource interface {
	BusyIntervals(ctx context.Context, date time.Time) ([]schedule.BusyInterval, error)
}

// CalendarSync mirrors bookings into an external calendar.
type CalendarSync interface {
	InsertBooking(ctx context.Context, b *Booking) (eventID string, err error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// Service assembles a day's availability and books slots against it.
type Service struct {
	repo     *Repository
	settings SettingsSource
	catalog  Catalog
	external BusySource         // optional
	calendar CalendarSync       // optional
	email    notify.EmailSender // optional
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
	now      func() time.Time
	tracer   trace.Tracer
}

// NewService wires the booking service. external, calendar and email may be
// nil; sync and notification steps are then skipped.
func NewService(repo *Repository, settingsSrc SettingsSource, catalog Catalog,
	external BusySource, calendar CalendarSync, email notify.EmailSender,
	m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:     repo,
		settings: settingsSrc,
		catalog:  catalog,
		external: external,
		calendar: calendar,
		email:    email,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
		tracer:   otel.Tracer("bookline/bookings"),
	}
}

// WithClock overrides the service clock; used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// DayAvailability computes the bookable start times for a service on a date.
// The date is interpreted in the configured business timezone.
func (s *Service) DayAvailability(ctx context.Context, date time.Time, serviceID uuid.UUID) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "bookings.DayAvailability",
		trace.WithAttributes(attribute.String("date", schedule.DateKey(date))))
	defer span.End()

	slots, _, _, err := s.computeAvailability(ctx, date, serviceID)
	if err != nil {
		s.metrics.ObserveAvailability("error", 0)
		return nil, err
	}
	s.metrics.ObserveAvailability("ok", len(slots))
	return slots, nil
}

func (s *Service) computeAvailability(ctx context.Context, date time.Time, serviceID uuid.UUID) ([]string, *services.Service, time.Time, error) {
	var day time.Time

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, nil, day, fmt.Errorf("bookings: load settings: %w", err)
	}

	svc, err := s.catalog.GetByID(ctx, serviceID)
	if err != nil {
		return nil, nil, day, err
	}
	if !svc.Active {
		return nil, nil, day, ErrServiceInactive
	}

	loc := cfg.Location()
	day = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)

	booked, err := s.repo.ListForDate(ctx, day)
	if err != nil {
		return nil, nil, day, err
	}
	busy := make([]schedule.BusyInterval, 0, len(booked))
	for _, b := range booked {
		busy = append(busy, schedule.BusyFromBooking(b.StartMinute, b.DurationMinutes))
	}

	if s.external != nil {
		external, err := s.external.BusyIntervals(ctx, day)
		if err != nil {
			return nil, nil, day, fmt.Errorf("bookings: fetch external busy time: %w", err)
		}
		busy = append(busy, external...)
	}

	slots, err := schedule.AvailableStarts(schedule.SlotRequest{
		Date:      day,
		Duration:  svc.DurationMinutes,
		Interval:  cfg.SlotIntervalMinutes,
		Weekly:    cfg.Hours,
		Overrides: cfg.Overrides,
		Busy:      busy,
		Now:       s.now().In(loc),
	})
	if err != nil {
		return nil, nil, day, err
	}
	return slots, svc, day, nil
}

// BookRequest is a client's request to book one slot.
type BookRequest struct {
	ServiceID   uuid.UUID
	Date        time.Time
	StartMinute int
	ClientName  string
	ClientEmail string
}

// Book re-checks availability for the requested slot, persists the booking,
// then best-effort syncs the external calendar and emails a confirmation.
// Sync or email failures are logged and never undo the booking.
func (s *Service) Book(ctx context.Context, req BookRequest) (*Booking, error) {
	ctx, span := s.tracer.Start(ctx, "bookings.Book",
		trace.WithAttributes(
			attribute.String("date", schedule.DateKey(req.Date)),
			attribute.Int("start_minute", req.StartMinute),
		))
	defer span.End()

	slots, svc, day, err := s.computeAvailability(ctx, req.Date, req.ServiceID)
	if err != nil {
		s.metrics.ObserveBooking("error")
		return nil, err
	}

	want := schedule.FormatMinute(req.StartMinute)
	if !containsSlot(slots, want) {
		s.metrics.ObserveBooking("conflict")
		return nil, fmt.Errorf("%w: %s on %s", ErrSlotUnavailable, want, schedule.DateKey(req.Date))
	}

	b := &Booking{
		ID:              uuid.New(),
		ServiceID:       svc.ID,
		ServiceName:     svc.Name,
		Date:            day,
		StartMinute:     req.StartMinute,
		DurationMinutes: svc.DurationMinutes,
		ClientName:      req.ClientName,
		ClientEmail:     req.ClientEmail,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		s.metrics.ObserveBooking("error")
		return nil, err
	}
	s.metrics.ObserveBooking("confirmed")
	s.logger.Info("booking confirmed",
		"booking_id", b.ID,
		"service", b.ServiceName,
		"date", schedule.DateKey(b.Date),
		"start", want,
	)

	s.syncCalendar(ctx, b)
	s.sendConfirmation(ctx, b)
	return b, nil
}

// Cancel marks a booking cancelled and removes its external calendar event.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "bookings.Cancel")
	defer span.End()

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Cancel(ctx, id); err != nil {
		return err
	}
	s.metrics.ObserveBooking("cancelled")
	s.logger.Info("booking cancelled", "booking_id", id)

	if s.calendar != nil && b.CalendarEventID != "" {
		start := s.now()
		err := s.calendar.DeleteEvent(ctx, b.CalendarEventID)
		s.observeSync("delete", start, err)
		if err != nil {
			s.logger.Error("failed to delete calendar event",
				"booking_id", id, "event_id", b.CalendarEventID, "error", err)
		}
	}
	s.sendCancellation(ctx, b)
	return nil
}

// ListForDate returns the confirmed bookings on a date for the admin screen.
func (s *Service) ListForDate(ctx context.Context, date time.Time) ([]Booking, error) {
	return s.repo.ListForDate(ctx, date)
}

func (s *Service) syncCalendar(ctx context.Context, b *Booking) {
	if s.calendar == nil {
		return
	}
	start := s.now()
	eventID, err := s.calendar.InsertBooking(ctx, b)
	s.observeSync("insert", start, err)
	if err != nil {
		s.logger.Error("calendar sync failed", "booking_id", b.ID, "error", err)
		return
	}
	if err := s.repo.SetCalendarEventID(ctx, b.ID, eventID); err != nil {
		s.logger.Error("failed to record calendar event id", "booking_id", b.ID, "error", err)
		return
	}
	b.CalendarEventID = eventID
}

func (s *Service) sendConfirmation(ctx context.Context, b *Booking) {
	if s.email == nil || b.ClientEmail == "" {
		return
	}
	msg := notify.BookingConfirmation(b.ClientName, b.ClientEmail, b.ServiceName,
		schedule.DateKey(b.Date), schedule.FormatMinute(b.StartMinute))
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("confirmation email failed", "booking_id", b.ID, "error", err)
	}
}

func (s *Service) sendCancellation(ctx context.Context, b *Booking) {
	if s.email == nil || b.ClientEmail == "" {
		return
	}
	msg := notify.BookingCancellation(b.ClientName, b.ClientEmail, b.ServiceName,
		schedule.DateKey(b.Date), schedule.FormatMinute(b.StartMinute))
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("cancellation email failed", "booking_id", b.ID, "error", err)
	}
}

func (s *Service) observeSync(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.ObserveCalendarSync(operation, status, s.now().Sub(start).Seconds())
}

func containsSlot(slots []string, want string) bool {
	for _, s := range slots {
		if s == want {
			return true
		}
	}
	return false
}
