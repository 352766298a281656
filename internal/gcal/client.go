// Package gcal mirrors bookings into Google Calendar and pulls external
// events back as busy time for the availability engine.
package gcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/mkarlsen/bookline/internal/bookings"
	"github.com/mkarlsen/bookline/internal/schedule"
	"github.com/mkarlsen/bookline/pkg/logging"
)

// Config holds the calendar integration settings.
type Config struct {
	CalendarID   string // defaults to "primary"
	FetchTimeout time.Duration
}

// Client talks to one Google calendar.
type Client struct {
	events       eventsAPI
	calendarID   string
	fetchTimeout time.Duration
	logger       *logging.Logger
}

// eventsAPI is the slice of the calendar service the client uses.
type eventsAPI interface {
	List(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]*calendar.Event, error)
	Insert(ctx context.Context, calendarID string, ev *calendar.Event) (*calendar.Event, error)
	Delete(ctx context.Context, calendarID, eventID string) error
}

// NewClient builds a calendar client authorized by the given token source.
func NewClient(ctx context.Context, cfg Config, ts oauth2.TokenSource, logger *logging.Logger) (*Client, error) {
	svc, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("gcal: create service: %w", err)
	}
	return newClient(cfg, &googleEvents{svc: svc}, logger), nil
}

func newClient(cfg Config, events eventsAPI, logger *logging.Logger) *Client {
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		events:       events,
		calendarID:   cfg.CalendarID,
		fetchTimeout: cfg.FetchTimeout,
		logger:       logger,
	}
}

// BusyIntervals lists the calendar events touching the given date and
// normalizes them into busy intervals. The date must be midnight in the
// business timezone. Cancelled and free (transparent) events do not count.
func (c *Client) BusyIntervals(ctx context.Context, date time.Time) ([]schedule.BusyInterval, error) {
	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	events, err := c.events.List(ctx, c.calendarID, date, date.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("gcal: list events: %w", err)
	}

	busy := make([]schedule.BusyInterval, 0, len(events))
	for _, ev := range events {
		if iv, ok := eventBusy(ev, date); ok {
			busy = append(busy, iv)
		}
	}
	return busy, nil
}

// InsertBooking creates a calendar event for the booking and returns its ID.
func (c *Client) InsertBooking(ctx context.Context, b *bookings.Booking) (string, error) {
	start := b.Date.Add(time.Duration(b.StartMinute) * time.Minute)
	end := start.Add(time.Duration(b.DurationMinutes) * time.Minute)

	ev := &calendar.Event{
		Summary:     fmt.Sprintf("%s - %s", b.ServiceName, b.ClientName),
		Description: fmt.Sprintf("Booked via Bookline\nClient: %s <%s>", b.ClientName, b.ClientEmail),
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}

	created, err := c.events.Insert(ctx, c.calendarID, ev)
	if err != nil {
		return "", fmt.Errorf("gcal: insert event: %w", err)
	}
	return created.Id, nil
}

// DeleteEvent removes a calendar event. A missing event is not an error; the
// goal state is reached either way.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	err := c.events.Delete(ctx, c.calendarID, eventID)
	if err == nil || isGone(err) {
		return nil
	}
	return fmt.Errorf("gcal: delete event %s: %w", eventID, err)
}

func isGone(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
	}
	return false
}

// googleEvents adapts the generated calendar service to eventsAPI.
type googleEvents struct {
	svc *calendar.Service
}

func (g *googleEvents) List(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	var out []*calendar.Event
	call := g.svc.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")
	pageToken := ""
	for {
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Context(ctx).Do()
		if err != nil {
			return nil, err
		}
		out = append(out, resp.Items...)
		if resp.NextPageToken == "" {
			return out, nil
		}
		pageToken = resp.NextPageToken
	}
}

func (g *googleEvents) Insert(ctx context.Context, calendarID string, ev *calendar.Event) (*calendar.Event, error) {
	return g.svc.Events.Insert(calendarID, ev).Context(ctx).Do()
}

func (g *googleEvents) Delete(ctx context.Context, calendarID, eventID string) error {
	return g.svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
}
