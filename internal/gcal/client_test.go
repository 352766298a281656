package gcal

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/mkarlsen/bookline/internal/bookings"
	"github.com/mkarlsen/bookline/internal/schedule"
)

type fakeEvents struct {
	listed    []*calendar.Event
	listErr   error
	inserted  []*calendar.Event
	deleteErr error
	deleted   []string
}

func (f *fakeEvents) List(context.Context, string, time.Time, time.Time) ([]*calendar.Event, error) {
	return f.listed, f.listErr
}

func (f *fakeEvents) Insert(_ context.Context, _ string, ev *calendar.Event) (*calendar.Event, error) {
	f.inserted = append(f.inserted, ev)
	return &calendar.Event{Id: "evt-123"}, nil
}

func (f *fakeEvents) Delete(_ context.Context, _ string, eventID string) error {
	f.deleted = append(f.deleted, eventID)
	return f.deleteErr
}

func timed(start, end string) *calendar.Event {
	return &calendar.Event{
		Start: &calendar.EventDateTime{DateTime: start},
		End:   &calendar.EventDateTime{DateTime: end},
	}
}

func TestBusyIntervalsNormalizesEvents(t *testing.T) {
	date := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	fake := &fakeEvents{listed: []*calendar.Event{
		timed("2026-03-02T10:00:00Z", "2026-03-02T11:00:00Z"),
		{Status: "cancelled", Start: &calendar.EventDateTime{DateTime: "2026-03-02T12:00:00Z"},
			End: &calendar.EventDateTime{DateTime: "2026-03-02T13:00:00Z"}},
		{Transparency: "transparent", Start: &calendar.EventDateTime{DateTime: "2026-03-02T14:00:00Z"},
			End: &calendar.EventDateTime{DateTime: "2026-03-02T15:00:00Z"}},
	}}
	c := newClient(Config{}, fake, nil)

	busy, err := c.BusyIntervals(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, []schedule.BusyInterval{{Start: 600, End: 660}}, busy)
}

func TestBusyIntervalsAllDayBlocksWholeDay(t *testing.T) {
	date := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	fake := &fakeEvents{listed: []*calendar.Event{
		{Start: &calendar.EventDateTime{Date: "2026-03-02"},
			End: &calendar.EventDateTime{Date: "2026-03-03"}},
	}}
	c := newClient(Config{}, fake, nil)

	busy, err := c.BusyIntervals(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, []schedule.BusyInterval{{Start: 0, End: 1440}}, busy)
}

func TestInsertBookingBuildsEvent(t *testing.T) {
	fake := &fakeEvents{}
	c := newClient(Config{CalendarID: "work"}, fake, nil)

	b := &bookings.Booking{
		Date:            time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		StartMinute:     570,
		DurationMinutes: 45,
		ServiceName:     "Haircut",
		ClientName:      "Ana",
		ClientEmail:     "ana@example.com",
	}
	id, err := c.InsertBooking(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, "evt-123", id)

	require.Len(t, fake.inserted, 1)
	ev := fake.inserted[0]
	assert.Equal(t, "Haircut - Ana", ev.Summary)
	assert.Equal(t, "2026-03-02T09:30:00Z", ev.Start.DateTime)
	assert.Equal(t, "2026-03-02T10:15:00Z", ev.End.DateTime)
}

func TestDeleteEventTolerates404(t *testing.T) {
	fake := &fakeEvents{deleteErr: &googleapi.Error{Code: 404}}
	c := newClient(Config{}, fake, nil)
	assert.NoError(t, c.DeleteEvent(context.Background(), "gone"))

	fake.deleteErr = &googleapi.Error{Code: 500}
	assert.Error(t, c.DeleteEvent(context.Background(), "boom"))
}

func TestTokenStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewTokenStore(rdb)
	ctx := context.Background()

	_, err := store.Token(ctx)
	assert.ErrorIs(t, err, ErrNoToken)

	tok := &oauth2.Token{AccessToken: "abc", RefreshToken: "def",
		Expiry: time.Now().Add(time.Hour).UTC()}
	require.NoError(t, store.Save(ctx, tok))

	got, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.AccessToken)
	assert.Equal(t, "def", got.RefreshToken)

	require.NoError(t, store.Delete(ctx))
	_, err = store.Token(ctx)
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestPersistingSourcePersistsRefreshedToken(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewTokenStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	p := &persistingSource{
		ctx:   ctx,
		store: store,
		src:   oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "fresh"}),
		last:  &oauth2.Token{AccessToken: "stale"},
	}
	tok, err := p.Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)

	saved, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fresh", saved.AccessToken)
}

func TestPersistingSourceSurvivesSaveFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewTokenStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	mr.Close()

	p := &persistingSource{
		ctx:   context.Background(),
		store: store,
		src:   oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "fresh"}),
		last:  &oauth2.Token{AccessToken: "stale"},
	}
	tok, err := p.Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)
	// The failed save keeps last unchanged, so the next refresh retries it.
	assert.Equal(t, "stale", p.last.AccessToken)
}
