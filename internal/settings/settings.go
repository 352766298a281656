// Package settings persists the admin-owned scheduling configuration:
// timezone, slot granularity, weekly working hours and per-date overrides.
package settings

import (
	"fmt"
	"time"

	"github.com/mkarlsen/bookline/internal/schedule"
)

// Settings is the remote scheduling configuration for the business.
type Settings struct {
	Timezone            string               `json:"timezone"` // e.g. "America/New_York"
	SlotIntervalMinutes int                  `json:"slot_interval_minutes"`
	Hours               schedule.WeeklyHours `json:"hours"`
	Overrides           schedule.Overrides   `json:"overrides,omitempty"`
}

// Default returns the configuration used before the admin saves anything:
// open weekdays 9:00-18:00, closed weekends, 30-minute slots.
func Default() *Settings {
	weekday := schedule.HourRange{Start: 9 * 60, End: 18 * 60}
	var hours schedule.WeeklyHours
	for d := time.Monday; d <= time.Friday; d++ {
		h := weekday
		hours[int(d)] = &h
	}
	return &Settings{
		Timezone:            "America/New_York",
		SlotIntervalMinutes: 30,
		Hours:               hours,
		Overrides:           schedule.Overrides{},
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (s *Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate rejects configurations the availability engine would refuse.
func (s *Settings) Validate() error {
	if s.SlotIntervalMinutes <= 0 {
		return fmt.Errorf("settings: slot interval must be positive, got %d", s.SlotIntervalMinutes)
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("settings: invalid timezone %q: %w", s.Timezone, err)
	}
	for d, h := range s.Hours {
		if h == nil {
			continue
		}
		if err := validRange(*h); err != nil {
			return fmt.Errorf("settings: %s: %w", time.Weekday(d), err)
		}
	}
	for key, ov := range s.Overrides {
		if _, err := time.Parse(schedule.DateKeyFormat, key); err != nil {
			return fmt.Errorf("settings: override key %q is not a date: %w", key, err)
		}
		if ov.Hours != nil {
			if err := validRange(*ov.Hours); err != nil {
				return fmt.Errorf("settings: override %s: %w", key, err)
			}
		}
	}
	return nil
}

func validRange(h schedule.HourRange) error {
	if h.Start < 0 || h.End > 24*60 {
		return fmt.Errorf("hours [%d, %d) outside the day", h.Start, h.End)
	}
	if h.End <= h.Start {
		return fmt.Errorf("hours end %d not after start %d", h.End, h.Start)
	}
	return nil
}
