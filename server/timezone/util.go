// Package timezone provides timezone utilities for the assistant.
//
// This package handles timezone conversions, parsing, and formatting
// to ensure consistent time handling across the application.
package timezone

import (
	"fmt"
	"time"
)

// UTC is the coordinated universal time timezone.
var UTC = time.UTC

// ParseTimezone parses an IANA timezone identifier (e.g., "Europe/Moscow").
// If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// MustParseTimezone parses a timezone or panics if invalid.
// Use this for constants that are known to be valid at compile time.
func MustParseTimezone(tz string) *time.Location {
	loc, err := ParseTimezone(tz)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	if tz == "" || tz == "UTC" {
		return true
	}

	_, err := time.LoadLocation(tz)
	return err == nil
}

// Display formats used in user-facing messages.
const (
	// DateFormat is the Russian short date layout.
	DateFormat = "02.01.2006"
	// DateTimeFormat is the Russian date and clock layout.
	DateTimeFormat = "02.01.2006 15:04"
	// TimeFormat is the bare clock layout.
	TimeFormat = "15:04"
)

// FormatEventTime formats an event's time for display.
// Rules:
//   - All-day event: "02.01.2006"
//   - With distinct end time: "02.01.2006 15:04 - 16:00"
//   - Otherwise: "02.01.2006 15:04"
func FormatEventTime(start, end time.Time, allDay bool, tz *time.Location) string {
	if tz == nil {
		tz = UTC
	}
	startTime := start.In(tz)

	if allDay {
		return startTime.Format(DateFormat)
	}

	if !end.IsZero() && !end.Equal(start) {
		return fmt.Sprintf("%s - %s",
			startTime.Format(DateTimeFormat),
			end.In(tz).Format(TimeFormat))
	}

	return startTime.Format(DateTimeFormat)
}

// StartOfDay returns the start of the day (00:00:00) in the given timezone.
func StartOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	local := t.In(tz)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, tz)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in the given timezone.
func EndOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	local := t.In(tz)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999999999, tz)
}
