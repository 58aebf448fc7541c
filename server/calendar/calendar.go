// Package calendar defines the calendar backend boundary: listing a
// window of events, creating, moving and deleting them. The production
// implementation talks to the Google Calendar REST API.
package calendar

import (
	"context"
	"time"
)

// Window bounds for candidate lookups: recently past events can still be
// deleted or referenced, far-future ones can be moved.
const (
	windowPast   = 30 * 24 * time.Hour
	windowFuture = 365 * 24 * time.Hour
)

// Event is a calendar entry as the rest of the system sees it.
type Event struct {
	ID     string
	Title  string
	Start  time.Time
	End    time.Time
	AllDay bool
}

// CreateEventRequest describes a new event. For all-day events Start and
// End are midnight-aligned and only their dates are sent to the backend.
type CreateEventRequest struct {
	Title  string
	Start  time.Time
	End    time.Time
	AllDay bool
	// ReminderLead, when positive, replaces the backend's default
	// notification with a popup this long before the event. Ignored for
	// all-day events.
	ReminderLead time.Duration
}

// Service is the calendar backend contract.
type Service interface {
	// ListEvents returns events starting within [from, to), expanded to
	// single instances and ordered by start time.
	ListEvents(ctx context.Context, from, to time.Time) ([]Event, error)
	// CreateEvent inserts a new event and returns it with the assigned ID.
	CreateEvent(ctx context.Context, req CreateEventRequest) (Event, error)
	// MoveEvent reschedules an existing event.
	MoveEvent(ctx context.Context, eventID string, newStart, newEnd time.Time) (Event, error)
	// DeleteEvent removes an event.
	DeleteEvent(ctx context.Context, eventID string) error
}

// ResolveWindow is the lookup range used when disambiguating which event
// a move or delete refers to.
func ResolveWindow(now time.Time) (from, to time.Time) {
	return now.Add(-windowPast), now.Add(windowFuture)
}
