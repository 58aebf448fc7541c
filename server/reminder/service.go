package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/AntonV666/neyro-secretar/server/calendar"
)

// Service creates reminders for calendar events and dispatches the due
// ones to the notifier.
type Service struct {
	store    Store
	notifier Notifier
	lead     time.Duration
	timezone *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a reminder service with the given default lead time.
func NewService(store Store, notifier Notifier, lead time.Duration, timezone *time.Location) *Service {
	if lead <= 0 {
		lead = 15 * time.Minute
	}
	return &Service{
		store:    store,
		notifier: notifier,
		lead:     lead,
		timezone: timezone,
		logger:   slog.Default(),
		now:      time.Now,
	}
}

// WithNow returns a copy of the service pinned to a fixed clock. Used by
// tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	cp := *s
	cp.now = now
	return &cp
}

// CreateForEvent schedules a reminder lead-time before the event start.
// When the lead has already elapsed (the event is sooner than the lead,
// or already started) the reminder fires at the next sweep instead of
// being dropped.
func (s *Service) CreateForEvent(ctx context.Context, ev calendar.Event) (*Reminder, error) {
	now := s.now()
	fireAt := ev.Start.Add(-s.lead)
	if fireAt.Before(now) {
		fireAt = now
	}

	r := &Reminder{
		UID:        shortuuid.New(),
		EventID:    ev.ID,
		Message:    fmt.Sprintf("🔔 Напоминание: «%s» (в %s)", ev.Title, ev.Start.In(s.timezone).Format("15:04")),
		FireAt:     fireAt,
		EventStart: ev.Start,
		Status:     StatusPending,
		CreatedAt:  now,
	}

	if err := s.store.Create(ctx, r); err != nil {
		return nil, errors.Wrap(err, "create reminder")
	}
	return r, nil
}

// CancelByEvent cancels pending reminders of a moved or deleted event.
func (s *Service) CancelByEvent(ctx context.Context, eventID string) error {
	reminders, err := s.store.ListByEvent(ctx, eventID)
	if err != nil {
		return errors.Wrap(err, "list reminders")
	}

	for _, r := range reminders {
		if r.Status != StatusPending {
			continue
		}
		r.Status = StatusCancelled
		if err := s.store.Update(ctx, r); err != nil {
			return errors.Wrapf(err, "cancel reminder %s", r.UID)
		}
	}
	return nil
}

// ProcessDue sends every pending reminder whose fire time has passed and
// returns how many were delivered.
func (s *Service) ProcessDue(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.store.ListDue(ctx, now)
	if err != nil {
		return 0, errors.Wrap(err, "list due reminders")
	}

	sent := 0
	for _, r := range due {
		if err := s.notifier.Notify(ctx, r.Message); err != nil {
			s.logger.Error("reminder delivery failed", "uid", r.UID, "err", err)
			r.Status = StatusFailed
			_ = s.store.Update(ctx, r)
			continue
		}

		r.Status = StatusSent
		sentAt := now
		r.SentAt = &sentAt
		if err := s.store.Update(ctx, r); err != nil {
			s.logger.Error("reminder state update failed", "uid", r.UID, "err", err)
			continue
		}
		sent++
	}
	return sent, nil
}
