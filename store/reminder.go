package store

import (
	"context"
)

// Reminder is the persisted form of a scheduled event reminder.
type Reminder struct {
	ID           int32
	UID          string
	CreatedTs    int64
	EventID      string
	Message      string
	FireTs       int64
	EventStartTs int64
	Status       string
	SentTs       *int64
}

// FindReminder is the find condition for reminder.
type FindReminder struct {
	ID      *int32
	UID     *string
	EventID *string
	Status  *string

	// FireBefore keeps reminders whose fire time is at or before the
	// given unix timestamp.
	FireBefore *int64

	// Pagination
	Limit  *int
	Offset *int
}

// UpdateReminder is the update request for reminder.
type UpdateReminder struct {
	ID     int32
	Status *string
	FireTs *int64
	SentTs *int64
}

// DeleteReminder is the delete request for reminder.
type DeleteReminder struct {
	ID int32
}

// CreateReminder creates a new reminder.
func (s *Store) CreateReminder(ctx context.Context, create *Reminder) (*Reminder, error) {
	return s.driver.CreateReminder(ctx, create)
}

// ListReminders lists reminders with filter.
func (s *Store) ListReminders(ctx context.Context, find *FindReminder) ([]*Reminder, error) {
	return s.driver.ListReminders(ctx, find)
}

// GetReminder gets a reminder by uid.
func (s *Store) GetReminder(ctx context.Context, find *FindReminder) (*Reminder, error) {
	list, err := s.driver.ListReminders(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateReminder updates a reminder.
func (s *Store) UpdateReminder(ctx context.Context, update *UpdateReminder) error {
	return s.driver.UpdateReminder(ctx, update)
}

// DeleteReminder deletes a reminder.
func (s *Store) DeleteReminder(ctx context.Context, delete *DeleteReminder) error {
	return s.driver.DeleteReminder(ctx, delete)
}
