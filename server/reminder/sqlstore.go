package reminder

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/AntonV666/neyro-secretar/store"
)

// SQLStore persists reminders in the database.
type SQLStore struct {
	store *store.Store
}

// NewSQLStore wraps the raw store as a reminder Store.
func NewSQLStore(s *store.Store) *SQLStore {
	return &SQLStore{store: s}
}

func (s *SQLStore) Create(ctx context.Context, r *Reminder) error {
	row := &store.Reminder{
		UID:          r.UID,
		CreatedTs:    r.CreatedAt.Unix(),
		EventID:      r.EventID,
		Message:      r.Message,
		FireTs:       r.FireAt.Unix(),
		EventStartTs: r.EventStart.Unix(),
		Status:       string(r.Status),
	}
	_, err := s.store.CreateReminder(ctx, row)
	return err
}

func (s *SQLStore) Get(ctx context.Context, uid string) (*Reminder, error) {
	row, err := s.store.GetReminder(ctx, &store.FindReminder{UID: &uid})
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, errors.Errorf("reminder not found: %s", uid)
	}
	return fromRow(row), nil
}

func (s *SQLStore) ListByEvent(ctx context.Context, eventID string) ([]*Reminder, error) {
	rows, err := s.store.ListReminders(ctx, &store.FindReminder{EventID: &eventID})
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (s *SQLStore) ListDue(ctx context.Context, before time.Time) ([]*Reminder, error) {
	pending := string(StatusPending)
	beforeTs := before.Unix()
	rows, err := s.store.ListReminders(ctx, &store.FindReminder{
		Status:     &pending,
		FireBefore: &beforeTs,
	})
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (s *SQLStore) Update(ctx context.Context, r *Reminder) error {
	row, err := s.store.GetReminder(ctx, &store.FindReminder{UID: &r.UID})
	if err != nil {
		return err
	}
	if row == nil {
		return errors.Errorf("reminder not found: %s", r.UID)
	}

	status := string(r.Status)
	update := &store.UpdateReminder{ID: row.ID, Status: &status}
	if r.SentAt != nil {
		sentTs := r.SentAt.Unix()
		update.SentTs = &sentTs
	}
	return s.store.UpdateReminder(ctx, update)
}

func (s *SQLStore) Delete(ctx context.Context, uid string) error {
	row, err := s.store.GetReminder(ctx, &store.FindReminder{UID: &uid})
	if err != nil {
		return err
	}
	if row == nil {
		return errors.Errorf("reminder not found: %s", uid)
	}
	return s.store.DeleteReminder(ctx, &store.DeleteReminder{ID: row.ID})
}

func fromRow(row *store.Reminder) *Reminder {
	r := &Reminder{
		UID:        row.UID,
		EventID:    row.EventID,
		Message:    row.Message,
		FireAt:     time.Unix(row.FireTs, 0),
		EventStart: time.Unix(row.EventStartTs, 0),
		Status:     Status(row.Status),
		CreatedAt:  time.Unix(row.CreatedTs, 0),
	}
	if row.SentTs != nil {
		sentAt := time.Unix(*row.SentTs, 0)
		r.SentAt = &sentAt
	}
	return r
}

func fromRows(rows []*store.Reminder) []*Reminder {
	list := make([]*Reminder, 0, len(rows))
	for _, row := range rows {
		list = append(list, fromRow(row))
	}
	return list
}
