// Package reminder schedules and delivers event reminders to the owner.
package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Status of a reminder.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Reminder is a scheduled notification about one calendar event.
type Reminder struct {
	UID        string
	EventID    string
	Message    string
	FireAt     time.Time
	EventStart time.Time
	Status     Status
	CreatedAt  time.Time
	SentAt     *time.Time
}

// Store persists reminders.
type Store interface {
	Create(ctx context.Context, r *Reminder) error
	Get(ctx context.Context, uid string) (*Reminder, error)
	ListByEvent(ctx context.Context, eventID string) ([]*Reminder, error)
	ListDue(ctx context.Context, before time.Time) ([]*Reminder, error)
	Update(ctx context.Context, r *Reminder) error
	Delete(ctx context.Context, uid string) error
}

// Notifier delivers a reminder message to the owner.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// MemoryStore is an in-memory Store. The sqlite store replaces it in
// production; this one backs tests and ephemeral runs.
type MemoryStore struct {
	mu        sync.RWMutex
	reminders map[string]*Reminder
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reminders: make(map[string]*Reminder)}
}

func (s *MemoryStore) Create(ctx context.Context, r *Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reminders[r.UID]; exists {
		return errors.Errorf("reminder already exists: %s", r.UID)
	}
	cp := *r
	s.reminders[r.UID] = &cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, uid string) (*Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reminders[uid]
	if !ok {
		return nil, errors.Errorf("reminder not found: %s", uid)
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) ListByEvent(ctx context.Context, eventID string) ([]*Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Reminder
	for _, r := range s.reminders {
		if r.EventID == eventID {
			cp := *r
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (s *MemoryStore) ListDue(ctx context.Context, before time.Time) ([]*Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Reminder
	for _, r := range s.reminders {
		if r.Status == StatusPending && !r.FireAt.After(before) {
			cp := *r
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (s *MemoryStore) Update(ctx context.Context, r *Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reminders[r.UID]; !exists {
		return errors.Errorf("reminder not found: %s", r.UID)
	}
	cp := *r
	s.reminders[r.UID] = &cp
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reminders[uid]; !exists {
		return errors.Errorf("reminder not found: %s", uid)
	}
	delete(s.reminders, uid)
	return nil
}
