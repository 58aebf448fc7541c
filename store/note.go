package store

import (
	"context"
)

// Note is a free-form text note dictated or typed by the owner.
type Note struct {
	ID        int32
	UID       string
	CreatedTs int64
	Content   string
}

// FindNote is the find condition for note.
type FindNote struct {
	ID  *int32
	UID *string

	// Pagination
	Limit  *int
	Offset *int
}

// DeleteNote is the delete request for note.
type DeleteNote struct {
	ID int32
}

// CreateNote creates a new note.
func (s *Store) CreateNote(ctx context.Context, create *Note) (*Note, error) {
	return s.driver.CreateNote(ctx, create)
}

// ListNotes lists notes with filter, newest first.
func (s *Store) ListNotes(ctx context.Context, find *FindNote) ([]*Note, error) {
	return s.driver.ListNotes(ctx, find)
}

// DeleteNote deletes a note.
func (s *Store) DeleteNote(ctx context.Context, delete *DeleteNote) error {
	return s.driver.DeleteNote(ctx, delete)
}
