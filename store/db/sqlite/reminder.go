package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/AntonV666/neyro-secretar/store"
)

func (d *DB) CreateReminder(ctx context.Context, create *store.Reminder) (*store.Reminder, error) {
	fields := []string{"uid", "event_id", "message", "fire_ts", "event_start_ts", "status"}
	placeholderValues := []any{
		create.UID, create.EventID, create.Message,
		create.FireTs, create.EventStartTs, create.Status,
	}

	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		placeholderValues = append(placeholderValues, create.CreatedTs)
	}

	stmt := `INSERT INTO reminder (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	return create, nil
}

func (d *DB) ListReminders(ctx context.Context, find *store.FindReminder) ([]*store.Reminder, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "reminder.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "reminder.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.EventID; v != nil {
		where, args = append(where, "reminder.event_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "reminder.status = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.FireBefore; v != nil {
		where, args = append(where, "reminder.fire_ts <= "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `SELECT id, uid, created_ts, event_id, message, fire_ts, event_start_ts, status, sent_ts
		FROM reminder
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY fire_ts ASC, id ASC`
	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
		if find.Offset != nil {
			query += fmt.Sprintf(" OFFSET %d", *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	list := []*store.Reminder{}
	for rows.Next() {
		var reminder store.Reminder
		if err := rows.Scan(
			&reminder.ID,
			&reminder.UID,
			&reminder.CreatedTs,
			&reminder.EventID,
			&reminder.Message,
			&reminder.FireTs,
			&reminder.EventStartTs,
			&reminder.Status,
			&reminder.SentTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		list = append(list, &reminder)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (d *DB) UpdateReminder(ctx context.Context, update *store.UpdateReminder) error {
	set, args := []string{}, []any{}

	if v := update.Status; v != nil {
		set, args = append(set, "status = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.FireTs; v != nil {
		set, args = append(set, "fire_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.SentTs; v != nil {
		set, args = append(set, "sent_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if len(set) == 0 {
		return nil
	}

	stmt := `UPDATE reminder SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)+1)
	args = append(args, update.ID)

	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	return nil
}

func (d *DB) DeleteReminder(ctx context.Context, delete *store.DeleteReminder) error {
	stmt := `DELETE FROM reminder WHERE id = ?`
	if _, err := d.db.ExecContext(ctx, stmt, delete.ID); err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	return nil
}
