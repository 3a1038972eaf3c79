package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Reminder is created by the reminder tool and consumed by the scheduler.
// remind_at is stored as UTC RFC3339 so lexicographic comparison in SQL
// matches chronological order.
type Reminder struct {
	ID             int64
	ConversationID string
	Content        string
	RemindAt       time.Time
	Recurrence     string // "", "daily", "weekday", "weekly:<0-6>"
	Delivered      bool
	CreatedAt      time.Time
}

func (s *Store) AddReminder(ctx context.Context, conversationID, content string, remindAt time.Time, recurrence string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO reminders (conversation_id, content, remind_at, recurrence) VALUES (?, ?, ?, ?)",
		conversationID, content, remindAt.UTC().Format(time.RFC3339), recurrence)
	if err != nil {
		return 0, fmt.Errorf("failed to add reminder: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get reminder id: %w", err)
	}

	return id, nil
}

// ListReminders returns pending reminders of one conversation, soonest first.
func (s *Store) ListReminders(ctx context.Context, conversationID string) ([]Reminder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, content, remind_at, recurrence, delivered, created_at
		FROM reminders
		WHERE conversation_id = ? AND delivered = 0
		ORDER BY remind_at ASC, id ASC`,
		conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	return scanReminders(rows)
}

// DueReminders returns every undelivered reminder due at or before now,
// ordered by due time then creation order.
func (s *Store) DueReminders(ctx context.Context, now time.Time) ([]Reminder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, content, remind_at, recurrence, delivered, created_at
		FROM reminders
		WHERE delivered = 0 AND remind_at <= ?
		ORDER BY remind_at ASC, id ASC`,
		now.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}
	defer rows.Close()

	return scanReminders(rows)
}

// MarkDelivered flips the delivered flag, but only if it is still unset.
// Returns false when another poll already claimed the row.
func (s *Store) MarkDelivered(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE reminders SET delivered = 1 WHERE id = ? AND delivered = 0", id)
	if err != nil {
		return false, fmt.Errorf("failed to mark reminder delivered: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return n > 0, nil
}

// RescheduleReminder moves a recurring reminder to its next occurrence,
// conditional on the current due time so concurrent polls cannot double-fire.
func (s *Store) RescheduleReminder(ctx context.Context, id int64, current, next time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE reminders SET remind_at = ? WHERE id = ? AND remind_at = ? AND delivered = 0",
		next.UTC().Format(time.RFC3339), id, current.UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("failed to reschedule reminder: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return n > 0, nil
}

// DeleteReminder removes a reminder owned by the conversation.
func (s *Store) DeleteReminder(ctx context.Context, conversationID string, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM reminders WHERE id = ? AND conversation_id = ?",
		id, conversationID)
	if err != nil {
		return false, fmt.Errorf("failed to delete reminder: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return n > 0, nil
}

func (s *Store) CountPendingReminders(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reminders WHERE delivered = 0").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reminders: %w", err)
	}

	return count, nil
}

// NextOccurrence computes when a recurring reminder fires again.
func NextOccurrence(remindAt time.Time, recurrence string) time.Time {
	switch {
	case recurrence == "daily":
		return remindAt.AddDate(0, 0, 1)

	case recurrence == "weekday":
		next := remindAt.AddDate(0, 0, 1)
		for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
			next = next.AddDate(0, 0, 1)
		}
		return next

	case strings.HasPrefix(recurrence, "weekly:"):
		return remindAt.AddDate(0, 0, 7)

	default:
		return remindAt.AddDate(0, 0, 1)
	}
}

// RecurrenceLabel renders a recurrence for display.
func RecurrenceLabel(recurrence string) string {
	switch {
	case recurrence == "":
		return ""
	case recurrence == "daily":
		return "매일"
	case recurrence == "weekday":
		return "평일"
	case strings.HasPrefix(recurrence, "weekly:"):
		names := []string{"월", "화", "수", "목", "금", "토", "일"}
		if n, err := strconv.Atoi(strings.TrimPrefix(recurrence, "weekly:")); err == nil && n >= 0 && n < len(names) {
			return "매주 " + names[n] + "요일"
		}
	}
	return recurrence
}

func scanReminders(rows *sql.Rows) ([]Reminder, error) {
	var reminders []Reminder

	for rows.Next() {
		var (
			r        Reminder
			remindAt string
		)
		if err := rows.Scan(&r.ID, &r.ConversationID, &r.Content, &remindAt, &r.Recurrence, &r.Delivered, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}

		t, err := time.Parse(time.RFC3339, remindAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse remind_at: %w", err)
		}
		r.RemindAt = t

		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reminders: %w", err)
	}

	return reminders, nil
}
