package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// BriefingSettings controls the daily briefing of one conversation.
// Time is a local "HH:MM" clock; LastSent is the "2006-01-02" day the
// briefing last went out, so it fires at most once per day.
type BriefingSettings struct {
	ConversationID string
	Enabled        bool
	Time           string
	City           string
	LastSent       string
}

func DefaultBriefingSettings() BriefingSettings {
	return BriefingSettings{
		Enabled: true,
		Time:    "08:00",
		City:    "서울",
	}
}

// BriefingSettings returns the stored settings, or the defaults if none are set.
func (s *Store) BriefingSettings(ctx context.Context, conversationID string) (BriefingSettings, error) {
	b := BriefingSettings{ConversationID: conversationID}
	err := s.db.QueryRowContext(ctx,
		"SELECT enabled, time, city, last_sent FROM briefing_settings WHERE conversation_id = ?",
		conversationID).Scan(&b.Enabled, &b.Time, &b.City, &b.LastSent)
	if errors.Is(err, sql.ErrNoRows) {
		b = DefaultBriefingSettings()
		b.ConversationID = conversationID
		return b, nil
	}
	if err != nil {
		return BriefingSettings{}, fmt.Errorf("failed to query briefing settings: %w", err)
	}

	return b, nil
}

func (s *Store) SetBriefingSettings(ctx context.Context, b BriefingSettings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO briefing_settings (conversation_id, enabled, time, city, last_sent)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(conversation_id) DO UPDATE SET
			enabled = excluded.enabled,
			time = excluded.time,
			city = excluded.city,
			last_sent = excluded.last_sent`,
		b.ConversationID, b.Enabled, b.Time, b.City, b.LastSent)
	if err != nil {
		return fmt.Errorf("failed to set briefing settings: %w", err)
	}

	return nil
}

// DueBriefings returns every enabled briefing whose clock time has passed
// today and that has not been sent today yet.
func (s *Store) DueBriefings(ctx context.Context, now time.Time) ([]BriefingSettings, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT conversation_id, enabled, time, city, last_sent FROM briefing_settings
		WHERE enabled = 1 AND time <= ? AND last_sent < ?
		ORDER BY conversation_id`,
		now.Format("15:04"), now.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query due briefings: %w", err)
	}
	defer rows.Close()

	var due []BriefingSettings
	for rows.Next() {
		var b BriefingSettings
		if err = rows.Scan(&b.ConversationID, &b.Enabled, &b.Time, &b.City, &b.LastSent); err != nil {
			return nil, fmt.Errorf("failed to scan briefing settings: %w", err)
		}
		due = append(due, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read briefing settings: %w", err)
	}

	return due, nil
}

// MarkBriefingSent records today as the last send day, but only if it has
// not been recorded yet. Returns false when another poll already claimed it.
func (s *Store) MarkBriefingSent(ctx context.Context, conversationID string, now time.Time) (bool, error) {
	day := now.Format("2006-01-02")

	res, err := s.db.ExecContext(ctx,
		"UPDATE briefing_settings SET last_sent = ? WHERE conversation_id = ? AND last_sent < ?",
		day, conversationID, day)
	if err != nil {
		return false, fmt.Errorf("failed to mark briefing sent: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return n > 0, nil
}
