package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Turn is one message of a conversation. Insertion order is chronological
// and past turns are never mutated.
type Turn struct {
	Role      string
	Content   string
	CreatedAt time.Time
}

func (s *Store) AppendTurn(ctx context.Context, conversationID, role, content string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO turns (conversation_id, role, content) VALUES (?, ?, ?)",
		conversationID, role, content)
	if err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}

	return nil
}

// History returns the most recent limit turns in chronological order.
func (s *Store) History(ctx context.Context, conversationID string, limit int) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, created_at FROM turns
		WHERE conversation_id = ?
		ORDER BY id DESC
		LIMIT ?`,
		conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err = rows.Scan(&t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	// rows came newest first
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	return turns, nil
}

func (s *Store) CountTurns(ctx context.Context, conversationID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM turns WHERE conversation_id = ?",
		conversationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count turns: %w", err)
	}

	return count, nil
}

// CountAllTurns reports the total stored turns across every conversation.
func (s *Store) CountAllTurns(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM turns").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count turns: %w", err)
	}

	return count, nil
}

// DeleteOldTurns removes everything except the most recent keep turns.
func (s *Store) DeleteOldTurns(ctx context.Context, conversationID string, keep int) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM turns
		WHERE conversation_id = ? AND id NOT IN (
			SELECT id FROM turns WHERE conversation_id = ? ORDER BY id DESC LIMIT ?
		)`,
		conversationID, conversationID, keep)
	if err != nil {
		return fmt.Errorf("failed to delete old turns: %w", err)
	}

	return nil
}

func (s *Store) ClearHistory(ctx context.Context, conversationID string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM turns WHERE conversation_id = ?", conversationID); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM summaries WHERE conversation_id = ?", conversationID); err != nil {
		return fmt.Errorf("failed to clear summary: %w", err)
	}

	return nil
}

// Summary returns the persisted summary for a conversation, or "" if none.
func (s *Store) Summary(ctx context.Context, conversationID string) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx,
		"SELECT content FROM summaries WHERE conversation_id = ?",
		conversationID).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query summary: %w", err)
	}

	return content, nil
}

func (s *Store) SaveSummary(ctx context.Context, conversationID, content string, turnCount int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO summaries (conversation_id, content, turn_count, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(conversation_id) DO UPDATE SET
			content = excluded.content,
			turn_count = excluded.turn_count,
			updated_at = excluded.updated_at`,
		conversationID, content, turnCount)
	if err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}

	return nil
}
