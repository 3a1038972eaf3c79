package store

import (
	"context"
	"fmt"
	"time"
)

type Memo struct {
	ID        int64
	Content   string
	CreatedAt time.Time
}

func (s *Store) AddMemo(ctx context.Context, conversationID, content string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO memos (conversation_id, content) VALUES (?, ?)",
		conversationID, content)
	if err != nil {
		return 0, fmt.Errorf("failed to add memo: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get memo id: %w", err)
	}

	return id, nil
}

// Memos returns up to limit memos, newest first.
func (s *Store) Memos(ctx context.Context, conversationID string, limit int) ([]Memo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, created_at FROM memos
		WHERE conversation_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list memos: %w", err)
	}
	defer rows.Close()

	var memos []Memo
	for rows.Next() {
		var m Memo
		if err = rows.Scan(&m.ID, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan memo: %w", err)
		}
		memos = append(memos, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read memos: %w", err)
	}

	return memos, nil
}

func (s *Store) SearchMemos(ctx context.Context, conversationID, query string) ([]Memo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, created_at FROM memos
		WHERE conversation_id = ? AND content LIKE ?
		ORDER BY created_at DESC, id DESC`,
		conversationID, "%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search memos: %w", err)
	}
	defer rows.Close()

	var memos []Memo
	for rows.Next() {
		var m Memo
		if err = rows.Scan(&m.ID, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan memo: %w", err)
		}
		memos = append(memos, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read memos: %w", err)
	}

	return memos, nil
}

func (s *Store) DeleteMemo(ctx context.Context, conversationID string, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM memos WHERE id = ? AND conversation_id = ?",
		id, conversationID)
	if err != nil {
		return false, fmt.Errorf("failed to delete memo: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return n > 0, nil
}
