package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Persona is the assistant's configurable identity, one per conversation.
type Persona struct {
	Name string
	Role string
	Tone string
}

// DefaultPersona is what a conversation gets before the user customizes
// anything; the dispatch loop must never see a partially defined persona.
func DefaultPersona() Persona {
	return Persona{
		Name: "하루",
		Role: "개인 비서",
		Tone: "친근한 말투",
	}
}

// Persona returns the stored persona, or the defaults if none is set.
func (s *Store) Persona(ctx context.Context, conversationID string) (Persona, error) {
	var p Persona
	err := s.db.QueryRowContext(ctx,
		"SELECT name, role, tone FROM personas WHERE conversation_id = ?",
		conversationID).Scan(&p.Name, &p.Role, &p.Tone)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultPersona(), nil
	}
	if err != nil {
		return Persona{}, fmt.Errorf("failed to query persona: %w", err)
	}

	return p, nil
}

func (s *Store) SetPersona(ctx context.Context, conversationID string, p Persona) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO personas (conversation_id, name, role, tone)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(conversation_id) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			tone = excluded.tone`,
		conversationID, p.Name, p.Role, p.Tone)
	if err != nil {
		return fmt.Errorf("failed to set persona: %w", err)
	}

	return nil
}

func (s *Store) ClearPersona(ctx context.Context, conversationID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM personas WHERE conversation_id = ?", conversationID)
	if err != nil {
		return fmt.Errorf("failed to clear persona: %w", err)
	}

	return nil
}
