// Package store is the single source of truth for everything haru persists:
// conversation turns, summaries, reminders, personas and memos. All state
// lives in one sqlite file; nothing survives in memory across restarts.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"haru/app/config"

	"github.com/samber/do"
	_ "modernc.org/sqlite"
)

var _ do.Shutdownable = (*Store)(nil)

type Store struct {
	db *sql.DB
}

func New(di *do.Injector) (*Store, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return Open(cfg.DB.Path)
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// modernc sqlite does not tolerate concurrent writers on one connection pool
	// without this; the scheduler and dispatch loops write concurrently.
	if _, err = db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}

	s := &Store{db: db}
	if err = s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_turns_conversation ON turns(conversation_id, id);

	CREATE TABLE IF NOT EXISTS summaries (
		conversation_id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		turn_count INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS reminders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT NOT NULL,
		content TEXT NOT NULL,
		remind_at TEXT NOT NULL,
		recurrence TEXT NOT NULL DEFAULT '',
		delivered INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders(delivered, remind_at, id);

	CREATE TABLE IF NOT EXISTS personas (
		conversation_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		tone TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS briefing_settings (
		conversation_id TEXT PRIMARY KEY,
		enabled INTEGER NOT NULL DEFAULT 1,
		time TEXT NOT NULL DEFAULT '08:00',
		city TEXT NOT NULL DEFAULT '서울',
		last_sent TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS memos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_memos_conversation ON memos(conversation_id, id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Ping() error {
	return s.db.Ping()
}

func (s *Store) Shutdown() error {
	return s.db.Close()
}
