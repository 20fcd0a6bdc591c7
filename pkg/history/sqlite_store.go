package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/killallgit/ada/pkg/chat"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    role TEXT NOT NULL CHECK (role IN ('user', 'assistant', 'system')),
    content TEXT NOT NULL,
    created_at TEXT NOT NULL,
    sequence INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_session_id ON messages(session_id, sequence);

CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT
);
`

const currentSessionKey = "current_session"

// SQLiteStore keeps the history of the current session in a SQLite database.
type SQLiteStore struct {
	db        *sql.DB
	sessionID string
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.resolveSession(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) resolveSession() error {
	var id string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, currentSessionKey).Scan(&id)
	switch {
	case err == nil:
		s.sessionID = id
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("read current session: %w", err)
	}

	id = uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO sessions (id, created_at, updated_at) VALUES (?, ?, ?)`, id, now, now); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO metadata (key, value) VALUES (?, ?)`, currentSessionKey, id); err != nil {
		return fmt.Errorf("store current session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	s.sessionID = id
	return nil
}

func (s *SQLiteStore) SessionID() string {
	return s.sessionID
}

func (s *SQLiteStore) Load() ([]chat.Message, error) {
	rows, err := s.db.Query(`SELECT role, content, created_at FROM messages WHERE session_id = ? ORDER BY sequence`, s.sessionID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := []chat.Message{}
	for rows.Next() {
		var msg chat.Message
		var created string
		if err := rows.Scan(&msg.Role, &msg.Content, &created); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			msg.Timestamp = ts
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

// Save rewrites the session's rows in one transaction.
func (s *SQLiteStore) Save(messages []chat.Message) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages WHERE session_id = ?`, s.sessionID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO messages (session_id, role, content, created_at, sequence) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, msg := range messages {
		ts := msg.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		if _, err := stmt.Exec(s.sessionID, msg.Role, msg.Content, ts.UTC().Format(time.RFC3339Nano), i); err != nil {
			return fmt.Errorf("insert message %d: %w", i, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.Exec(`UPDATE sessions SET updated_at = ? WHERE id = ?`, now, s.sessionID); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit messages: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
