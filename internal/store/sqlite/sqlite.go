package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shfq/lovechat-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	text       TEXT NOT NULL DEFAULT '',
	image_url  TEXT NOT NULL DEFAULT '',
	sender     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_messages_created ON messages(created_at);
`

// SQLiteStore implements store.MessageStore for SQLite.
//
// The AUTOINCREMENT primary key is the single source of ordering truth: the
// database assigns ids atomically, so concurrent Append calls from multiple
// goroutines can never produce duplicate or out-of-order ids.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and bootstraps the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply an alternative schema or seed data.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; this also makes id
	// assignment a strict serialization point.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Append persists a new message and returns the full persisted record.
func (s *SQLiteStore) Append(ctx context.Context, text, imageURL, sender string) (*store.Message, error) {
	query := `
		INSERT INTO messages (text, image_url, sender)
		VALUES (?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, text, imageURL, sender)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.getByID(ctx, id)
}

// Recent returns the last limit messages in ascending id order.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]*store.Message, error) {
	if limit <= 0 {
		return []*store.Message{}, nil
	}

	query := `
		SELECT id, text, image_url, sender, created_at
		FROM messages
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*store.Message, 0, limit)
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(&msg.ID, &msg.Text, &msg.ImageURL, &msg.Sender, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	// Query selects newest-first; callers want oldest-first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (s *SQLiteStore) getByID(ctx context.Context, id int64) (*store.Message, error) {
	query := `
		SELECT id, text, image_url, sender, created_at
		FROM messages
		WHERE id = ?
	`
	var msg store.Message
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID,
		&msg.Text,
		&msg.ImageURL,
		&msg.Sender,
		&msg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("message not found: %w", err)
		}
		return nil, fmt.Errorf("query message: %w", err)
	}

	return &msg, nil
}
