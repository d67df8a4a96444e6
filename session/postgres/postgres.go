package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"github.com/skillscout/skillscout/models"
)

// Store persists conversation history in Postgres across two tables:
// agent_sessions holds one row per session id, agent_messages holds the
// ordered item log. The BIGSERIAL id breaks ties when created_at collides
// at the storage timestamp resolution.
type Store struct {
	DB     *sql.DB
	logger *log.Logger
}

func New(db *sql.DB, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(log.Writer(), "[SESSION] ", log.LstdFlags)
	}
	return &Store{DB: db, logger: logger}
}

// NewWithDSN opens a connection pool and verifies it.
func NewWithDSN(ctx context.Context, dsn string, logger *log.Logger) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return New(db, logger), nil
}

// Ensure creates the session row if absent. Safe to call repeatedly and
// concurrently for the same id.
func (s *Store) Ensure(ctx context.Context, sessionID string) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO agent_sessions (session_id) VALUES ($1) ON CONFLICT (session_id) DO NOTHING`,
		sessionID)
	if err != nil {
		return fmt.Errorf("ensure session %s: %w", sessionID, err)
	}
	return nil
}

// GetItems returns the session's items oldest-first. With limit > 0 it
// fetches the newest limit rows and reverses them before returning.
func (s *Store) GetItems(ctx context.Context, sessionID string, limit int) ([]models.Item, error) {
	q := `SELECT id, message_data, created_at FROM agent_messages WHERE session_id=$1 ORDER BY created_at DESC, id DESC`
	args := []interface{}{sessionID}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		s.logger.Printf("get items for %s: %v", sessionID, err)
		return nil, fmt.Errorf("get items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var it models.Item
		if err := rows.Scan(&it.ID, &it.Data, &it.CreatedAt); err != nil {
			s.logger.Printf("scan item for %s: %v", sessionID, err)
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.SessionID = sessionID
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		s.logger.Printf("iterate items for %s: %v", sessionID, err)
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	// Rows arrive newest-first; flip to chronological order.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

// AddItems appends items as one transaction and bumps the session's
// last-modified marker. Empty input is a no-op.
func (s *Store) AddItems(ctx context.Context, sessionID string, items []models.Item) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Printf("add items for %s: %v", sessionID, err)
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, it := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO agent_messages (session_id, message_data) VALUES ($1, $2)`,
			sessionID, []byte(it.Data)); err != nil {
			s.logger.Printf("insert item for %s: %v", sessionID, err)
			return fmt.Errorf("insert item: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE agent_sessions SET updated_at=NOW() WHERE session_id=$1`, sessionID); err != nil {
		s.logger.Printf("touch session %s: %v", sessionID, err)
		return fmt.Errorf("touch session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		s.logger.Printf("commit items for %s: %v", sessionID, err)
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// PopItem removes and returns the most recently inserted item.
func (s *Store) PopItem(ctx context.Context, sessionID string) (*models.Item, error) {
	var it models.Item
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, message_data, created_at FROM agent_messages WHERE session_id=$1 ORDER BY created_at DESC, id DESC LIMIT 1`,
		sessionID).Scan(&it.ID, &it.Data, &it.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.Printf("pop item for %s: %v", sessionID, err)
		return nil, fmt.Errorf("pop item: %w", err)
	}
	it.SessionID = sessionID
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM agent_messages WHERE id=$1`, it.ID); err != nil {
		s.logger.Printf("delete popped item %d: %v", it.ID, err)
		return nil, fmt.Errorf("delete popped item: %w", err)
	}
	return &it, nil
}

// Clear deletes all items and the session row; a subsequent Ensure
// recreates a fresh empty session.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM agent_messages WHERE session_id=$1`, sessionID); err != nil {
		s.logger.Printf("clear messages for %s: %v", sessionID, err)
		return fmt.Errorf("clear messages: %w", err)
	}
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM agent_sessions WHERE session_id=$1`, sessionID); err != nil {
		s.logger.Printf("clear session %s: %v", sessionID, err)
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
