package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/skillscout/skillscout/models"
)

// Store keeps session logs in process memory. Used by the interactive CLI
// and tests; it mirrors the Postgres store's ordering contract with a
// monotonic sequence as the tie-break.
type Store struct {
	mu       sync.RWMutex
	sessions map[string][]models.Item
	seq      int64
}

func New() *Store {
	return &Store{sessions: make(map[string][]models.Item)}
}

func (s *Store) Ensure(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		s.sessions[sessionID] = nil
	}
	return nil
}

func (s *Store) GetItems(_ context.Context, sessionID string, limit int) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.sessions[sessionID]
	if limit > 0 && len(items) > limit {
		items = items[len(items)-limit:]
	}
	out := make([]models.Item, len(items))
	copy(out, items)
	return out, nil
}

func (s *Store) AddItems(_ context.Context, sessionID string, items []models.Item) error {
	if len(items) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, it := range items {
		s.seq++
		it.ID = s.seq
		it.SessionID = sessionID
		it.CreatedAt = now
		s.sessions[sessionID] = append(s.sessions[sessionID], it)
	}
	return nil
}

func (s *Store) PopItem(_ context.Context, sessionID string) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.sessions[sessionID]
	if len(items) == 0 {
		return nil, nil
	}
	it := items[len(items)-1]
	s.sessions[sessionID] = items[:len(items)-1]
	return &it, nil
}

func (s *Store) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
