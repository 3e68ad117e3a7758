package storage

import (
	"context"
	"sync"
	"time"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
)

type memoryEntry struct {
	session   *entities.QuizSession
	expiresAt time.Time
}

// MemoryStore provides in-memory storage for quiz sessions.
// Expired entries are invisible to readers and removed by PurgeExpired.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	byUser   map[int64]string
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates a new MemoryStore whose entries expire ttl after their last save.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		byUser:   make(map[int64]string),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Save stores a copy of the session and refreshes its expiry.
func (s *MemoryStore) Save(_ context.Context, session *entities.QuizSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = memoryEntry{
		session:   cloneSession(session),
		expiresAt: s.now().Add(s.ttl),
	}
	if isOpen(session) {
		s.byUser[session.UserID] = session.ID
	} else if s.byUser[session.UserID] == session.ID {
		delete(s.byUser, session.UserID)
	}

	return nil
}

// Get retrieves a session by ID.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (*entities.QuizSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[sessionID]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, ErrSessionNotFound
	}

	return cloneSession(e.session), nil
}

// GetActiveByUser retrieves the user's open session.
func (s *MemoryStore) GetActiveByUser(ctx context.Context, userID int64) (*entities.QuizSession, error) {
	s.mu.RLock()
	id, ok := s.byUser[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isOpen(session) {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	delete(s.sessions, sessionID)
	if s.byUser[e.session.UserID] == sessionID {
		delete(s.byUser, e.session.UserID)
	}

	return nil
}

// ListActive returns every open, unexpired session.
func (s *MemoryStore) ListActive(_ context.Context) ([]*entities.QuizSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	out := make([]*entities.QuizSession, 0, len(s.byUser))
	for _, id := range s.byUser {
		e, ok := s.sessions[id]
		if !ok || !now.Before(e.expiresAt) || !isOpen(e.session) {
			continue
		}
		out = append(out, cloneSession(e.session))
	}

	return out, nil
}

// PurgeExpired removes expired sessions and returns how many were dropped.
func (s *MemoryStore) PurgeExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	purged := 0
	for id, e := range s.sessions {
		if now.Before(e.expiresAt) {
			continue
		}
		delete(s.sessions, id)
		if s.byUser[e.session.UserID] == id {
			delete(s.byUser, e.session.UserID)
		}
		purged++
	}

	return purged, nil
}
