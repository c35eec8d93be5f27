package session

import (
	"context"
	"sync"
	"time"

	"presale/internal/auth/models"
	id "presale/pkg/domain"
	"presale/pkg/platform/sentinel"
)

// InMemorySessionStore is the development session store. Expired sessions are
// kept until DeleteSessionsByUser; callers check Session.IsUsable.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*models.Session
}

func New() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[id.SessionID]*models.Session)}
}

func (s *InMemorySessionStore) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return sentinel.ErrConflict
	}
	c := *session
	s.sessions[session.ID] = &c
	return nil
}

func (s *InMemorySessionStore) FindByID(_ context.Context, sessionID id.SessionID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[sessionID]; ok {
		c := *sess
		return &c, nil
	}
	return nil, sentinel.ErrNotFound
}

// ListByUser returns the user's sessions, newest first.
func (s *InMemorySessionStore) ListByUser(_ context.Context, userID id.UserID) ([]*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			c := *sess
			out = append(out, &c)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemorySessionStore) RevokeSessionIfActive(_ context.Context, sessionID id.SessionID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !sess.ApplyRevocation(now) {
		return ErrSessionRevoked
	}
	return nil
}

func (s *InMemorySessionStore) DeleteSessionsByUser(_ context.Context, userID id.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for sessionID, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, sessionID)
			n++
		}
	}
	return n, nil
}
