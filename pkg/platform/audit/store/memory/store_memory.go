// Package memory keeps the audit trail in process memory. It backs the admin
// audit views when no durable sink is configured.
package memory

import (
	"context"
	"slices"
	"sync"

	id "presale/pkg/domain"
	audit "presale/pkg/platform/audit"
)

type InMemoryStore struct {
	mu  sync.RWMutex
	log []audit.Event
	// byUser holds offsets into log.
	byUser map[id.UserID][]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byUser: make(map[id.UserID][]int)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[event.UserID] = append(s.byUser[event.UserID], len(s.log))
	s.log = append(s.log, event)
	return nil
}

// ListByUser returns the user's events oldest first.
func (s *InMemoryStore) ListByUser(_ context.Context, userID id.UserID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	offsets := s.byUser[userID]
	out := make([]audit.Event, 0, len(offsets))
	for _, i := range offsets {
		out = append(out, s.log[i])
	}
	return out, nil
}

// ListRecent returns up to limit events in append order, newest last.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		return []audit.Event{}, nil
	}
	start := max(len(s.log)-limit, 0)
	return slices.Clone(s.log[start:]), nil
}

// Len reports how many events have been recorded.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.log)
}
