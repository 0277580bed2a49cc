// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session keeps research sessions in process memory. Sessions live
// until the process exits; nothing expires or deletes them.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/research-assistant/internal/vectorstore"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Session is the result of one research run.
type Session struct {
	ID          string
	Query       string
	Collection  *vectorstore.Collection
	ReadingPlan []types.ProcessedPaper
	CreatedAt   time.Time
}

// Store maps session ids to sessions. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create stores a new session under a fresh random id and returns it.
func (s *Store) Create(query string, col *vectorstore.Collection, plan []types.ProcessedPaper) *Session {
	sess := &Session{
		ID:          uuid.NewString(),
		Query:       query,
		Collection:  col,
		ReadingPlan: plan,
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return sess
}

// Get returns the session with id or an error wrapping types.ErrNotFound.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, types.ErrNotFound)
	}
	return sess, nil
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
