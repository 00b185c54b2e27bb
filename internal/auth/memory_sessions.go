package auth

import (
	"context"
	"sync"
	"time"
)

// MemorySessions keeps sessions in process memory. Expired entries are
// dropped when they are next read.
type MemorySessions struct {
	mu sync.Mutex
	m  map[string]Session
}

var _ SessionStore = (*MemorySessions)(nil)

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{m: make(map[string]Session)}
}

func (s *MemorySessions) Save(_ context.Context, sess Session) error {
	s.mu.Lock()
	s.m[sess.ID] = sess
	s.mu.Unlock()
	return nil
}

func (s *MemorySessions) Get(_ context.Context, id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if sess.Expired(time.Now()) {
		delete(s.m, id)
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

func (s *MemorySessions) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.m, id)
	s.mu.Unlock()
	return nil
}
