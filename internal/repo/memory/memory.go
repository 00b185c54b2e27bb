package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hamed0406/healthchecker/internal/domain"
	"github.com/hamed0406/healthchecker/internal/repo"
)

// Store keeps services and users in process memory. Used when no
// DATABASE_URL is configured and in tests.
type Store struct {
	mu        sync.RWMutex
	services  map[domain.ServiceID]domain.Service
	users     map[int64]domain.User
	nextSvcID domain.ServiceID
	nextUser  int64
}

func New() *Store {
	return &Store{
		services: make(map[domain.ServiceID]domain.Service),
		users:    make(map[int64]domain.User),
	}
}

func (m *Store) Ping(ctx context.Context) error { return ctx.Err() }

// ---- ServiceStore ----

func (m *Store) List(ctx context.Context) ([]domain.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Service, 0, len(m.services))
	for _, s := range m.services {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *Store) Get(ctx context.Context, id domain.ServiceID) (domain.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.services[id]
	if !ok {
		return domain.Service{}, fmt.Errorf("service %d: %w", id, repo.ErrNotFound)
	}
	return s, nil
}

func (m *Store) Create(ctx context.Context, s *domain.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	m.nextSvcID++
	s.ID = m.nextSvcID
	s.CreatedAt, s.UpdatedAt = now, now
	m.services[s.ID] = *s
	return nil
}

func (m *Store) Update(ctx context.Context, id domain.ServiceID, p domain.ServicePatch) (domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.services[id]
	if !ok {
		return domain.Service{}, fmt.Errorf("service %d: %w", id, repo.ErrNotFound)
	}
	if p.Empty() {
		return s, nil
	}
	p.Apply(&s)
	s.UpdatedAt = time.Now().UTC()
	m.services[id] = s
	return s, nil
}

func (m *Store) Delete(ctx context.Context, id domain.ServiceID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.services[id]; !ok {
		return fmt.Errorf("service %d: %w", id, repo.ErrNotFound)
	}
	delete(m.services, id)
	return nil
}

// ---- UserStore ----

func (m *Store) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("user %q: %w", username, repo.ErrNotFound)
}

func (m *Store) GetByID(ctx context.Context, id int64) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("user %d: %w", id, repo.ErrNotFound)
	}
	return u, nil
}

func (m *Store) CreateUser(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return fmt.Errorf("user %q: %w", u.Username, repo.ErrConflict)
		}
	}
	m.nextUser++
	u.ID = m.nextUser
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	m.users[u.ID] = *u
	return nil
}

func (m *Store) UpdatePassword(ctx context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, repo.ErrNotFound)
	}
	u.PasswordHash = hash
	m.users[id] = u
	return nil
}
