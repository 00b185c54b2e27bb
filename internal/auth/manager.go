package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hamed0406/healthchecker/internal/repo"
)

const (
	DefaultSessionTTL = 24 * time.Hour
	MinPasswordLength = 6
)

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Manager ties user accounts to sessions.
type Manager struct {
	Logger   *zap.Logger
	Users    repo.UserStore
	Sessions SessionStore
	TTL      time.Duration
	// Cost is the bcrypt cost for new hashes; zero means bcrypt.DefaultCost.
	Cost int

	now func() time.Time
}

func NewManager(logger *zap.Logger, users repo.UserStore, sessions SessionStore, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{Logger: logger, Users: users, Sessions: sessions, TTL: ttl, now: time.Now}
}

func (m *Manager) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}

// Login verifies the credentials and opens a session. Unknown users and bad
// passwords both yield ErrInvalidCredentials.
func (m *Manager) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}
	u, err := m.Users.GetByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		m.Logger.Info("login_failed", zap.String("username", username))
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		m.Logger.Info("login_failed", zap.String("username", username))
		return Session{}, ErrInvalidCredentials
	}

	now := m.clock().UTC()
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Username:  u.Username,
		LoginTime: now,
		ExpiresAt: now.Add(m.TTL),
	}
	if err := m.Sessions.Save(ctx, sess); err != nil {
		return Session{}, err
	}
	m.Logger.Info("login_ok", zap.String("username", u.Username))
	return sess, nil
}

func (m *Manager) Logout(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return m.Sessions.Delete(ctx, id)
}

// Lookup returns the live session for id.
func (m *Manager) Lookup(ctx context.Context, id string) (Session, error) {
	if id == "" {
		return Session{}, ErrSessionNotFound
	}
	sess, err := m.Sessions.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if sess.Expired(m.clock()) {
		_ = m.Sessions.Delete(ctx, id)
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

// ChangePassword replaces the password of userID after checking the
// confirmation, the minimum length and the current password, in that order.
func (m *Manager) ChangePassword(ctx context.Context, userID int64, current, next, confirm string) error {
	if next != confirm {
		return ErrPasswordMismatch
	}
	if len(next) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	u, err := m.Users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return ErrWrongPassword
	}
	hash, err := HashPassword(next, m.Cost)
	if err != nil {
		return err
	}
	if err := m.Users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	m.Logger.Info("password_changed", zap.String("username", u.Username))
	return nil
}
