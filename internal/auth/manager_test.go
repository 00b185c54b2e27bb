package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hamed0406/healthchecker/internal/domain"
	"github.com/hamed0406/healthchecker/internal/repo/memory"
)

func newTestManager(t *testing.T) (*Manager, *memory.Store, domain.User) {
	t.Helper()
	store := memory.New()
	hash, err := HashPassword("secret", bcrypt.MinCost)
	require.NoError(t, err)
	u := domain.User{Username: "admin", PasswordHash: hash}
	require.NoError(t, store.CreateUser(context.Background(), &u))

	m := NewManager(zap.NewNop(), store, NewMemorySessions(), time.Hour)
	m.Cost = bcrypt.MinCost
	return m, store, u
}

func TestLogin_OK(t *testing.T) {
	m, _, u := newTestManager(t)
	ctx := context.Background()

	sess, err := m.Login(ctx, "admin", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, u.ID, sess.UserID)
	assert.Equal(t, "admin", sess.Username)

	got, err := m.Lookup(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
}

func TestLogin_BadCredentials(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	cases := []struct{ user, pass string }{
		{"admin", "wrong"},
		{"nobody", "secret"},
		{"", "secret"},
		{"admin", ""},
	}
	for _, c := range cases {
		_, err := m.Login(ctx, c.user, c.pass)
		assert.ErrorIs(t, err, ErrInvalidCredentials, "user=%q pass=%q", c.user, c.pass)
	}
}

func TestLogout_DropsSession(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	sess, err := m.Login(ctx, "admin", "secret")
	require.NoError(t, err)
	require.NoError(t, m.Logout(ctx, sess.ID))

	_, err = m.Lookup(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, m.Logout(ctx, ""))
}

func TestLookup_Expired(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	sess, err := m.Login(ctx, "admin", "secret")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.Lookup(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestChangePassword(t *testing.T) {
	m, _, u := newTestManager(t)
	ctx := context.Background()

	assert.ErrorIs(t, m.ChangePassword(ctx, u.ID, "secret", "abcdef", "abcdeg"), ErrPasswordMismatch)
	assert.ErrorIs(t, m.ChangePassword(ctx, u.ID, "secret", "abc", "abc"), ErrPasswordTooShort)
	assert.ErrorIs(t, m.ChangePassword(ctx, u.ID, "nope", "abcdef", "abcdef"), ErrWrongPassword)

	require.NoError(t, m.ChangePassword(ctx, u.ID, "secret", "abcdef", "abcdef"))

	_, err := m.Login(ctx, "admin", "secret")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	_, err = m.Login(ctx, "admin", "abcdef")
	assert.NoError(t, err)
}

func TestMemorySessions_Expiry(t *testing.T) {
	s := NewMemorySessions()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, Session{ID: "a", ExpiresAt: time.Now().Add(-time.Second)}))
	require.NoError(t, s.Save(ctx, Session{ID: "b", ExpiresAt: time.Now().Add(time.Hour)}))

	_, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.Get(ctx, "b")
	assert.NoError(t, err)
}
