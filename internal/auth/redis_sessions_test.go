package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSessions_RoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set; skipping Redis integration test")
	}
	ctx := context.Background()
	s, err := NewRedisSessions(ctx, url)
	require.NoError(t, err)
	defer s.Close()

	sess := Session{
		ID:        uuid.NewString(),
		UserID:    1,
		Username:  "admin",
		LoginTime: time.Now().UTC().Truncate(time.Second),
		ExpiresAt: time.Now().Add(time.Minute).UTC().Truncate(time.Second),
	}
	require.NoError(t, s.Save(ctx, sess))

	got, err := s.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.Username, got.Username)
	assert.True(t, sess.LoginTime.Equal(got.LoginTime))

	require.NoError(t, s.Delete(ctx, sess.ID))
	_, err = s.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
