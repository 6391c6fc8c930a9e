package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	s := NewMemorySessionStore(time.Minute)
	ctx := context.Background()

	err := s.Create(ctx, "abc", &Session{ID: "abc", Topic: "diabetes"})
	require.NoError(t, err)

	got, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "diabetes", got.Topic)
	assert.Nil(t, got.Quiz)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemorySessionStore(time.Minute)

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_CreateOverwrites(t *testing.T) {
	s := NewMemorySessionStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, "abc", &Session{ID: "abc", Topic: "asthma", Summary: "old"}))
	require.NoError(t, s.Create(ctx, "abc", &Session{ID: "abc", Topic: "diabetes"}))

	got, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "diabetes", got.Topic)
	assert.Empty(t, got.Summary, "create must replace, not merge")
}

func TestMemoryStore_UpdateMergesOverCurrentState(t *testing.T) {
	s := NewMemorySessionStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, "abc", &Session{ID: "abc", Topic: "diabetes"}))

	_, err := s.Update(ctx, "abc", func(sess *Session) {
		sess.Summary = "a short summary"
	})
	require.NoError(t, err)

	got, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "diabetes", got.Topic, "earlier fields survive an update")
	assert.Equal(t, "a short summary", got.Summary)
}

func TestMemoryStore_UpdateOnMissingStartsEmpty(t *testing.T) {
	s := NewMemorySessionStore(time.Minute)
	ctx := context.Background()

	updated, err := s.Update(ctx, "fresh", func(sess *Session) {
		sess.Topic = "hypertension"
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", updated.ID)
	assert.Equal(t, "hypertension", updated.Topic)
}

func TestMemoryStore_DeleteIsIdempotent(t *testing.T) {
	s := NewMemorySessionStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, "abc", &Session{ID: "abc", Topic: "flu"}))
	require.NoError(t, s.Delete(ctx, "abc"))
	require.NoError(t, s.Delete(ctx, "abc"))

	_, err := s.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_SessionExpiresAfterTTL(t *testing.T) {
	s := NewMemorySessionStore(30 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, "abc", &Session{ID: "abc", Topic: "flu"}))

	time.Sleep(60 * time.Millisecond)

	_, err := s.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound, "idle session must vanish after the TTL window")
}

func TestMemoryStore_ReadRefreshesTTL(t *testing.T) {
	s := NewMemorySessionStore(80 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, "abc", &Session{ID: "abc", Topic: "flu"}))

	// Keep touching the session at intervals shorter than the TTL.
	for i := 0; i < 4; i++ {
		time.Sleep(40 * time.Millisecond)
		_, err := s.Get(ctx, "abc")
		require.NoError(t, err, "read %d should have refreshed the expiry", i)
	}
}

func TestMemoryStore_GetReturnsIndependentCopy(t *testing.T) {
	s := NewMemorySessionStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, "abc", &Session{ID: "abc", Topic: "flu"}))

	first, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	first.Topic = "scribbled over"

	second, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "flu", second.Topic)
}
