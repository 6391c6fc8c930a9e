package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// casRetries bounds the optimistic-concurrency loop in Update.
const casRetries = 5

// RedisSessionStore persists sessions as JSON values in Redis with a sliding
// TTL. Update runs a WATCH/MULTI transaction so two concurrent updates to the
// same session cannot silently clobber each other; the loser retries against
// the fresh state.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ISessionStore = (*RedisSessionStore)(nil)

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = DefaultTTLSeconds * time.Second
	}
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return KeyPrefix + id
}

// Create writes the state under id, unconditionally overwriting any previous
// record, and starts the TTL window.
func (s *RedisSessionStore) Create(ctx context.Context, id string, state *Session) error {
	if state == nil {
		state = &Session{ID: id}
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(id), data, s.ttl).Err(); err != nil {
		return &StoreUnavailableError{Err: err}
	}
	return nil
}

// Get returns the session or ErrSessionNotFound if the key is absent or
// expired. A successful read refreshes the TTL.
func (s *RedisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, &StoreUnavailableError{Err: err}
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		// An unreadable record is as good as gone.
		return nil, ErrSessionNotFound
	}

	// Sliding expiry: reads keep an active session alive.
	s.client.Expire(ctx, sessionKey(id), s.ttl)

	return &session, nil
}

// Update loads the current state (an empty session if absent), applies mutate
// and writes the result back with the TTL reset. The WATCH transaction aborts
// if another writer touched the key in between, in which case the whole cycle
// reruns with the new state.
func (s *RedisSessionStore) Update(ctx context.Context, id string, mutate func(*Session)) (*Session, error) {
	key := sessionKey(id)
	var updated *Session

	txn := func(tx *redis.Tx) error {
		session := &Session{ID: id}
		raw, err := tx.Get(ctx, key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			// Missing record defaults to an empty session.
		case err != nil:
			return err
		default:
			if uerr := json.Unmarshal([]byte(raw), session); uerr != nil {
				session = &Session{ID: id}
			}
		}

		mutate(session)

		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err == nil {
			updated = session
		}
		return err
	}

	var err error
	for i := 0; i < casRetries; i++ {
		err = s.client.Watch(ctx, txn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return nil, &StoreUnavailableError{Err: fmt.Errorf("update contention on %s: %w", id, err)}
		}
		return nil, &StoreUnavailableError{Err: err}
	}
	return updated, nil
}

// Delete removes the session immediately. Deleting an absent key is a no-op.
func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return &StoreUnavailableError{Err: err}
	}
	return nil
}
