package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemorySessionStore keeps sessions in process memory with real TTL
// semantics. It backs local development without Redis and the test suite.
// Values are stored JSON-encoded so callers always get an independent copy,
// matching the Redis implementation. A single mutex serializes updates, so
// the lost-update race cannot occur within one process.
type MemorySessionStore struct {
	cache *cache.Cache
	ttl   time.Duration
	mu    sync.Mutex
}

var _ ISessionStore = (*MemorySessionStore)(nil)

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultTTLSeconds * time.Second
	}
	cleanup := ttl
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &MemorySessionStore{
		cache: cache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

func (s *MemorySessionStore) Create(ctx context.Context, id string, state *Session) error {
	if state == nil {
		state = &Session{ID: id}
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.cache.Set(sessionKey(id), data, s.ttl)
	return nil
}

func (s *MemorySessionStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, found := s.cache.Get(sessionKey(id))
	if !found {
		return nil, ErrSessionNotFound
	}
	var session Session
	if err := json.Unmarshal(raw.([]byte), &session); err != nil {
		return nil, ErrSessionNotFound
	}
	// Sliding expiry, same as the Redis store.
	s.cache.Set(sessionKey(id), raw, s.ttl)
	return &session, nil
}

func (s *MemorySessionStore) Update(ctx context.Context, id string, mutate func(*Session)) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := &Session{ID: id}
	if raw, found := s.cache.Get(sessionKey(id)); found {
		if err := json.Unmarshal(raw.([]byte), session); err != nil {
			session = &Session{ID: id}
		}
	}

	mutate(session)

	data, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}
	s.cache.Set(sessionKey(id), data, s.ttl)
	return session, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, id string) error {
	s.cache.Delete(sessionKey(id))
	return nil
}
