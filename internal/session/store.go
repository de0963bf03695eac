// Package session holds per-client login state. The process itself stays
// stateless so restarts never log anyone out.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound reports a missing or expired session.
var ErrNotFound = errors.New("session not found")

// State is the finite session state per §combined login flow: a logged-in
// agent plus the flag gating the finish confirmation step. Absence of a
// State is the logged-out state.
type State struct {
	ID               string `json:"id"`
	Agent            string `json:"agent"`
	ConfirmingFinish bool   `json:"confirming_finish"`
}

// Store persists session state keyed by session ID.
type Store interface {
	Put(ctx context.Context, state State, ttl time.Duration) error
	Get(ctx context.Context, id string) (*State, error)
	Delete(ctx context.Context, id string) error
}

type redisStore struct {
	client *redis.Client
}

// NewRedisStore builds a Store over a Redis client.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Put(ctx context.Context, state State, ttl time.Duration) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(state.ID), data, ttl).Err()
}

func (s *redisStore) Get(ctx context.Context, id string) (*State, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// memoryStore backs tests and single-instance deployments without Redis.
type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

type memoryEntry struct {
	state     State
	expiresAt time.Time
}

// NewMemoryStore builds an in-process Store.
func NewMemoryStore() Store {
	return &memoryStore{
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (s *memoryStore) Put(_ context.Context, state State, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[state.ID] = memoryEntry{state: state, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok || s.now().After(entry.expiresAt) {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}
	state := entry.state
	return &state, nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
