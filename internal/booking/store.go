package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("booking: session not found")

// Store persists sessions in Redis with a sliding TTL: every save renews the
// expiry, so a session dies only after the client goes quiet.
type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewStore creates a session store.
func NewStore(redisClient *redis.Client, ttl time.Duration) *Store {
	if redisClient == nil {
		panic("booking: redis client required")
	}
	if ttl <= 0 {
		ttl = 45 * time.Minute
	}
	return &Store{redis: redisClient, ttl: ttl}
}

func (s *Store) key(id string) string {
	return fmt.Sprintf("booking:session:%s", id)
}

// Save writes the session and renews its TTL.
func (s *Store) Save(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("booking: marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(session.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("booking: save session: %w", err)
	}
	return nil
}

// Get loads a session by id.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("booking: load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("booking: unmarshal session: %w", err)
	}
	if session.Configs == nil {
		session.Configs = map[string]*Config{}
	}
	if session.SelectedServices == nil {
		session.SelectedServices = []string{}
	}
	return &session, nil
}

// Delete removes a session, used once a submission succeeds.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("booking: delete session: %w", err)
	}
	return nil
}
