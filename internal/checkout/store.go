package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"ticketflow/internal/shared/constants"
)

// ErrSessionNotFound is returned when a checkout session does not exist or
// its reservation window has elapsed.
var ErrSessionNotFound = errors.New("checkout session not found or expired")

// SessionStore persists checkout sessions for the lifetime of their hold.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, sessionID uuid.UUID) (*Session, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

type redisSessionStore struct {
	redis *redis.Client
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(redisClient *redis.Client) SessionStore {
	return &redisSessionStore{redis: redisClient}
}

// Save writes the session with a TTL matching what is left of its
// reservation window, so the stored session can never outlive its hold.
func (s *redisSessionStore) Save(ctx context.Context, session *Session) error {
	ttl := session.RemainingTTL(time.Now())
	if ttl <= 0 {
		return ErrSessionNotFound
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout session: %w", err)
	}

	key := constants.CheckoutSessionKey(session.ID.String())
	if err := s.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store checkout session: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Get(ctx context.Context, sessionID uuid.UUID) (*Session, error) {
	key := constants.CheckoutSessionKey(sessionID.String())
	data, err := s.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkout session: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}
	return &session, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	key := constants.CheckoutSessionKey(sessionID.String())
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete checkout session: %w", err)
	}
	return nil
}
