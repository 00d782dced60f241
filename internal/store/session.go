// internal/store/session.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "yaya-jobs/internal/common/errors"
	"yaya-jobs/internal/models"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "ussd:session:"

// RedisSessionStore implements SessionStore over Redis. Sessions are JSON
// blobs with a TTL; the upstream gateway abandons sessions long before the
// TTL, so expiry is reclamation, not protocol.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// Get fetches a session by token, returning (nil, nil) when absent.
func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*models.UssdSession, error) {
	val, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewSessionLoadFailedError(sessionID, err)
	}

	var session models.UssdSession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, apperrors.NewSessionLoadFailedError(sessionID, err)
	}
	return &session, nil
}

// Create writes a new session record.
func (s *RedisSessionStore) Create(ctx context.Context, session *models.UssdSession) error {
	return s.write(ctx, session)
}

// Update persists a session's new step and data. Each write refreshes the
// TTL so an active dialog never expires mid-flow.
func (s *RedisSessionStore) Update(ctx context.Context, session *models.UssdSession) error {
	return s.write(ctx, session)
}

func (s *RedisSessionStore) write(ctx context.Context, session *models.UssdSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return apperrors.NewSessionSaveFailedError(session.SessionID, err)
	}
	if err := s.client.Set(ctx, sessionKey(session.SessionID), payload, s.ttl).Err(); err != nil {
		return apperrors.NewSessionSaveFailedError(session.SessionID, err)
	}
	return nil
}
