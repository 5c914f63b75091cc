package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

type sessionRedisStore struct {
	client *redis.Client
}

// NewSessionRedisStore creates a SessionStore keeping each session as a Redis key
// that expires together with the session.
func NewSessionRedisStore(client *redis.Client) SessionStore {
	return &sessionRedisStore{client: client}
}

func (s *sessionRedisStore) FindCtx(ctx context.Context, token string) ([]byte, bool, error) {
	b, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, err
	}

	return b, true, nil
}

func (s *sessionRedisStore) CommitCtx(ctx context.Context, token string, b []byte, expiry time.Time) error {
	ttl := time.Until(expiry)
	if ttl <= 0 {
		return s.DeleteCtx(ctx, token)
	}

	return s.client.Set(ctx, sessionKeyPrefix+token, b, ttl).Err()
}

func (s *sessionRedisStore) DeleteCtx(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKeyPrefix+token).Err()
}

func (s *sessionRedisStore) Find(token string) ([]byte, bool, error) {
	return s.FindCtx(context.Background(), token)
}

func (s *sessionRedisStore) Commit(token string, b []byte, expiry time.Time) error {
	return s.CommitCtx(context.Background(), token, b, expiry)
}

func (s *sessionRedisStore) Delete(token string) error {
	return s.DeleteCtx(context.Background(), token)
}
