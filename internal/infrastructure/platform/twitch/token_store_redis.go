package twitch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisTokenKey = "clipgate:twitch:app_token"

// RedisTokenStore shares the app token between replicas through Redis.
// Failures degrade to per-process caching, never to request failures.
type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

type storedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *RedisTokenStore) Load(ctx context.Context) (string, time.Time, bool) {
	data, err := s.client.Get(ctx, redisTokenKey).Result()
	if err != nil {
		return "", time.Time{}, false
	}
	var tok storedToken
	if err := json.Unmarshal([]byte(data), &tok); err != nil {
		return "", time.Time{}, false
	}
	return tok.Token, tok.ExpiresAt, true
}

func (s *RedisTokenStore) Save(ctx context.Context, token string, expiresAt time.Time) error {
	data, err := json.Marshal(storedToken{Token: token, ExpiresAt: expiresAt})
	if err != nil {
		return err
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, redisTokenKey, data, ttl).Err()
}
