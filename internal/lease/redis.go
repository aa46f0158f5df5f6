package lease

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps leases in Redis under a namespace prefix, using SETNX
// with expiry so insert-if-absent is atomic on the server.
type RedisStore struct {
	Redis     redis.UniversalClient
	Namespace string
}

func NewRedisStore(namespace string, redisCl redis.UniversalClient) *RedisStore {
	return &RedisStore{
		Namespace: namespace,
		Redis:     redisCl,
	}
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.Redis.Exists(ctx, s.Namespace+":"+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.Redis.SetNX(ctx, s.Namespace+":"+key, value, ttl).Result()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.Redis.Del(ctx, s.Namespace+":"+key).Err()
}
