package repos

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"marketflow/internal/domain"
)

const redisOpTimeout = 2 * time.Second

// RedisRepo keeps session documents in redis with no expiry.
type RedisRepo struct {
	client *redis.Client
	prefix string
}

func NewRedisRepo(client *redis.Client, prefix string) *RedisRepo {
	return &RedisRepo{client: client, prefix: prefix}
}

func (r *RedisRepo) Load(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *RedisRepo) Save(key string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	return r.client.Set(ctx, r.prefix+key, data, 0).Err()
}
