package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// KV is satisfied by every session document backend in this package.
type KV interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

const (
	StorageSQL    = "sql"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// OpenStorage picks the session document backend. The returned close func
// releases backend connections; it never closes db.
func OpenStorage(kind string, db *sqlx.DB, redisAddr string) (KV, func() error, error) {
	noop := func() error { return nil }
	switch kind {
	case "", StorageSQL:
		return NewKVRepo(db), noop, nil
	case StorageMemory:
		r, err := NewMemRepo()
		if err != nil {
			return nil, nil, err
		}
		return r, noop, nil
	case StorageRedis:
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis %s: %w", redisAddr, err)
		}
		return NewRedisRepo(client, ""), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage %q", kind)
	}
}
