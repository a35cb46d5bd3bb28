package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-crm-session/storage"
	"github.com/redis/go-redis/v9"
)

var _ storage.Repo = (*RedisRepo)(nil)

// RedisRepo stores session keys as plain redis strings under "<namespace>:session:<key>".
// Keys carry no TTL; the session manager decides when they go away.
type RedisRepo struct {
	rdb       redis.UniversalClient
	namespace string
}

func NewRedisRepo(rdb redis.UniversalClient, namespace string) (*RedisRepo, error) {
	if rdb == nil {
		return nil, errors.New("redis client is required")
	}
	if namespace == "" {
		namespace = "crm"
	}
	return &RedisRepo{rdb: rdb, namespace: namespace}, nil
}

func (r *RedisRepo) key(k string) string {
	return r.namespace + ":session:" + k
}

func (r *RedisRepo) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return v, true, nil
}

func (r *RedisRepo) Set(ctx context.Context, key, value string) error {
	if err := r.rdb.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (r *RedisRepo) Remove(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}
