package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const redisScanCount = 100

// RedisRepository stores a namespace as plain Redis string keys named
// "ns:<namespace>:<key>". It lets several client processes share one session.
type RedisRepository struct {
	client    redis.Cmdable
	namespace string
}

func NewRedisRepository(client redis.Cmdable, namespace string) *RedisRepository {
	return &RedisRepository{client: client, namespace: namespace}
}

func (r *RedisRepository) prefix() string { return "ns:" + r.namespace + ":" }

func (r *RedisRepository) key(k string) string { return r.prefix() + k }

func (r *RedisRepository) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s/%s]: %w", r.namespace, key, err)
	}
	return stored(v), nil
}

func (r *RedisRepository) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set metadata[%s/%s]: %w", r.namespace, key, err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete metadata[%s/%s]: %w", r.namespace, key, err)
	}
	return nil
}

func (r *RedisRepository) List(ctx context.Context) (map[string][]byte, error) {
	keys, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}
	result := make(map[string][]byte, len(keys))
	for _, full := range keys {
		v, err := r.client.Get(ctx, full).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list metadata[%s]: %w", r.namespace, err)
		}
		result[strings.TrimPrefix(full, r.prefix())] = stored(v)
	}
	return result, nil
}

func (r *RedisRepository) Clear(ctx context.Context) error {
	keys, err := r.scan(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear metadata[%s]: %w", r.namespace, err)
	}
	return nil
}

// Update queues the writes made by fn in a MULTI/EXEC block. Reads inside fn
// observe the state from before the transaction.
func (r *RedisRepository) Update(ctx context.Context, fn func(tx Repository) error) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return fn(&redisTx{RedisRepository: r, pipe: pipe})
	})
	if err != nil {
		return fmt.Errorf("metadata[%s] transaction: %w", r.namespace, err)
	}
	return nil
}

func (r *RedisRepository) scan(ctx context.Context) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.prefix()+"*", redisScanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan metadata[%s]: %w", r.namespace, err)
	}
	return keys, nil
}

// redisTx reads through the plain client and queues writes on pipe.
type redisTx struct {
	*RedisRepository
	pipe redis.Pipeliner
}

func (t *redisTx) Set(ctx context.Context, key string, value []byte) error {
	return t.pipe.Set(ctx, t.key(key), value, 0).Err()
}

func (t *redisTx) Delete(ctx context.Context, key string) error {
	return t.pipe.Del(ctx, t.key(key)).Err()
}

func (t *redisTx) Clear(ctx context.Context) error {
	keys, err := t.scan(ctx)
	if err != nil || len(keys) == 0 {
		return err
	}
	return t.pipe.Del(ctx, keys...).Err()
}

func (t *redisTx) Update(ctx context.Context, fn func(tx Repository) error) error {
	return fn(t)
}

// RedisFactory hands out namespaced repositories over one Redis client.
type RedisFactory struct {
	client redis.Cmdable
}

func NewRedisFactory(client redis.Cmdable) *RedisFactory {
	return &RedisFactory{client: client}
}

func (f *RedisFactory) Namespace(name string) Repository {
	return NewRedisRepository(f.client, name)
}
