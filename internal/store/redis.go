package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// InitRedis connects to the Redis instance named by url (redis://...) and
// verifies the connection with a ping.
func InitRedis(url string) (*redis.Client, error) {
	if url == "" {
		url = "redis://localhost:6379"
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// Redis stores JSON-marshaled records under "<container>:<tenant>:<id>" and
// keeps a per-tenant set of ids so tenant-wide queries don't need SCAN.
type Redis[T Item] struct {
	client    *redis.Client
	container string
}

func NewRedis[T Item](client *redis.Client, container string) *Redis[T] {
	return &Redis[T]{client: client, container: container}
}

func (r *Redis[T]) key(id, tenantID string) string {
	return fmt.Sprintf("%s:%s:%s", r.container, tenantID, id)
}

func (r *Redis[T]) tenantIndex(tenantID string) string {
	return fmt.Sprintf("%s:tenant:%s", r.container, tenantID)
}

func (r *Redis[T]) Get(ctx context.Context, id, tenantID string) (T, bool, error) {
	var value T
	data, err := r.client.Get(ctx, r.key(id, tenantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return value, false, nil
	}
	if err != nil {
		return value, false, err
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, false, err
	}
	return value, true, nil
}

func (r *Redis[T]) Set(ctx context.Context, value T) error {
	if value.ItemTenant() == "" {
		return ErrTenantRequired
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(value.ItemID(), value.ItemTenant()), data, 0)
	pipe.SAdd(ctx, r.tenantIndex(value.ItemTenant()), value.ItemID())
	_, err = pipe.Exec(ctx)
	return err
}

func (r *Redis[T]) Delete(ctx context.Context, id, tenantID string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.key(id, tenantID))
	pipe.SRem(ctx, r.tenantIndex(tenantID), id)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Redis[T]) QueryByTenant(ctx context.Context, tenantID string) ([]T, error) {
	ids, err := r.client.SMembers(ctx, r.tenantIndex(tenantID)).Result()
	if err != nil {
		return nil, err
	}

	var results []T
	for _, id := range ids {
		value, found, err := r.Get(ctx, id, tenantID)
		if err != nil {
			return nil, err
		}
		if found {
			results = append(results, value)
		}
	}
	return results, nil
}
