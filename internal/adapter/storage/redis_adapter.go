package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/graphql-bench/internal/core/domain"
	"github.com/rl1809/graphql-bench/internal/port"
)

const defaultKeyPrefix = "graphql-bench:seed:"

var _ port.SnapshotRepository = (*RedisAdapter)(nil)

// RedisAdapter stores each collection as one JSON array under <prefix><kind>.
type RedisAdapter struct {
	client *redis.Client
	prefix string
}

func NewRedisAdapter(client *redis.Client, prefix string) *RedisAdapter {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisAdapter{client: client, prefix: prefix}
}

func (r *RedisAdapter) key(kind string) string {
	return r.prefix + kind
}

func (r *RedisAdapter) Load(ctx context.Context) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	kinds := []string{domain.KindUser, domain.KindCategory, domain.KindProduct, domain.KindReview, domain.KindOrder}
	targets := []any{&snap.Users, &snap.Categories, &snap.Products, &snap.Reviews, &snap.Orders}

	keys := make([]string, len(kinds))
	for i, kind := range kinds {
		keys[i] = r.key(kind)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget seed keys: %w", err)
	}

	for i, v := range values {
		if v == nil {
			continue
		}
		raw, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("key %s: unexpected type %T", keys[i], v)
		}
		if err := json.Unmarshal([]byte(raw), targets[i]); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
	}

	return &snap, nil
}

// Save replaces every collection in one MULTI/EXEC.
func (r *RedisAdapter) Save(ctx context.Context, snap *domain.Snapshot) error {
	payloads := map[string]any{
		domain.KindUser:     snap.Users,
		domain.KindCategory: snap.Categories,
		domain.KindProduct:  snap.Products,
		domain.KindReview:   snap.Reviews,
		domain.KindOrder:    snap.Orders,
	}

	encoded := make(map[string][]byte, len(payloads))
	for kind, v := range payloads {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", kind, err)
		}
		encoded[r.key(kind)] = data
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, data := range encoded {
			pipe.Set(ctx, key, data, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Clear removes every collection key.
func (r *RedisAdapter) Clear(ctx context.Context) error {
	keys := []string{
		r.key(domain.KindUser),
		r.key(domain.KindCategory),
		r.key(domain.KindProduct),
		r.key(domain.KindReview),
		r.key(domain.KindOrder),
	}
	err := r.client.Del(ctx, keys...).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
