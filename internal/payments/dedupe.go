package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/patrickmn/go-cache"
)

const keyPrefix = "vet-scheduler:payment-event:"

// RedisDeduper records provider event ids with SETNX and a TTL.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

func (d *RedisDeduper) FirstSeen(ctx context.Context, key string) (bool, error) {
	ok, err := d.client.SetNX(ctx, keyPrefix+key, time.Now().UTC().Format(time.RFC3339), d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", key, err)
	}
	return ok, nil
}

func (d *RedisDeduper) Forget(ctx context.Context, key string) error {
	return d.client.Del(ctx, keyPrefix+key).Err()
}

// MemoryDeduper is the single-process fallback used when Redis is not
// configured. A ttl <= 0 keeps ids forever.
type MemoryDeduper struct {
	seen *cache.Cache
}

func NewMemoryDeduper(ttl time.Duration) *MemoryDeduper {
	if ttl <= 0 {
		return &MemoryDeduper{seen: cache.New(cache.NoExpiration, 0)}
	}
	return &MemoryDeduper{seen: cache.New(ttl, ttl)}
}

// FirstSeen relies on cache.Add failing for a live key.
func (d *MemoryDeduper) FirstSeen(_ context.Context, key string) (bool, error) {
	return d.seen.Add(key, time.Now().UTC(), cache.DefaultExpiration) == nil, nil
}

func (d *MemoryDeduper) Forget(_ context.Context, key string) error {
	d.seen.Delete(key)
	return nil
}
