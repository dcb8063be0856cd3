package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

const redisPrefix = "storefront:kv:"

// RedisOptions selects the server. URL wins over Addr when set.
type RedisOptions struct {
	URL      string
	Addr     string
	Password string
}

// Redis stores each key as a string under redisPrefix.
type Redis struct {
	rdb *redis.Client
}

// DialRedis connects and pings the server.
func DialRedis(ctx context.Context, o RedisOptions) (*Redis, error) {
	var opt *redis.Options
	if o.URL != "" {
		parsed, err := redis.ParseURL(o.URL)
		if err != nil {
			return nil, fmt.Errorf("kv: parse REDIS_URL: %w", err)
		}
		opt = parsed
	} else {
		opt = &redis.Options{Addr: o.Addr, Password: o.Password, DB: 0}
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("kv: redis ping: %w", err)
	}
	return &Redis{rdb: rdb}, nil
}

// NewRedis wraps an existing client.
func NewRedis(rdb *redis.Client) *Redis { return &Redis{rdb: rdb} }

func (r *Redis) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	metrics.KVOps.WithLabelValues("redis", "get").Inc()

	raw, err := r.rdb.Get(ctx, redisPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("kv: redis get %q: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("kv: decode %q: %w", key, err)
	}
	metrics.KVOps.WithLabelValues("redis", "hit").Inc()
	return true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv: encode %q: %w", key, err)
	}
	metrics.KVOps.WithLabelValues("redis", "set").Inc()
	return r.rdb.Set(ctx, redisPrefix+key, raw, 0).Err()
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	metrics.KVOps.WithLabelValues("redis", "remove").Inc()
	return r.rdb.Del(ctx, redisPrefix+key).Err()
}

// Clear deletes only keys under the store prefix.
func (r *Redis) Clear(ctx context.Context) error {
	metrics.KVOps.WithLabelValues("redis", "clear").Inc()

	iter := r.rdb.Scan(ctx, 0, redisPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("kv: redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return r.rdb.Del(ctx, keys...).Err()
}

func (r *Redis) Close() error { return r.rdb.Close() }
