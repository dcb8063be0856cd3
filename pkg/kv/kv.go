// Package kv is the persisted local state of the storefront client: UI
// preferences, the backend config fallback and the saved auth session.
// Values are JSON encoded. Cart and order data never live here.
//
//	store, err := kv.Open(ctx)
//	_ = store.Set(ctx, kv.KeySupabaseURL, "https://x.supabase.co")
//	var url string
//	ok, err := store.Get(ctx, kv.KeySupabaseURL, &url)
package kv

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/storefront/config"
)

// Well-known keys.
const (
	KeySupabaseURL     = "supabase_url"
	KeySupabaseAnonKey = "supabase_anon_key"
	KeySession         = "auth_session"
)

// Store is a key-value store of JSON values.
type Store interface {
	// Get decodes the value under key into dest and reports whether it
	// was present.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// Open builds the store selected by KV_DRIVER.
func Open(ctx context.Context) (Store, error) {
	switch config.KVDriver() {
	case "memory":
		return NewMemory(), nil
	case "redis":
		return DialRedis(ctx, RedisOptions{
			URL:      config.RedisURL(),
			Addr:     config.RedisAddr(),
			Password: config.RedisPassword(),
		})
	case "file":
		return OpenFile(config.KVPath())
	default:
		return nil, fmt.Errorf("kv: unknown driver %q", config.KVDriver())
	}
}

// GetString is a convenience for string values. Missing keys and decode
// errors both return "".
func GetString(ctx context.Context, s Store, key string) string {
	var v string
	if ok, err := s.Get(ctx, key, &v); err != nil || !ok {
		return ""
	}
	return v
}
