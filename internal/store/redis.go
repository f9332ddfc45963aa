package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps the redis client. Every method is nil-safe so the API can run
// uncached when redis is not configured.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis with short timeouts.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// GetJSON loads a cached value into dest. Returns false on miss or any
// redis/decoding failure; caching is best effort.
func (r *Redis) GetJSON(ctx context.Context, key string, dest any) bool {
	if r == nil || r.Client == nil {
		return false
	}
	raw, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// SetJSON stores a value with a TTL. Failures are ignored.
func (r *Redis) SetJSON(ctx context.Context, key string, val any, ttl time.Duration) {
	if r == nil || r.Client == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}
	r.Client.Set(ctx, key, raw, ttl)
}

// Delete drops cached keys, used to invalidate summaries after a check-in.
func (r *Redis) Delete(ctx context.Context, keys ...string) {
	if r == nil || r.Client == nil || len(keys) == 0 {
		return
	}
	r.Client.Del(ctx, keys...)
}

const revokedPrefix = "auth:revoked:"

// Revoke marks a token id invalid until its natural expiry.
func (r *Redis) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if r == nil || r.Client == nil || jti == "" {
		return nil
	}
	if ttl <= 0 {
		return nil
	}
	return r.Client.Set(ctx, revokedPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether a token id was revoked. Redis being down fails
// open; expiry still bounds the token lifetime.
func (r *Redis) IsRevoked(ctx context.Context, jti string) bool {
	if r == nil || r.Client == nil || jti == "" {
		return false
	}
	n, err := r.Client.Exists(ctx, revokedPrefix+jti).Result()
	return err == nil && n > 0
}
