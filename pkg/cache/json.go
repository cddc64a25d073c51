package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/skilltree/pkg/observability"
)

// GetJSON decodes a cached value into v. It returns [ErrCacheMiss] when the
// key is absent or the stored bytes no longer decode. kind labels the
// observability event.
func GetJSON(ctx context.Context, c Cache, kind, key string, v any) error {
	data, hit, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if !hit || json.Unmarshal(data, v) != nil {
		observability.Cache().OnCacheMiss(ctx, kind)
		return ErrCacheMiss
	}
	observability.Cache().OnCacheHit(ctx, kind)
	return nil
}

// SetJSON encodes v and stores it.
func SetJSON(ctx context.Context, c Cache, kind, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
	return nil
}
