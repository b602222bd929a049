// Package cache stores rendered diagrams and fetched catalogs.
//
// Every backend implements [Cache], a byte-oriented key/value store with
// per-entry TTL:
//   - [FileCache]: sharded JSON files under the user cache directory (CLI)
//   - [MemoryCache]: bounded in-process map (site server, tests)
//   - [RedisCache]: shared cache for multi-instance deployments
//   - [NullCache]: never stores anything (--no-cache)
//
// Keys are built by a [Keyer] so that every input that changes an artifact
// (diagram source, theme, palette, engine) is part of the key.
//
// # Usage
//
//	c, err := cache.NewFileCache(dir)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	key := cache.NewDefaultKeyer().DiagramKey(cache.Hash(src), opts)
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    return data, nil
//	}
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store with optional expiration.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero stores the entry without expiration.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
