// page.go provides a Valkey-backed full-page HTML cache for published
// storefront pages. Editor previews always render live and never touch
// this cache; only public storefront traffic does. Publishing a
// template invalidates the vendor's entries wholesale.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// storefrontKeyPrefix namespaces cached storefront pages in Valkey.
	storefrontKeyPrefix = "storefront:"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// PageCache manages full-page HTML caching in Valkey.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// PageKey builds the cache key for one vendor storefront page. page is
// "home", "about", "contact", or "p/<slug>" for custom pages.
func PageKey(vendorID uuid.UUID, page string) string {
	return fmt.Sprintf("%s:%s", vendorID, page)
}

// Get retrieves cached HTML for a page key. Returns nil, false on miss.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, storefrontKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("page cache hit", "key", key)
	return val, true
}

// Set stores rendered HTML for a page key with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, key string, html []byte) {
	if err := pc.client.Set(ctx, storefrontKeyPrefix+key, html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// InvalidateVendor removes every cached page for a vendor by scanning
// for its prefix. Called after a deploy, since any page could be
// affected by the new published document.
func (pc *PageCache) InvalidateVendor(ctx context.Context, vendorID uuid.UUID) {
	pattern := fmt.Sprintf("%s%s:*", storefrontKeyPrefix, vendorID)

	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("storefront cache cleared", "vendor_id", vendorID, "deleted", deleted)
	}
}
