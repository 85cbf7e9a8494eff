package listing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const searchKeyPrefix = "listings:search:"

// CachedRepository serves repeated searches from Redis and drops every
// cached page whenever a listing is written. View counts in cached pages
// may lag by up to the TTL.
type CachedRepository struct {
	Repository
	rdb *redis.Client
	ttl time.Duration
}

// NewCachedRepository wraps repo with a search cache.
func NewCachedRepository(repo Repository, rdb *redis.Client, ttl time.Duration) *CachedRepository {
	return &CachedRepository{Repository: repo, rdb: rdb, ttl: ttl}
}

// List returns a cached page when one exists. Cache errors fall through to
// the repository.
func (c *CachedRepository) List(ctx context.Context, q Query) (*Page, error) {
	q = q.Normalized()
	key := searchKey(q)

	cached, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var page Page
		if err := json.Unmarshal(cached, &page); err == nil {
			return &page, nil
		}
		slog.Warn("decoding cached search", "key", key, "error", err)
	} else if !errors.Is(err, redis.Nil) {
		slog.Warn("reading search cache", "key", key, "error", err)
	}

	page, err := c.Repository.List(ctx, q)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(page)
	if err != nil {
		return nil, fmt.Errorf("encoding search page: %w", err)
	}
	if err := c.rdb.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
		slog.Warn("writing search cache", "key", key, "error", err)
	}
	return page, nil
}

// Create stores l and invalidates cached searches.
func (c *CachedRepository) Create(ctx context.Context, l *Listing) error {
	if err := c.Repository.Create(ctx, l); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// Mutate writes through and invalidates cached searches.
func (c *CachedRepository) Mutate(ctx context.Context, id string, fn func(*Listing) error) (*Listing, error) {
	l, err := c.Repository.Mutate(ctx, id, fn)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return l, nil
}

// Delete removes through and invalidates cached searches.
func (c *CachedRepository) Delete(ctx context.Context, id string, check func(*Listing) error) error {
	if err := c.Repository.Delete(ctx, id, check); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CachedRepository) invalidate(ctx context.Context) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := c.rdb.Scan(ctx, cursor, searchKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("scanning search cache", "error", err)
			return
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if len(keys) == 0 {
		return
	}

	pipe := c.rdb.Pipeline()
	for _, k := range keys {
		pipe.Del(ctx, k)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("invalidating search cache", "keys", len(keys), "error", err)
	}
}

// searchKey hashes a normalized query into a stable cache key.
func searchKey(q Query) string {
	raw, _ := json.Marshal(q)
	sum := sha256.Sum256(raw)
	return searchKeyPrefix + hex.EncodeToString(sum[:])
}
