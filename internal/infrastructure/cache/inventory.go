// Package cache keeps rendered inventory views in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"khaata/internal/core/id"
	"khaata/internal/domain/inventory"
)

const (
	inventoryKeyPrefix = "khaata:inv:"

	// DefaultTTL bounds how long a view survives a missed invalidation.
	DefaultTTL = 10 * time.Minute
)

// InventoryCache implements inventory.SnapshotCache.
type InventoryCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ inventory.SnapshotCache = (*InventoryCache)(nil)

// NewInventoryCache creates a cache on client. A non-positive ttl selects DefaultTTL.
func NewInventoryCache(client redis.Cmdable, ttl time.Duration) *InventoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &InventoryCache{client: client, ttl: ttl}
}

func inventoryKey(productID id.ID) string {
	return inventoryKeyPrefix + productID.String()
}

func (c *InventoryCache) Get(ctx context.Context, productID id.ID) (*inventory.View, bool, error) {
	data, err := c.client.Get(ctx, inventoryKey(productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	view, err := decodeView(data)
	if err != nil {
		return nil, false, err
	}
	return view, true, nil
}

func (c *InventoryCache) Set(ctx context.Context, view *inventory.View) error {
	data, err := encodeView(view)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, inventoryKey(view.ProductID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *InventoryCache) Invalidate(ctx context.Context, productID id.ID) error {
	if err := c.client.Del(ctx, inventoryKey(productID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func encodeView(view *inventory.View) ([]byte, error) {
	data, err := msgpack.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("encode inventory view: %w", err)
	}
	return data, nil
}

func decodeView(data []byte) (*inventory.View, error) {
	var view inventory.View
	if err := msgpack.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("decode inventory view: %w", err)
	}
	return &view, nil
}
