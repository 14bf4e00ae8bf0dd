package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"catalog-service/internal/domain/image"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Cache key pattern:
// - product:{product_id}:images - non-deleted image list, short TTL,
//   invalidated after every bulk save.

// ImageCache is a read-through cache of a product's visible images. It is
// advisory: every method is safe on a nil receiver so callers can run
// without Redis.
type ImageCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewImageCache(client *goredis.Client, ttl time.Duration) *ImageCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ImageCache{client: client, ttl: ttl}
}

func imagesKey(productID uuid.UUID) string {
	return fmt.Sprintf("product:%s:images", productID)
}

// GetImages returns the cached list, or (nil, nil) on a miss.
func (c *ImageCache) GetImages(ctx context.Context, productID uuid.UUID) ([]image.Image, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	data, err := c.client.Get(ctx, imagesKey(productID)).Result()
	if err == goredis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, err
	}

	var images []image.Image
	if err := json.Unmarshal([]byte(data), &images); err != nil {
		return nil, err
	}
	return images, nil
}

func (c *ImageCache) SetImages(ctx context.Context, productID uuid.UUID, images []image.Image) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(images)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, imagesKey(productID), data, c.ttl).Err()
}

func (c *ImageCache) Invalidate(ctx context.Context, productID uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, imagesKey(productID)).Err()
}
