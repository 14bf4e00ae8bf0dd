package storage

import (
	"context"
	"fmt"

	"catalog-service/pkg/logger"

	"github.com/google/uuid"
)

// Tier is the visibility zone an image's objects live under. An image's
// original and thumbnail always share one tier.
type Tier string

const (
	TierPublic  Tier = "public"
	TierPrivate Tier = "private"
	TierDeleted Tier = "deleted"
)

// TierFor maps an image's logical state to its tier: deleted wins over
// active, active selects public, everything else is private.
func TierFor(active, deleted bool) Tier {
	if deleted {
		return TierDeleted
	}
	if active {
		return TierPublic
	}
	return TierPrivate
}

// ThumbnailExt is fixed: thumbnails are always encoded as JPEG, whatever
// the source format was.
const ThumbnailExt = "jpg"

// ObjectKey returns {tier}/products/{productId}/images/{imageId}.{ext}.
func ObjectKey(tier Tier, productID, imageID uuid.UUID, ext string) string {
	return fmt.Sprintf("%s/products/%s/images/%s.%s", tier, productID, imageID, ext)
}

// ThumbnailKey returns {tier}/products/{productId}/images/{imageId}.thumbnail.jpg.
func ThumbnailKey(tier Tier, productID, imageID uuid.UUID) string {
	return fmt.Sprintf("%s/products/%s/images/%s.thumbnail.%s", tier, productID, imageID, ThumbnailExt)
}

// ObjectStore is the single-object capability the gateway runs on. Each
// operation is atomic and idempotent on retry for its one key.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Copy(ctx context.Context, srcKey, dstKey string) error
	Remove(ctx context.Context, key string) error
}

// TieredStore owns the mapping from image state to object location and the
// minimal object operations for state transitions.
type TieredStore struct {
	store ObjectStore
	log   *logger.Logger
}

func NewTieredStore(store ObjectStore, log *logger.Logger) *TieredStore {
	return &TieredStore{store: store, log: log}
}

// Store writes the original and its thumbnail under the given tier and
// returns both keys.
func (t *TieredStore) Store(ctx context.Context, tier Tier, productID, imageID uuid.UUID, ext, contentType string, original, thumbnail []byte) (string, string, error) {
	imageKey := ObjectKey(tier, productID, imageID, ext)
	thumbKey := ThumbnailKey(tier, productID, imageID)

	if err := t.store.Put(ctx, imageKey, contentType, original); err != nil {
		return "", "", fmt.Errorf("store original %s: %w", imageKey, err)
	}
	if err := t.store.Put(ctx, thumbKey, "image/jpeg", thumbnail); err != nil {
		return "", "", fmt.Errorf("store thumbnail %s: %w", thumbKey, err)
	}
	return imageKey, thumbKey, nil
}

// Relocate moves both objects from oldTier to newTier by copy-then-delete.
// The store has no atomic rename, so the copies are the commit point: once
// both copies succeed the move is considered done and a failed removal of
// an old key only leaves a stray duplicate behind, never a dangling path.
func (t *TieredStore) Relocate(ctx context.Context, oldTier, newTier Tier, productID, imageID uuid.UUID, ext string) (string, string, error) {
	if oldTier == newTier {
		return ObjectKey(oldTier, productID, imageID, ext), ThumbnailKey(oldTier, productID, imageID), nil
	}

	oldImageKey := ObjectKey(oldTier, productID, imageID, ext)
	oldThumbKey := ThumbnailKey(oldTier, productID, imageID)
	newImageKey := ObjectKey(newTier, productID, imageID, ext)
	newThumbKey := ThumbnailKey(newTier, productID, imageID)

	if err := t.store.Copy(ctx, oldImageKey, newImageKey); err != nil {
		return "", "", fmt.Errorf("copy %s to %s: %w", oldImageKey, newImageKey, err)
	}
	if err := t.store.Copy(ctx, oldThumbKey, newThumbKey); err != nil {
		return "", "", fmt.Errorf("copy %s to %s: %w", oldThumbKey, newThumbKey, err)
	}

	if err := t.store.Remove(ctx, oldImageKey); err != nil && t.log != nil {
		t.log.Warnf("relocate: leaving stray object %s: %v", oldImageKey, err)
	}
	if err := t.store.Remove(ctx, oldThumbKey); err != nil && t.log != nil {
		t.log.Warnf("relocate: leaving stray object %s: %v", oldThumbKey, err)
	}
	return newImageKey, newThumbKey, nil
}
