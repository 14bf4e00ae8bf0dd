package repository

import (
	"context"

	"catalog-service/internal/domain/catalog"
	"catalog-service/internal/domain/image"

	"github.com/google/uuid"
)

// ImageRepository persists product image rows. Reads exclude soft-deleted
// rows unless includeDeleted is passed; writes touch only the fields given.
type ImageRepository interface {
	Create(ctx context.Context, img *image.Image) error
	GetByID(ctx context.Context, id uuid.UUID) (image.Image, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, includeDeleted bool) ([]image.Image, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	SetMain(ctx context.Context, id uuid.UUID, main bool) error
	SoftDelete(ctx context.Context, id uuid.UUID, imagePath, thumbnailPath string) error
}

type ProductRepository interface {
	Create(ctx context.Context, p *catalog.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (catalog.Product, error)
	List(ctx context.Context, page, limit int, name string) ([]catalog.Product, int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type BrandRepository interface {
	Create(ctx context.Context, b *catalog.Brand) error
	GetByID(ctx context.Context, id uuid.UUID) (catalog.Brand, error)
	List(ctx context.Context, page, limit int) ([]catalog.Brand, int64, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, c *catalog.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (catalog.Category, error)
	List(ctx context.Context, page, limit int) ([]catalog.Category, int64, error)
}
