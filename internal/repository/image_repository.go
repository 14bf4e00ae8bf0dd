package repository

import (
	"context"
	"errors"
	"time"

	"catalog-service/internal/domain/image"
	catalog_errors "catalog-service/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresImageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) ImageRepository {
	return &PostgresImageRepository{db: db}
}

func (r *PostgresImageRepository) Create(ctx context.Context, img *image.Image) error {
	res := r.db.WithContext(ctx).Create(img)
	if res.Error != nil {
		if isUniqueViolation(res.Error) || errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return catalog_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresImageRepository) GetByID(ctx context.Context, id uuid.UUID) (image.Image, error) {
	var img image.Image
	err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", id).First(&img).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return image.Image{}, catalog_errors.ErrNotFound
		}
		return image.Image{}, err
	}
	return img, nil
}

func (r *PostgresImageRepository) ListByProduct(ctx context.Context, productID uuid.UUID, includeDeleted bool) ([]image.Image, error) {
	var images []image.Image
	q := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if !includeDeleted {
		q = q.Where("deleted_at IS NULL")
	}
	err := q.Order("name ASC NULLS LAST, created_at ASC").Find(&images).Error
	if err != nil {
		return nil, err
	}
	return images, nil
}

func (r *PostgresImageRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).
		Model(&image.Image{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return catalog_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresImageRepository) SetMain(ctx context.Context, id uuid.UUID, main bool) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{"main": main})
}

func (r *PostgresImageRepository) SoftDelete(ctx context.Context, id uuid.UUID, imagePath, thumbnailPath string) error {
	res := r.db.WithContext(ctx).
		Model(&image.Image{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{
			"deleted_at":     time.Now(),
			"image_path":     imagePath,
			"thumbnail_path": thumbnailPath,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return catalog_errors.ErrNotFound
	}
	return nil
}
