package repository

import (
	"context"
	"errors"

	"catalog-service/internal/domain/catalog"
	catalog_errors "catalog-service/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresBrandRepository struct {
	db *gorm.DB
}

func NewBrandRepository(db *gorm.DB) BrandRepository {
	return &PostgresBrandRepository{db: db}
}

func (r *PostgresBrandRepository) Create(ctx context.Context, b *catalog.Brand) error {
	res := r.db.WithContext(ctx).Create(b)
	if res.Error != nil {
		if isUniqueViolation(res.Error) || errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return catalog_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresBrandRepository) GetByID(ctx context.Context, id uuid.UUID) (catalog.Brand, error) {
	var b catalog.Brand
	err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", id).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return catalog.Brand{}, catalog_errors.ErrNotFound
		}
		return catalog.Brand{}, err
	}
	return b, nil
}

func (r *PostgresBrandRepository) List(ctx context.Context, page, limit int) ([]catalog.Brand, int64, error) {
	var brands []catalog.Brand
	var total int64

	q := r.db.WithContext(ctx).Model(&catalog.Brand{}).Where("deleted_at IS NULL")
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if err := q.Order("name ASC").Offset((page - 1) * limit).Limit(limit).Find(&brands).Error; err != nil {
		return nil, 0, err
	}
	return brands, total, nil
}

type PostgresCategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &PostgresCategoryRepository{db: db}
}

func (r *PostgresCategoryRepository) Create(ctx context.Context, c *catalog.Category) error {
	res := r.db.WithContext(ctx).Create(c)
	if res.Error != nil {
		if isUniqueViolation(res.Error) || errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return catalog_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (catalog.Category, error) {
	var c catalog.Category
	err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return catalog.Category{}, catalog_errors.ErrNotFound
		}
		return catalog.Category{}, err
	}
	return c, nil
}

func (r *PostgresCategoryRepository) List(ctx context.Context, page, limit int) ([]catalog.Category, int64, error) {
	var categories []catalog.Category
	var total int64

	q := r.db.WithContext(ctx).Model(&catalog.Category{}).Where("deleted_at IS NULL")
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if err := q.Order("name ASC").Offset((page - 1) * limit).Limit(limit).Find(&categories).Error; err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}
