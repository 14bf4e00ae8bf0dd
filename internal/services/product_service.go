package services

import (
	"context"

	"catalog-service/internal/domain/catalog"
	"catalog-service/internal/repository"
	catalog_errors "catalog-service/pkg/errors"

	"github.com/google/uuid"
)

type ProductService struct {
	products repository.ProductRepository
	brands   repository.BrandRepository
	cats     repository.CategoryRepository
}

func NewProductService(products repository.ProductRepository, brands repository.BrandRepository, cats repository.CategoryRepository) *ProductService {
	return &ProductService{products: products, brands: brands, cats: cats}
}

func (s *ProductService) Create(ctx context.Context, p *catalog.Product) error {
	if p.Name == "" {
		return catalog_errors.ErrInvalidInput
	}
	if p.BrandID != nil {
		if _, err := s.brands.GetByID(ctx, *p.BrandID); err != nil {
			return err
		}
	}
	if p.CategoryID != nil {
		if _, err := s.cats.GetByID(ctx, *p.CategoryID); err != nil {
			return err
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return s.products.Create(ctx, p)
}

func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (catalog.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *ProductService) List(ctx context.Context, page, limit int, name string) ([]catalog.Product, int64, error) {
	return s.products.List(ctx, page, limit, name)
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return s.products.UpdateFields(ctx, id, fields)
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.products.SoftDelete(ctx, id)
}

type BrandService struct {
	brands repository.BrandRepository
}

func NewBrandService(brands repository.BrandRepository) *BrandService {
	return &BrandService{brands: brands}
}

func (s *BrandService) Create(ctx context.Context, b *catalog.Brand) error {
	if b.Name == "" {
		return catalog_errors.ErrInvalidInput
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return s.brands.Create(ctx, b)
}

func (s *BrandService) GetByID(ctx context.Context, id uuid.UUID) (catalog.Brand, error) {
	return s.brands.GetByID(ctx, id)
}

func (s *BrandService) List(ctx context.Context, page, limit int) ([]catalog.Brand, int64, error) {
	return s.brands.List(ctx, page, limit)
}

type CategoryService struct {
	cats repository.CategoryRepository
}

func NewCategoryService(cats repository.CategoryRepository) *CategoryService {
	return &CategoryService{cats: cats}
}

func (s *CategoryService) Create(ctx context.Context, c *catalog.Category) error {
	if c.Name == "" {
		return catalog_errors.ErrInvalidInput
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return s.cats.Create(ctx, c)
}

func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (catalog.Category, error) {
	return s.cats.GetByID(ctx, id)
}

func (s *CategoryService) List(ctx context.Context, page, limit int) ([]catalog.Category, int64, error) {
	return s.cats.List(ctx, page, limit)
}
