package services

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"catalog-service/internal/domain/image"
	"catalog-service/internal/redis"
	"catalog-service/internal/repository"
	"catalog-service/internal/storage"
	catalog_errors "catalog-service/pkg/errors"
	"catalog-service/pkg/logger"

	"github.com/google/uuid"
)

// ImageService reconciles a product's image set against a bulk submission:
// validate, plan, then execute each operation against the blob store and
// the database in descriptor order.
type ImageService struct {
	images    repository.ImageRepository
	products  repository.ProductRepository
	blobs     *storage.TieredStore
	thumbs    *Thumbnailer
	validator *MetadataValidator
	cache     *redis.ImageCache
	log       *logger.Logger
}

func NewImageService(
	images repository.ImageRepository,
	products repository.ProductRepository,
	blobs *storage.TieredStore,
	thumbs *Thumbnailer,
	validator *MetadataValidator,
	cache *redis.ImageCache,
	log *logger.Logger,
) *ImageService {
	return &ImageService{
		images:    images,
		products:  products,
		blobs:     blobs,
		thumbs:    thumbs,
		validator: validator,
		cache:     cache,
		log:       log,
	}
}

// BulkSave applies a batch of image descriptors for one product and returns
// the surviving non-deleted images in name order. Validation, the product
// existence check and planning all happen before any blob or row mutation.
// Operations then run sequentially; a failure partway through is reported
// as the batch's error and earlier, already-committed operations stay
// committed. Callers are expected not to interleave bulk saves for the
// same product.
func (s *ImageService) BulkSave(ctx context.Context, productID uuid.UUID, files []UploadFile, rawMetadata json.RawMessage) ([]image.Image, error) {
	var descriptors []ImageDescriptor
	if len(rawMetadata) == 0 {
		if len(files) == 0 {
			return nil, catalog_errors.NewValidation(catalog_errors.KeyNothingToDo)
		}
		descriptors = DefaultDescriptors(files)
	} else {
		var err error
		descriptors, err = s.validator.Parse(rawMetadata)
		if err != nil {
			return nil, err
		}
	}

	ok, err := s.products.Exists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, catalog_errors.ErrNotFound
	}

	existing, err := s.images.ListByProduct(ctx, productID, false)
	if err != nil {
		return nil, err
	}

	plan, err := PlanReconciliation(files, descriptors, existing)
	if err != nil {
		return nil, err
	}

	for _, id := range plan.Demote {
		if err := s.images.SetMain(ctx, id, false); err != nil {
			return nil, fmt.Errorf("demote image %s: %w", id, err)
		}
	}

	for _, op := range plan.Ops {
		switch op.Kind {
		case OpCreate:
			err = s.executeCreate(ctx, productID, op)
		case OpUpdate:
			err = s.executeUpdate(ctx, productID, op)
		case OpDelete:
			err = s.executeDelete(ctx, productID, op)
		}
		if err != nil {
			return nil, err
		}
	}

	if cerr := s.cache.Invalidate(ctx, productID); cerr != nil {
		s.log.Warnf("invalidate image cache for product %s: %v", productID, cerr)
	}

	result, err := s.images.ListByProduct(ctx, productID, false)
	if err != nil {
		return nil, err
	}
	if cerr := s.cache.SetImages(ctx, productID, result); cerr != nil {
		s.log.Warnf("refresh image cache for product %s: %v", productID, cerr)
	}
	return result, nil
}

// ListImages returns a product's images in name order, read through the
// cache for the common non-deleted case.
func (s *ImageService) ListImages(ctx context.Context, productID uuid.UUID, includeDeleted bool) ([]image.Image, error) {
	ok, err := s.products.Exists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, catalog_errors.ErrNotFound
	}

	if !includeDeleted {
		if cached, err := s.cache.GetImages(ctx, productID); err == nil && cached != nil {
			return cached, nil
		}
	}

	images, err := s.images.ListByProduct(ctx, productID, includeDeleted)
	if err != nil {
		return nil, err
	}
	if !includeDeleted {
		if cerr := s.cache.SetImages(ctx, productID, images); cerr != nil {
			s.log.Warnf("refresh image cache for product %s: %v", productID, cerr)
		}
	}
	return images, nil
}

func (s *ImageService) executeCreate(ctx context.Context, productID uuid.UUID, op PlannedOp) error {
	file := op.File

	thumb, err := s.thumbs.Generate(file.Data)
	if err != nil {
		return err
	}

	// The id doubles as the blob key stem, so it is allocated before the
	// row exists.
	id := uuid.New()
	ext := extForUpload(file.ContentType, file.Filename)
	active := op.Desc.Active != nil && *op.Desc.Active
	tier := storage.TierFor(active, false)

	imagePath, thumbPath, err := s.blobs.Store(ctx, tier, productID, id, ext, file.ContentType, file.Data, thumb)
	if err != nil {
		return err
	}

	row := image.Image{
		ID:            id,
		ProductID:     productID,
		Name:          textField(op.Desc.Name),
		Description:   textField(op.Desc.Description),
		ImagePath:     imagePath,
		ThumbnailPath: thumbPath,
		Active:        active,
		Main:          op.Desc.Main != nil && *op.Desc.Main && !op.ArchiveAfterStore,
	}
	if err := s.images.Create(ctx, &row); err != nil {
		return err
	}

	if op.ArchiveAfterStore {
		return s.archive(ctx, productID, row.ID, tier, ext)
	}
	return nil
}

func (s *ImageService) executeUpdate(ctx context.Context, productID uuid.UUID, op PlannedOp) error {
	target := op.Target
	fields := map[string]interface{}{}

	if op.Desc.Name.Set {
		fields["name"] = textValue(op.Desc.Name)
	}
	if op.Desc.Description.Set {
		fields["description"] = textValue(op.Desc.Description)
	}
	if op.Desc.Main != nil {
		fields["main"] = *op.Desc.Main
	}

	if op.Desc.Active != nil {
		fields["active"] = *op.Desc.Active
		oldTier := storage.TierFor(target.Active, false)
		newTier := storage.TierFor(*op.Desc.Active, false)
		if oldTier != newTier {
			imagePath, thumbPath, err := s.blobs.Relocate(ctx, oldTier, newTier, productID, target.ID, extFromPath(target.ImagePath))
			if err != nil {
				return err
			}
			fields["image_path"] = imagePath
			fields["thumbnail_path"] = thumbPath
		}
	}

	// A descriptor carrying only its target reference is a no-op: no row
	// write, no blob operation.
	if len(fields) == 0 {
		return nil
	}
	return s.images.UpdateFields(ctx, target.ID, fields)
}

func (s *ImageService) executeDelete(ctx context.Context, productID uuid.UUID, op PlannedOp) error {
	target := op.Target
	oldTier := storage.TierFor(target.Active, false)
	return s.archive(ctx, productID, target.ID, oldTier, extFromPath(target.ImagePath))
}

// archive relocates an image's objects to the deleted tier and marks the
// row soft-deleted with its paths pointing at the new keys.
func (s *ImageService) archive(ctx context.Context, productID, imageID uuid.UUID, fromTier storage.Tier, ext string) error {
	imagePath, thumbPath, err := s.blobs.Relocate(ctx, fromTier, storage.TierDeleted, productID, imageID, ext)
	if err != nil {
		return err
	}
	return s.images.SoftDelete(ctx, imageID, imagePath, thumbPath)
}

func textField(v OptionalString) *string {
	if v.Set && v.Valid {
		value := v.Value
		return &value
	}
	return nil
}

// textValue maps an explicit null to a SQL NULL for partial updates.
func textValue(v OptionalString) interface{} {
	if v.Valid {
		return v.Value
	}
	return nil
}

var contentTypeExt = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
	"image/bmp":  "bmp",
	"image/tiff": "tiff",
}

// extForUpload derives the original's extension from the content type at
// creation; it never changes afterwards. The filename is a fallback for
// generic content types.
func extForUpload(contentType, filename string) string {
	if ext, ok := contentTypeExt[strings.ToLower(contentType)]; ok {
		return ext
	}
	if ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), "."); ext != "" {
		return ext
	}
	return "bin"
}

func extFromPath(objectPath string) string {
	return strings.TrimPrefix(path.Ext(objectPath), ".")
}
