package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"catalog-service/internal/domain/image"
	"catalog-service/internal/services"
	"catalog-service/internal/transport/httpdto"
	catalog_errors "catalog-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ImageHandler struct {
	service        *services.ImageService
	maxUploadBytes int64
}

func NewImageHandler(service *services.ImageService, maxUploadBytes int64) *ImageHandler {
	return &ImageHandler{service: service, maxUploadBytes: maxUploadBytes}
}

// BulkSave handles POST /products/:id/images/bulk. The request is
// multipart: zero or more "files" parts plus an optional "metadata" part
// holding the descriptor JSON array.
func (h *ImageHandler) BulkSave(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid product id", "INVALID_REQUEST"))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid multipart request", "INVALID_REQUEST"))
		return
	}

	files, err := h.readFiles(form.File["files"])
	if err != nil {
		respondError(c, err)
		return
	}

	var rawMetadata json.RawMessage
	if values, ok := form.Value["metadata"]; ok && len(values) > 0 {
		rawMetadata = json.RawMessage(values[0])
	}

	images, err := h.service.BulkSave(c.Request.Context(), productID, files, rawMetadata)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListImagesResponse{Images: toImageDTOs(images)}))
}

// List handles GET /products/:id/images. Soft-deleted rows are included
// only when include_deleted=true.
func (h *ImageHandler) List(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid product id", "INVALID_REQUEST"))
		return
	}
	includeDeleted := c.Query("include_deleted") == "true"

	images, err := h.service.ListImages(c.Request.Context(), productID, includeDeleted)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListImagesResponse{Images: toImageDTOs(images)}))
}

func (h *ImageHandler) readFiles(headers []*multipart.FileHeader) ([]services.UploadFile, error) {
	files := make([]services.UploadFile, 0, len(headers))
	for _, header := range headers {
		if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
			return nil, fmt.Errorf("%w: %s", catalog_errors.ErrTooLarge, header.Filename)
		}
		f, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %s: %w", header.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read upload %s: %w", header.Filename, err)
		}
		files = append(files, services.UploadFile{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}

func toImageDTOs(images []image.Image) []httpdto.ImageDTO {
	dtos := make([]httpdto.ImageDTO, 0, len(images))
	for _, img := range images {
		dto := httpdto.ImageDTO{
			ID:            img.ID.String(),
			ProductID:     img.ProductID.String(),
			Name:          img.Name,
			Description:   img.Description,
			ImagePath:     img.ImagePath,
			ThumbnailPath: img.ThumbnailPath,
			Active:        img.Active,
			Main:          img.Main,
			CreatedAt:     img.CreatedAt.Format(time.RFC3339),
			UpdatedAt:     img.UpdatedAt.Format(time.RFC3339),
		}
		if img.DeletedAt != nil {
			dto.DeletedAt = img.DeletedAt.Format(time.RFC3339)
		}
		dtos = append(dtos, dto)
	}
	return dtos
}
