package handler

import (
	"errors"
	"net/http"

	"catalog-service/internal/transport/httpdto"
	catalog_errors "catalog-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto the wire. Validation failures get
// the fixed 422 envelope; everything else uses the standard response shape.
func respondError(c *gin.Context, err error) {
	if ve, ok := catalog_errors.AsValidation(err); ok {
		c.JSON(http.StatusUnprocessableEntity, httpdto.NewValidationErrorResponse(string(ve.Key)))
		return
	}
	switch {
	case errors.Is(err, catalog_errors.ErrNotFound):
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse(err.Error(), "NOT_FOUND"))
	case errors.Is(err, catalog_errors.ErrAlreadyExists):
		c.JSON(http.StatusConflict, httpdto.NewErrorResponse(err.Error(), "ALREADY_EXISTS"))
	case errors.Is(err, catalog_errors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "INVALID_REQUEST"))
	case errors.Is(err, catalog_errors.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, httpdto.NewErrorResponse(err.Error(), "TOO_LARGE"))
	default:
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), "INTERNAL_ERROR"))
	}
}
