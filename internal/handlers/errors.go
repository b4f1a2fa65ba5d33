package handlers

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/refdata-service/internal/services"
	"github.com/gin-gonic/gin"
)

// handleServiceError maps service errors onto HTTP responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, validationErrors)
		return
	}

	var unknownType *services.UnknownDataTypeError
	if errors.As(err, &unknownType) {
		h.RespondWithError(c, http.StatusBadRequest, "Unknown data type", err, map[string]interface{}{
			"dataType": unknownType.DataType,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrUnknownImportKind),
		errors.Is(err, services.ErrBadRequest):
		h.RespondWithError(c, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, services.ErrImportInProgress):
		h.RespondWithError(c, http.StatusConflict, "Another import is in progress", err)
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, services.ErrUnauthenticated):
		h.RespondWithError(c, http.StatusUnauthorized, "User not authenticated", err)
	case errors.Is(err, services.ErrForbidden):
		h.RespondWithError(c, http.StatusForbidden, "Access denied", err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
