package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
	"github.com/yigit/gradebook/internal/pkg/dberrors"
)

// StatusFor maps an error kind to its HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case dberrors.IsBusy(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FlashCategoryFor maps an error kind to the flash category used by the HTML views
func FlashCategoryFor(err error) string {
	if errors.Is(err, apperrors.ErrValidation) {
		return FlashWarning
	}
	return FlashDanger
}

// HandleAPIError writes the JSON envelope for err. Unknown errors never leak their text.
func HandleAPIError(c *gin.Context, err error) {
	status := StatusFor(err)
	message := apperrors.Message(err, http.StatusText(status))
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		message = "Internal server error"
	}
	if status == http.StatusServiceUnavailable {
		message = "Database is busy, please retry"
	}
	_ = c.Error(err)
	c.JSON(status, dto.NewErrorResponse(message))
}
