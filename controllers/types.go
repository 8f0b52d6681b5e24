package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rescuelink/api-go/apperrors"
	"github.com/rescuelink/api-go/lifecycle"
	"gorm.io/gorm"
)

// PhotoStorage is the slice of the photo store the handlers depend on.
// Satisfied by storage.PhotoStore.
type PhotoStorage interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
	ReportPhotoKey(reporterID uint, fileName string) string
	AvatarKey(userID uint, fileName string) string
}

type StandardResponse struct {
	Success    bool            `json:"success"`
	Data       interface{}     `json:"data,omitempty"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
	Message    string          `json:"message,omitempty"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses.
// Validation and transition failures are recoverable and carry structure;
// store failures become a single opaque 500 and are logged for operators.
func writeDomainError(c *gin.Context, err error) {
	var validationErrs *apperrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   "validation failed",
			"errors":  validationErrs.Fields,
		})
		return
	}

	var invalidTransition *apperrors.InvalidTransitionError
	if errors.As(err, &invalidTransition) {
		c.JSON(http.StatusConflict, gin.H{
			"success":       false,
			"error":         invalidTransition.Error(),
			"valid_targets": lifecycle.ValidTargets(invalidTransition.From),
		})
		return
	}

	var authErr *apperrors.AuthorizationError
	if errors.As(err, &authErr) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": authErr.Error()})
		return
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Record not found"})
		return
	}

	zap.L().Error("request failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Something went wrong"})
}
