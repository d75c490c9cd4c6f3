package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/feral-file/ff-collectibles/internal/api/errors"
	"github.com/feral-file/ff-collectibles/internal/logger"
)

// errorResponse represents a standardized error response
type errorResponse struct {
	Error *apierrors.APIError `json:"error"`
}

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, apiErr *apierrors.APIError) {
	c.JSON(statusCode, errorResponse{Error: apiErr})
}

// respondBadRequest sends a 400 Bad Request response
func respondBadRequest(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusBadRequest, apierrors.NewBadRequestError(message, details...))
}

// respondValidationError sends a 400 Bad Request with validation error
func respondValidationError(c *gin.Context, details string) {
	respondWithError(c, http.StatusBadRequest, apierrors.NewValidationError(details))
}

// respondTooManyWallets sends a 422 Unprocessable Entity response
func respondTooManyWallets(c *gin.Context, max int) {
	respondWithError(c, http.StatusUnprocessableEntity, apierrors.NewTooManyWalletsError(max))
}

// respondTimeout sends a 504 Gateway Timeout response
func respondTimeout(c *gin.Context, err error) {
	logger.WarnCtx(c.Request.Context(), "Request timed out", zap.Error(err))
	respondWithError(c, http.StatusGatewayTimeout, apierrors.NewTimeoutError("Request timed out"))
}

// respondInternalError sends a 500 Internal Server Error response and logs the error
func respondInternalError(c *gin.Context, err error, message string, fields ...zap.Field) {
	logger.ErrorCtx(c.Request.Context(), err, fields...)
	respondWithError(c, http.StatusInternalServerError, apierrors.NewInternalError(message))
}
