// Package httputil maps engine errors to HTTP responses.
package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/envelope/internal/errors"
)

// ErrorResponse represents a structured error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// StatusFor returns the HTTP status and error code for err.
//
// Authentication, ordering and signature failures share one opaque code so responses do
// not reveal which check a forged message failed.
func StatusFor(err error) (int, string) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	case apperrors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusUnprocessableEntity, "invalid_input"
	case apperrors.Is(err, apperrors.ErrFormat):
		return http.StatusUnprocessableEntity, "malformed_message"
	case apperrors.Is(err, apperrors.ErrPolicyViolation):
		return http.StatusForbidden, "policy_violation"
	case apperrors.Is(err, apperrors.ErrAuthentication),
		apperrors.Is(err, apperrors.ErrOrdering),
		apperrors.Is(err, apperrors.ErrSignature):
		return http.StatusBadRequest, "invalid_ciphertext"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// HandleErrorGin writes the JSON error response for err and logs it.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	statusCode, code := StatusFor(err)
	errorResponse := ErrorResponse{Error: code}

	switch statusCode {
	case http.StatusBadRequest:
		errorResponse.Message = "The message could not be authenticated"
	case http.StatusInternalServerError:
		// For unknown/internal errors, don't expose details to the client
		errorResponse.Message = "An internal error occurred"
	default:
		errorResponse.Message = err.Error()
	}

	if logger != nil {
		logger.Error("request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", code),
			slog.String("category", apperrors.Category(err)),
			slog.Any("error", err),
		)
	}

	c.JSON(statusCode, errorResponse)
}

// HandleBadRequestGin writes a 400 Bad Request response for malformed JSON or parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		HandleErrorGin(c, err, logger)
		return
	}

	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: err.Error(),
	})
}

// HandleValidationErrorGin writes a 422 Unprocessable Entity response for validation errors.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}

	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
	})
}
