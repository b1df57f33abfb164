// Package handler implements the boundary's JSON API surface that sits
// alongside the render dispatcher: the bench-run ingest/query endpoints,
// the auth endpoints, the admin pool endpoints, and the pool-metrics and
// server-info documents. It never handles a render request itself.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/volcanion-labs/ssr-dispatcher/internal/domain"
)

// ErrorResponse is the JSON body returned for every mapped domain error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

// MapErrorToHTTP maps a domain error to the HTTP status and JSON body this
// boundary's API endpoints reply with.
func MapErrorToHTTP(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var notFoundErr *domain.NotFoundError
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: notFoundErr.Error(),
		})

	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: validationErr.Message,
			Field:   validationErr.Field,
		})

	case errors.Is(err, domain.ErrAlreadyRunning):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "conflict",
			Message: "a benchmark run with this ID is already in progress",
		})

	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_input",
			Message: err.Error(),
		})

	case errors.Is(err, domain.ErrSLAViolation):
		c.JSON(http.StatusExpectationFailed, ErrorResponse{
			Error:   "sla_violation",
			Message: err.Error(),
		})

	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "an unexpected error occurred",
		})
	}
}
