// Package response translates core results and the domain error taxonomy into
// HTTP responses. No raw storage errors cross this boundary.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stayhaven/service-booking/internal/domain"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Accepted writes an empty 202 response.
func Accepted(c *gin.Context) {
	c.Status(http.StatusAccepted)
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorBody{Error: message})
}

// Unauthorized writes a 401 response with the given message.
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, ErrorBody{Error: message})
}

// Error maps a domain error to its HTTP status. Business conflicts are client
// faults (400) like validation errors; data-integrity faults and anything
// unrecognized are opaque 500s.
func Error(c *gin.Context, err error) {
	var (
		validationErr   *domain.ValidationError
		notFoundErr     *domain.NotFoundError
		conflictErr     *domain.ConflictError
		integrityErr    *domain.DataIntegrityError
		unauthorizedErr *domain.UnauthorizedError
		forbiddenErr    *domain.ForbiddenError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorBody{Error: validationErr.Message})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusBadRequest, ErrorBody{Error: conflictErr.Message})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, ErrorBody{Error: notFoundErr.Error()})
	case errors.As(err, &unauthorizedErr):
		c.JSON(http.StatusUnauthorized, ErrorBody{Error: unauthorizedErr.Message})
	case errors.As(err, &forbiddenErr):
		c.JSON(http.StatusForbidden, ErrorBody{Error: forbiddenErr.Message})
	case errors.As(err, &integrityErr):
		c.JSON(http.StatusInternalServerError, ErrorBody{Error: "booking data is inconsistent"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorBody{Error: "internal server error"})
	}
}
