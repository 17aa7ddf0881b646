// Package response holds gin JSON helpers for the API's wire format:
// bare resources on success, {"message": ...} on error, and a
// {"data": ..., "meta": ...} envelope for paginated lists.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is the body of every non-2xx response.
type Error struct {
	Message string `json:"message"`
}

// Paginated is the envelope for list endpoints.
type Paginated struct {
	Data any `json:"data"`
	Meta any `json:"meta"`
}

// OK sends a 200 JSON response.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 JSON response.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Page sends a 200 paginated list envelope.
func Page(c *gin.Context, data any, meta any) {
	c.JSON(http.StatusOK, Paginated{Data: data, Meta: meta})
}

// BadRequest sends 400 with an error message.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Error{Message: msg})
}

// NotFound sends 404.
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Error{Message: msg})
}

// Conflict sends 409.
func Conflict(c *gin.Context, msg string) {
	c.JSON(http.StatusConflict, Error{Message: msg})
}

// UnprocessableEntity sends 422 for validation failures.
func UnprocessableEntity(c *gin.Context, msg string) {
	c.JSON(http.StatusUnprocessableEntity, Error{Message: msg})
}

// ServiceUnavailable sends 503 for retryable store contention.
func ServiceUnavailable(c *gin.Context, msg string) {
	c.JSON(http.StatusServiceUnavailable, Error{Message: msg})
}

// Internal sends 500.
func Internal(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, Error{Message: msg})
}
