package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lendshare/service-lending/internal/platform/domain"
)

// ErrorBody is the JSON error envelope returned on failures.
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

// NoContent writes an empty 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorBody{Error: message})
}

// Error maps a service error to its HTTP status. Authorization failures
// surface as 404, matching the not-found-style responses the rest of
// the API uses for entities the caller may not see.
func Error(c *gin.Context, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		c.JSON(http.StatusInternalServerError, ErrorBody{Error: "internal server error"})
		return
	}

	switch de.Kind {
	case domain.KindNotFound, domain.KindForbidden:
		c.JSON(http.StatusNotFound, ErrorBody{Error: de.Message})
	case domain.KindValidation, domain.KindInvalidState:
		c.JSON(http.StatusBadRequest, ErrorBody{Error: de.Message})
	case domain.KindConflict:
		c.JSON(http.StatusConflict, ErrorBody{Error: de.Message})
	default:
		c.JSON(http.StatusInternalServerError, ErrorBody{Error: de.Message})
	}
}
