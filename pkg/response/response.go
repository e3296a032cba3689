// Package response writes the {data} / {error} envelope every endpoint returns.
package response

import (
	"errors"
	"net/http"

	"animov/pkg/apperr"
	"animov/pkg/logger"

	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "internal server error"

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// Fail aborts the request with status and message.
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// BadRequest reports a binding or query validation failure.
func BadRequest(c *gin.Context, err error) {
	Fail(c, http.StatusBadRequest, err.Error())
}

// Error maps an apperr kind to its status code. Unclassified errors are logged
// and answered with a generic 500.
func Error(c *gin.Context, log *logger.Logger, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		if log != nil {
			log.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
		}
		Fail(c, status, internalErrorMessage)
		return
	}
	Fail(c, status, err.Error())
}

func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
