package handler

import (
	"net/http"

	"github.com/paytrack/paytrack-api/internal/apperr"
	"github.com/paytrack/paytrack-api/pkg/response"

	"github.com/gin-gonic/gin"
)

// statusFor maps the service error taxonomy to HTTP status codes
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindState, apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the standard error envelope for a service error
func fail(c *gin.Context, err error) {
	status := statusFor(err)
	c.JSON(status, response.Error(status, err.Error()))
}

// badRequest writes a 400 for malformed request payloads
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, msg))
}
