package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paytrack/paytrack-api/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation maps to 400", apperr.Validation("bad input"), http.StatusBadRequest},
		{"not found maps to 404", apperr.NotFound("loan not found"), http.StatusNotFound},
		{"state maps to 409", apperr.State("already closed"), http.StatusConflict},
		{"conflict maps to 409", apperr.Conflict("duplicate cutoff"), http.StatusConflict},
		{"unknown maps to 500", errors.New("db gone"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestFailWritesErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	fail(c, apperr.NotFound("client not found"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"client not found"`)
	assert.Contains(t, w.Body.String(), `"error"`)
}
