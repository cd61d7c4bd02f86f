package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		query      string
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults when absent", "", 1, 20, 0},
		{"explicit values", "page=3&limit=50", 3, 50, 100},
		{"page below one falls back", "page=0&limit=10", 1, 10, 0},
		{"negative page falls back", "page=-5", 1, 20, 0},
		{"limit below min falls back to default", "limit=0", 1, 20, 0},
		{"limit above max is capped", "limit=500", 1, 100, 0},
		{"non-numeric values fall back", "page=abc&limit=xyz", 1, 20, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/?"+tt.query, nil)

			p := Parse(c)

			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
			assert.Equal(t, tt.wantOffset, p.Offset)
		})
	}
}
