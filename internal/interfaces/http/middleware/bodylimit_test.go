package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foodbank/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// limitedBatchRouter accepts an assembly request the way the basket handler
// does: bind the JSON body, answer 400 when it cannot be read
func limitedBatchRouter(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), BodyLimit(limit))
	router.POST("/api/v1/baskets/batches", func(c *gin.Context) {
		var req struct {
			Quantity int `json:"quantity"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusCreated, dto.NewSuccessResponse(req.Quantity))
	})
	router.GET("/api/v1/baskets/batches", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

// notesPadding builds an assembly request whose JSON is roughly size bytes
func notesPadding(size int) string {
	return `{"quantity":3,"notes":"` + strings.Repeat("n", size) + `"}`
}

func TestBodyLimit(t *testing.T) {
	tests := []struct {
		name         string
		limit        int64
		body         string
		chunked      bool
		expectedCode int
	}{
		{"assembly request within limit", 256, `{"quantity":3}`, false, http.StatusCreated},
		{"declared length over limit", 64, notesPadding(200), false, http.StatusRequestEntityTooLarge},
		{"chunked body over limit", 64, notesPadding(200), true, http.StatusBadRequest},
		{"limit disabled", 0, notesPadding(4096), false, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/baskets/batches", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.ContentLength = int64(len(tt.body))
			if tt.chunked {
				req.ContentLength = -1
			}
			w := httptest.NewRecorder()
			limitedBatchRouter(tt.limit).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestBodyLimit_RejectionCarriesRequestID(t *testing.T) {
	body := notesPadding(200)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/baskets/batches", strings.NewReader(body))
	req.Header.Set(RequestIDKey, "req-oversized")
	req.ContentLength = int64(len(body))
	w := httptest.NewRecorder()
	limitedBatchRouter(64).ServeHTTP(w, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeRequestTooLarge, resp.Error.Code)
	assert.Equal(t, "req-oversized", resp.Error.RequestID)
}

func TestBodyLimit_ListingUnaffected(t *testing.T) {
	w := httptest.NewRecorder()
	limitedBatchRouter(8).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/baskets/batches", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
