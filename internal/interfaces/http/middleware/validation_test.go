package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foodbank/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type assembleInput struct {
	Quantity int `json:"quantity" binding:"required,min=1,max=10000"`
}

func validationRouter() *gin.Engine {
	SetupValidator()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req assembleInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func TestHandleValidationError(t *testing.T) {
	router := validationRouter()

	t.Run("reports the json field name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"quantity": 0}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(RequestIDKey, "req-42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-42", resp.Error.RequestID)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "quantity", resp.Error.Details[0].Field)
		assert.Equal(t, "This field is required", resp.Error.Details[0].Message)
	})

	t.Run("accepts valid input", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"quantity": 3}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("malformed json has no field details", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"quantity": "three"`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Error.Details)
	})
}

func TestGetValidationMessage(t *testing.T) {
	type input struct {
		Required string `validate:"required"`
		Max      int    `validate:"max=10"`
		Name     string `validate:"min=5"`
		Window   string `validate:"oneof=expired 7days 30days"`
		Date     string `validate:"datetime=2006-01-02"`
	}

	err := validator.New().Struct(input{Max: 11, Name: "ab", Window: "90days", Date: "10/01/2025"})
	require.Error(t, err)

	messages := map[string]string{}
	for _, e := range err.(validator.ValidationErrors) {
		messages[e.Field()] = getValidationMessage(e)
	}

	assert.Equal(t, "This field is required", messages["Required"])
	assert.Equal(t, "Must be at most 10", messages["Max"])
	assert.Equal(t, "Must be at least 5 characters", messages["Name"])
	assert.Equal(t, "Must be one of: expired 7days 30days", messages["Window"])
	assert.Equal(t, "Must be a date in 2006-01-02 format", messages["Date"])
}
