package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedRouter(level zapcore.Level) (*gin.Engine, *observer.ObservedLogs) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(level)
	l := zap.New(core)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), "req-123"))
		c.Next()
	})
	router.Use(Recovery(l))
	router.Use(GinMiddleware(l))
	return router, recorded
}

func TestGinMiddleware_LogLevelFollowsStatus(t *testing.T) {
	tests := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusUnprocessableEntity, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			router, recorded := newObservedRouter(zapcore.DebugLevel)
			router.GET("/baskets", func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/baskets?quantity=2", nil))

			entries := recorded.FilterMessage("HTTP request").All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0].Level)
			fields := entries[0].ContextMap()
			assert.Equal(t, "req-123", fields["request_id"])
			assert.Equal(t, "/baskets", fields["path"])
			assert.Equal(t, "quantity=2", fields["query"])
			assert.EqualValues(t, tt.status, fields["status"])
		})
	}
}

func TestGinMiddleware_StoresRequestLogger(t *testing.T) {
	router, recorded := newObservedRouter(zapcore.InfoLevel)
	router.GET("/x", func(c *gin.Context) {
		GetGinLogger(c).Info("inside handler")
		FromContext(c.Request.Context()).Info("via context")
		c.Status(http.StatusNoContent)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, 1, recorded.FilterMessage("inside handler").Len())
	assert.Equal(t, 1, recorded.FilterMessage("via context").Len())
	assert.Equal(t, "req-123", recorded.FilterMessage("inside handler").All()[0].ContextMap()["request_id"])
}

func TestRecovery(t *testing.T) {
	router, recorded := newObservedRouter(zapcore.InfoLevel)
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, recorded.FilterMessage("Panic recovered").Len())
}

func TestGetGinLogger_NotSet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))
}
