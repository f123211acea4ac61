package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	previous := otel.GetTracerProvider()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(previous)
	})
	return sr
}

func tracedRouter(status int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), Actor(), TracingWithConfig(DefaultTracingConfig()), SpanErrorMarker())
	router.POST("/api/v1/baskets/batches", func(c *gin.Context) { c.Status(status) })
	return router
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	sr := setupTestTracer(t)
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_TagsRequestAndActor(t *testing.T) {
	sr := setupTestTracer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/baskets/batches", nil)
	req.Header.Set(RequestIDKey, "req-7")
	req.Header.Set(ActorHeader, "ana@foodbank.org")
	tracedRouter(http.StatusCreated).ServeHTTP(httptest.NewRecorder(), req)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	span := spans[0]

	assert.Contains(t, span.Name(), "/api/v1/baskets/batches")
	v, ok := spanAttr(span, "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-7", v.AsString())
	v, ok = spanAttr(span, "actor")
	require.True(t, ok)
	assert.Equal(t, "ana@foodbank.org", v.AsString())
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestSpanErrorMarker(t *testing.T) {
	tests := []struct {
		status  int
		message string
	}{
		{http.StatusConflict, "Conflict"},
		{http.StatusUnprocessableEntity, "Unprocessable Entity"},
		{http.StatusBadRequest, "Client Error"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			sr := setupTestTracer(t)

			tracedRouter(tt.status).ServeHTTP(httptest.NewRecorder(),
				httptest.NewRequest(http.MethodPost, "/api/v1/baskets/batches", nil))

			spans := sr.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, codes.Error, spans[0].Status().Code)
			assert.Equal(t, tt.message, spans[0].Status().Description)
		})
	}
}

func TestSpanErrorMarker_ServerErrorLeftToOtelgin(t *testing.T) {
	sr := setupTestTracer(t)

	tracedRouter(http.StatusInternalServerError).ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodPost, "/api/v1/baskets/batches", nil))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	_, ok := spanAttr(spans[0], "request_id")
	assert.True(t, ok)
}
