package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/foodbank/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	r.Register(NewDomainGroup("test", "/test").GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	}))
	r.Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup_SubgroupsAndMiddleware(t *testing.T) {
	engine := gin.New()
	var seen []string

	g := NewDomainGroup("baskets", "/baskets").Use(func(c *gin.Context) {
		seen = append(seen, c.FullPath())
		c.Next()
	})
	g.Group("batches", "/batches").
		POST("", func(c *gin.Context) { c.Status(http.StatusCreated) }).
		GET("/:id", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) })
	g.RegisterRoutes(engine.Group("/api/v1"))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/baskets/batches", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/baskets/batches/7", nil))
	assert.Equal(t, "7", w.Body.String())

	assert.Equal(t, []string{"/api/v1/baskets/batches", "/api/v1/baskets/batches/:id"}, seen)
	assert.Equal(t, "baskets", g.Name())
	assert.Equal(t, "/baskets", g.Prefix())
}

func TestSetup_RegistersFoodBankAPI(t *testing.T) {
	engine := gin.New()
	Setup(engine, Handlers{
		Basket:   handler.NewBasketHandler(nil),
		Delivery: handler.NewDeliveryHandler(nil),
		Lot:      handler.NewLotHandler(nil),
		Health:   handler.NewHealthHandler(),
	})

	var got []string
	for _, route := range engine.Routes() {
		got = append(got, route.Method+" "+route.Path)
	}

	assert.ElementsMatch(t, []string{
		"GET /api/v1/baskets/availability",
		"POST /api/v1/baskets/batches",
		"GET /api/v1/baskets/batches",
		"GET /api/v1/baskets/batches/:id",
		"POST /api/v1/baskets/deliveries",
		"GET /api/v1/baskets/deliveries/:id",
		"GET /api/v1/inventory/lots/expiring",
		"POST /api/v1/inventory/lots/:id/discard",
		"GET /api/v1/health",
	}, got)
}

func TestSetup_HealthIsServed(t *testing.T) {
	engine := gin.New()
	Setup(engine, Handlers{
		Basket:   handler.NewBasketHandler(nil),
		Delivery: handler.NewDeliveryHandler(nil),
		Lot:      handler.NewLotHandler(nil),
		Health:   handler.NewHealthHandler(),
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
