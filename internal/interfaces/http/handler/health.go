package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/foodbank/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// HealthCheck probes one dependency of the service
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler reports whether the service and its dependencies respond
type HealthHandler struct {
	BaseHandler
	checks    []HealthCheck
	timeout   time.Duration
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{
		checks:    checks,
		timeout:   2 * time.Second,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
// @name HandlerHealthResponse
type HealthResponse struct {
	Status    string            `json:"status" example:"ok"`
	Checks    map[string]string `json:"checks"`
	GoVersion string            `json:"go_version" example:"go1.25.5"`
	Uptime    string            `json:"uptime" example:"1h30m45s"`
}

// Health godoc
// @ID           getHealth
// @Summary      Health check
// @Description  Pings the database and the idempotency store
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[HealthResponse]
// @Failure      503 {object} APIResponse[HealthResponse]
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{
		Status:    "ok",
		Checks:    make(map[string]string, len(h.checks)),
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	status := http.StatusOK
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			resp.Checks[check.Name] = "down: " + err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[check.Name] = "up"
	}

	c.JSON(status, dto.Response{Success: status == http.StatusOK, Data: resp})
}
