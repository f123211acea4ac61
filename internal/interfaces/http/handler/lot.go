package handler

import (
	"context"

	inventoryapp "github.com/foodbank/backend/internal/application/inventory"
	"github.com/foodbank/backend/internal/domain/inventory"
	"github.com/gin-gonic/gin"
)

// LotService is the application surface the lot handler drives
type LotService interface {
	DiscardLot(ctx context.Context, lotID int64, req inventoryapp.DiscardLotRequest) (*inventoryapp.LotResponse, error)
	ListExpiringLots(ctx context.Context, window inventory.ExpiryWindow) (*inventoryapp.ExpiringLotsResponse, error)
}

// LotHandler handles stock lot API endpoints
type LotHandler struct {
	BaseHandler
	service LotService
}

// NewLotHandler creates a new LotHandler
func NewLotHandler(service LotService) *LotHandler {
	return &LotHandler{service: service}
}

// ListExpiringLots godoc
// @ID           listExpiringLots
// @Summary      List expiring lots
// @Description  Available lots that expired or expire within the window, split by state
// @Tags         inventory
// @Produce      json
// @Param        filter query string false "Expiry window" Enums(expired, 7days, 30days) default(7days)
// @Success      200 {object} APIResponse[inventoryapp.ExpiringLotsResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /inventory/lots/expiring [get]
func (h *LotHandler) ListExpiringLots(c *gin.Context) {
	var filter inventoryapp.ExpiringLotsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	window, err := inventory.ParseExpiryWindow(filter.Filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	lots, err := h.service.ListExpiringLots(c.Request.Context(), window)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lots)
}

// DiscardLot godoc
// @ID           discardLot
// @Summary      Discard lot
// @Description  Withdraw an available lot from stock with a reason
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path int true "Lot ID"
// @Param        request body inventoryapp.DiscardLotRequest true "Discard reason"
// @Success      200 {object} APIResponse[inventoryapp.LotResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /inventory/lots/{id}/discard [post]
func (h *LotHandler) DiscardLot(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid lot ID")
		return
	}

	var req inventoryapp.DiscardLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	lot, err := h.service.DiscardLot(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lot)
}
