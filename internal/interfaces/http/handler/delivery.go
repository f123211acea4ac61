package handler

import (
	"context"
	"time"

	basketapp "github.com/foodbank/backend/internal/application/basket"
	"github.com/foodbank/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// DeliveryService is the application surface the delivery handler drives
type DeliveryService interface {
	RegisterDelivery(ctx context.Context, cmd basketapp.RegisterDeliveryCommand) (*basketapp.DeliveryResponse, error)
	GetDelivery(ctx context.Context, id int64) (*basketapp.DeliveryResponse, error)
}

// DeliveryHandler handles basket delivery API endpoints
type DeliveryHandler struct {
	BaseHandler
	service DeliveryService
}

// NewDeliveryHandler creates a new DeliveryHandler
func NewDeliveryHandler(service DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{service: service}
}

// DeliveryItemRequest is one food handed to the recipient
type DeliveryItemRequest struct {
	FoodID   int64           `json:"food_id" example:"3"`
	Quantity decimal.Decimal `json:"quantity" swaggertype:"string" example:"2.5"`
}

// RegisterDeliveryRequest represents a request to record a delivery
// @Description Delivery header and the foods handed over. Lines without a
// @Description food or with a non-positive quantity are ignored.
type RegisterDeliveryRequest struct {
	RecipientName string                `json:"recipient_name" binding:"required,max=200" example:"Maria Silva"`
	DeliveredAt   time.Time             `json:"delivered_at" binding:"required" example:"2025-01-15T10:30:00Z"`
	Notes         string                `json:"notes" binding:"max=1000" example:"Picked up by neighbour"`
	Items         []DeliveryItemRequest `json:"items" binding:"required,min=1"`
}

// RegisterDelivery godoc
// @ID           registerBasketDelivery
// @Summary      Register delivery
// @Description  Record the foods handed to a recipient. Stock lots are not touched.
// @Tags         baskets
// @Accept       json
// @Produce      json
// @Param        X-User-Email header string false "Audit identity recorded on the delivery"
// @Param        request body RegisterDeliveryRequest true "Delivery"
// @Success      201 {object} APIResponse[basketapp.DeliveryResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /baskets/deliveries [post]
func (h *DeliveryHandler) RegisterDelivery(c *gin.Context) {
	var req RegisterDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	items := make([]basketapp.DeliveryLineInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = basketapp.DeliveryLineInput{FoodID: item.FoodID, Quantity: item.Quantity}
	}

	delivery, err := h.service.RegisterDelivery(c.Request.Context(), basketapp.RegisterDeliveryCommand{
		RecipientName: req.RecipientName,
		DeliveredAt:   req.DeliveredAt,
		Notes:         req.Notes,
		CreatedBy:     middleware.GetActor(c),
		Items:         items,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, delivery)
}

// GetDelivery godoc
// @ID           getBasketDelivery
// @Summary      Get delivery
// @Description  Retrieve a delivery with its items
// @Tags         baskets
// @Produce      json
// @Param        id path int true "Delivery ID"
// @Success      200 {object} APIResponse[basketapp.DeliveryResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /baskets/deliveries/{id} [get]
func (h *DeliveryHandler) GetDelivery(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid delivery ID")
		return
	}

	delivery, err := h.service.GetDelivery(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, delivery)
}
