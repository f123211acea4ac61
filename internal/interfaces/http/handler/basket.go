package handler

import (
	"context"
	"net/http"

	basketapp "github.com/foodbank/backend/internal/application/basket"
	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/foodbank/backend/internal/interfaces/http/dto"
	"github.com/foodbank/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// BasketService is the application surface the basket handler drives
type BasketService interface {
	PreviewAssembly(ctx context.Context, quantity int) (*basketapp.AvailabilityResponse, error)
	AssembleBaskets(ctx context.Context, req basketapp.AssembleBasketsRequest) (*basketapp.AssemblyResult, error)
	GetBatch(ctx context.Context, id int64) (*basketapp.BasketBatchResponse, error)
	ListBatches(ctx context.Context, filter basketapp.BatchListFilter) (*shared.Paginated[basketapp.BasketBatchResponse], error)
}

// BasketHandler handles basket assembly API endpoints
type BasketHandler struct {
	BaseHandler
	service BasketService
}

// NewBasketHandler creates a new BasketHandler
func NewBasketHandler(service BasketService) *BasketHandler {
	return &BasketHandler{service: service}
}

// AssembleBasketsRequest represents a request to assemble baskets
// @Description Number of standard baskets to put together from current stock
type AssembleBasketsRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1" example:"10"`
}

// AvailabilityQuery selects the basket count to preview
type AvailabilityQuery struct {
	Quantity int `form:"quantity" binding:"required,min=1" example:"10"`
}

// AssembleBaskets godoc
// @ID           assembleBaskets
// @Summary      Assemble baskets
// @Description  Consume stock earliest expiry first and record a basket batch.
// @Description  Either every lot update and the batch commit together or nothing is written.
// @Tags         baskets
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Key that makes resubmission safe"
// @Param        X-User-Email header string false "Audit identity recorded on the batch"
// @Param        request body AssembleBasketsRequest true "Basket quantity"
// @Success      201 {object} APIResponse[basketapp.AssemblyResult]
// @Success      200 {object} APIResponse[basketapp.AssemblyResult] "Replay of a completed request"
// @Failure      400 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      422 {object} ShortfallResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /baskets/batches [post]
func (h *BasketHandler) AssembleBaskets(c *gin.Context) {
	var req AssembleBasketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.service.AssembleBaskets(c.Request.Context(), basketapp.AssembleBasketsRequest{
		Quantity:       req.Quantity,
		CreatedBy:      middleware.GetActor(c),
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if !result.Success {
		c.JSON(http.StatusUnprocessableEntity, dto.Response{
			Success: false,
			Data:    ShortfallData{Missing: result.Missing},
			Error: &dto.ErrorInfo{
				Code:      dto.ErrCodeInsufficientStock,
				Message:   "Insufficient stock to assemble the requested baskets",
				RequestID: getRequestID(c),
			},
		})
		return
	}

	if result.Replayed {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

// PreviewAssembly godoc
// @ID           previewBasketAssembly
// @Summary      Preview basket availability
// @Description  Compare basket requirements with current stock without writing anything
// @Tags         baskets
// @Produce      json
// @Param        quantity query int true "Number of baskets" minimum(1)
// @Success      200 {object} APIResponse[basketapp.AvailabilityResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /baskets/availability [get]
func (h *BasketHandler) PreviewAssembly(c *gin.Context) {
	var query AvailabilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	preview, err := h.service.PreviewAssembly(c.Request.Context(), query.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// GetBatch godoc
// @ID           getBasketBatch
// @Summary      Get basket batch
// @Description  Retrieve a recorded batch with the total consumed per food
// @Tags         baskets
// @Produce      json
// @Param        id path int true "Batch ID"
// @Success      200 {object} APIResponse[basketapp.BasketBatchResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /baskets/batches/{id} [get]
func (h *BasketHandler) GetBatch(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	batch, err := h.service.GetBatch(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batch)
}

// ListBatches godoc
// @ID           listBasketBatches
// @Summary      List basket batches
// @Description  Recorded batches, newest first
// @Tags         baskets
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]basketapp.BasketBatchResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /baskets/batches [get]
func (h *BasketHandler) ListBatches(c *gin.Context) {
	var filter basketapp.BatchListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.service.ListBatches(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
