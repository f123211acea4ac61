package handler

import (
	basketapp "github.com/foodbank/backend/internal/application/basket"
	"github.com/foodbank/backend/internal/interfaces/http/dto"
)

// APIResponse represents a generic API response for OpenAPI documentation
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ShortfallResponse is returned with 422 when stock cannot cover a basket run
// @Description Insufficient stock error listing every missing food
type ShortfallResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
	Data    ShortfallData  `json:"data"`
}

// ShortfallData lists the foods that block a basket run
type ShortfallData struct {
	Missing []basketapp.MissingFood `json:"missing"`
}
