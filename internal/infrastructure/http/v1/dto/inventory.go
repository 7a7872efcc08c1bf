package dto

import (
	"khaata/internal/core/id"
	"khaata/internal/domain/conversion"
	"khaata/internal/domain/inventory"
)

type AdjustmentRequest struct {
	ProductID id.ID                          `json:"productId" binding:"required"`
	Direction inventory.Direction            `json:"direction" binding:"required,oneof=in out"`
	Quantity  *conversion.Quantity           `json:"quantity" binding:"omitempty,quantity"`
	Variants  map[string]conversion.Quantity `json:"variants" binding:"omitempty,dive,quantity"`
}

type AdjustRequest struct {
	Items []AdjustmentRequest `json:"items" binding:"required,min=1,dive"`
}

func (r AdjustRequest) ToAdjustments() []inventory.Adjustment {
	out := make([]inventory.Adjustment, len(r.Items))
	for i, it := range r.Items {
		out[i] = inventory.Adjustment{
			ProductID: it.ProductID,
			Direction: it.Direction,
			Quantity:  it.Quantity,
			Variants:  it.Variants,
		}
	}
	return out
}

type AdjustResponse struct {
	Results []inventory.AdjustmentResult `json:"results"`
	Applied int                          `json:"applied"`
	Failed  int                          `json:"failed"`
}

func NewAdjustResponse(results []inventory.AdjustmentResult) AdjustResponse {
	resp := AdjustResponse{Results: results}
	for _, r := range results {
		if r.Applied() {
			resp.Applied++
		} else {
			resp.Failed++
		}
	}
	return resp
}
