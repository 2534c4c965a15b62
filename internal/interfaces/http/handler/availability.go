package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/inventory"
)

// MaxAvailabilitySKUs bounds the number of SKUs per availability query
const MaxAvailabilitySKUs = 200

// AvailabilityReader reads available stock
type AvailabilityReader interface {
	GetAvailableStock(ctx context.Context, skuIDs []uuid.UUID) ([]inventory.StockAvailability, error)
}

// AvailabilityHandler handles stock availability queries
type AvailabilityHandler struct {
	BaseHandler
	availability AvailabilityReader
}

// NewAvailabilityHandler creates a new AvailabilityHandler
func NewAvailabilityHandler(availability AvailabilityReader) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// GetAvailability godoc
// @ID           getStockAvailability
// @Summary      Get available stock
// @Description  Returns total, reserved and available stock per SKU. Values may lag by the configured cache TTL.
// @Tags         inventory
// @Produce      json
// @Param        sku_ids query string true "Comma separated SKU IDs"
// @Success      200 {object} APIResponse[[]inventory.StockAvailability]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /inventory/availability [get]
func (h *AvailabilityHandler) GetAvailability(c *gin.Context) {
	skuIDs, msg := parseSKUIDs(c.Query("sku_ids"))
	if msg != "" {
		h.BadRequest(c, msg)
		return
	}

	stock, err := h.availability.GetAvailableStock(c.Request.Context(), skuIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// parseSKUIDs splits a comma separated list, dropping duplicates and blanks.
// The second return value is a client-facing message when the list is rejected.
func parseSKUIDs(raw string) ([]uuid.UUID, string) {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, "Invalid SKU ID: " + part
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	switch {
	case len(ids) == 0:
		return nil, "sku_ids is required"
	case len(ids) > MaxAvailabilitySKUs:
		return nil, "At most " + strconv.Itoa(MaxAvailabilitySKUs) + " SKU IDs per request"
	}
	return ids, ""
}
