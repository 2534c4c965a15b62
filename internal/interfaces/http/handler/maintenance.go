package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	invapp "github.com/storefront/backend/internal/application/inventory"
)

// ExpiryCleaner runs one expiry sweep
type ExpiryCleaner interface {
	CleanupExpiredReservations(ctx context.Context) (*invapp.CleanupResult, error)
}

// ProductArchiver runs one archival pass
type ProductArchiver interface {
	ArchiveZeroStockProducts(ctx context.Context) (*invapp.ArchiveResult, error)
}

// MaintenanceHandler exposes the sweeper and archival passes to an external scheduler
type MaintenanceHandler struct {
	BaseHandler
	cleaner  ExpiryCleaner
	archiver ProductArchiver
}

// NewMaintenanceHandler creates a new MaintenanceHandler
func NewMaintenanceHandler(cleaner ExpiryCleaner, archiver ProductArchiver) *MaintenanceHandler {
	return &MaintenanceHandler{cleaner: cleaner, archiver: archiver}
}

// CleanupExpired godoc
// @ID           cleanupExpiredReservations
// @Summary      Expire overdue reservations
// @Description  Releases every ACTIVE reservation past its expiry. Safe to run concurrently with confirm and cancel.
// @Tags         maintenance
// @Produce      json
// @Success      200 {object} APIResponse[invapp.CleanupResult]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /maintenance/reservations/cleanup [post]
func (h *MaintenanceHandler) CleanupExpired(c *gin.Context) {
	result, err := h.cleaner.CleanupExpiredReservations(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ArchiveProducts godoc
// @ID           archiveZeroStockProducts
// @Summary      Archive depleted products
// @Description  Deactivates active products whose SKUs all have zero stock. Best effort.
// @Tags         maintenance
// @Produce      json
// @Success      200 {object} APIResponse[invapp.ArchiveResult]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /maintenance/products/archive [post]
func (h *MaintenanceHandler) ArchiveProducts(c *gin.Context) {
	result, err := h.archiver.ArchiveZeroStockProducts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
