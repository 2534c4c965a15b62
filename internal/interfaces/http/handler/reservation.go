package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	invapp "github.com/storefront/backend/internal/application/inventory"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// ReservationUseCases is the slice of the reservation service the handler drives
type ReservationUseCases interface {
	ReserveInventory(ctx context.Context, req invapp.ReserveInventoryRequest) (*invapp.ReserveInventoryResult, error)
	ConfirmReservation(ctx context.Context, orderID string) (*invapp.TransitionResult, error)
	CancelReservation(ctx context.Context, orderID string) (*invapp.TransitionResult, error)
	ListOrderReservations(ctx context.Context, orderID string) ([]invapp.ReservationResponse, error)
}

// ReservationHandler handles reservation endpoints for the order subsystem
type ReservationHandler struct {
	BaseHandler
	reservations ReservationUseCases
}

// NewReservationHandler creates a new ReservationHandler
func NewReservationHandler(reservations ReservationUseCases) *ReservationHandler {
	return &ReservationHandler{reservations: reservations}
}

// Reserve godoc
// @ID           reserveInventory
// @Summary      Reserve inventory for an order
// @Description  Places an all-or-nothing hold on every item. Duplicate SKU lines are merged.
// @Description  When any SKU is short nothing is reserved and the shortfalls are returned in error.details.
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        request body invapp.ReserveInventoryRequest true "Order and items"
// @Success      201 {object} APIResponse[invapp.ReserveInventoryResult]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reservations [post]
func (h *ReservationHandler) Reserve(c *gin.Context) {
	var req invapp.ReserveInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.reservations.ReserveInventory(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !result.Success {
		h.ErrorWithDetails(c, dto.ErrCodeInsufficientStock,
			"Insufficient stock for one or more items", result.InsufficientStock)
		return
	}

	h.Created(c, result)
}

// Confirm godoc
// @ID           confirmReservation
// @Summary      Confirm an order's reservations
// @Description  Turns every ACTIVE hold of the order into a sale. Repeating the call reports ALREADY_PROCESSED.
// @Tags         reservations
// @Produce      json
// @Param        order_id path string true "Order ID"
// @Success      200 {object} APIResponse[invapp.TransitionResult]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reservations/orders/{order_id}/confirm [post]
func (h *ReservationHandler) Confirm(c *gin.Context) {
	h.transition(c, h.reservations.ConfirmReservation)
}

// Cancel godoc
// @ID           cancelReservation
// @Summary      Cancel an order's reservations
// @Description  Releases every ACTIVE hold of the order. Repeating the call reports ALREADY_PROCESSED.
// @Tags         reservations
// @Produce      json
// @Param        order_id path string true "Order ID"
// @Success      200 {object} APIResponse[invapp.TransitionResult]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reservations/orders/{order_id}/cancel [post]
func (h *ReservationHandler) Cancel(c *gin.Context) {
	h.transition(c, h.reservations.CancelReservation)
}

func (h *ReservationHandler) transition(c *gin.Context, fn func(context.Context, string) (*invapp.TransitionResult, error)) {
	orderID := c.Param("order_id")

	result, err := fn(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Outcome == invapp.TransitionAlreadyProcessed {
		h.ErrorWithDetails(c, dto.ErrCodeAlreadyProcessed,
			"No active reservation found for order", gin.H{"order_id": result.OrderID})
		return
	}

	h.Success(c, result)
}

// ListByOrder godoc
// @ID           listOrderReservations
// @Summary      List an order's reservations
// @Description  Returns every reservation of the order in creation order, whatever its status
// @Tags         reservations
// @Produce      json
// @Param        order_id path string true "Order ID"
// @Success      200 {object} APIResponse[[]invapp.ReservationResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reservations/orders/{order_id} [get]
func (h *ReservationHandler) ListByOrder(c *gin.Context) {
	reservations, err := h.reservations.ListOrderReservations(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if reservations == nil {
		reservations = []invapp.ReservationResponse{}
	}
	h.Success(c, reservations)
}
