package event

import (
	"context"

	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LifecycleLogHandler writes every lifecycle event to the log. It is
// subscribed to the in-memory bus so events stay visible without a broker.
type LifecycleLogHandler struct {
	logger *zap.Logger
}

// NewLifecycleLogHandler creates a new LifecycleLogHandler
func NewLifecycleLogHandler(l *zap.Logger) *LifecycleLogHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return &LifecycleLogHandler{logger: l}
}

// Handle logs the event with its domain fields
func (h *LifecycleLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}
	switch e := event.(type) {
	case *inventory.ReservationTransitionedEvent:
		fields = append(fields,
			zap.String("order_id", e.OrderID),
			zap.String("sku_id", e.SKUID.String()),
			zap.Int("quantity", e.Quantity),
			zap.String("status", e.Status.String()),
		)
	case *inventory.ProductArchivedEvent:
		fields = append(fields, zap.String("product_id", e.ProductID.String()))
	}

	log := h.logger
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		log = log.With(zap.String("request_id", requestID))
	}
	log.Info("Inventory lifecycle event", fields...)
	return nil
}

// EventTypes subscribes the handler to every lifecycle event
func (h *LifecycleLogHandler) EventTypes() []string {
	return []string{
		inventory.EventTypeReservationConfirmed,
		inventory.EventTypeReservationCancelled,
		inventory.EventTypeReservationExpired,
		inventory.EventTypeProductArchived,
	}
}

var _ shared.EventHandler = (*LifecycleLogHandler)(nil)
