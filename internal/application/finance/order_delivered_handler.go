package finance

import (
	"context"
	"fmt"

	"github.com/grocer/backend/internal/domain/order"
	"github.com/grocer/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderDeliveredHandler posts delivered orders to the GST ledger
type OrderDeliveredHandler struct {
	orderRepo order.OrderRepository
	ledger    *GSTLedgerService
	logger    *zap.Logger
}

// NewOrderDeliveredHandler creates a new handler for order delivered events
func NewOrderDeliveredHandler(orderRepo order.OrderRepository, ledger *GSTLedgerService, logger *zap.Logger) *OrderDeliveredHandler {
	return &OrderDeliveredHandler{
		orderRepo: orderRepo,
		ledger:    ledger,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderDeliveredHandler) EventTypes() []string {
	return []string{order.EventTypeOrderDelivered}
}

// Handle loads the delivered order and records the sale
func (h *OrderDeliveredHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	delivered, ok := event.(*order.OrderDeliveredEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", order.EventTypeOrderDelivered),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			order.EventTypeOrderDelivered, event.EventType())
	}

	o, err := h.orderRepo.FindByID(ctx, delivered.OrderID)
	if err != nil {
		h.logger.Error("failed to load delivered order",
			zap.String("order_id", delivered.OrderID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to load order %s: %w", delivered.OrderNumber, err)
	}
	if err := h.ledger.RecordSale(ctx, o); err != nil {
		h.logger.Error("failed to post sale to GST ledger",
			zap.String("order_id", o.ID.String()),
			zap.String("order_number", o.OrderNumber),
			zap.Error(err),
		)
		return err
	}
	return nil
}

var _ shared.EventHandler = (*OrderDeliveredHandler)(nil)
