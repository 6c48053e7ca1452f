package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindByIDForUpdate loads an order and holds its row lock until the
	// surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// CountByCustomer counts orders of a customer excluding cancelled ones
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
	// HasDeliveredProduct reports whether the customer received the product in a delivered order
	HasDeliveredProduct(ctx context.Context, customerID, productID uuid.UUID) (bool, error)
	Save(ctx context.Context, order *Order) error
}
