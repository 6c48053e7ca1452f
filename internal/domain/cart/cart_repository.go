package cart

import (
	"context"

	"github.com/google/uuid"
)

// CartRepository defines the interface for cart persistence
type CartRepository interface {
	FindByCustomerAndStore(ctx context.Context, customerID, storeID uuid.UUID) (*Cart, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Cart, error)
	// Save persists the cart and replaces its item set
	Save(ctx context.Context, cart *Cart) error
}
