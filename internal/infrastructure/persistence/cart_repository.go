package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/cart"
	"github.com/grocer/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartRepository implements cart.CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByCustomerAndStore finds the customer's cart for a store
func (r *GormCartRepository) FindByCustomerAndStore(ctx context.Context, customerID, storeID uuid.UUID) (*cart.Cart, error) {
	var c cart.Cart
	if err := conn(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("customer_id = ? AND store_id = ?", customerID, storeID).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByID finds a cart with its items
func (r *GormCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	var c cart.Cart
	if err := conn(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Save writes the cart, deleting lines no longer present
func (r *GormCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(c).Error; err != nil {
			return err
		}

		ids := make([]uuid.UUID, len(c.Items))
		for i := range c.Items {
			ids[i] = c.Items[i].ID
		}
		remove := tx.Where("cart_id = ?", c.ID)
		if len(ids) > 0 {
			remove = remove.Where("id NOT IN ?", ids)
		}
		if err := remove.Delete(&cart.CartItem{}).Error; err != nil {
			return err
		}

		for i := range c.Items {
			c.Items[i].CartID = c.ID
			if err := tx.Save(&c.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
