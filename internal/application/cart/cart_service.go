package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	couponapp "github.com/grocer/backend/internal/application/coupon"
	"github.com/grocer/backend/internal/domain/cart"
	"github.com/grocer/backend/internal/domain/catalog"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CouponEvaluator prices a coupon for a basket
type CouponEvaluator interface {
	Evaluate(ctx context.Context, in couponapp.EvaluationInput) (*couponapp.Evaluation, error)
}

// CartService manages customers' open carts, one per store
type CartService struct {
	cartRepo    cart.CartRepository
	productRepo catalog.ProductRepository
	coupons     CouponEvaluator
	logger      *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(
	cartRepo cart.CartRepository,
	productRepo catalog.ProductRepository,
	coupons CouponEvaluator,
	logger *zap.Logger,
) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		coupons:     coupons,
		logger:      logger,
	}
}

// Get returns the customer's cart at a store, creating an empty one if needed
func (s *CartService) Get(ctx context.Context, customerID, storeID uuid.UUID) (*CartResponse, error) {
	c, err := s.getOrCreate(ctx, customerID, storeID)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, c), nil
}

// AddItem adds a product to the cart at the product's store
func (s *CartService) AddItem(ctx context.Context, customerID uuid.UUID, req AddItemRequest) (*CartResponse, error) {
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if err := product.IsSellable(req.Quantity); err != nil {
		return nil, err
	}

	c, err := s.getOrCreate(ctx, customerID, product.StoreID)
	if err != nil {
		return nil, err
	}
	qty, err := c.AddItem(cart.ProductSnapshot{
		ProductID: product.ID,
		StoreID:   product.StoreID,
		Name:      product.Name,
		SKU:       product.SKU,
		UnitPrice: product.Price,
		GSTRate:   product.GSTRate,
		HSNCode:   product.HSNCode,
	}, req.Quantity)
	if err != nil {
		return nil, err
	}
	// the merged line must still fit the stock on hand
	if err := product.IsSellable(qty); err != nil {
		return nil, err
	}

	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.respond(ctx, c), nil
}

// UpdateItem sets a line quantity; zero removes the line
func (s *CartService) UpdateItem(ctx context.Context, customerID, productID uuid.UUID, req UpdateItemRequest) (*CartResponse, error) {
	c, err := s.cartRepo.FindByCustomerAndStore(ctx, customerID, req.StoreID)
	if err != nil {
		return nil, err
	}
	if req.Quantity > 0 {
		product, err := s.productRepo.FindByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if err := product.IsSellable(req.Quantity); err != nil {
			return nil, err
		}
	}
	if err := c.UpdateQuantity(productID, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.respond(ctx, c), nil
}

// RemoveItem removes a line from the cart
func (s *CartService) RemoveItem(ctx context.Context, customerID, storeID, productID uuid.UUID) (*CartResponse, error) {
	return s.modify(ctx, customerID, storeID, func(c *cart.Cart) error {
		return c.RemoveItem(productID)
	})
}

// Clear empties the cart and drops its coupon
func (s *CartService) Clear(ctx context.Context, customerID, storeID uuid.UUID) (*CartResponse, error) {
	return s.modify(ctx, customerID, storeID, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
}

// ApplyCoupon validates a coupon against the cart and attaches it
func (s *CartService) ApplyCoupon(ctx context.Context, customerID uuid.UUID, req ApplyCouponRequest) (*CartResponse, error) {
	c, err := s.cartRepo.FindByCustomerAndStore(ctx, customerID, req.StoreID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, shared.NewDomainError("EMPTY_CART", "Add items before applying a coupon")
	}

	eval, err := s.coupons.Evaluate(ctx, couponapp.EvaluationInput{
		Code:     req.Code,
		UserID:   customerID,
		StoreID:  c.StoreID,
		Subtotal: c.Subtotal(),
	})
	if err != nil {
		return nil, err
	}
	if err := c.ApplyCoupon(eval.Coupon.Code); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Debug("Coupon applied to cart",
		zap.String("cart_id", c.ID.String()),
		zap.String("coupon", eval.Coupon.Code),
	)
	resp := ToCartResponse(c, eval.Discount)
	return &resp, nil
}

// RemoveCoupon detaches the cart's coupon
func (s *CartService) RemoveCoupon(ctx context.Context, customerID, storeID uuid.UUID) (*CartResponse, error) {
	return s.modify(ctx, customerID, storeID, func(c *cart.Cart) error {
		c.RemoveCoupon()
		return nil
	})
}

func (s *CartService) getOrCreate(ctx context.Context, customerID, storeID uuid.UUID) (*cart.Cart, error) {
	c, err := s.cartRepo.FindByCustomerAndStore(ctx, customerID, storeID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	c, err = cart.NewCart(customerID, storeID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CartService) modify(ctx context.Context, customerID, storeID uuid.UUID, change func(*cart.Cart) error) (*CartResponse, error) {
	c, err := s.cartRepo.FindByCustomerAndStore(ctx, customerID, storeID)
	if err != nil {
		return nil, err
	}
	if err := change(c); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.respond(ctx, c), nil
}

// respond shapes the cart with a discount preview. A coupon that stopped
// qualifying stays attached and previews as zero; checkout rejects it.
func (s *CartService) respond(ctx context.Context, c *cart.Cart) *CartResponse {
	discount := decimal.Zero
	if c.CouponCode != "" && !c.IsEmpty() && s.coupons != nil {
		eval, err := s.coupons.Evaluate(ctx, couponapp.EvaluationInput{
			Code:     c.CouponCode,
			UserID:   c.CustomerID,
			StoreID:  c.StoreID,
			Subtotal: c.Subtotal(),
		})
		if err == nil {
			discount = eval.Discount
		} else if shared.ErrorCode(err) == "" {
			s.logger.Warn("Coupon preview failed", zap.String("cart_id", c.ID.String()), zap.Error(err))
		}
	}
	resp := ToCartResponse(c, discount)
	return &resp
}
