package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	couponapp "github.com/grocer/backend/internal/application/coupon"
	"github.com/grocer/backend/internal/domain/cart"
	"github.com/grocer/backend/internal/domain/catalog"
	"github.com/grocer/backend/internal/domain/coupon"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockCartRepository is a mock implementation of cart.CartRepository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) FindByCustomerAndStore(ctx context.Context, customerID, storeID uuid.UUID) (*cart.Cart, error) {
	args := m.Called(ctx, customerID, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) ExistsBySKU(ctx context.Context, storeID uuid.UUID, sku string) (bool, error) {
	args := m.Called(ctx, storeID, sku)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

func (m *MockProductRepository) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// stubEvaluator returns a fixed evaluation or error
type stubEvaluator struct {
	eval  *couponapp.Evaluation
	err   error
	calls int
}

func (e *stubEvaluator) Evaluate(_ context.Context, _ couponapp.EvaluationInput) (*couponapp.Evaluation, error) {
	e.calls++
	return e.eval, e.err
}

func newTestProduct(t *testing.T, storeID uuid.UUID, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(storeID, "BREAD", "Brown Bread", "loaf",
		decimal.NewFromInt(50), decimal.NewFromInt(45), decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, p.AdjustStock(stock))
	p.PullDomainEvents()
	return p
}

func TestCartService_Get_CreatesCart(t *testing.T) {
	ctx := context.Background()
	carts := new(MockCartRepository)
	customerID, storeID := uuid.New(), uuid.New()
	carts.On("FindByCustomerAndStore", ctx, customerID, storeID).Return(nil, shared.ErrNotFound)
	carts.On("Save", ctx, mock.AnythingOfType("*cart.Cart")).Return(nil)

	resp, err := NewCartService(carts, new(MockProductRepository), &stubEvaluator{}, zap.NewNop()).Get(ctx, customerID, storeID)
	require.NoError(t, err)
	assert.Equal(t, storeID, resp.StoreID)
	assert.Empty(t, resp.Items)
	assert.True(t, resp.Subtotal.IsZero())
	carts.AssertNumberOfCalls(t, "Save", 1)
}

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()
	customerID, storeID := uuid.New(), uuid.New()

	t.Run("merges quantities", func(t *testing.T) {
		carts := new(MockCartRepository)
		products := new(MockProductRepository)
		p := newTestProduct(t, storeID, 10)
		existing, err := cart.NewCart(customerID, storeID)
		require.NoError(t, err)

		products.On("FindByID", ctx, p.ID).Return(p, nil)
		carts.On("FindByCustomerAndStore", ctx, customerID, storeID).Return(existing, nil)
		carts.On("Save", ctx, existing).Return(nil)

		svc := NewCartService(carts, products, &stubEvaluator{}, zap.NewNop())
		_, err = svc.AddItem(ctx, customerID, AddItemRequest{ProductID: p.ID, Quantity: 2})
		require.NoError(t, err)
		resp, err := svc.AddItem(ctx, customerID, AddItemRequest{ProductID: p.ID, Quantity: 3})
		require.NoError(t, err)

		require.Len(t, resp.Items, 1)
		assert.Equal(t, 5, resp.Items[0].Quantity)
		assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(225)))
	})

	t.Run("merged line beyond stock", func(t *testing.T) {
		carts := new(MockCartRepository)
		products := new(MockProductRepository)
		p := newTestProduct(t, storeID, 4)
		existing, err := cart.NewCart(customerID, storeID)
		require.NoError(t, err)
		_, err = existing.AddItem(cart.ProductSnapshot{ProductID: p.ID, StoreID: storeID, Name: p.Name, UnitPrice: p.Price}, 3)
		require.NoError(t, err)

		products.On("FindByID", ctx, p.ID).Return(p, nil)
		carts.On("FindByCustomerAndStore", ctx, customerID, storeID).Return(existing, nil)

		_, err = NewCartService(carts, products, &stubEvaluator{}, zap.NewNop()).
			AddItem(ctx, customerID, AddItemRequest{ProductID: p.ID, Quantity: 2})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("inactive product", func(t *testing.T) {
		products := new(MockProductRepository)
		p := newTestProduct(t, storeID, 4)
		require.NoError(t, p.Deactivate())
		products.On("FindByID", ctx, p.ID).Return(p, nil)

		_, err := NewCartService(new(MockCartRepository), products, &stubEvaluator{}, zap.NewNop()).
			AddItem(ctx, customerID, AddItemRequest{ProductID: p.ID, Quantity: 1})
		assert.Equal(t, "PRODUCT_UNAVAILABLE", shared.ErrorCode(err))
	})
}

func TestCartService_UpdateItem_ZeroRemoves(t *testing.T) {
	ctx := context.Background()
	customerID, storeID := uuid.New(), uuid.New()
	carts := new(MockCartRepository)
	products := new(MockProductRepository)
	p := newTestProduct(t, storeID, 4)
	c, err := cart.NewCart(customerID, storeID)
	require.NoError(t, err)
	_, err = c.AddItem(cart.ProductSnapshot{ProductID: p.ID, StoreID: storeID, Name: p.Name, UnitPrice: p.Price}, 2)
	require.NoError(t, err)

	carts.On("FindByCustomerAndStore", ctx, customerID, storeID).Return(c, nil)
	carts.On("Save", ctx, c).Return(nil)

	resp, err := NewCartService(carts, products, &stubEvaluator{}, zap.NewNop()).
		UpdateItem(ctx, customerID, p.ID, UpdateItemRequest{StoreID: storeID, Quantity: 0})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestCartService_ApplyCoupon(t *testing.T) {
	ctx := context.Background()
	customerID, storeID := uuid.New(), uuid.New()

	newCart := func(t *testing.T) *cart.Cart {
		c, err := cart.NewCart(customerID, storeID)
		require.NoError(t, err)
		_, err = c.AddItem(cart.ProductSnapshot{ProductID: uuid.New(), StoreID: storeID, Name: "Rice", UnitPrice: decimal.NewFromInt(400)}, 1)
		require.NoError(t, err)
		return c
	}

	t.Run("eligible coupon attached with preview", func(t *testing.T) {
		carts := new(MockCartRepository)
		c := newCart(t)
		carts.On("FindByCustomerAndStore", ctx, customerID, storeID).Return(c, nil)
		carts.On("Save", ctx, c).Return(nil)
		eval := &stubEvaluator{eval: &couponapp.Evaluation{
			Coupon:   &coupon.Coupon{Code: "FLAT50"},
			Discount: decimal.NewFromInt(50),
		}}

		resp, err := NewCartService(carts, new(MockProductRepository), eval, zap.NewNop()).
			ApplyCoupon(ctx, customerID, ApplyCouponRequest{StoreID: storeID, Code: "flat50"})
		require.NoError(t, err)
		assert.Equal(t, "FLAT50", resp.CouponCode)
		assert.True(t, resp.Discount.Equal(decimal.NewFromInt(50)))
	})

	t.Run("ineligible coupon rejected", func(t *testing.T) {
		carts := new(MockCartRepository)
		c := newCart(t)
		carts.On("FindByCustomerAndStore", ctx, customerID, storeID).Return(c, nil)
		eval := &stubEvaluator{err: shared.NewDomainError(coupon.CodeMinOrderNotMet, "Add more")}

		_, err := NewCartService(carts, new(MockProductRepository), eval, zap.NewNop()).
			ApplyCoupon(ctx, customerID, ApplyCouponRequest{StoreID: storeID, Code: "BIG"})
		assert.Equal(t, coupon.CodeMinOrderNotMet, shared.ErrorCode(err))
		assert.Empty(t, c.CouponCode)
	})

	t.Run("empty cart", func(t *testing.T) {
		carts := new(MockCartRepository)
		empty, err := cart.NewCart(customerID, storeID)
		require.NoError(t, err)
		carts.On("FindByCustomerAndStore", ctx, customerID, storeID).Return(empty, nil)
		eval := &stubEvaluator{}

		_, err = NewCartService(carts, new(MockProductRepository), eval, zap.NewNop()).
			ApplyCoupon(ctx, customerID, ApplyCouponRequest{StoreID: storeID, Code: "ANY"})
		assert.Equal(t, "EMPTY_CART", shared.ErrorCode(err))
		assert.Zero(t, eval.calls)
	})
}
