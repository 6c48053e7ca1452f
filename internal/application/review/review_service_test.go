package review

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/catalog"
	"github.com/grocer/backend/internal/domain/identity"
	"github.com/grocer/backend/internal/domain/order"
	"github.com/grocer/backend/internal/domain/review"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type reviewFixture struct {
	reviews  *MockReviewRepository
	products *MockProductRepository
	orders   *MockOrderRepository
	events   *recordingPublisher
	product  *catalog.Product
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	p, err := catalog.NewProduct(uuid.New(), "GHEE", "Cow Ghee", "500ml",
		decimal.NewFromInt(350), decimal.NewFromInt(320), decimal.NewFromInt(12))
	require.NoError(t, err)
	return &reviewFixture{
		reviews:  new(MockReviewRepository),
		products: new(MockProductRepository),
		orders:   new(MockOrderRepository),
		events:   &recordingPublisher{},
		product:  p,
	}
}

func (f *reviewFixture) service() *ReviewService {
	return NewReviewService(f.reviews, f.products, f.orders, f.events, zap.NewNop())
}

func deliveredOrder(t *testing.T, customerID, productID uuid.UUID) *order.Order {
	t.Helper()
	o, err := order.NewOrder(customerID, uuid.New(), uuid.New(), []order.LineInput{
		{ProductID: productID, Name: "Cow Ghee", Quantity: 1, UnitPrice: decimal.NewFromInt(320), GSTRate: decimal.NewFromInt(12)},
	}, order.DeliveryAddress{Line: "4 Park Street", City: "Kolkata", Pincode: "700016"}, order.PaymentMethodCOD)
	require.NoError(t, err)
	require.NoError(t, o.Confirm())
	require.NoError(t, o.Pack())
	require.NoError(t, o.Dispatch())
	require.NoError(t, o.Deliver())
	return o
}

func TestReviewService_Create(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()

	t.Run("verified through delivered orders", func(t *testing.T) {
		f := newReviewFixture(t)
		f.products.On("FindByID", ctx, f.product.ID).Return(f.product, nil)
		f.reviews.On("ExistsByCustomerAndProduct", ctx, customerID, f.product.ID).Return(false, nil)
		f.orders.On("HasDeliveredProduct", ctx, customerID, f.product.ID).Return(true, nil)
		f.reviews.On("Save", ctx, mock.AnythingOfType("*review.Review")).Return(nil)

		resp, err := f.service().Create(ctx, customerID, CreateReviewRequest{ProductID: f.product.ID, Rating: 4, Title: "Good"})
		require.NoError(t, err)
		assert.True(t, resp.VerifiedPurchase)
		assert.Nil(t, resp.OrderID)
		assert.Equal(t, f.product.StoreID, resp.StoreID)
		assert.Equal(t, "PENDING", resp.Status)
		assert.Equal(t, []string{review.EventTypeReviewSubmitted}, f.events.types())
	})

	t.Run("linked to a named order", func(t *testing.T) {
		f := newReviewFixture(t)
		o := deliveredOrder(t, customerID, f.product.ID)
		f.products.On("FindByID", ctx, f.product.ID).Return(f.product, nil)
		f.reviews.On("ExistsByCustomerAndProduct", ctx, customerID, f.product.ID).Return(false, nil)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.reviews.On("Save", ctx, mock.Anything).Return(nil)

		resp, err := f.service().Create(ctx, customerID, CreateReviewRequest{ProductID: f.product.ID, OrderID: &o.ID, Rating: 5})
		require.NoError(t, err)
		require.NotNil(t, resp.OrderID)
		assert.Equal(t, o.ID, *resp.OrderID)
		assert.True(t, resp.VerifiedPurchase)
	})

	t.Run("order of someone else", func(t *testing.T) {
		f := newReviewFixture(t)
		o := deliveredOrder(t, uuid.New(), f.product.ID)
		f.products.On("FindByID", ctx, f.product.ID).Return(f.product, nil)
		f.reviews.On("ExistsByCustomerAndProduct", ctx, customerID, f.product.ID).Return(false, nil)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := f.service().Create(ctx, customerID, CreateReviewRequest{ProductID: f.product.ID, OrderID: &o.ID, Rating: 5})
		assert.Equal(t, "INVALID_ORDER", shared.ErrorCode(err))
		f.reviews.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("second review of a product", func(t *testing.T) {
		f := newReviewFixture(t)
		f.products.On("FindByID", ctx, f.product.ID).Return(f.product, nil)
		f.reviews.On("ExistsByCustomerAndProduct", ctx, customerID, f.product.ID).Return(true, nil)

		_, err := f.service().Create(ctx, customerID, CreateReviewRequest{ProductID: f.product.ID, Rating: 3})
		assert.Equal(t, "ALREADY_REVIEWED", shared.ErrorCode(err))
	})
}

func TestReviewService_UpdateAndModerate(t *testing.T) {
	ctx := context.Background()
	customerID, moderatorID := uuid.New(), uuid.New()

	newApproved := func(t *testing.T) *review.Review {
		r, err := review.NewReview(uuid.New(), uuid.New(), customerID, 2, "Meh", "")
		require.NoError(t, err)
		require.NoError(t, r.Approve(moderatorID))
		r.PullDomainEvents()
		return r
	}

	t.Run("edit resets moderation", func(t *testing.T) {
		f := newReviewFixture(t)
		r := newApproved(t)
		f.reviews.On("FindByID", ctx, r.ID).Return(r, nil)
		f.reviews.On("Save", ctx, r).Return(nil)

		resp, err := f.service().Update(ctx, customerID, r.ID, UpdateReviewRequest{Rating: 4, Title: "Better now"})
		require.NoError(t, err)
		assert.Equal(t, "PENDING", resp.Status)
		assert.Equal(t, 4, resp.Rating)
	})

	t.Run("edit by another customer", func(t *testing.T) {
		f := newReviewFixture(t)
		r := newApproved(t)
		f.reviews.On("FindByID", ctx, r.ID).Return(r, nil)

		_, err := f.service().Update(ctx, uuid.New(), r.ID, UpdateReviewRequest{Rating: 1})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("reject needs a note", func(t *testing.T) {
		f := newReviewFixture(t)
		r := newApproved(t)
		f.reviews.On("FindByID", ctx, r.ID).Return(r, nil)

		_, err := f.service().Reject(ctx, moderatorID, r.ID, RejectReviewRequest{Note: "  "})
		assert.Equal(t, "INVALID_REASON", shared.ErrorCode(err))
	})

	t.Run("reject", func(t *testing.T) {
		f := newReviewFixture(t)
		r := newApproved(t)
		f.reviews.On("FindByID", ctx, r.ID).Return(r, nil)
		f.reviews.On("Save", ctx, r).Return(nil)

		resp, err := f.service().Reject(ctx, moderatorID, r.ID, RejectReviewRequest{Note: "Off topic"})
		require.NoError(t, err)
		assert.Equal(t, "REJECTED", resp.Status)
		assert.Equal(t, []string{review.EventTypeReviewModerated}, f.events.types())
	})
}

func TestReviewService_List_PublicSeesApprovedOnly(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	productID := uuid.New()
	approvedOnly := mock.MatchedBy(func(flt shared.Filter) bool {
		return flt.Filters["status"] == "APPROVED" && flt.Filters["product_id"] == productID
	})
	f.reviews.On("FindAll", ctx, approvedOnly).Return([]review.Review{}, nil)
	f.reviews.On("Count", ctx, approvedOnly).Return(int64(0), nil)

	_, err := f.service().List(ctx, identity.RoleCustomer, ReviewListFilter{ProductID: &productID, Status: "PENDING"})
	require.NoError(t, err)
	f.reviews.AssertExpectations(t)
}

func TestReviewService_RatingSummary(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	f.products.On("FindByID", ctx, f.product.ID).Return(f.product, nil)
	f.reviews.On("RatingCounts", ctx, f.product.ID).Return(map[int]int64{5: 3, 4: 1, 1: 1}, nil)

	resp, err := f.service().RatingSummary(ctx, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.Count)
	assert.InDelta(t, 4.0, resp.Average, 0.001)
	assert.Equal(t, int64(3), resp.Histogram["5"])
	assert.Equal(t, int64(0), resp.Histogram["2"])
}

func TestReviewService_Delete(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	r, err := review.NewReview(uuid.New(), uuid.New(), customerID, 5, "", "")
	require.NoError(t, err)

	f := newReviewFixture(t)
	f.reviews.On("FindByID", ctx, r.ID).Return(r, nil)
	assert.ErrorIs(t, f.service().Delete(ctx, uuid.New(), identity.RoleCustomer, r.ID), shared.ErrForbidden)

	f.reviews.On("Delete", ctx, r.ID).Return(nil)
	require.NoError(t, f.service().Delete(ctx, customerID, identity.RoleCustomer, r.ID))
}
