package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/catalog"
	"github.com/grocer/backend/internal/domain/identity"
	"github.com/grocer/backend/internal/domain/order"
	"github.com/grocer/backend/internal/domain/review"
	"github.com/grocer/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReviewService handles product reviews and their moderation
type ReviewService struct {
	reviewRepo  review.ReviewRepository
	productRepo catalog.ProductRepository
	orderRepo   order.OrderRepository
	events      shared.EventPublisher
	logger      *zap.Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	reviewRepo review.ReviewRepository,
	productRepo catalog.ProductRepository,
	orderRepo order.OrderRepository,
	events shared.EventPublisher,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		events:      events,
		logger:      logger,
	}
}

// Create submits a review for moderation
func (s *ReviewService) Create(ctx context.Context, customerID uuid.UUID, req CreateReviewRequest) (*ReviewResponse, error) {
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	exists, err := s.reviewRepo.ExistsByCustomerAndProduct(ctx, customerID, req.ProductID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_REVIEWED", "You have already reviewed this product")
	}

	r, err := review.NewReview(product.ID, product.StoreID, customerID, req.Rating, req.Title, req.Comment)
	if err != nil {
		return nil, err
	}
	if err := s.verifyPurchase(ctx, r, req.OrderID); err != nil {
		return nil, err
	}

	if err := s.reviewRepo.Save(ctx, r); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, r.PullDomainEvents())

	s.logger.Info("Review submitted",
		zap.String("review_id", r.ID.String()),
		zap.String("product_id", r.ProductID.String()),
		zap.Int("rating", r.Rating),
		zap.Bool("verified", r.VerifiedPurchase),
	)
	resp := ToReviewResponse(r)
	return &resp, nil
}

// GetByID returns a review
func (s *ReviewService) GetByID(ctx context.Context, id uuid.UUID) (*ReviewResponse, error) {
	r, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToReviewResponse(r)
	return &resp, nil
}

// List lists reviews. Non-staff callers only see approved reviews and their own.
func (s *ReviewService) List(ctx context.Context, role identity.Role, f ReviewListFilter) (shared.Paginated[ReviewResponse], error) {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}.Normalize()

	if f.ProductID != nil {
		filter = filter.With("product_id", *f.ProductID)
	}
	if f.StoreID != nil {
		filter = filter.With("store_id", *f.StoreID)
	}
	if f.CustomerID != nil {
		filter = filter.With("customer_id", *f.CustomerID)
	}
	switch {
	case role != identity.RoleAdmin && role != identity.RoleStoreManager:
		filter = filter.With("status", string(review.ReviewStatusApproved))
	case f.Status != "":
		filter = filter.With("status", f.Status)
	}
	if f.Verified != nil {
		filter = filter.With("verified_purchase", *f.Verified)
	}
	if f.MinRating > 0 {
		filter = filter.With("min_rating", f.MinRating)
	}

	reviews, err := s.reviewRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ReviewResponse]{}, err
	}
	total, err := s.reviewRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[ReviewResponse]{}, err
	}
	return shared.NewPaginated(ToReviewResponses(reviews), total, filter.Page, filter.PageSize), nil
}

// Update edits the caller's own review and returns it to moderation
func (s *ReviewService) Update(ctx context.Context, customerID, id uuid.UUID, req UpdateReviewRequest) (*ReviewResponse, error) {
	r, err := s.owned(ctx, customerID, id)
	if err != nil {
		return nil, err
	}
	if err := r.Edit(req.Rating, req.Title, req.Comment); err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Save(ctx, r); err != nil {
		return nil, err
	}
	resp := ToReviewResponse(r)
	return &resp, nil
}

// Approve publishes a review
func (s *ReviewService) Approve(ctx context.Context, moderatorID, id uuid.UUID) (*ReviewResponse, error) {
	return s.moderate(ctx, id, func(r *review.Review) error {
		return r.Approve(moderatorID)
	})
}

// Reject hides a review with a note to its author
func (s *ReviewService) Reject(ctx context.Context, moderatorID, id uuid.UUID, req RejectReviewRequest) (*ReviewResponse, error) {
	return s.moderate(ctx, id, func(r *review.Review) error {
		return r.Reject(moderatorID, req.Note)
	})
}

// Delete removes a review. Customers may only delete their own.
func (s *ReviewService) Delete(ctx context.Context, callerID uuid.UUID, role identity.Role, id uuid.UUID) error {
	r, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if role != identity.RoleAdmin && !r.IsOwnedBy(callerID) {
		return shared.ErrForbidden
	}
	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Review deleted", zap.String("review_id", id.String()))
	return nil
}

// RatingSummary returns the average and per-star histogram of approved reviews
func (s *ReviewService) RatingSummary(ctx context.Context, productID uuid.UUID) (*RatingSummaryResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	counts, err := s.reviewRepo.RatingCounts(ctx, productID)
	if err != nil {
		return nil, err
	}
	resp := ToRatingSummaryResponse(review.NewRatingSummary(productID, counts))
	return &resp, nil
}

// verifyPurchase flags the review when the customer received the product
func (s *ReviewService) verifyPurchase(ctx context.Context, r *review.Review, orderID *uuid.UUID) error {
	if orderID == nil {
		delivered, err := s.orderRepo.HasDeliveredProduct(ctx, r.CustomerID, r.ProductID)
		if err != nil {
			return err
		}
		r.VerifiedPurchase = delivered
		return nil
	}

	o, err := s.orderRepo.FindByID(ctx, *orderID)
	if err != nil {
		return err
	}
	if o.CustomerID != r.CustomerID || o.Status != order.OrderStatusDelivered || !o.ContainsProduct(r.ProductID) {
		return shared.NewDomainError("INVALID_ORDER", "The order does not contain a delivered unit of this product")
	}
	r.MarkVerified(o.ID)
	return nil
}

func (s *ReviewService) owned(ctx context.Context, customerID, id uuid.UUID) (*review.Review, error) {
	r, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.IsOwnedBy(customerID) {
		return nil, shared.ErrForbidden
	}
	return r, nil
}

func (s *ReviewService) moderate(ctx context.Context, id uuid.UUID, apply func(*review.Review) error) (*ReviewResponse, error) {
	r, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(r); err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Save(ctx, r); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, r.PullDomainEvents())

	s.logger.Info("Review moderated",
		zap.String("review_id", r.ID.String()),
		zap.String("status", string(r.Status)),
	)
	resp := ToReviewResponse(r)
	return &resp, nil
}

func publish(ctx context.Context, events shared.EventPublisher, logger *zap.Logger, pending []shared.DomainEvent) {
	if events == nil || len(pending) == 0 {
		return
	}
	if err := events.Publish(ctx, pending...); err != nil {
		logger.Error("Failed to publish domain events", zap.Error(err))
	}
}
