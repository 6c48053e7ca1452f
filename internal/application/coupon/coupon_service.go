package coupon

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/coupon"
	"github.com/grocer/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CouponService handles coupon administration, previews and expiry
type CouponService struct {
	couponRepo coupon.CouponRepository
	evaluator  *Evaluator
	events     shared.EventPublisher
	logger     *zap.Logger
	now        func() time.Time
}

// NewCouponService creates a new CouponService
func NewCouponService(
	couponRepo coupon.CouponRepository,
	evaluator *Evaluator,
	events shared.EventPublisher,
	logger *zap.Logger,
) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		evaluator:  evaluator,
		events:     events,
		logger:     logger,
		now:        time.Now,
	}
}

// Create creates a new coupon
func (s *CouponService) Create(ctx context.Context, req CreateCouponRequest) (*CouponResponse, error) {
	code := coupon.NormalizeCode(req.Code)
	exists, err := s.couponRepo.ExistsByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Coupon with this code already exists")
	}

	c, err := coupon.NewCoupon(code, req.Description, req.toDomain())
	if err != nil {
		return nil, err
	}
	if err := s.couponRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, c.PullDomainEvents())

	s.logger.Info("Coupon created", zap.String("coupon_id", c.ID.String()), zap.String("code", c.Code))
	resp := ToCouponResponse(c)
	return &resp, nil
}

// GetByID retrieves a coupon by ID
func (s *CouponService) GetByID(ctx context.Context, id uuid.UUID) (*CouponResponse, error) {
	c, err := s.couponRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCouponResponse(c)
	return &resp, nil
}

// GetByCode retrieves a coupon by its code
func (s *CouponService) GetByCode(ctx context.Context, code string) (*CouponResponse, error) {
	c, err := s.couponRepo.FindByCode(ctx, coupon.NormalizeCode(code))
	if err != nil {
		return nil, err
	}
	resp := ToCouponResponse(c)
	return &resp, nil
}

// List lists coupons with filtering and pagination
func (s *CouponService) List(ctx context.Context, f CouponListFilter) (shared.Paginated[CouponResponse], error) {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		Search:   f.Search,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}.Normalize()
	if f.Status != "" {
		filter = filter.With("status", f.Status)
	}
	if f.DiscountType != "" {
		filter = filter.With("discount_type", f.DiscountType)
	}
	if f.StoreID != nil {
		filter = filter.With("store_id", *f.StoreID)
	} else if f.GlobalOnly {
		filter = filter.With("global", true)
	}
	if f.ValidAt != nil {
		filter = filter.With("valid_at", *f.ValidAt)
	}

	coupons, err := s.couponRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[CouponResponse]{}, err
	}
	total, err := s.couponRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[CouponResponse]{}, err
	}
	return shared.NewPaginated(ToCouponResponses(coupons), total, filter.Page, filter.PageSize), nil
}

// Update replaces a coupon's description and terms
func (s *CouponService) Update(ctx context.Context, id uuid.UUID, req UpdateCouponRequest) (*CouponResponse, error) {
	return s.apply(ctx, id, func(c *coupon.Coupon) error {
		return c.UpdateTerms(req.Description, req.toDomain())
	})
}

// Activate re-enables a coupon
func (s *CouponService) Activate(ctx context.Context, id uuid.UUID) (*CouponResponse, error) {
	return s.apply(ctx, id, (*coupon.Coupon).Activate)
}

// Deactivate disables a coupon
func (s *CouponService) Deactivate(ctx context.Context, id uuid.UUID) (*CouponResponse, error) {
	return s.apply(ctx, id, (*coupon.Coupon).Deactivate)
}

// Delete removes a coupon that was never redeemed
func (s *CouponService) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := s.couponRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if c.UsedCount > 0 {
		return shared.NewDomainError("COUPON_IN_USE", "A redeemed coupon can only be deactivated")
	}
	if err := s.couponRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Coupon deleted", zap.String("coupon_id", id.String()), zap.String("code", c.Code))
	return nil
}

// Validate previews a coupon for userID against a basket
func (s *CouponService) Validate(ctx context.Context, userID uuid.UUID, req ValidateCouponRequest) (*ValidateCouponResponse, error) {
	resp := &ValidateCouponResponse{Code: coupon.NormalizeCode(req.Code)}

	eval, err := s.evaluator.Evaluate(ctx, EvaluationInput{
		Code:        req.Code,
		UserID:      userID,
		StoreID:     req.StoreID,
		Subtotal:    req.OrderAmount,
		DeliveryFee: req.DeliveryFee,
		Now:         s.now(),
	})
	if err != nil {
		var code string
		if code = shared.ErrorCode(err); code == "" {
			return nil, err
		}
		resp.Reason = code
		resp.Message = err.Error()
		return resp, nil
	}

	resp.Valid = true
	resp.Discount = eval.Discount
	return resp, nil
}

// ListUsages lists the redemptions of a coupon
func (s *CouponService) ListUsages(ctx context.Context, id uuid.UUID, f UsageListFilter) (shared.Paginated[UsageResponse], error) {
	if _, err := s.couponRepo.FindByID(ctx, id); err != nil {
		return shared.Paginated[UsageResponse]{}, err
	}

	filter := shared.Filter{Page: f.Page, PageSize: f.PageSize}.Normalize()
	if f.UserID != nil {
		filter = filter.With("user_id", *f.UserID)
	}
	if f.Released != nil {
		filter = filter.With("released", *f.Released)
	}

	usages, total, err := s.couponRepo.FindUsages(ctx, id, filter)
	if err != nil {
		return shared.Paginated[UsageResponse]{}, err
	}
	return shared.NewPaginated(ToUsageResponses(usages), total, filter.Page, filter.PageSize), nil
}

// ExpireDue marks active coupons past their validity as expired, at most
// batchSize per call. Returns the number expired.
func (s *CouponService) ExpireDue(ctx context.Context, now time.Time, batchSize int) (int, error) {
	due, err := s.couponRepo.FindExpirable(ctx, now, batchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range due {
		c := &due[i]
		if !c.Expire(now) {
			continue
		}
		if err := s.couponRepo.Save(ctx, c); err != nil {
			// edited meanwhile; the next run reads it again
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				s.logger.Debug("Coupon changed during expiry, skipped", zap.String("code", c.Code))
				continue
			}
			return expired, err
		}
		publish(ctx, s.events, s.logger, c.PullDomainEvents())
		expired++
	}

	if expired > 0 {
		s.logger.Info("Coupons expired", zap.Int("count", expired))
	}
	return expired, nil
}

func (s *CouponService) apply(ctx context.Context, id uuid.UUID, change func(*coupon.Coupon) error) (*CouponResponse, error) {
	c, err := s.couponRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := change(c); err != nil {
		return nil, err
	}
	if err := s.couponRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, c.PullDomainEvents())

	resp := ToCouponResponse(c)
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
