package coupon

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/coupon"
	"github.com/grocer/backend/internal/domain/order"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CodeCouponNotFound is returned when no coupon has the entered code
const CodeCouponNotFound = "COUPON_NOT_FOUND"

// EvaluationInput is a basket to price a coupon against
type EvaluationInput struct {
	Code        string
	UserID      uuid.UUID
	StoreID     uuid.UUID
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Now         time.Time
}

// Evaluation is an eligible coupon and the discount it grants
type Evaluation struct {
	Coupon   *coupon.Coupon
	Discount decimal.Decimal
}

// Evaluator checks coupon eligibility for a user and prices it.
// Cart previews and checkout share it so both apply the same rules.
type Evaluator struct {
	couponRepo coupon.CouponRepository
	orderRepo  order.OrderRepository
}

// NewEvaluator creates a new Evaluator
func NewEvaluator(couponRepo coupon.CouponRepository, orderRepo order.OrderRepository) *Evaluator {
	return &Evaluator{couponRepo: couponRepo, orderRepo: orderRepo}
}

// Evaluate returns the coupon and its discount, or the first rule it fails
func (e *Evaluator) Evaluate(ctx context.Context, in EvaluationInput) (*Evaluation, error) {
	c, err := e.couponRepo.FindByCode(ctx, coupon.NormalizeCode(in.Code))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(CodeCouponNotFound, "Coupon code is not valid")
		}
		return nil, err
	}

	vc := coupon.ValidationContext{
		StoreID:     in.StoreID,
		OrderAmount: in.Subtotal,
		Now:         in.Now,
	}
	if vc.Now.IsZero() {
		vc.Now = time.Now()
	}
	if c.PerUserLimit > 0 {
		n, err := e.couponRepo.CountUserUsages(ctx, c.ID, in.UserID)
		if err != nil {
			return nil, err
		}
		vc.UserUsageCount = int(n)
	}
	if c.FirstOrderOnly {
		n, err := e.orderRepo.CountByCustomer(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
		vc.UserHasPriorOrder = n > 0
	}

	if err := c.Validate(vc); err != nil {
		return nil, err
	}
	return &Evaluation{
		Coupon:   c,
		Discount: c.CalculateDiscount(in.Subtotal, in.DeliveryFee),
	}, nil
}
