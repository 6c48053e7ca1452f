package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	couponapp "github.com/grocer/backend/internal/application/coupon"
	storeapp "github.com/grocer/backend/internal/application/store"
	"github.com/grocer/backend/internal/domain/cart"
	"github.com/grocer/backend/internal/domain/catalog"
	"github.com/grocer/backend/internal/domain/coupon"
	"github.com/grocer/backend/internal/domain/identity"
	"github.com/grocer/backend/internal/domain/order"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/store"
	"github.com/grocer/backend/internal/infrastructure/cache"
	"github.com/grocer/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Checkout rejection codes
const (
	CodeEmptyCart           = "EMPTY_CART"
	CodeNotServiceable      = "NOT_SERVICEABLE"
	CodeStoreNotServiceable = "STORE_NOT_SERVICEABLE"
	CodeCheckoutBusy        = "CHECKOUT_BUSY"
)

const defaultCouponLockTTL = 10 * time.Second

// Router routes a delivery location to a service area
type Router interface {
	Route(ctx context.Context, q storeapp.RouteQuery) (store.RouteResult, error)
}

// CouponEvaluator prices a coupon for a basket
type CouponEvaluator interface {
	Evaluate(ctx context.Context, in couponapp.EvaluationInput) (*couponapp.Evaluation, error)
}

// Dependencies are the collaborators of OrderService
type Dependencies struct {
	Orders     order.OrderRepository
	Carts      cart.CartRepository
	Products   catalog.ProductRepository
	Coupons    coupon.CouponRepository
	Router     Router
	Evaluator  CouponEvaluator
	Transactor shared.Transactor
	Locker     cache.Locker
	// CouponLockTTL bounds how long a (coupon, customer) redemption lock is held
	CouponLockTTL time.Duration
	Events        shared.EventPublisher
	Metrics       *telemetry.BusinessMetrics
	Logger        *zap.Logger
}

// OrderService handles checkout and the order lifecycle
type OrderService struct {
	orderRepo   order.OrderRepository
	cartRepo    cart.CartRepository
	productRepo catalog.ProductRepository
	couponRepo  coupon.CouponRepository
	router      Router
	evaluator   CouponEvaluator
	tx          shared.Transactor
	locker      cache.Locker
	lockTTL     time.Duration
	events      shared.EventPublisher
	metrics     *telemetry.BusinessMetrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(deps Dependencies) *OrderService {
	ttl := deps.CouponLockTTL
	if ttl <= 0 {
		ttl = defaultCouponLockTTL
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo:   deps.Orders,
		cartRepo:    deps.Carts,
		productRepo: deps.Products,
		couponRepo:  deps.Coupons,
		router:      deps.Router,
		evaluator:   deps.Evaluator,
		tx:          deps.Transactor,
		locker:      deps.Locker,
		lockTTL:     ttl,
		events:      deps.Events,
		metrics:     deps.Metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// Checkout places an order for the customer's cart at req.StoreID
func (s *OrderService) Checkout(ctx context.Context, customerID uuid.UUID, req CheckoutRequest) (resp *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "place_order")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCustomerID, customerID.String(),
		telemetry.SpanAttrStoreID, req.StoreID.String(),
		telemetry.SpanAttrPincode, req.Address.Pincode,
	)
	defer func() {
		if err != nil {
			telemetry.RecordError(span, err)
			if code := shared.ErrorCode(err); code != "" && s.metrics != nil {
				s.metrics.RecordCheckoutRejected(ctx, code)
			}
			return
		}
		telemetry.SetOK(span)
	}()

	method := order.PaymentMethod(req.PaymentMethod)
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method")
	}
	address := req.Address.toDomain()
	if err := address.Validate(); err != nil {
		return nil, err
	}

	c, err := s.cartRepo.FindByCustomerAndStore(ctx, customerID, req.StoreID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(CodeEmptyCart, "Your cart is empty")
		}
		return nil, err
	}
	if c.IsEmpty() {
		return nil, shared.NewDomainError(CodeEmptyCart, "Your cart is empty")
	}

	lines, subtotal, err := s.priceLines(ctx, c)
	if err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrItemCount, len(lines))

	now := s.now()
	candidate, err := s.route(ctx, c.StoreID, address, subtotal, now)
	if err != nil {
		return nil, err
	}

	code := req.CouponCode
	if code == "" {
		code = c.CouponCode
	}
	if code != "" {
		unlock, err := s.lockCoupon(ctx, code, customerID)
		if err != nil {
			return nil, err
		}
		defer func() {
			if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
				s.logger.Warn("Failed to release coupon lock", zap.Error(uerr))
			}
		}()
	}

	var eval *couponapp.Evaluation
	if code != "" {
		eval, err = s.evaluator.Evaluate(ctx, couponapp.EvaluationInput{
			Code:        code,
			UserID:      customerID,
			StoreID:     c.StoreID,
			Subtotal:    subtotal,
			DeliveryFee: candidate.DeliveryFee,
			Now:         now,
		})
		if err != nil {
			s.recordCoupon(ctx, code, telemetry.CouponOutcomeRejected)
			return nil, err
		}
	}

	o, err := order.NewOrder(customerID, c.StoreID, candidate.Area.ID, lines, address, method)
	if err != nil {
		return nil, err
	}
	discount, couponCode := decimal.Zero, ""
	if eval != nil {
		discount, couponCode = eval.Discount, eval.Coupon.Code
	}
	if err := o.ApplyCharges(couponCode, discount, candidate.DeliveryFee); err != nil {
		return nil, err
	}
	o.Place(candidate.Area.EstimatedMinutes)

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.Save(txCtx, o); err != nil {
			return err
		}
		for _, it := range o.Items {
			if err := s.productRepo.DecrementStock(txCtx, it.ProductID, it.Quantity); err != nil {
				if errors.Is(err, shared.ErrInsufficientStock) {
					return shared.NewDomainError("INSUFFICIENT_STOCK", "Not enough stock left for "+it.Name)
				}
				return err
			}
		}
		if eval != nil {
			if err := s.couponRepo.Redeem(txCtx, coupon.NewUsage(eval.Coupon.ID, customerID, o.ID, discount)); err != nil {
				return err
			}
		}
		c.Clear()
		return s.cartRepo.Save(txCtx, c)
	})
	if err != nil {
		if eval != nil && shared.ErrorCode(err) == coupon.CodeUsageLimitReached {
			s.recordCoupon(ctx, couponCode, telemetry.CouponOutcomeRejected)
		}
		return nil, err
	}

	pending := o.PullDomainEvents()
	if eval != nil {
		if rerr := eval.Coupon.RecordRedemption(customerID, o.ID, discount); rerr == nil {
			pending = append(pending, eval.Coupon.PullDomainEvents()...)
		}
		s.recordCoupon(ctx, couponCode, telemetry.CouponOutcomeRedeemed)
	}
	publish(ctx, s.events, s.logger, pending)

	if s.metrics != nil {
		s.metrics.RecordOrderPlaced(ctx, o.StoreID, string(o.PaymentMethod), o.GrandTotal)
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, o.ID.String(),
		telemetry.SpanAttrOrderNumber, o.OrderNumber,
		telemetry.SpanAttrAmount, o.GrandTotal.String(),
	)
	if couponCode != "" {
		telemetry.SetAttributes(span, telemetry.SpanAttrCouponCode, couponCode)
	}

	s.logger.Info("Order placed",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.String("store_id", o.StoreID.String()),
		zap.String("grand_total", o.GrandTotal.StringFixed(2)),
	)
	out := ToOrderResponse(o)
	return &out, nil
}

// GetByID returns an order visible to the viewer
func (s *OrderService) GetByID(ctx context.Context, viewer Viewer, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// GetByNumber returns an order by its order number
func (s *OrderService) GetByNumber(ctx context.Context, viewer Viewer, number string) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByOrderNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if !canView(viewer, o) {
		return nil, shared.ErrNotFound
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// List lists orders. Customers see their own orders and store managers
// their store's; admins may filter freely.
func (s *OrderService) List(ctx context.Context, viewer Viewer, f OrderListFilter) (shared.Paginated[OrderResponse], error) {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		Search:   f.Search,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}.Normalize()

	switch identity.Role(viewer.Role) {
	case identity.RoleCustomer:
		filter = filter.With("customer_id", viewer.UserID)
	case identity.RoleStoreManager:
		if viewer.StoreID == nil {
			return shared.Paginated[OrderResponse]{}, shared.NewDomainError("FORBIDDEN", "No store is assigned to this account")
		}
		filter = filter.With("store_id", *viewer.StoreID)
	case identity.RoleAdmin:
		if f.StoreID != nil {
			filter = filter.With("store_id", *f.StoreID)
		}
		if f.CustomerID != nil {
			filter = filter.With("customer_id", *f.CustomerID)
		}
	default:
		return shared.Paginated[OrderResponse]{}, shared.ErrForbidden
	}
	if f.Status != "" {
		filter = filter.With("status", f.Status)
	}
	if f.PaymentStatus != "" {
		filter = filter.With("payment_status", f.PaymentStatus)
	}
	if f.PaymentMethod != "" {
		filter = filter.With("payment_method", f.PaymentMethod)
	}
	if f.From != nil {
		filter = filter.With("from", *f.From)
	}
	if f.To != nil {
		filter = filter.With("to", f.To.AddDate(0, 0, 1))
	}

	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}
	return shared.NewPaginated(ToOrderResponses(orders), total, filter.Page, filter.PageSize), nil
}

// Confirm accepts a pending order at the store
func (s *OrderService) Confirm(ctx context.Context, viewer Viewer, id uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, viewer, id, (*order.Order).Confirm)
}

// Pack marks an order packed
func (s *OrderService) Pack(ctx context.Context, viewer Viewer, id uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, viewer, id, (*order.Order).Pack)
}

// Dispatch hands an order to delivery
func (s *OrderService) Dispatch(ctx context.Context, viewer Viewer, id uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, viewer, id, (*order.Order).Dispatch)
}

// Deliver completes an order
func (s *OrderService) Deliver(ctx context.Context, viewer Viewer, id uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, viewer, id, (*order.Order).Deliver)
}

// MarkPaid records payment of an online order
func (s *OrderService) MarkPaid(ctx context.Context, viewer Viewer, id uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, viewer, id, (*order.Order).MarkPaid)
}

// Cancel cancels an order, restocks its items and releases its coupon usage.
// Customers may cancel their own orders; staff any order of their store.
func (s *OrderService) Cancel(ctx context.Context, viewer Viewer, id uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "cancel")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderID, id.String())

	o, err := s.load(ctx, viewer, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := o.Cancel(req.Reason); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var released *coupon.Usage
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.Save(txCtx, o); err != nil {
			return err
		}
		for _, it := range o.Items {
			if err := s.productRepo.IncrementStock(txCtx, it.ProductID, it.Quantity); err != nil && !errors.Is(err, shared.ErrNotFound) {
				return err
			}
		}
		if o.CouponCode != "" {
			usage, err := s.couponRepo.Release(txCtx, o.ID)
			if err != nil {
				return err
			}
			released = usage
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	publish(ctx, s.events, s.logger, o.PullDomainEvents())
	if released != nil {
		s.recordCoupon(ctx, o.CouponCode, telemetry.CouponOutcomeReleased)
	}
	if s.metrics != nil {
		s.metrics.RecordOrderTransition(ctx, string(o.Status))
	}
	telemetry.SetOK(span)

	s.logger.Info("Order cancelled",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.String("reason", o.CancellationReason),
		zap.Bool("coupon_released", released != nil),
	)
	resp := ToOrderResponse(o)
	return &resp, nil
}

func (s *OrderService) transition(ctx context.Context, viewer Viewer, id uuid.UUID, apply func(*order.Order) error) (*OrderResponse, error) {
	if identity.Role(viewer.Role) == identity.RoleCustomer {
		return nil, shared.ErrForbidden
	}
	o, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if err := apply(o); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, o.PullDomainEvents())
	if s.metrics != nil {
		s.metrics.RecordOrderTransition(ctx, string(o.Status))
	}

	s.logger.Info("Order updated",
		zap.String("order_id", o.ID.String()),
		zap.String("status", string(o.Status)),
		zap.String("payment_status", string(o.PaymentStatus)),
	)
	resp := ToOrderResponse(o)
	return &resp, nil
}

func (s *OrderService) load(ctx context.Context, viewer Viewer, id uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(viewer, o) {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

// priceLines builds order lines at current catalogue prices and checks stock
func (s *OrderService) priceLines(ctx context.Context, c *cart.Cart) ([]order.LineInput, decimal.Decimal, error) {
	ids := make([]uuid.UUID, len(c.Items))
	for i, it := range c.Items {
		ids[i] = it.ProductID
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	lines := make([]order.LineInput, 0, len(c.Items))
	subtotal := decimal.Zero
	for _, it := range c.Items {
		p, ok := byID[it.ProductID]
		if !ok || p.StoreID != c.StoreID {
			return nil, decimal.Zero, shared.NewDomainError("PRODUCT_UNAVAILABLE", it.Name+" is no longer available")
		}
		if err := p.IsSellable(it.Quantity); err != nil {
			return nil, decimal.Zero, err
		}
		lines = append(lines, order.LineInput{
			ProductID: p.ID,
			Name:      p.Name,
			SKU:       p.SKU,
			HSNCode:   p.HSNCode,
			Quantity:  it.Quantity,
			UnitPrice: p.Price,
			GSTRate:   p.GSTRate,
		})
		subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return lines, subtotal, nil
}

// route picks the cart store's service area for the address. When the best
// area belongs to another store, the cart's store is used if it can serve at all.
func (s *OrderService) route(ctx context.Context, storeID uuid.UUID, a order.DeliveryAddress, subtotal decimal.Decimal, at time.Time) (*store.RouteCandidate, error) {
	result, err := s.router.Route(ctx, storeapp.RouteQuery{
		Pincode:     a.Pincode,
		City:        a.City,
		Latitude:    a.Latitude,
		Longitude:   a.Longitude,
		OrderAmount: &subtotal,
		At:          at,
	})
	if err != nil {
		return nil, err
	}
	if !result.Available {
		return nil, shared.NewDomainError(CodeNotServiceable, result.Reason.Message())
	}
	if result.Selected.Store.ID == storeID {
		return result.Selected, nil
	}
	for i := range result.Alternatives {
		if result.Alternatives[i].Store.ID == storeID {
			return &result.Alternatives[i], nil
		}
	}
	return nil, shared.NewDomainError(CodeStoreNotServiceable, "This store does not deliver to the selected address")
}

func (s *OrderService) lockCoupon(ctx context.Context, code string, customerID uuid.UUID) (cache.UnlockFunc, error) {
	if s.locker == nil {
		return func(context.Context) error { return nil }, nil
	}
	key := "coupon:" + coupon.NormalizeCode(code) + ":" + customerID.String()
	unlock, err := s.locker.Lock(ctx, key, s.lockTTL)
	if err != nil {
		if errors.Is(err, cache.ErrLockNotAcquired) {
			return nil, shared.NewDomainError(CodeCheckoutBusy, "Another checkout with this coupon is in progress")
		}
		return nil, err
	}
	return unlock, nil
}

func (s *OrderService) recordCoupon(ctx context.Context, code string, outcome telemetry.CouponOutcome) {
	if s.metrics != nil {
		s.metrics.RecordCouponRedemption(ctx, coupon.NormalizeCode(code), outcome)
	}
}

func canView(viewer Viewer, o *order.Order) bool {
	switch identity.Role(viewer.Role) {
	case identity.RoleAdmin:
		return true
	case identity.RoleStoreManager:
		return viewer.StoreID != nil && *viewer.StoreID == o.StoreID
	case identity.RoleCustomer:
		return o.CustomerID == viewer.UserID
	}
	return false
}

func publish(ctx context.Context, events shared.EventPublisher, logger *zap.Logger, pending []shared.DomainEvent) {
	if events == nil || len(pending) == 0 {
		return
	}
	if err := events.Publish(ctx, pending...); err != nil {
		logger.Error("Failed to publish domain events", zap.Error(err))
	}
}
