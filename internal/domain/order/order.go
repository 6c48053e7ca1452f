package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfilment status of an order
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusPacked         OrderStatus = "PACKED"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPacked,
		OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusPacked || target == OrderStatusCancelled
	case OrderStatusPacked:
		return target == OrderStatusOutForDelivery || target == OrderStatusCancelled
	case OrderStatusOutForDelivery:
		return target == OrderStatusDelivered
	}
	return false
}

// PaymentMethod is how the customer pays
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "COD"
	PaymentMethodOnline PaymentMethod = "ONLINE"
)

// IsValid checks if the payment method is known
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCOD || m == PaymentMethodOnline
}

// PaymentStatus tracks collection of the order amount
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// DeliveryAddress is where the order is delivered
type DeliveryAddress struct {
	Line      string   `gorm:"column:delivery_line;type:text;not null"`
	City      string   `gorm:"column:delivery_city;type:varchar(100);not null"`
	StateCode string   `gorm:"column:delivery_state_code;type:varchar(2)"`
	Pincode   string   `gorm:"column:delivery_pincode;type:varchar(6);not null;index"`
	Latitude  *float64 `gorm:"column:delivery_latitude"`
	Longitude *float64 `gorm:"column:delivery_longitude"`
}

// Validate checks required address fields
func (a DeliveryAddress) Validate() error {
	if strings.TrimSpace(a.Line) == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Address line cannot be empty")
	}
	if strings.TrimSpace(a.City) == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "City cannot be empty")
	}
	if !valueobject.IsValidPincode(a.Pincode) {
		return shared.NewDomainError("INVALID_PINCODE", "Pincode must be 6 digits")
	}
	if a.StateCode != "" && !valueobject.IsValidStateCode(a.StateCode) {
		return shared.NewDomainError("INVALID_STATE_CODE", "State code must be 2 digits")
	}
	return nil
}

// OrderItem is a line of an order. Unit price is GST-inclusive.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"type:varchar(200);not null"`
	SKU       string          `gorm:"column:sku;type:varchar(64)"`
	HSNCode   string          `gorm:"column:hsn_code;type:varchar(8)"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	GSTRate   decimal.Decimal `gorm:"column:gst_rate;type:decimal(5,2);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// LineInput describes an order line at checkout
type LineInput struct {
	ProductID uuid.UUID
	Name      string
	SKU       string
	HSNCode   string
	Quantity  int
	UnitPrice decimal.Decimal
	GSTRate   decimal.Decimal
}

// Order is a customer's purchase from one store
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber        string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	CustomerID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	StoreID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	ServiceAreaID      uuid.UUID       `gorm:"type:uuid;not null"`
	Items              []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Subtotal           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DeliveryFee        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TaxTotal           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	GrandTotal         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CouponCode         string          `gorm:"type:varchar(32)"`
	DeliveryAddress    DeliveryAddress `gorm:"embedded"`
	PaymentMethod      PaymentMethod   `gorm:"type:varchar(20);not null"`
	PaymentStatus      PaymentStatus   `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Status             OrderStatus     `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	CancellationReason string          `gorm:"type:text"`
	EstimatedMinutes   int             `gorm:"not null;default:0"`
	ConfirmedAt        *time.Time
	PackedAt           *time.Time
	DispatchedAt       *time.Time
	DeliveredAt        *time.Time
	CancelledAt        *time.Time
	PaidAt             *time.Time
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// GenerateOrderNumber returns ORD-YYYYMMDD-XXXXXXXX
func GenerateOrderNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", at.Format("20060102"), suffix)
}

// NewOrder creates a pending order from checkout lines
func NewOrder(customerID, storeID, serviceAreaID uuid.UUID, lines []LineInput, address DeliveryAddress, method PaymentMethod) (*Order, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if storeID == uuid.Nil || serviceAreaID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Order must be routed to a store")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}
	if err := address.Validate(); err != nil {
		return nil, err
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		StoreID:           storeID,
		ServiceAreaID:     serviceAreaID,
		DeliveryAddress:   address,
		PaymentMethod:     method,
		PaymentStatus:     PaymentStatusPending,
		Status:            OrderStatusPending,
		DiscountAmount:    decimal.Zero,
		DeliveryFee:       decimal.Zero,
	}
	o.OrderNumber = GenerateOrderNumber(o.CreatedAt)

	items := make([]OrderItem, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
		}
		if l.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
		if l.UnitPrice.IsNegative() {
			return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
		}
		items = append(items, OrderItem{
			ID:        uuid.New(),
			OrderID:   o.ID,
			ProductID: l.ProductID,
			Name:      l.Name,
			SKU:       l.SKU,
			HSNCode:   l.HSNCode,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			GSTRate:   l.GSTRate,
			CreatedAt: o.CreatedAt,
		})
	}
	o.Items = items
	o.recalculate()

	return o, nil
}

// ApplyCharges sets the discount and delivery fee and recomputes totals.
// The discount is spread over line taxable values pro rata, so tax follows the
// amount actually paid for goods.
func (o *Order) ApplyCharges(couponCode string, discount, deliveryFee decimal.Decimal) error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Charges can only change on a pending order")
	}
	if discount.IsNegative() || deliveryFee.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Discount and delivery fee cannot be negative")
	}
	if discount.GreaterThan(o.Subtotal.Add(deliveryFee)) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed the order value")
	}
	o.CouponCode = couponCode
	o.DiscountAmount = valueobject.RoundMoney(discount)
	o.DeliveryFee = valueobject.RoundMoney(deliveryFee)
	o.recalculate()
	return nil
}

// Place finalises a new order and emits OrderPlaced
func (o *Order) Place(estimatedMinutes int) {
	o.EstimatedMinutes = estimatedMinutes
	o.AddDomainEvent(NewOrderPlacedEvent(o))
}

func (o *Order) recalculate() {
	subtotal := decimal.Zero
	for i := range o.Items {
		o.Items[i].LineTotal = valueobject.RoundMoney(o.Items[i].UnitPrice.Mul(decimal.NewFromInt(int64(o.Items[i].Quantity))))
		subtotal = subtotal.Add(o.Items[i].LineTotal)
	}
	o.Subtotal = subtotal

	goodsDiscount := valueobject.MinDecimal(o.DiscountAmount, subtotal)
	taxTotal := decimal.Zero
	for i := range o.Items {
		line := o.Items[i].LineTotal
		if subtotal.IsPositive() && goodsDiscount.IsPositive() {
			share := goodsDiscount.Mul(line).Div(subtotal)
			line = line.Sub(share)
		}
		o.Items[i].TaxAmount = valueobject.RoundMoney(valueobject.InclusiveTax(line, o.Items[i].GSTRate))
		taxTotal = taxTotal.Add(o.Items[i].TaxAmount)
	}
	o.TaxTotal = taxTotal
	o.GrandTotal = valueobject.MaxDecimal(subtotal.Sub(o.DiscountAmount).Add(o.DeliveryFee), decimal.Zero)
}

// TaxableValue is the grand total less GST and delivery fee, the base GST is levied on
func (o *Order) TaxableValue() decimal.Decimal {
	return o.Subtotal.Sub(valueobject.MinDecimal(o.DiscountAmount, o.Subtotal)).Sub(o.TaxTotal)
}

// Confirm accepts the order at the store
func (o *Order) Confirm() error {
	if err := o.transition(OrderStatusConfirmed); err != nil {
		return err
	}
	now := time.Now()
	o.ConfirmedAt = &now
	return nil
}

// Pack marks the order packed and ready for pickup
func (o *Order) Pack() error {
	if err := o.transition(OrderStatusPacked); err != nil {
		return err
	}
	now := time.Now()
	o.PackedAt = &now
	return nil
}

// Dispatch hands the order to a rider
func (o *Order) Dispatch() error {
	if err := o.transition(OrderStatusOutForDelivery); err != nil {
		return err
	}
	now := time.Now()
	o.DispatchedAt = &now
	return nil
}

// Deliver completes the order. Cash-on-delivery orders become paid.
func (o *Order) Deliver() error {
	if err := o.transition(OrderStatusDelivered); err != nil {
		return err
	}
	now := time.Now()
	o.DeliveredAt = &now
	if o.PaymentMethod == PaymentMethodCOD && o.PaymentStatus == PaymentStatusPending {
		o.PaymentStatus = PaymentStatusPaid
		o.PaidAt = &now
	}
	o.AddDomainEvent(NewOrderDeliveredEvent(o))
	return nil
}

// Cancel cancels an order that has not left the store
func (o *Order) Cancel(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancellation reason is required")
	}
	if err := o.transition(OrderStatusCancelled); err != nil {
		return err
	}
	now := time.Now()
	o.CancelledAt = &now
	o.CancellationReason = reason
	if o.PaymentStatus == PaymentStatusPaid {
		o.PaymentStatus = PaymentStatusRefunded
	}
	o.AddDomainEvent(NewOrderCancelledEvent(o))
	return nil
}

// MarkPaid records online payment capture
func (o *Order) MarkPaid() error {
	if o.Status == OrderStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot take payment for a cancelled order")
	}
	if o.PaymentStatus != PaymentStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Order payment is already settled")
	}
	now := time.Now()
	o.PaymentStatus = PaymentStatusPaid
	o.PaidAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

// ContainsProduct reports whether a product was bought in this order
func (o *Order) ContainsProduct(productID uuid.UUID) bool {
	for _, it := range o.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

// IsIntraState reports whether the supply stays within the store's state
func (o *Order) IsIntraState(storeStateCode string) bool {
	return o.DeliveryAddress.StateCode == "" || storeStateCode == "" || o.DeliveryAddress.StateCode == storeStateCode
}

func (o *Order) transition(target OrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move order from %s to %s", o.Status, target))
	}
	old := o.Status
	o.Status = target
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, old))
	return nil
}
