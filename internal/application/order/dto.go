package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/order"
	"github.com/shopspring/decimal"
)

// AddressRequest is the delivery address given at checkout
type AddressRequest struct {
	Line      string   `json:"line" binding:"required,max=500"`
	City      string   `json:"city" binding:"required,max=100"`
	StateCode string   `json:"state_code" binding:"omitempty,len=2,numeric"`
	Pincode   string   `json:"pincode" binding:"required,len=6,numeric"`
	Latitude  *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" binding:"omitempty,longitude"`
}

func (a AddressRequest) toDomain() order.DeliveryAddress {
	return order.DeliveryAddress{
		Line:      a.Line,
		City:      a.City,
		StateCode: a.StateCode,
		Pincode:   a.Pincode,
		Latitude:  a.Latitude,
		Longitude: a.Longitude,
	}
}

// CheckoutRequest turns the customer's cart at a store into an order
type CheckoutRequest struct {
	StoreID       uuid.UUID      `json:"store_id" binding:"required"`
	Address       AddressRequest `json:"address" binding:"required"`
	PaymentMethod string         `json:"payment_method" binding:"required,oneof=COD ONLINE"`
	// CouponCode overrides the coupon attached to the cart
	CouponCode string `json:"coupon_code" binding:"max=32"`
}

// CancelOrderRequest carries the cancellation reason
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// OrderListFilter narrows order listings
type OrderListFilter struct {
	CustomerID    *uuid.UUID `form:"customer_id"`
	StoreID       *uuid.UUID `form:"store_id"`
	Status        string     `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED PACKED OUT_FOR_DELIVERY DELIVERED CANCELLED"`
	PaymentStatus string     `form:"payment_status" binding:"omitempty,oneof=PENDING PAID REFUNDED"`
	PaymentMethod string     `form:"payment_method" binding:"omitempty,oneof=COD ONLINE"`
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
	Search        string     `form:"search"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Viewer is the caller a listing or lookup is scoped to
type Viewer struct {
	UserID  uuid.UUID
	Role    string
	StoreID *uuid.UUID
}

// OrderItemResponse represents an order line
type OrderItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku,omitempty"`
	HSNCode   string          `json:"hsn_code,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	GSTRate   decimal.Decimal `json:"gst_rate"`
	LineTotal decimal.Decimal `json:"line_total"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
}

// AddressResponse represents a delivery address
type AddressResponse struct {
	Line      string   `json:"line"`
	City      string   `json:"city"`
	StateCode string   `json:"state_code,omitempty"`
	Pincode   string   `json:"pincode"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                 uuid.UUID           `json:"id"`
	OrderNumber        string              `json:"order_number"`
	CustomerID         uuid.UUID           `json:"customer_id"`
	StoreID            uuid.UUID           `json:"store_id"`
	ServiceAreaID      uuid.UUID           `json:"service_area_id"`
	Items              []OrderItemResponse `json:"items"`
	Subtotal           decimal.Decimal     `json:"subtotal"`
	DiscountAmount     decimal.Decimal     `json:"discount_amount"`
	DeliveryFee        decimal.Decimal     `json:"delivery_fee"`
	TaxTotal           decimal.Decimal     `json:"tax_total"`
	GrandTotal         decimal.Decimal     `json:"grand_total"`
	CouponCode         string              `json:"coupon_code,omitempty"`
	DeliveryAddress    AddressResponse     `json:"delivery_address"`
	PaymentMethod      string              `json:"payment_method"`
	PaymentStatus      string              `json:"payment_status"`
	Status             string              `json:"status"`
	CancellationReason string              `json:"cancellation_reason,omitempty"`
	EstimatedMinutes   int                 `json:"estimated_minutes"`
	CreatedAt          time.Time           `json:"created_at"`
	ConfirmedAt        *time.Time          `json:"confirmed_at,omitempty"`
	PackedAt           *time.Time          `json:"packed_at,omitempty"`
	DispatchedAt       *time.Time          `json:"dispatched_at,omitempty"`
	DeliveredAt        *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt        *time.Time          `json:"cancelled_at,omitempty"`
	PaidAt             *time.Time          `json:"paid_at,omitempty"`
	Version            int                 `json:"version"`
}

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			SKU:       it.SKU,
			HSNCode:   it.HSNCode,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			GSTRate:   it.GSTRate,
			LineTotal: it.LineTotal,
			TaxAmount: it.TaxAmount,
		}
	}
	a := o.DeliveryAddress
	return OrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		CustomerID:     o.CustomerID,
		StoreID:        o.StoreID,
		ServiceAreaID:  o.ServiceAreaID,
		Items:          items,
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		DeliveryFee:    o.DeliveryFee,
		TaxTotal:       o.TaxTotal,
		GrandTotal:     o.GrandTotal,
		CouponCode:     o.CouponCode,
		DeliveryAddress: AddressResponse{
			Line:      a.Line,
			City:      a.City,
			StateCode: a.StateCode,
			Pincode:   a.Pincode,
			Latitude:  a.Latitude,
			Longitude: a.Longitude,
		},
		PaymentMethod:      string(o.PaymentMethod),
		PaymentStatus:      string(o.PaymentStatus),
		Status:             string(o.Status),
		CancellationReason: o.CancellationReason,
		EstimatedMinutes:   o.EstimatedMinutes,
		CreatedAt:          o.CreatedAt,
		ConfirmedAt:        o.ConfirmedAt,
		PackedAt:           o.PackedAt,
		DispatchedAt:       o.DispatchedAt,
		DeliveredAt:        o.DeliveredAt,
		CancelledAt:        o.CancelledAt,
		PaidAt:             o.PaidAt,
		Version:            o.Version,
	}
}

// ToOrderResponses converts a slice of orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}
