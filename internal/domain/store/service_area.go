package store

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ServiceAreaPincode is one pincode covered by a service area
type ServiceAreaPincode struct {
	ServiceAreaID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Pincode       string    `gorm:"type:varchar(6);primaryKey;index"`
}

// TableName returns the table name for GORM
func (ServiceAreaPincode) TableName() string {
	return "service_area_pincodes"
}

// ServiceArea is a delivery region served by one store, with its own fee
// and operating-hours settings.
type ServiceArea struct {
	shared.BaseAggregateRoot
	StoreID               uuid.UUID            `gorm:"type:uuid;not null;index"`
	Name                  string               `gorm:"type:varchar(200);not null"`
	City                  string               `gorm:"type:varchar(100);not null;index"`
	Pincodes              []ServiceAreaPincode `gorm:"foreignKey:ServiceAreaID;constraint:OnDelete:CASCADE"`
	DeliveryFee           decimal.Decimal      `gorm:"type:decimal(10,2);not null;default:0"`
	FreeDeliveryThreshold decimal.Decimal      `gorm:"type:decimal(10,2);not null;default:0"`
	MinOrderAmount        decimal.Decimal      `gorm:"type:decimal(10,2);not null;default:0"`
	MaxRadiusKm           float64              `gorm:"not null;default:0"`
	OpeningTime           string               `gorm:"type:varchar(5);not null;default:'00:00'"`
	ClosingTime           string               `gorm:"type:varchar(5);not null;default:'00:00'"`
	EstimatedMinutes      int                  `gorm:"not null;default:30"`
	Priority              int                  `gorm:"not null;default:100"`
	IsActive              bool                 `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (ServiceArea) TableName() string {
	return "service_areas"
}

// DeliverySettings groups the pricing and timing knobs of a service area
type DeliverySettings struct {
	DeliveryFee           decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
	MinOrderAmount        decimal.Decimal
	MaxRadiusKm           float64
	OpeningTime           string
	ClosingTime           string
	EstimatedMinutes      int
	Priority              int
}

// NewServiceArea creates a new active service area for a store
func NewServiceArea(storeID uuid.UUID, name, city string, pincodes []string, settings DeliverySettings) (*ServiceArea, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Service area name cannot be empty")
	}
	if strings.TrimSpace(city) == "" {
		return nil, shared.NewDomainError("INVALID_CITY", "City cannot be empty")
	}

	area := &ServiceArea{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StoreID:           storeID,
		Name:              strings.TrimSpace(name),
		City:              strings.TrimSpace(city),
		IsActive:          true,
	}
	if err := area.applySettings(settings); err != nil {
		return nil, err
	}
	if err := area.setPincodes(pincodes); err != nil {
		return nil, err
	}

	area.AddDomainEvent(NewServiceAreaChangedEvent(area, EventTypeServiceAreaCreated))

	return area, nil
}

// Update replaces name, city, pincodes and delivery settings
func (a *ServiceArea) Update(name, city string, pincodes []string, settings DeliverySettings) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Service area name cannot be empty")
	}
	if strings.TrimSpace(city) == "" {
		return shared.NewDomainError("INVALID_CITY", "City cannot be empty")
	}
	if err := a.applySettings(settings); err != nil {
		return err
	}
	if err := a.setPincodes(pincodes); err != nil {
		return err
	}
	a.Name = strings.TrimSpace(name)
	a.City = strings.TrimSpace(city)
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewServiceAreaChangedEvent(a, EventTypeServiceAreaUpdated))

	return nil
}

// Activate re-enables routing through this area
func (a *ServiceArea) Activate() error {
	if a.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Service area is already active")
	}
	a.IsActive = true
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	a.AddDomainEvent(NewServiceAreaChangedEvent(a, EventTypeServiceAreaUpdated))
	return nil
}

// Deactivate stops routing through this area
func (a *ServiceArea) Deactivate() error {
	if !a.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Service area is already inactive")
	}
	a.IsActive = false
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	a.AddDomainEvent(NewServiceAreaChangedEvent(a, EventTypeServiceAreaUpdated))
	return nil
}

// PincodeList returns the covered pincodes in sorted order
func (a *ServiceArea) PincodeList() []string {
	out := make([]string, 0, len(a.Pincodes))
	for _, p := range a.Pincodes {
		out = append(out, p.Pincode)
	}
	sort.Strings(out)
	return out
}

// IsOpenAt reports whether t (already in the store's local zone) is within operating hours
func (a *ServiceArea) IsOpenAt(t time.Time) bool {
	open, err := valueobject.ParseTimeOfDay(a.OpeningTime)
	if err != nil {
		return false
	}
	closing, err := valueobject.ParseTimeOfDay(a.ClosingTime)
	if err != nil {
		return false
	}
	return valueobject.TimeOfDayFrom(t).InWindow(open, closing)
}

// FeeFor returns the delivery fee charged for an order amount
func (a *ServiceArea) FeeFor(orderAmount *decimal.Decimal) decimal.Decimal {
	if orderAmount != nil && a.FreeDeliveryThreshold.IsPositive() && orderAmount.GreaterThanOrEqual(a.FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return a.DeliveryFee
}

func (a *ServiceArea) applySettings(s DeliverySettings) error {
	if s.DeliveryFee.IsNegative() {
		return shared.NewDomainError("INVALID_DELIVERY_FEE", "Delivery fee cannot be negative")
	}
	if s.FreeDeliveryThreshold.IsNegative() {
		return shared.NewDomainError("INVALID_THRESHOLD", "Free delivery threshold cannot be negative")
	}
	if s.MinOrderAmount.IsNegative() {
		return shared.NewDomainError("INVALID_MIN_ORDER", "Minimum order amount cannot be negative")
	}
	if s.MaxRadiusKm < 0 {
		return shared.NewDomainError("INVALID_RADIUS", "Delivery radius cannot be negative")
	}
	if s.EstimatedMinutes < 0 {
		return shared.NewDomainError("INVALID_ETA", "Estimated delivery minutes cannot be negative")
	}
	opening, closing := s.OpeningTime, s.ClosingTime
	if opening == "" {
		opening = "00:00"
	}
	if closing == "" {
		closing = "00:00"
	}
	if _, err := valueobject.ParseTimeOfDay(opening); err != nil {
		return shared.NewDomainError("INVALID_OPENING_TIME", err.Error())
	}
	if _, err := valueobject.ParseTimeOfDay(closing); err != nil {
		return shared.NewDomainError("INVALID_CLOSING_TIME", err.Error())
	}

	a.DeliveryFee = valueobject.RoundMoney(s.DeliveryFee)
	a.FreeDeliveryThreshold = valueobject.RoundMoney(s.FreeDeliveryThreshold)
	a.MinOrderAmount = valueobject.RoundMoney(s.MinOrderAmount)
	a.MaxRadiusKm = s.MaxRadiusKm
	a.OpeningTime = opening
	a.ClosingTime = closing
	a.EstimatedMinutes = s.EstimatedMinutes
	if a.EstimatedMinutes == 0 {
		a.EstimatedMinutes = 30
	}
	a.Priority = s.Priority
	if a.Priority == 0 {
		a.Priority = 100
	}
	return nil
}

func (a *ServiceArea) setPincodes(pincodes []string) error {
	if len(pincodes) == 0 {
		return shared.NewDomainError("INVALID_PINCODES", "At least one pincode is required")
	}
	seen := make(map[string]struct{}, len(pincodes))
	list := make([]ServiceAreaPincode, 0, len(pincodes))
	for _, p := range pincodes {
		p = strings.TrimSpace(p)
		if !valueobject.IsValidPincode(p) {
			return shared.NewDomainError("INVALID_PINCODE", "Invalid pincode: "+p)
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		list = append(list, ServiceAreaPincode{ServiceAreaID: a.ID, Pincode: p})
	}
	a.Pincodes = list
	return nil
}
