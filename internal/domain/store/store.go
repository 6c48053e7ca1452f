package store

import (
	"regexp"
	"strings"
	"time"

	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/shared/valueobject"
)

// StoreStatus represents the status of a store
type StoreStatus string

const (
	StoreStatusActive    StoreStatus = "ACTIVE"
	StoreStatusInactive  StoreStatus = "INACTIVE"
	StoreStatusSuspended StoreStatus = "SUSPENDED"
)

// IsValid checks if the status is known
func (s StoreStatus) IsValid() bool {
	switch s {
	case StoreStatusActive, StoreStatusInactive, StoreStatusSuspended:
		return true
	}
	return false
}

// StoreType distinguishes stores the platform runs from partner-integrated ones
type StoreType string

const (
	StoreTypeBrand   StoreType = "BRAND"
	StoreTypePartner StoreType = "PARTNER"
)

// IsValid checks if the type is known
func (t StoreType) IsValid() bool {
	return t == StoreTypeBrand || t == StoreTypePartner
}

var storeCodeRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Store is a physical fulfilment location on the marketplace
type Store struct {
	shared.BaseAggregateRoot
	Code      string      `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name      string      `gorm:"type:varchar(200);not null"`
	Type      StoreType   `gorm:"type:varchar(20);not null;default:'BRAND'"`
	Status    StoreStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	Phone     string      `gorm:"type:varchar(20)"`
	Email     string      `gorm:"type:varchar(200)"`
	Address   string      `gorm:"type:text"`
	City      string      `gorm:"type:varchar(100);index"`
	State     string      `gorm:"type:varchar(100)"`
	StateCode string      `gorm:"type:varchar(2)"`
	Pincode   string      `gorm:"type:varchar(6);index"`
	Latitude  *float64
	Longitude *float64
	GSTIN     string `gorm:"column:gstin;type:varchar(15)"`
}

// TableName returns the table name for GORM
func (Store) TableName() string {
	return "stores"
}

// NewStore creates a new active store
func NewStore(code, name string, storeType StoreType) (*Store, error) {
	if err := validateStoreCode(code); err != nil {
		return nil, err
	}
	if err := validateStoreName(name); err != nil {
		return nil, err
	}
	if !storeType.IsValid() {
		return nil, shared.NewDomainError("INVALID_STORE_TYPE", "Invalid store type")
	}

	s := &Store{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              strings.TrimSpace(name),
		Type:              storeType,
		Status:            StoreStatusActive,
	}

	s.AddDomainEvent(NewStoreCreatedEvent(s))

	return s, nil
}

// Update updates name and contact details
func (s *Store) Update(name, phone, email string) error {
	if err := validateStoreName(name); err != nil {
		return err
	}
	if len(phone) > 20 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 20 characters")
	}
	s.Name = strings.TrimSpace(name)
	s.Phone = strings.TrimSpace(phone)
	s.Email = strings.ToLower(strings.TrimSpace(email))
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewStoreUpdatedEvent(s))

	return nil
}

// SetLocation sets the address, GST state code and coordinates
func (s *Store) SetLocation(address, city, state, stateCode, pincode string, lat, lng *float64) error {
	if city == "" {
		return shared.NewDomainError("INVALID_CITY", "City cannot be empty")
	}
	if !valueobject.IsValidPincode(pincode) {
		return shared.NewDomainError("INVALID_PINCODE", "Pincode must be 6 digits")
	}
	if stateCode != "" && !valueobject.IsValidStateCode(stateCode) {
		return shared.NewDomainError("INVALID_STATE_CODE", "State code must be 2 digits")
	}
	if (lat == nil) != (lng == nil) {
		return shared.NewDomainError("INVALID_COORDINATES", "Latitude and longitude must be set together")
	}
	if lat != nil {
		if _, ok := valueobject.NewGeoPoint(lat, lng); !ok {
			return shared.NewDomainError("INVALID_COORDINATES", "Coordinates out of range")
		}
	}

	s.Address = strings.TrimSpace(address)
	s.City = strings.TrimSpace(city)
	s.State = strings.TrimSpace(state)
	s.StateCode = stateCode
	s.Pincode = pincode
	s.Latitude = lat
	s.Longitude = lng
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// SetGSTIN sets the GST registration. The state code follows the GSTIN prefix.
func (s *Store) SetGSTIN(gstin string) error {
	gstin = strings.ToUpper(strings.TrimSpace(gstin))
	if gstin == "" {
		s.GSTIN = ""
		return nil
	}
	if !valueobject.IsValidGSTIN(gstin) {
		return shared.NewDomainError("INVALID_GSTIN", "Invalid GSTIN format")
	}
	s.GSTIN = gstin
	s.StateCode = valueobject.StateCodeFromGSTIN(gstin)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// Location returns the store coordinates if set
func (s *Store) Location() (*valueobject.GeoPoint, bool) {
	return valueobject.NewGeoPoint(s.Latitude, s.Longitude)
}

// AcceptsOrders reports whether new orders may be routed to the store
func (s *Store) AcceptsOrders() bool {
	return s.Status == StoreStatusActive
}

// Activate makes the store available for routing
func (s *Store) Activate() error {
	return s.changeStatus(StoreStatusActive)
}

// Deactivate takes the store out of routing
func (s *Store) Deactivate() error {
	return s.changeStatus(StoreStatusInactive)
}

// Suspend blocks the store administratively
func (s *Store) Suspend() error {
	return s.changeStatus(StoreStatusSuspended)
}

func (s *Store) changeStatus(status StoreStatus) error {
	if s.Status == status {
		return shared.NewDomainError("INVALID_STATE", "Store is already "+strings.ToLower(string(status)))
	}
	old := s.Status
	s.Status = status
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewStoreStatusChangedEvent(s, old))

	return nil
}

func validateStoreCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Store code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Store code cannot exceed 50 characters")
	}
	if !storeCodeRegex.MatchString(code) {
		return shared.NewDomainError("INVALID_CODE", "Store code can only contain letters, numbers, underscores, and hyphens")
	}
	return nil
}

func validateStoreName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Store name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Store name cannot exceed 200 characters")
	}
	return nil
}
