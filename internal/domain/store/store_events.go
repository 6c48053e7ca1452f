package store

import (
	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeStore       = "Store"
	AggregateTypeServiceArea = "ServiceArea"
)

// Event type constants
const (
	EventTypeStoreCreated       = "StoreCreated"
	EventTypeStoreUpdated       = "StoreUpdated"
	EventTypeStoreStatusChanged = "StoreStatusChanged"
	EventTypeServiceAreaCreated = "ServiceAreaCreated"
	EventTypeServiceAreaUpdated = "ServiceAreaUpdated"
	EventTypeServiceAreaDeleted = "ServiceAreaDeleted"
)

// StoreCreatedEvent is published when a store is created
type StoreCreatedEvent struct {
	shared.BaseDomainEvent
	StoreID uuid.UUID `json:"store_id"`
	Code    string    `json:"code"`
	Name    string    `json:"name"`
	Type    StoreType `json:"type"`
}

// NewStoreCreatedEvent creates a new StoreCreatedEvent
func NewStoreCreatedEvent(s *Store) *StoreCreatedEvent {
	return &StoreCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStoreCreated, AggregateTypeStore, s.ID),
		StoreID:         s.ID,
		Code:            s.Code,
		Name:            s.Name,
		Type:            s.Type,
	}
}

// StoreUpdatedEvent is published when store details change
type StoreUpdatedEvent struct {
	shared.BaseDomainEvent
	StoreID uuid.UUID `json:"store_id"`
	Name    string    `json:"name"`
}

// NewStoreUpdatedEvent creates a new StoreUpdatedEvent
func NewStoreUpdatedEvent(s *Store) *StoreUpdatedEvent {
	return &StoreUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStoreUpdated, AggregateTypeStore, s.ID),
		StoreID:         s.ID,
		Name:            s.Name,
	}
}

// StoreStatusChangedEvent is published when a store is activated, deactivated or suspended
type StoreStatusChangedEvent struct {
	shared.BaseDomainEvent
	StoreID   uuid.UUID   `json:"store_id"`
	OldStatus StoreStatus `json:"old_status"`
	NewStatus StoreStatus `json:"new_status"`
}

// NewStoreStatusChangedEvent creates a new StoreStatusChangedEvent
func NewStoreStatusChangedEvent(s *Store, old StoreStatus) *StoreStatusChangedEvent {
	return &StoreStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStoreStatusChanged, AggregateTypeStore, s.ID),
		StoreID:         s.ID,
		OldStatus:       old,
		NewStatus:       s.Status,
	}
}

// ServiceAreaChangedEvent is published on any service area write.
// Subscribers use it to drop cached availability answers.
type ServiceAreaChangedEvent struct {
	shared.BaseDomainEvent
	ServiceAreaID uuid.UUID `json:"service_area_id"`
	StoreID       uuid.UUID `json:"store_id"`
	City          string    `json:"city"`
	Pincodes      []string  `json:"pincodes"`
}

// NewServiceAreaChangedEvent creates a ServiceAreaChangedEvent of the given type
func NewServiceAreaChangedEvent(a *ServiceArea, eventType string) *ServiceAreaChangedEvent {
	return &ServiceAreaChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeServiceArea, a.ID),
		ServiceAreaID:   a.ID,
		StoreID:         a.StoreID,
		City:            a.City,
		Pincodes:        a.PincodeList(),
	}
}
