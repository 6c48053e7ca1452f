package distributor

import (
	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
)

// AggregateTypeDistributor is the aggregate type for distributors
const AggregateTypeDistributor = "Distributor"

// Event type constants
const (
	EventTypeDistributorRegistered        = "DistributorRegistered"
	EventTypeKYCStatusChanged             = "KYCStatusChanged"
	EventTypeDistributorActivationChanged = "DistributorActivationChanged"
)

// DistributorRegisteredEvent is published when a distributor signs up
type DistributorRegisteredEvent struct {
	shared.BaseDomainEvent
	DistributorID uuid.UUID `json:"distributor_id"`
	BusinessName  string    `json:"business_name"`
	Email         string    `json:"email"`
}

// NewDistributorRegisteredEvent creates a new DistributorRegisteredEvent
func NewDistributorRegisteredEvent(d *Distributor) *DistributorRegisteredEvent {
	return &DistributorRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDistributorRegistered, AggregateTypeDistributor, d.ID),
		DistributorID:   d.ID,
		BusinessName:    d.BusinessName,
		Email:           d.Email,
	}
}

// KYCStatusChangedEvent is published on every KYC transition
type KYCStatusChangedEvent struct {
	shared.BaseDomainEvent
	DistributorID uuid.UUID  `json:"distributor_id"`
	OldStatus     KYCStatus  `json:"old_status"`
	NewStatus     KYCStatus  `json:"new_status"`
	ReviewedBy    *uuid.UUID `json:"reviewed_by,omitempty"`
	Reason        string     `json:"reason,omitempty"`
}

// NewKYCStatusChangedEvent creates a new KYCStatusChangedEvent
func NewKYCStatusChangedEvent(d *Distributor, old KYCStatus) *KYCStatusChangedEvent {
	return &KYCStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeKYCStatusChanged, AggregateTypeDistributor, d.ID),
		DistributorID:   d.ID,
		OldStatus:       old,
		NewStatus:       d.KYCStatus,
		ReviewedBy:      d.ReviewedBy,
		Reason:          d.RejectionReason,
	}
}

// DistributorActivationChangedEvent is published on suspend and reinstate
type DistributorActivationChangedEvent struct {
	shared.BaseDomainEvent
	DistributorID uuid.UUID `json:"distributor_id"`
	IsActive      bool      `json:"is_active"`
}

// NewDistributorActivationChangedEvent creates a new DistributorActivationChangedEvent
func NewDistributorActivationChangedEvent(d *Distributor) *DistributorActivationChangedEvent {
	return &DistributorActivationChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDistributorActivationChanged, AggregateTypeDistributor, d.ID),
		DistributorID:   d.ID,
		IsActive:        d.IsActive,
	}
}
