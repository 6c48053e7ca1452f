package review

import (
	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
)

// AggregateTypeReview is the aggregate type for reviews
const AggregateTypeReview = "Review"

// Event type constants
const (
	EventTypeReviewSubmitted = "ReviewSubmitted"
	EventTypeReviewModerated = "ReviewModerated"
)

// ReviewSubmittedEvent is published when a customer writes a review
type ReviewSubmittedEvent struct {
	shared.BaseDomainEvent
	ReviewID   uuid.UUID `json:"review_id"`
	ProductID  uuid.UUID `json:"product_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Rating     int       `json:"rating"`
}

// NewReviewSubmittedEvent creates a new ReviewSubmittedEvent
func NewReviewSubmittedEvent(r *Review) *ReviewSubmittedEvent {
	return &ReviewSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReviewSubmitted, AggregateTypeReview, r.ID),
		ReviewID:        r.ID,
		ProductID:       r.ProductID,
		CustomerID:      r.CustomerID,
		Rating:          r.Rating,
	}
}

// ReviewModeratedEvent is published when a review is approved or rejected
type ReviewModeratedEvent struct {
	shared.BaseDomainEvent
	ReviewID  uuid.UUID    `json:"review_id"`
	ProductID uuid.UUID    `json:"product_id"`
	OldStatus ReviewStatus `json:"old_status"`
	NewStatus ReviewStatus `json:"new_status"`
}

// NewReviewModeratedEvent creates a new ReviewModeratedEvent
func NewReviewModeratedEvent(r *Review, old ReviewStatus) *ReviewModeratedEvent {
	return &ReviewModeratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReviewModerated, AggregateTypeReview, r.ID),
		ReviewID:        r.ID,
		ProductID:       r.ProductID,
		OldStatus:       old,
		NewStatus:       r.Status,
	}
}
