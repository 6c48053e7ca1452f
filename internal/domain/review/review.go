package review

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
)

// ReviewStatus is the moderation state of a review
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "PENDING"
	ReviewStatusApproved ReviewStatus = "APPROVED"
	ReviewStatusRejected ReviewStatus = "REJECTED"
)

// IsValid checks if the status is known
func (s ReviewStatus) IsValid() bool {
	return s == ReviewStatusPending || s == ReviewStatusApproved || s == ReviewStatusRejected
}

const (
	MinRating        = 1
	MaxRating        = 5
	maxTitleLength   = 120
	maxCommentLength = 2000
)

// Review is a customer's rating of a product
type Review struct {
	shared.BaseAggregateRoot
	ProductID        uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_review_customer_product,priority:2;index"`
	StoreID          uuid.UUID    `gorm:"type:uuid;not null;index"`
	CustomerID       uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_review_customer_product,priority:1"`
	OrderID          *uuid.UUID   `gorm:"type:uuid"`
	Rating           int          `gorm:"not null"`
	Title            string       `gorm:"type:varchar(120)"`
	Comment          string       `gorm:"type:text"`
	VerifiedPurchase bool         `gorm:"not null;default:false"`
	Status           ReviewStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ModerationNote   string       `gorm:"type:text"`
	ModeratedBy      *uuid.UUID   `gorm:"type:uuid"`
	ModeratedAt      *time.Time
}

// TableName returns the table name for GORM
func (Review) TableName() string {
	return "reviews"
}

// NewReview creates a pending review
func NewReview(productID, storeID, customerID uuid.UUID, rating int, title, comment string) (*Review, error) {
	if productID == uuid.Nil || storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product and store are required")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	r := &Review{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		StoreID:           storeID,
		CustomerID:        customerID,
		Status:            ReviewStatusPending,
	}
	if err := r.setContent(rating, title, comment); err != nil {
		return nil, err
	}
	r.AddDomainEvent(NewReviewSubmittedEvent(r))
	return r, nil
}

// MarkVerified links the review to a delivered order containing the product
func (r *Review) MarkVerified(orderID uuid.UUID) {
	r.OrderID = &orderID
	r.VerifiedPurchase = true
}

// Edit changes the review content and sends it back to moderation
func (r *Review) Edit(rating int, title, comment string) error {
	if err := r.setContent(rating, title, comment); err != nil {
		return err
	}
	r.Status = ReviewStatusPending
	r.ModerationNote = ""
	r.ModeratedBy = nil
	r.ModeratedAt = nil
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}

// Approve publishes the review
func (r *Review) Approve(moderatorID uuid.UUID) error {
	if r.Status == ReviewStatusApproved {
		return shared.NewDomainError("INVALID_STATE", "Review is already approved")
	}
	r.moderate(ReviewStatusApproved, moderatorID, "")
	return nil
}

// Reject hides the review. A note is required.
func (r *Review) Reject(moderatorID uuid.UUID, note string) error {
	note = strings.TrimSpace(note)
	if note == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection note is required")
	}
	if r.Status == ReviewStatusRejected {
		return shared.NewDomainError("INVALID_STATE", "Review is already rejected")
	}
	r.moderate(ReviewStatusRejected, moderatorID, note)
	return nil
}

// IsOwnedBy reports whether the customer wrote this review
func (r *Review) IsOwnedBy(customerID uuid.UUID) bool {
	return r.CustomerID == customerID
}

func (r *Review) moderate(status ReviewStatus, moderatorID uuid.UUID, note string) {
	now := time.Now()
	old := r.Status
	r.Status = status
	r.ModerationNote = note
	r.ModeratedBy = &moderatorID
	r.ModeratedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()
	r.AddDomainEvent(NewReviewModeratedEvent(r, old))
}

func (r *Review) setContent(rating int, title, comment string) error {
	if rating < MinRating || rating > MaxRating {
		return shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	}
	title = strings.TrimSpace(title)
	comment = strings.TrimSpace(comment)
	if len(title) > maxTitleLength {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 120 characters")
	}
	if len(comment) > maxCommentLength {
		return shared.NewDomainError("INVALID_COMMENT", "Comment cannot exceed 2000 characters")
	}
	r.Rating = rating
	r.Title = title
	r.Comment = comment
	return nil
}

// RatingSummary aggregates approved reviews of a product
type RatingSummary struct {
	ProductID uuid.UUID
	Average   float64
	Count     int64
	// Histogram is indexed by star: Histogram[5] counts five-star reviews
	Histogram [MaxRating + 1]int64
}

// NewRatingSummary builds a summary from per-star counts
func NewRatingSummary(productID uuid.UUID, counts map[int]int64) RatingSummary {
	s := RatingSummary{ProductID: productID}
	var total int64
	for star, n := range counts {
		if star < MinRating || star > MaxRating {
			continue
		}
		s.Histogram[star] = n
		s.Count += n
		total += int64(star) * n
	}
	if s.Count > 0 {
		avg := float64(total) / float64(s.Count)
		s.Average = float64(int(avg*10+0.5)) / 10
	}
	return s
}
