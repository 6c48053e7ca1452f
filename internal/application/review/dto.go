package review

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/review"
)

// CreateReviewRequest rates a product. OrderID links the delivered order
// the product came in; without it the customer's delivered orders are searched.
type CreateReviewRequest struct {
	ProductID uuid.UUID  `json:"product_id" binding:"required"`
	OrderID   *uuid.UUID `json:"order_id"`
	Rating    int        `json:"rating" binding:"required,min=1,max=5"`
	Title     string     `json:"title" binding:"max=120"`
	Comment   string     `json:"comment" binding:"max=2000"`
}

// UpdateReviewRequest edits the caller's own review
type UpdateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Title   string `json:"title" binding:"max=120"`
	Comment string `json:"comment" binding:"max=2000"`
}

// RejectReviewRequest carries the moderation note
type RejectReviewRequest struct {
	Note string `json:"note" binding:"required,max=500"`
}

// ReviewListFilter narrows review listings
type ReviewListFilter struct {
	ProductID  *uuid.UUID `form:"product_id"`
	StoreID    *uuid.UUID `form:"store_id"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     string     `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
	Verified   *bool      `form:"verified"`
	MinRating  int        `form:"min_rating" binding:"omitempty,min=1,max=5"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ReviewResponse represents a review in API responses
type ReviewResponse struct {
	ID               uuid.UUID  `json:"id"`
	ProductID        uuid.UUID  `json:"product_id"`
	StoreID          uuid.UUID  `json:"store_id"`
	CustomerID       uuid.UUID  `json:"customer_id"`
	OrderID          *uuid.UUID `json:"order_id,omitempty"`
	Rating           int        `json:"rating"`
	Title            string     `json:"title,omitempty"`
	Comment          string     `json:"comment,omitempty"`
	VerifiedPurchase bool       `json:"verified_purchase"`
	Status           string     `json:"status"`
	ModerationNote   string     `json:"moderation_note,omitempty"`
	ModeratedAt      *time.Time `json:"moderated_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// RatingSummaryResponse aggregates approved reviews of a product
type RatingSummaryResponse struct {
	ProductID uuid.UUID        `json:"product_id"`
	Average   float64          `json:"average"`
	Count     int64            `json:"count"`
	Histogram map[string]int64 `json:"histogram"`
}

// ToReviewResponse converts a domain review to a response DTO
func ToReviewResponse(r *review.Review) ReviewResponse {
	return ReviewResponse{
		ID:               r.ID,
		ProductID:        r.ProductID,
		StoreID:          r.StoreID,
		CustomerID:       r.CustomerID,
		OrderID:          r.OrderID,
		Rating:           r.Rating,
		Title:            r.Title,
		Comment:          r.Comment,
		VerifiedPurchase: r.VerifiedPurchase,
		Status:           string(r.Status),
		ModerationNote:   r.ModerationNote,
		ModeratedAt:      r.ModeratedAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// ToReviewResponses converts a slice of reviews
func ToReviewResponses(reviews []review.Review) []ReviewResponse {
	out := make([]ReviewResponse, len(reviews))
	for i := range reviews {
		out[i] = ToReviewResponse(&reviews[i])
	}
	return out
}

// ToRatingSummaryResponse converts a rating summary. Histogram keys are "1".."5".
func ToRatingSummaryResponse(s review.RatingSummary) RatingSummaryResponse {
	hist := make(map[string]int64, review.MaxRating)
	for star := review.MinRating; star <= review.MaxRating; star++ {
		hist[strconv.Itoa(star)] = s.Histogram[star]
	}
	return RatingSummaryResponse{
		ProductID: s.ProductID,
		Average:   s.Average,
		Count:     s.Count,
		Histogram: hist,
	}
}
