package review

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReview(t *testing.T) *Review {
	t.Helper()
	r, err := NewReview(uuid.New(), uuid.New(), uuid.New(), 4, " Fresh ", "Good quality")
	require.NoError(t, err)
	return r
}

func TestNewReview(t *testing.T) {
	r := newTestReview(t)
	assert.Equal(t, ReviewStatusPending, r.Status)
	assert.Equal(t, "Fresh", r.Title)
	assert.False(t, r.VerifiedPurchase)
	require.Len(t, r.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeReviewSubmitted, r.GetDomainEvents()[0].EventType())
}

func TestNewReview_Validation(t *testing.T) {
	tests := []struct {
		name   string
		rating int
		title  string
	}{
		{"rating too low", 0, ""},
		{"rating too high", 6, ""},
		{"title too long", 3, strings.Repeat("x", 121)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReview(uuid.New(), uuid.New(), uuid.New(), tt.rating, tt.title, "")
			assert.Error(t, err)
		})
	}

	_, err := NewReview(uuid.New(), uuid.New(), uuid.Nil, 3, "", "")
	assert.Error(t, err)
}

func TestReview_Moderation(t *testing.T) {
	r := newTestReview(t)
	mod := uuid.New()

	require.NoError(t, r.Approve(mod))
	assert.Equal(t, ReviewStatusApproved, r.Status)
	assert.Equal(t, &mod, r.ModeratedBy)
	assert.Error(t, r.Approve(mod))

	assert.Error(t, r.Reject(mod, ""))
	require.NoError(t, r.Reject(mod, "spam"))
	assert.Equal(t, ReviewStatusRejected, r.Status)
	assert.Equal(t, "spam", r.ModerationNote)
}

func TestReview_EditResetsModeration(t *testing.T) {
	r := newTestReview(t)
	require.NoError(t, r.Approve(uuid.New()))

	require.NoError(t, r.Edit(2, "Stale", "Not fresh this time"))
	assert.Equal(t, ReviewStatusPending, r.Status)
	assert.Equal(t, 2, r.Rating)
	assert.Nil(t, r.ModeratedBy)

	assert.Error(t, r.Edit(9, "", ""))
}

func TestReview_MarkVerified(t *testing.T) {
	r := newTestReview(t)
	orderID := uuid.New()
	r.MarkVerified(orderID)
	assert.True(t, r.VerifiedPurchase)
	assert.Equal(t, &orderID, r.OrderID)
	assert.True(t, r.IsOwnedBy(r.CustomerID))
	assert.False(t, r.IsOwnedBy(uuid.New()))
}

func TestNewRatingSummary(t *testing.T) {
	productID := uuid.New()
	s := NewRatingSummary(productID, map[int]int64{5: 3, 4: 1, 1: 1, 9: 4})
	assert.Equal(t, int64(5), s.Count)
	assert.Equal(t, int64(3), s.Histogram[5])
	assert.Equal(t, int64(0), s.Histogram[2])
	// (15 + 4 + 1) / 5
	assert.InDelta(t, 4.0, s.Average, 0.001)

	empty := NewRatingSummary(productID, nil)
	assert.Zero(t, empty.Count)
	assert.Zero(t, empty.Average)
}
