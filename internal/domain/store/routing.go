package store

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// RejectReason explains why a request could not be served.
// Reasons later in the check chain are more specific.
type RejectReason string

const (
	ReasonNoServiceArea     RejectReason = "NO_SERVICE_AREA"
	ReasonStoreInactive     RejectReason = "STORE_INACTIVE"
	ReasonOutsideHours      RejectReason = "OUTSIDE_OPERATING_HOURS"
	ReasonOutOfRange        RejectReason = "OUT_OF_RANGE"
	ReasonBelowMinimumOrder RejectReason = "BELOW_MINIMUM_ORDER"
)

var reasonRank = map[RejectReason]int{
	ReasonNoServiceArea:     0,
	ReasonStoreInactive:     1,
	ReasonOutsideHours:      2,
	ReasonOutOfRange:        3,
	ReasonBelowMinimumOrder: 4,
}

// Message returns a customer-facing explanation
func (r RejectReason) Message() string {
	switch r {
	case ReasonStoreInactive:
		return "No store is currently accepting orders for this location"
	case ReasonOutsideHours:
		return "Delivery is not available at this time"
	case ReasonOutOfRange:
		return "The delivery address is outside the delivery radius"
	case ReasonBelowMinimumOrder:
		return "Order amount is below the minimum for delivery"
	default:
		return "We do not deliver to this location yet"
	}
}

// RouteRequest describes a delivery location to be matched against service areas
type RouteRequest struct {
	Pincode     string
	City        string
	Location    *valueobject.GeoPoint
	OrderAmount *decimal.Decimal
	At          time.Time
}

// RouteCandidate is a service area able to serve the request
type RouteCandidate struct {
	Area        *ServiceArea
	Store       *Store
	DistanceKm  *float64
	DeliveryFee decimal.Decimal
}

// RouteResult is the outcome of routing a request
type RouteResult struct {
	Available    bool
	Selected     *RouteCandidate
	Alternatives []RouteCandidate
	Reason       RejectReason
}

// Router picks the service area that should fulfil a delivery.
// It is pure: callers load the candidate areas and their stores.
type Router struct{}

// NewRouter creates a router
func NewRouter() *Router {
	return &Router{}
}

// Route filters the candidate areas and ranks the survivors.
func (r *Router) Route(req RouteRequest, areas []ServiceArea, stores map[uuid.UUID]*Store) RouteResult {
	reason := ReasonNoServiceArea
	note := func(rr RejectReason) {
		if reasonRank[rr] > reasonRank[reason] {
			reason = rr
		}
	}

	candidates := make([]RouteCandidate, 0, len(areas))
	for i := range areas {
		area := &areas[i]

		st, ok := stores[area.StoreID]
		if !ok || !st.AcceptsOrders() {
			note(ReasonStoreInactive)
			continue
		}
		if !area.IsOpenAt(req.At) {
			note(ReasonOutsideHours)
			continue
		}

		var distance *float64
		if req.Location != nil {
			if loc, ok := st.Location(); ok {
				d := loc.DistanceKm(*req.Location)
				distance = &d
				if area.MaxRadiusKm > 0 && d > area.MaxRadiusKm {
					note(ReasonOutOfRange)
					continue
				}
			}
		}

		if req.OrderAmount != nil && req.OrderAmount.LessThan(area.MinOrderAmount) {
			note(ReasonBelowMinimumOrder)
			continue
		}

		candidates = append(candidates, RouteCandidate{
			Area:        area,
			Store:       st,
			DistanceKm:  distance,
			DeliveryFee: area.FeeFor(req.OrderAmount),
		})
	}

	if len(candidates) == 0 {
		return RouteResult{Available: false, Reason: reason}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidateLess(candidates[i], candidates[j])
	})

	selected := candidates[0]
	return RouteResult{
		Available:    true,
		Selected:     &selected,
		Alternatives: candidates[1:],
	}
}

func candidateLess(a, b RouteCandidate) bool {
	switch {
	case a.DistanceKm != nil && b.DistanceKm != nil:
		if *a.DistanceKm != *b.DistanceKm {
			return *a.DistanceKm < *b.DistanceKm
		}
	case a.DistanceKm != nil:
		return true
	case b.DistanceKm != nil:
		return false
	}
	if a.Area.Priority != b.Area.Priority {
		return a.Area.Priority < b.Area.Priority
	}
	if !a.DeliveryFee.Equal(b.DeliveryFee) {
		return a.DeliveryFee.LessThan(b.DeliveryFee)
	}
	return a.Area.ID.String() < b.Area.ID.String()
}
