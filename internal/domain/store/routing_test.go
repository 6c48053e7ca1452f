package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoutedStore(t *testing.T, code string, lat, lng float64) *Store {
	t.Helper()
	s, err := NewStore(code, code+" Store", StoreTypeBrand)
	require.NoError(t, err)
	require.NoError(t, s.SetLocation("addr", "Bengaluru", "Karnataka", "29", "560038", &lat, &lng))
	return s
}

func newRoutedArea(t *testing.T, s *Store, mutate func(*DeliverySettings)) ServiceArea {
	t.Helper()
	settings := defaultSettings()
	if mutate != nil {
		mutate(&settings)
	}
	area, err := NewServiceArea(s.ID, s.Code+" area", "Bengaluru", []string{"560038"}, settings)
	require.NoError(t, err)
	return *area
}

func TestRouter_Route(t *testing.T) {
	router := NewRouter()
	noon := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	amount := decimal.NewFromInt(300)
	customer := &valueobject.GeoPoint{Lat: 12.9784, Lng: 77.6408}

	near := newRoutedStore(t, "NEAR", 12.9790, 77.6400)
	far := newRoutedStore(t, "FAR", 12.9200, 77.6200)
	stores := map[uuid.UUID]*Store{near.ID: near, far.ID: far}

	t.Run("picks nearest store when coordinates are known", func(t *testing.T) {
		areas := []ServiceArea{
			newRoutedArea(t, far, func(s *DeliverySettings) { s.Priority = 1 }),
			newRoutedArea(t, near, func(s *DeliverySettings) { s.Priority = 50 }),
		}
		res := router.Route(RouteRequest{Pincode: "560038", Location: customer, OrderAmount: &amount, At: noon}, areas, stores)

		require.True(t, res.Available)
		assert.Equal(t, near.ID, res.Selected.Store.ID)
		require.NotNil(t, res.Selected.DistanceKm)
		assert.Less(t, *res.Selected.DistanceKm, 1.0)
		require.Len(t, res.Alternatives, 1)
		assert.Equal(t, far.ID, res.Alternatives[0].Store.ID)
	})

	t.Run("falls back to priority then fee without coordinates", func(t *testing.T) {
		areas := []ServiceArea{
			newRoutedArea(t, near, func(s *DeliverySettings) { s.Priority = 10; s.DeliveryFee = decimal.NewFromInt(40) }),
			newRoutedArea(t, far, func(s *DeliverySettings) { s.Priority = 10; s.DeliveryFee = decimal.NewFromInt(20) }),
		}
		res := router.Route(RouteRequest{Pincode: "560038", OrderAmount: &amount, At: noon}, areas, stores)

		require.True(t, res.Available)
		assert.Equal(t, far.ID, res.Selected.Store.ID)
		assert.True(t, decimal.NewFromInt(20).Equal(res.Selected.DeliveryFee))
	})

	t.Run("waives fee above free delivery threshold", func(t *testing.T) {
		big := decimal.NewFromInt(800)
		res := router.Route(RouteRequest{Pincode: "560038", OrderAmount: &big, At: noon},
			[]ServiceArea{newRoutedArea(t, near, nil)}, stores)
		require.True(t, res.Available)
		assert.True(t, res.Selected.DeliveryFee.IsZero())
	})

	t.Run("rejects outside operating hours", func(t *testing.T) {
		late := time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC)
		res := router.Route(RouteRequest{Pincode: "560038", At: late},
			[]ServiceArea{newRoutedArea(t, near, nil)}, stores)
		assert.False(t, res.Available)
		assert.Equal(t, ReasonOutsideHours, res.Reason)
	})

	t.Run("rejects out of radius", func(t *testing.T) {
		area := newRoutedArea(t, far, func(s *DeliverySettings) { s.MaxRadiusKm = 2 })
		res := router.Route(RouteRequest{Pincode: "560038", Location: customer, At: noon}, []ServiceArea{area}, stores)
		assert.False(t, res.Available)
		assert.Equal(t, ReasonOutOfRange, res.Reason)
	})

	t.Run("reports most specific reason", func(t *testing.T) {
		tiny := decimal.NewFromInt(10)
		inactive := newRoutedStore(t, "OFF", 12.97, 77.64)
		require.NoError(t, inactive.Deactivate())
		withInactive := map[uuid.UUID]*Store{near.ID: near, inactive.ID: inactive}

		areas := []ServiceArea{newRoutedArea(t, inactive, nil), newRoutedArea(t, near, nil)}
		res := router.Route(RouteRequest{Pincode: "560038", OrderAmount: &tiny, At: noon}, areas, withInactive)
		assert.False(t, res.Available)
		assert.Equal(t, ReasonBelowMinimumOrder, res.Reason)
		assert.NotEmpty(t, res.Reason.Message())
	})

	t.Run("reports no service area for empty input", func(t *testing.T) {
		res := router.Route(RouteRequest{Pincode: "110001", At: noon}, nil, stores)
		assert.False(t, res.Available)
		assert.Equal(t, ReasonNoServiceArea, res.Reason)
	})

	t.Run("treats unknown store as inactive", func(t *testing.T) {
		orphan := newRoutedArea(t, near, nil)
		orphan.StoreID = uuid.New()
		res := router.Route(RouteRequest{Pincode: "560038", At: noon}, []ServiceArea{orphan}, stores)
		assert.Equal(t, ReasonStoreInactive, res.Reason)
	})
}
