package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	t.Run("creates active store with upper-cased code", func(t *testing.T) {
		s, err := NewStore("blr-01", "Indiranagar Fresh", StoreTypeBrand)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, s.ID)
		assert.Equal(t, "BLR-01", s.Code)
		assert.Equal(t, StoreStatusActive, s.Status)
		assert.True(t, s.AcceptsOrders())

		events := s.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeStoreCreated, events[0].EventType())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := NewStore("", "X", StoreTypeBrand)
		assert.Error(t, err)

		_, err = NewStore("BLR@1", "X", StoreTypeBrand)
		assert.Contains(t, err.Error(), "only contain letters")

		_, err = NewStore("BLR1", " ", StoreTypeBrand)
		assert.Contains(t, err.Error(), "cannot be empty")

		_, err = NewStore("BLR1", "X", StoreType("KIOSK"))
		assert.Contains(t, err.Error(), "Invalid store type")
	})
}

func TestStore_SetLocation(t *testing.T) {
	s, err := NewStore("BLR1", "Fresh", StoreTypeBrand)
	require.NoError(t, err)

	lat, lng := 12.97, 77.64
	require.NoError(t, s.SetLocation("100ft Road", "Bengaluru", "Karnataka", "29", "560038", &lat, &lng))
	loc, ok := s.Location()
	require.True(t, ok)
	assert.Equal(t, 12.97, loc.Lat)

	assert.Error(t, s.SetLocation("x", "Bengaluru", "", "", "5600", nil, nil))
	assert.Error(t, s.SetLocation("x", "Bengaluru", "", "", "560038", &lat, nil))
	assert.Error(t, s.SetLocation("x", "", "", "", "560038", nil, nil))
}

func TestStore_SetGSTIN(t *testing.T) {
	s, err := NewStore("BLR1", "Fresh", StoreTypeBrand)
	require.NoError(t, err)

	require.NoError(t, s.SetGSTIN("29abcde1234f1z5"))
	assert.Equal(t, "29ABCDE1234F1Z5", s.GSTIN)
	assert.Equal(t, "29", s.StateCode)

	assert.Error(t, s.SetGSTIN("BAD"))
}

func TestStore_StatusTransitions(t *testing.T) {
	s, err := NewStore("BLR1", "Fresh", StoreTypePartner)
	require.NoError(t, err)
	s.ClearDomainEvents()

	require.NoError(t, s.Deactivate())
	assert.False(t, s.AcceptsOrders())
	assert.Error(t, s.Deactivate())

	require.NoError(t, s.Suspend())
	require.NoError(t, s.Activate())
	assert.True(t, s.AcceptsOrders())

	events := s.GetDomainEvents()
	require.Len(t, events, 3)
	changed := events[0].(*StoreStatusChangedEvent)
	assert.Equal(t, StoreStatusActive, changed.OldStatus)
	assert.Equal(t, StoreStatusInactive, changed.NewStatus)
}
