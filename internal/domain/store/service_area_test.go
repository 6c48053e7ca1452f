package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultSettings() DeliverySettings {
	return DeliverySettings{
		DeliveryFee:           decimal.NewFromInt(30),
		FreeDeliveryThreshold: decimal.NewFromInt(500),
		MinOrderAmount:        decimal.NewFromInt(99),
		OpeningTime:           "07:00",
		ClosingTime:           "22:00",
		EstimatedMinutes:      25,
	}
}

func TestNewServiceArea(t *testing.T) {
	storeID := uuid.New()

	t.Run("creates area and de-duplicates pincodes", func(t *testing.T) {
		area, err := NewServiceArea(storeID, "Indiranagar", "Bengaluru", []string{"560038", "560008", "560038"}, defaultSettings())
		require.NoError(t, err)

		assert.Equal(t, []string{"560008", "560038"}, area.PincodeList())
		assert.True(t, area.IsActive)
		assert.Equal(t, 100, area.Priority)
		assert.Equal(t, 25, area.EstimatedMinutes)
		for _, p := range area.Pincodes {
			assert.Equal(t, area.ID, p.ServiceAreaID)
		}

		events := area.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeServiceAreaCreated, events[0].EventType())
	})

	t.Run("rejects invalid settings", func(t *testing.T) {
		_, err := NewServiceArea(storeID, "A", "B", nil, defaultSettings())
		assert.Contains(t, err.Error(), "At least one pincode")

		_, err = NewServiceArea(storeID, "A", "B", []string{"12"}, defaultSettings())
		assert.Contains(t, err.Error(), "Invalid pincode")

		bad := defaultSettings()
		bad.DeliveryFee = decimal.NewFromInt(-1)
		_, err = NewServiceArea(storeID, "A", "B", []string{"560038"}, bad)
		assert.Contains(t, err.Error(), "cannot be negative")

		bad = defaultSettings()
		bad.OpeningTime = "7am"
		_, err = NewServiceArea(storeID, "A", "B", []string{"560038"}, bad)
		assert.Error(t, err)

		_, err = NewServiceArea(uuid.Nil, "A", "B", []string{"560038"}, defaultSettings())
		assert.Error(t, err)
	})
}

func TestServiceArea_FeeFor(t *testing.T) {
	area, err := NewServiceArea(uuid.New(), "A", "Bengaluru", []string{"560038"}, defaultSettings())
	require.NoError(t, err)

	small := decimal.NewFromInt(200)
	large := decimal.NewFromInt(500)
	assert.True(t, decimal.NewFromInt(30).Equal(area.FeeFor(&small)))
	assert.True(t, area.FeeFor(&large).IsZero())
	assert.True(t, decimal.NewFromInt(30).Equal(area.FeeFor(nil)))
}

func TestServiceArea_IsOpenAt(t *testing.T) {
	area, err := NewServiceArea(uuid.New(), "A", "Bengaluru", []string{"560038"}, defaultSettings())
	require.NoError(t, err)

	assert.True(t, area.IsOpenAt(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)))
	assert.False(t, area.IsOpenAt(time.Date(2024, 5, 1, 22, 0, 0, 0, time.UTC)))

	allDay := defaultSettings()
	allDay.OpeningTime, allDay.ClosingTime = "", ""
	area, err = NewServiceArea(uuid.New(), "A", "Bengaluru", []string{"560038"}, allDay)
	require.NoError(t, err)
	assert.True(t, area.IsOpenAt(time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC)))
}

func TestServiceArea_ActivateDeactivate(t *testing.T) {
	area, err := NewServiceArea(uuid.New(), "A", "Bengaluru", []string{"560038"}, defaultSettings())
	require.NoError(t, err)

	assert.Error(t, area.Activate())
	require.NoError(t, area.Deactivate())
	assert.False(t, area.IsActive)
	assert.Error(t, area.Deactivate())
	require.NoError(t, area.Activate())
}
