package valueobject

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInclusiveTax(t *testing.T) {
	tax := InclusiveTax(decimal.NewFromInt(118), decimal.NewFromInt(18))
	assert.True(t, decimal.NewFromInt(18).Equal(RoundMoney(tax)))

	assert.True(t, InclusiveTax(decimal.NewFromInt(100), decimal.Zero).IsZero())
}

func TestPercentOf(t *testing.T) {
	assert.True(t, decimal.NewFromInt(25).Equal(PercentOf(decimal.NewFromInt(250), decimal.NewFromInt(10))))
}

func TestDistanceKm(t *testing.T) {
	// Bengaluru MG Road to Indiranagar, roughly 4km
	a := GeoPoint{Lat: 12.9756, Lng: 77.6066}
	b := GeoPoint{Lat: 12.9784, Lng: 77.6408}
	d := a.DistanceKm(b)
	assert.InDelta(t, 3.7, d, 0.3)
	assert.InDelta(t, 0, a.DistanceKm(a), 0.0001)
}

func TestNewGeoPoint(t *testing.T) {
	lat, lng := 12.9, 77.6
	p, ok := NewGeoPoint(&lat, &lng)
	require.True(t, ok)
	assert.Equal(t, 12.9, p.Lat)

	_, ok = NewGeoPoint(nil, &lng)
	assert.False(t, ok)

	bad := 120.0
	_, ok = NewGeoPoint(&bad, &lng)
	assert.False(t, ok)
}

func TestTimeOfDay(t *testing.T) {
	open, err := ParseTimeOfDay("07:00")
	require.NoError(t, err)
	closing, err := ParseTimeOfDay("22:30")
	require.NoError(t, err)
	assert.Equal(t, "22:30", closing.String())

	at := func(h, m int) TimeOfDay {
		return TimeOfDayFrom(time.Date(2024, 1, 1, h, m, 0, 0, time.UTC))
	}

	t.Run("daytime window", func(t *testing.T) {
		assert.True(t, at(7, 0).InWindow(open, closing))
		assert.True(t, at(22, 29).InWindow(open, closing))
		assert.False(t, at(22, 30).InWindow(open, closing))
		assert.False(t, at(6, 59).InWindow(open, closing))
	})

	t.Run("overnight window", func(t *testing.T) {
		assert.True(t, at(23, 0).InWindow(closing, open))
		assert.True(t, at(2, 0).InWindow(closing, open))
		assert.False(t, at(12, 0).InWindow(closing, open))
	})

	t.Run("equal bounds means always open", func(t *testing.T) {
		assert.True(t, at(3, 0).InWindow(open, open))
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := ParseTimeOfDay("25:00")
		assert.Error(t, err)
		_, err = ParseTimeOfDay("7am")
		assert.Error(t, err)
	})
}

func TestIndianIdentifiers(t *testing.T) {
	assert.True(t, IsValidPincode("560001"))
	assert.False(t, IsValidPincode("060001"))
	assert.False(t, IsValidPincode("56001"))

	assert.True(t, IsValidGSTIN("29ABCDE1234F1Z5"))
	assert.False(t, IsValidGSTIN("29ABCDE1234F1X5"))
	assert.Equal(t, "29", StateCodeFromGSTIN("29ABCDE1234F1Z5"))

	assert.True(t, IsValidPAN("abcde1234f"))
	assert.False(t, IsValidPAN("ABCD1234F"))

	assert.True(t, IsValidIFSC("HDFC0001234"))
	assert.False(t, IsValidIFSC("HDFC1001234"))

	assert.True(t, IsValidStateCode("07"))
	assert.False(t, IsValidStateCode("7"))
}
