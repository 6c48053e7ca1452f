package valueobject

import "math"

const earthRadiusKm = 6371.0

// GeoPoint is a WGS84 coordinate
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewGeoPoint returns a point if both coordinates are present and in range
func NewGeoPoint(lat, lng *float64) (*GeoPoint, bool) {
	if lat == nil || lng == nil {
		return nil, false
	}
	if *lat < -90 || *lat > 90 || *lng < -180 || *lng > 180 {
		return nil, false
	}
	return &GeoPoint{Lat: *lat, Lng: *lng}, true
}

// DistanceKm returns the great-circle distance between two points (haversine)
func (p GeoPoint) DistanceKm(o GeoPoint) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := o.Lat * math.Pi / 180
	dLat := (o.Lat - p.Lat) * math.Pi / 180
	dLng := (o.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}
