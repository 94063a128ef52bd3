package polycanyon

import "math"

// SafeZone is a rectangular geographic bounding box. Containment is a closed
// interval on both axes: boundary coordinates count as inside.
type SafeZone struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// DefaultSafeZone bounds the walkable canyon area. Coordinates outside this
// box are treated as off-site and never produce visits.
var DefaultSafeZone = SafeZone{
	MinLat: 35.31214,
	MaxLat: 35.31813,
	MinLng: -120.65817,
	MaxLng: -120.65110,
}

// Contains reports whether the coordinate falls inside the zone.
// NaN and Inf coordinates are never in zone.
func (z SafeZone) Contains(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= z.MinLat && lat <= z.MaxLat && lng >= z.MinLng && lng <= z.MaxLng
}

// Center returns the midpoint of the zone.
func (z SafeZone) Center() (lat, lng float64) {
	return (z.MinLat + z.MaxLat) / 2, (z.MinLng + z.MaxLng) / 2
}
