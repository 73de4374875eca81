// Package geo implements great-circle distance and the rectangular envelope
// used by the two-phase radius search. All functions are pure.
package geo

import (
	"math"

	"github.com/campusfind/lostfound-backend/internal/domain"
)

// EarthRadiusMeters is the mean Earth radius used by the Haversine formula.
const EarthRadiusMeters = 6371000.0

// metersPerDegree is the approximate length of one degree of latitude.
const metersPerDegree = 111000.0

// Distance returns the Haversine great-circle distance in meters between two
// points. ok is false when either point is missing; a missing point yields
// "unknown", never zero.
//
//	a = sin²(Δφ/2) + cos φ1 ⋅ cos φ2 ⋅ sin²(Δλ/2)
//	d = 2R ⋅ atan2(√a, √(1−a))
func Distance(p1, p2 *domain.GeoPoint) (meters float64, ok bool) {
	if p1 == nil || p2 == nil {
		return 0, false
	}

	lat1 := radians(p1.Latitude)
	lat2 := radians(p2.Latitude)
	dLat := lat2 - lat1
	dLon := radians(p2.Longitude) - radians(p1.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c, true
}

// BoundingBox is a latitude/longitude rectangle.
type BoundingBox struct {
	MinLatitude  float64
	MaxLatitude  float64
	MinLongitude float64
	MaxLongitude float64
}

// Contains reports whether the point lies inside the box (borders included).
func (b BoundingBox) Contains(p *domain.GeoPoint) bool {
	if p == nil {
		return false
	}
	return p.Latitude >= b.MinLatitude && p.Latitude <= b.MaxLatitude &&
		p.Longitude >= b.MinLongitude && p.Longitude <= b.MaxLongitude
}

// Envelope returns the smallest axis-aligned rectangle that circumscribes
// the circle of the given radius around center, so the circle is inscribed
// in it and the rectangle is a strict superset of the circle. ok is false
// for a missing center or a non-positive radius.
//
// One degree of latitude is ~111km everywhere; one degree of longitude is
// ~111km ⋅ cos(latitude).
func Envelope(center *domain.GeoPoint, radiusMeters float64) (BoundingBox, bool) {
	if center == nil || radiusMeters <= 0 {
		return BoundingBox{}, false
	}

	latDelta := radiusMeters / metersPerDegree
	lonDelta := radiusMeters / (metersPerDegree * math.Cos(radians(center.Latitude)))

	return BoundingBox{
		MinLatitude:  center.Latitude - latDelta,
		MaxLatitude:  center.Latitude + latDelta,
		MinLongitude: center.Longitude - lonDelta,
		MaxLongitude: center.Longitude + lonDelta,
	}, true
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
